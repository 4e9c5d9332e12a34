// Package dashboard renders the counter dashboard in the terminal:
// session status, the mic level meter, visible orders, insights, the
// cashier prompt, and customer sentiment.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/counterpal/counterpal/pkg/pos"
)

// Theme defines the dashboard color scheme.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Accent:  lipgloss.Color("#ffb454"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Accent lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Accent: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// View is one render snapshot. The serve loop fills it from the store,
// transients, meter, and manager on every tick.
type View struct {
	// Status is the session state line, e.g. "active" or "reconnecting".
	Status string

	// Listening is true when recent mic input is above the silence
	// threshold; Speaking when scheduled playback remains.
	Listening bool
	Speaking  bool

	// Levels is the mic meter window, oldest first, values in [0, 1].
	Levels []float32

	// Orders are the currently visible orders.
	Orders []*pos.Order

	// Insights are the most recent insights, oldest first.
	Insights []*pos.Insight

	// Prompt and Sentiment are the transient values, "" when expired.
	Prompt    string
	Sentiment string

	// RunningTotal is the locally computed recent total.
	RunningTotal int

	// Log is the recent log tail.
	Log []string
}

// Frame renders dashboard views.
type Frame struct {
	Styles Styles
	Title  string
	Help   string
}

// meterRunes are the level bar glyphs from silent to loud.
var meterRunes = []rune("▁▂▃▄▅▆▇█")

// Render renders one view to a string.
func (f Frame) Render(v View, width, height int) string {
	if width < 20 || height < 10 {
		return "Loading..."
	}

	bc := f.Styles.Border
	maxContentWidth := width - 4

	var lines []string
	lines = append(lines, bc.Render("╭"+strings.Repeat("─", width-2)+"╮"))

	title := f.Styles.Title.Render(f.Title)
	status := f.Styles.Help.Render("[" + v.Status + indicator(v) + "]")
	padding := max(0, width-5-lipgloss.Width(title)-lipgloss.Width(status))
	lines = append(lines, bc.Render("│")+" "+title+" "+status+
		strings.Repeat(" ", padding)+" "+bc.Render("│"))

	sections := []struct {
		label   string
		content []string
	}{
		{"🎤 Mic", []string{meterLine(v.Levels)}},
		{"🧾 Orders", f.orderLines(v.Orders)},
		{"💡 Insights", f.insightLines(v.Insights)},
		{"📣 Counter", f.counterLines(v)},
	}
	if len(v.Log) > 0 {
		sections = append(sections, struct {
			label   string
			content []string
		}{"📜 Log", v.Log})
	}

	// Remaining rows after borders, title, labels, and help line.
	available := height - 4 - len(sections)
	per := max(available/len(sections), 1)

	for _, sec := range sections {
		lines = append(lines, f.renderSection(bc, sec.label, sec.content, per, width, maxContentWidth)...)
	}

	lines = append(lines, bc.Render("╰"+strings.Repeat("─", width-2)+"╯"))
	lines = append(lines, f.Styles.Help.Render(f.Help))
	return strings.Join(lines, "\n")
}

// indicator returns the listening/speaking suffix for the status line.
func indicator(v View) string {
	switch {
	case v.Speaking:
		return " · speaking"
	case v.Listening:
		return " · listening"
	}
	return ""
}

// meterLine renders the level window as one bar line.
func meterLine(levels []float32) string {
	if len(levels) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, lv := range levels {
		idx := int(lv * float32(len(meterRunes)))
		if idx >= len(meterRunes) {
			idx = len(meterRunes) - 1
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(meterRunes[idx])
	}
	return sb.String()
}

// orderLines renders visible orders, one line per order line plus a
// total line per order.
func (f Frame) orderLines(orders []*pos.Order) []string {
	if len(orders) == 0 {
		return []string{f.Styles.Help.Render("no recent orders")}
	}
	var out []string
	for _, o := range orders {
		for _, it := range o.Items {
			line := fmt.Sprintf("%s× %s", formatQty(it.Quantity), it.Name)
			if it.Notes != "" {
				line += " (" + it.Notes + ")"
			}
			out = append(out, line)
		}
		out = append(out, f.Styles.Accent.Render(fmt.Sprintf("  = %d", o.Total)))
	}
	return out
}

// insightLines renders the insight list newest-last.
func (f Frame) insightLines(insights []*pos.Insight) []string {
	if len(insights) == 0 {
		return []string{f.Styles.Help.Render("no insights yet")}
	}
	out := make([]string, 0, len(insights))
	for _, in := range insights {
		tag := fmt.Sprintf("[%s/%s]", in.Category, in.Severity)
		out = append(out, f.Styles.Label.Render(tag)+" "+in.Content)
	}
	return out
}

// counterLines renders the prompt, sentiment, and running total.
func (f Frame) counterLines(v View) []string {
	var out []string
	if v.Prompt != "" {
		out = append(out, f.Styles.Accent.Render("Say: ")+v.Prompt)
	}
	if v.Sentiment != "" {
		out = append(out, "Customer mood: "+v.Sentiment)
	}
	out = append(out, fmt.Sprintf("Running total: %d", v.RunningTotal))
	return out
}

// renderSection renders a labeled section, showing the last lines when
// content overflows.
func (f Frame) renderSection(bc lipgloss.Style, label string, content []string, height, width, maxContentWidth int) []string {
	var lines []string

	labelText := f.Styles.Label.Render(label)
	padding := max(0, width-3-lipgloss.Width(labelText))
	lines = append(lines, bc.Render("├")+bc.Render("─")+labelText+
		bc.Render(strings.Repeat("─", padding))+bc.Render("┤"))

	startIdx := 0
	if len(content) > height {
		startIdx = len(content) - height
	}
	for i := 0; i < height; i++ {
		text := ""
		if idx := startIdx + i; idx < len(content) {
			text = content[idx]
		}
		if maxContentWidth > 1 && lipgloss.Width(text) > maxContentWidth {
			text = truncate(text, maxContentWidth-1) + "…"
		}
		lines = append(lines, bc.Render("│")+" "+text+
			strings.Repeat(" ", max(0, maxContentWidth-lipgloss.Width(text)))+" "+bc.Render("│"))
	}
	return lines
}

// truncate cuts a string to the given display width, handling
// multi-byte characters.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}

// formatQty renders a quantity without a trailing ".0".
func formatQty(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return strings.TrimRight(fmt.Sprintf("%.2f", q), "0")
}
