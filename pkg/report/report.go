// Package report serializes session orders, insights, and tray count
// logs to CSV.
//
// Every field goes through Sanitize, including timestamps and computed
// totals: any field can transitively contain attacker-influenced text
// once item names and notes originate from transcribed speech.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/counterpal/counterpal/pkg/pos"
)

// timeLayout is the row timestamp format.
const timeLayout = "2006-01-02 15:04:05"

// Sanitize returns the field quoted for CSV output. Values beginning
// with '=', '+', '-', or '@' are prefixed with a single quote so
// spreadsheet software does not evaluate them as formulas; embedded
// quote characters are doubled; the field is always wrapped in quotes.
func Sanitize(field string) string {
	if len(field) > 0 {
		switch field[0] {
		case '=', '+', '-', '@':
			field = "'" + field
		}
	}
	field = strings.ReplaceAll(field, `"`, `""`)
	return `"` + field + `"`
}

// row writes one CSV record, sanitizing every field.
func row(w io.Writer, fields ...string) error {
	for i, f := range fields {
		fields[i] = Sanitize(f)
	}
	_, err := io.WriteString(w, strings.Join(fields, ",")+"\n")
	return err
}

// sessionRow is one exportable event, order line or insight.
type sessionRow struct {
	t      time.Time
	fields []string
}

// WriteSession writes the session report: a header plus one row per
// order line and per insight, in chronological order.
//
// Columns: Timestamp, Type, Qty, Item/Content, Notes/Category, Total.
func WriteSession(w io.Writer, orders []*pos.Order, insights []*pos.Insight) error {
	if err := row(w, "Timestamp", "Type", "Qty", "Item/Content", "Notes/Category", "Total"); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}

	var rows []sessionRow
	for _, o := range orders {
		for _, it := range o.Items {
			rows = append(rows, sessionRow{
				t: o.Time.Time(),
				fields: []string{
					o.Time.Time().Format(timeLayout),
					"Order",
					formatQty(it.Quantity),
					it.Name,
					it.Notes,
					strconv.Itoa(int(float64(it.UnitPrice) * it.Quantity)),
				},
			})
		}
	}
	for _, in := range insights {
		rows = append(rows, sessionRow{
			t: in.Time.Time(),
			fields: []string{
				in.Time.Time().Format(timeLayout),
				"Insight",
				"",
				in.Content,
				string(in.Category),
				"",
			},
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })

	for _, r := range rows {
		if err := row(w, r.fields...); err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}
	return nil
}

// CountEntry is one tray count log record.
type CountEntry struct {
	Time  time.Time `json:"time" msgpack:"time"`
	Count int       `json:"count" msgpack:"count"`
	Notes string    `json:"notes,omitempty" msgpack:"notes"`
}

// WriteCountLog writes the simple count log.
//
// Columns: Date, Time, Count, Notes.
func WriteCountLog(w io.Writer, entries []CountEntry) error {
	if err := row(w, "Date", "Time", "Count", "Notes"); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, e := range entries {
		err := row(w,
			e.Time.Format("2006-01-02"),
			e.Time.Format("15:04:05"),
			strconv.Itoa(e.Count),
			e.Notes,
		)
		if err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}
	return nil
}

// Filename returns the export filename for the given product and day,
// e.g. "counterpal_2026-08-24.csv".
func Filename(product string, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", product, t.Format("2006-01-02"))
}

// formatQty renders a quantity without a trailing ".0" for whole numbers.
func formatQty(q float64) string {
	if q == float64(int64(q)) {
		return strconv.FormatInt(int64(q), 10)
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}
