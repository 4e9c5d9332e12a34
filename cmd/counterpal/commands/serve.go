package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/counterpal/counterpal/cmd/counterpal/internal/config"
	"github.com/counterpal/counterpal/pkg/capture"
	"github.com/counterpal/counterpal/pkg/dashboard"
	"github.com/counterpal/counterpal/pkg/history"
	"github.com/counterpal/counterpal/pkg/kv"
	"github.com/counterpal/counterpal/pkg/live"
	"github.com/counterpal/counterpal/pkg/menu"
	"github.com/counterpal/counterpal/pkg/pos"
	"github.com/counterpal/counterpal/pkg/report"
)

// renderInterval is the dashboard refresh tick. Visibility windows are
// recomputed on every tick.
const renderInterval = 500 * time.Millisecond

var (
	serveMicFile     string
	serveSpeakerFile string
	serveOutDir      string
	serveMenuFile    string
	serveNoPace      bool
	serveWidth       int
	serveHeight      int
	servePlain       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the live counter assistant with the dashboard",
	Long: `Run the live assistant: stream the microphone to the model,
show recognized orders, insights, and sentiment on the dashboard, and
write the session report on exit.

The microphone is a 16-bit mono WAV file replayed in real time.

Examples:
  counterpal serve --mic counter.wav --out ./reports
  counterpal serve --mic counter.wav --speaker replies.wav --menu menu.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveMicFile, "mic", "", "microphone WAV file (16-bit mono), required")
	serveCmd.Flags().StringVar(&serveSpeakerFile, "speaker", "", "write model speech to this WAV file")
	serveCmd.Flags().StringVar(&serveOutDir, "out", ".", "directory for the session report CSV")
	serveCmd.Flags().StringVar(&serveMenuFile, "menu", "", "menu catalog YAML (default: context menu, else built-in)")
	serveCmd.Flags().BoolVar(&serveNoPace, "no-pace", false, "replay the mic file without real-time pacing")
	serveCmd.Flags().IntVar(&serveWidth, "width", 100, "dashboard width")
	serveCmd.Flags().IntVar(&serveHeight, "height", 34, "dashboard height")
	serveCmd.Flags().BoolVar(&servePlain, "plain", false, "log instead of rendering the dashboard")
	serveCmd.MarkFlagRequired("mic")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	contextDir, svc, err := loadService()
	if err != nil {
		return err
	}
	apiKey, err := requireAPIKey(svc)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(contextDir, svc)
	if err != nil {
		return err
	}

	store := pos.NewStore(catalog, nil)
	transients := live.NewTransients(nil)
	meter := live.NewMeter()

	var playerCfg live.PlayerConfig
	if serveSpeakerFile != "" {
		speaker, err := capture.NewWavSpeaker(serveSpeakerFile, live.OutputFormat, live.OutputFormat)
		if err != nil {
			return err
		}
		defer speaker.Close()
		playerCfg.Sink = speaker
	}
	player := live.NewPlayer(playerCfg)

	dispatcher := live.NewDispatcher(live.DispatcherConfig{
		Store:      store,
		Transients: transients,
	})

	client := live.NewClient(apiKey)
	sessionCfg := &live.SessionConfig{
		Model:             svc.LiveModel,
		SystemInstruction: systemInstruction(catalog),
		Tools:             dispatcher.Declarations(),
	}

	mic := capture.NewFileMic(serveMicFile)
	mic.Pace = !serveNoPace

	mgr := live.NewManager(live.ManagerConfig{
		Dial: func(ctx context.Context) (live.SessionConn, error) {
			s, err := client.Connect(ctx, sessionCfg)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Mic:        mic,
		Dispatcher: dispatcher,
		Player:     player,
		Meter:      meter,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	if err := mgr.Start(ctx); err != nil {
		// A missing or busy device is fatal; the operator fixes it and
		// reruns.
		return err
	}

	runDashboard(ctx, mgr, store, transients, meter, player)
	mgr.Stop()

	if err := writeSessionReport(store); err != nil {
		return err
	}
	if svc.ArchiveDir != "" {
		if err := archiveSession(contextDir, svc, store, started); err != nil {
			return err
		}
	}
	return nil
}

// loadCatalog resolves the menu catalog: the --menu flag, then the
// context config, then the built-in menu.
func loadCatalog(contextDir string, svc *config.Service) (*menu.Catalog, error) {
	path := serveMenuFile
	if path == "" {
		path = config.ResolvePath(contextDir, svc.Menu)
	}
	if path == "" {
		return menu.Default(), nil
	}
	return menu.LoadFile(path)
}

// runDashboard renders until the context is cancelled or the mic
// stream is exhausted and playback has drained.
func runDashboard(ctx context.Context, mgr *live.Manager, store *pos.Store, transients *live.Transients, meter *live.Meter, player *live.Player) {
	logTail := dashboard.NewLogTail(40)
	if !servePlain {
		// Route logs into the dashboard's log section while rendering.
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(logTail, &slog.HandlerOptions{Level: level})))
		defer initLogging()
	}

	frame := dashboard.Frame{
		Styles: dashboard.NewStyles(dashboard.DefaultTheme),
		Title:  "CounterPal",
		Help:   "Ctrl+C to quit",
	}

	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now()
		v := dashboard.View{
			Status:       string(mgr.State()),
			Listening:    meter.Active(),
			Speaking:     player.Speaking(),
			Levels:       meter.Levels(),
			Orders:       store.Visible(now),
			Insights:     lastInsights(store, 5),
			Prompt:       transients.Prompt(),
			Sentiment:    transients.Sentiment(),
			RunningTotal: store.RecentTotal(now, live.DefaultLookback),
			Log:          logTail.Lines(),
		}
		if servePlain {
			orders, insights := store.Counts()
			slog.Info("status", "state", v.Status, "orders", orders, "insights", insights, "total", v.RunningTotal)
			continue
		}
		// Home the cursor and clear before each frame.
		fmt.Print("\033[H\033[2J")
		fmt.Println(frame.Render(v, serveWidth, serveHeight))
	}
}

// lastInsights returns up to n most recent insights, oldest first.
func lastInsights(store *pos.Store, n int) []*pos.Insight {
	all := store.Insights()
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

// writeSessionReport writes the session CSV into the output directory.
func writeSessionReport(store *pos.Store) error {
	orders, insights := store.Counts()
	if orders == 0 && insights == 0 {
		slog.Info("empty session, no report written")
		return nil
	}

	if err := os.MkdirAll(serveOutDir, 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(serveOutDir, report.Filename("counterpal", time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := report.WriteSession(f, store.Orders(), store.Insights()); err != nil {
		return err
	}
	fmt.Printf("Session report written to %s\n", path)
	return nil
}

// archiveSession stores the completed session in the history archive.
func archiveSession(contextDir string, svc *config.Service, store *pos.Store, started time.Time) error {
	dir := config.ResolvePath(contextDir, svc.ArchiveDir)
	db, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	rec := history.Snapshot(store, started)
	if err := history.New(db).Save(context.Background(), rec); err != nil {
		return err
	}
	fmt.Printf("Session archived as %s/%s\n", rec.Date(), rec.ID)
	return nil
}

// systemInstruction builds the fixed system prompt with the menu
// context appended.
func systemInstruction(catalog *menu.Catalog) string {
	var sb strings.Builder
	sb.WriteString(`You are a point-of-sale assistant at a small food counter.
Listen to conversations between the cashier and customers. When a
customer orders, call log_order with the items. When you notice
something about inventory, customers, or the shop, call save_insight.
When the customer's mood is clear, call log_sentiment. When the
cashier could use a short line to read out, call suggest_cashier_prompt.
Use talkback before speaking a reply aloud. Item names may be
colloquial or in a local language; use the menu below.

Menu (name, price, category):
`)
	for _, it := range catalog.Items() {
		fmt.Fprintf(&sb, "- %s, %d, %s", it.Name, it.Price, it.Category)
		if len(it.Aliases) > 0 {
			fmt.Fprintf(&sb, " (also called: %s)", strings.Join(it.Aliases, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
