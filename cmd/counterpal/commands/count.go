package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/counterpal/counterpal/cmd/counterpal/internal/config"
	"github.com/counterpal/counterpal/pkg/capture"
	"github.com/counterpal/counterpal/pkg/kv"
	"github.com/counterpal/counterpal/pkg/report"
	"github.com/counterpal/counterpal/pkg/vision"
)

var (
	countImageFile string
	countNotes     string
	countNoLog     bool
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count items on a tray photo",
	Long: `Count items on a tray photo with the vision model.

The count is printed and, when an archive is configured, recorded in
the count log so 'counterpal export --counts' can produce the daily
count CSV.

Examples:
  counterpal count --image tray.jpg
  counterpal count --image tray.jpg --notes "only the samosas"`,
	RunE: runCount,
}

func init() {
	countCmd.Flags().StringVar(&countImageFile, "image", "", "tray photo (JPEG, PNG, or GIF), required")
	countCmd.Flags().StringVar(&countNotes, "notes", "", "steer the count, e.g. \"only the samosas\"")
	countCmd.Flags().BoolVar(&countNoLog, "no-log", false, "do not record the count in the archive")
	countCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	contextDir, svc, err := loadService()
	if err != nil {
		return err
	}
	apiKey, err := requireAPIKey(svc)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	camera := capture.NewFileCamera(countImageFile)
	photo, err := camera.Still(ctx)
	if err != nil {
		return err
	}

	counter, err := vision.NewCounterWithKey(ctx, apiKey, svc.VisionModel)
	if err != nil {
		return err
	}
	n, err := counter.Count(ctx, photo, countNotes)
	if err != nil {
		return err
	}
	fmt.Printf("Count: %d\n", n)

	if countNoLog || svc.ArchiveDir == "" {
		return nil
	}
	return logCount(ctx, contextDir, svc, report.CountEntry{
		Time:  time.Now(),
		Count: n,
		Notes: countNotes,
	})
}

// logCount appends one entry to the archived count log under
// count/<date>/<time>.
func logCount(ctx context.Context, contextDir string, svc *config.Service, entry report.CountEntry) error {
	dir := config.ResolvePath(contextDir, svc.ArchiveDir)
	db, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	data, err := msgpack.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("encode count entry: %w", err)
	}
	key := kv.Key{
		"count",
		entry.Time.UTC().Format("2006-01-02"),
		entry.Time.UTC().Format("150405.000"),
	}
	return db.Set(ctx, key, data)
}
