package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/counterpal/counterpal/pkg/history"
	"github.com/counterpal/counterpal/pkg/kv"
	"github.com/counterpal/counterpal/pkg/report"
	"github.com/counterpal/counterpal/pkg/storage"
)

var (
	exportDest   string
	exportDate   string
	exportCounts bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived reports to a directory or S3",
	Long: `Export a day's archived sessions, or the count log, as CSV.

The destination is a local directory or an s3://bucket/prefix URL.
For S3, credentials come from the standard AWS environment variables
(AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION).

Examples:
  counterpal export --date 2026-08-24 --dest ./reports
  counterpal export --date 2026-08-24 --dest s3://shop-reports/daily
  counterpal export --date 2026-08-24 --counts --dest ./reports`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDest, "dest", ".", "destination directory or s3://bucket/prefix")
	exportCmd.Flags().StringVar(&exportDate, "date", "", "day to export (YYYY-MM-DD, default today)")
	exportCmd.Flags().BoolVar(&exportCounts, "counts", false, "export the tray count log instead of sessions")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	date := exportDate
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	dest, err := openDest(exportDest)
	if err != nil {
		return err
	}

	archive, closeFn, err := openArchive()
	if err != nil {
		return err
	}
	defer closeFn()

	if exportCounts {
		return exportCountLog(cmd.Context(), archive, date, dest)
	}
	return exportSessions(cmd.Context(), archive, date, dest)
}

// openDest builds the destination store from a directory path or an
// s3:// URL.
func openDest(dest string) (storage.FileStore, error) {
	bucket, prefix, ok := storage.ParseS3Dest(dest)
	if !ok {
		return storage.NewLocal(dest)
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		return nil, fmt.Errorf("AWS_REGION is required for s3:// destinations")
	}
	client := s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(envCredentials{}),
	})
	return storage.NewS3(client, bucket, prefix), nil
}

// envCredentials reads static credentials from the environment.
type envCredentials struct{}

func (envCredentials) Retrieve(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required for s3:// destinations")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}

// exportSessions writes one CSV per archived session of the day.
func exportSessions(ctx context.Context, archive *history.Archive, date string, dest storage.FileStore) error {
	recs, err := archive.List(ctx, date)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Printf("No sessions archived on %s.\n", date)
		return nil
	}

	for _, rec := range recs {
		name := fmt.Sprintf("counterpal_%s_%s.csv", date, rec.ID)
		w, err := dest.Write(ctx, name)
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		err = report.WriteSession(w, rec.Orders, rec.Insights)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
		fmt.Printf("Exported %s\n", name)
	}
	return nil
}

// exportCountLog writes the day's tray count log as one CSV.
func exportCountLog(ctx context.Context, archive *history.Archive, date string, dest storage.FileStore) error {
	entries, err := loadCountEntries(ctx, archive.Store(), date)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No counts logged on %s.\n", date)
		return nil
	}

	name := fmt.Sprintf("counterpal_counts_%s.csv", date)
	w, err := dest.Write(ctx, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	err = report.WriteCountLog(w, entries)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	fmt.Printf("Exported %s\n", name)
	return nil
}

// loadCountEntries reads the day's count entries from the archive.
func loadCountEntries(ctx context.Context, store kv.Store, date string) ([]report.CountEntry, error) {
	var entries []report.CountEntry
	for e, err := range store.List(ctx, kv.Key{"count", date}) {
		if err != nil {
			return nil, fmt.Errorf("list counts: %w", err)
		}
		var entry report.CountEntry
		if derr := msgpack.Unmarshal(e.Value, &entry); derr != nil {
			return nil, fmt.Errorf("decode count %s: %w", e.Key, derr)
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Time.Before(entries[j].Time) })
	return entries, nil
}
