package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/counterpal/counterpal/cmd/counterpal/internal/config"
	"github.com/counterpal/counterpal/pkg/history"
	"github.com/counterpal/counterpal/pkg/kv"
)

var historyDate string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and export archived sessions",
	Long: `Work with the session history archive.

Sessions are archived on exit when archive_dir is configured.

Examples:
  counterpal history list
  counterpal history list --date 2026-08-24
  counterpal history show 2026-08-24 20260824T090000`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, closeFn, err := openArchive()
		if err != nil {
			return err
		}
		defer closeFn()

		recs, err := archive.List(cmd.Context(), historyDate)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No archived sessions.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tSESSION\tORDERS\tINSIGHTS")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.Date(), r.ID, len(r.Orders), len(r.Insights))
		}
		w.Flush()
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <date> <session>",
	Short: "Print an archived session as CSV",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, closeFn, err := openArchive()
		if err != nil {
			return err
		}
		defer closeFn()
		return archive.ExportCSV(cmd.Context(), args[0], args[1], os.Stdout)
	},
}

// openArchive opens the configured archive database.
func openArchive() (*history.Archive, func(), error) {
	contextDir, svc, err := loadService()
	if err != nil {
		return nil, nil, err
	}
	if svc.ArchiveDir == "" {
		return nil, nil, fmt.Errorf("no archive configured: 'counterpal config set archive_dir <dir>'")
	}
	db, err := kv.NewBadger(kv.BadgerOptions{Dir: config.ResolvePath(contextDir, svc.ArchiveDir)})
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	return history.New(db), func() { db.Close() }, nil
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDate, "date", "", "filter by date (YYYY-MM-DD)")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
