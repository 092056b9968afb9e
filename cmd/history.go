package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/uia-provider/internal/journal"
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent calls from the call journal",
	Long: `Show the most recent forwarded calls recorded by "serve" in the journal
database. Reads the database directly; the server does not need to be
running.

Examples:
  uia-provider history --limit 20
  uia-provider history --method performClick
  uia-provider history --prune 168h`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("journal", "", "Journal database path (overrides journal.path)")
	historyCmd.Flags().Int("limit", 50, "Max entries to show")
	historyCmd.Flags().String("method", "", "Only show calls to this method")
	historyCmd.Flags().Duration("prune", 0, "Delete entries older than this before listing")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("journal")
	limit, _ := cmd.Flags().GetInt("limit")
	method, _ := cmd.Flags().GetString("method")
	prune, _ := cmd.Flags().GetDuration("prune")

	if path == "" {
		path = cfg.Journal.Path
	}
	if path == "" {
		return fmt.Errorf("no journal configured: set journal.path or pass --journal")
	}

	store, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if prune > 0 {
		if _, err := store.Prune(time.Now().Add(-prune)); err != nil {
			return err
		}
	}
	calls, err := store.Recent(limit, method)
	if err != nil {
		return err
	}
	if calls == nil {
		calls = []journal.Entry{}
	}
	return output.Print(output.HistoryResult{Journal: store.Path(), Calls: calls})
}
