package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/inovacc/autosync/internal/cli"
	"github.com/inovacc/autosync/internal/history"
	"github.com/inovacc/autosync/internal/status"
	"github.com/spf13/cobra"
)

var statusHistory int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last sync outcome per repository",
	Long: `Show the latest recorded outcome for each repository, or recent whole
runs with --history.

Examples:
  autosync status
  autosync status --history 5`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&statusHistory, "history", 0, "Show the last N runs instead of the per-repository view")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	paths, err := resolvePaths(cmd)
	if err != nil {
		return err
	}

	if statusHistory > 0 {
		store, err := history.Open(paths.HistoryFile)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		reports, err := store.Recent(statusHistory)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, cli.RenderHistory(reports))
		return nil
	}

	statuses, err := status.NewRecorder(paths.StatusFile).Load()
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		fmt.Fprintln(os.Stdout, "no sync recorded yet")
		return nil
	}

	keys := make([]string, 0, len(statuses))
	for k := range statuses {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprint(os.Stdout, cli.RenderStatusEntry(statuses[k]))
	}

	return nil
}
