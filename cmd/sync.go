package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/inovacc/autosync/internal/cli"
	"github.com/inovacc/autosync/internal/core"
	"github.com/inovacc/autosync/internal/history"
	"github.com/inovacc/autosync/internal/lockfile"
	"github.com/inovacc/autosync/internal/model"
	"github.com/inovacc/autosync/internal/status"
	"github.com/spf13/cobra"
)

var (
	syncDryRun bool
	syncForce  bool
	syncSilent bool
	syncRepo   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass over the configured repositories",
	Long: `Run the sync engine once: acquire the run lock, evaluate each enabled
repository against quiet hours and its sync interval, and fetch, reconcile
and push the eligible ones.

Examples:
  autosync sync
  autosync sync --force
  autosync sync --dry-run
  autosync sync --repo /home/user/notes`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report what would happen without touching anything")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Bypass quiet hours and interval gating")
	syncCmd.Flags().BoolVar(&syncSilent, "silent", false, "Log to file only; exit code carries the result")
	syncCmd.Flags().StringVar(&syncRepo, "repo", "", "Sync only the entry with this path")
}

func runSync(cmd *cobra.Command, _ []string) error {
	report, err := runEngine(cmd, syncSilent, core.Options{
		DryRun:     syncDryRun,
		Force:      syncForce,
		RepoFilter: syncRepo,
	})
	if err != nil {
		if errors.Is(err, lockfile.ErrLockHeld) {
			// Expected guard, not a failure.
			if !syncSilent {
				fmt.Fprintln(os.Stdout, err.Error())
			}
			return nil
		}

		return err
	}

	if !syncSilent {
		fmt.Fprintln(os.Stdout, cli.RenderReport(*report))
	}

	if report.FailedCount() > 0 {
		return fmt.Errorf("%d repository(ies) failed to sync", report.FailedCount())
	}

	return nil
}

// runEngine assembles the engine collaborators from the resolved paths and
// executes one pass. Shared by the sync command and the daemon loop.
func runEngine(cmd *cobra.Command, silent bool, opts core.Options) (*model.RunReport, error) {
	paths, err := resolvePaths(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(paths)
	if err != nil {
		return nil, err
	}

	logger, writer, err := setupLogger(paths, cfg.Global, silent)
	if err != nil {
		return nil, err
	}
	defer func() { _ = writer.Close() }()

	if err := writer.SweepRotated(cfg.Global.LogRetentionDays); err != nil {
		logger.Warn("log sweep failed", slog.String("error", err.Error()))
	}

	var runHistory core.RunHistory

	store, err := history.Open(paths.HistoryFile)
	if err != nil {
		logger.Warn("history unavailable", slog.String("error", err.Error()))
	} else {
		defer func() { _ = store.Close() }()
		runHistory = store
	}

	lock := lockfile.NewManager(paths.LockFile, logger)
	recorder := status.NewRecorder(paths.StatusFile)

	orch := core.NewOrchestrator(paths.ConfigFile, lock, recorder, runHistory, logger)

	if !silent {
		orch.OnOutcome = func(o model.SyncOutcome) {
			fmt.Fprintln(os.Stdout, cli.RenderOutcome(o))
		}
	}

	return orch.Run(cmd.Context(), opts)
}
