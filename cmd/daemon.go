package cmd

import (
	"errors"
	"log/slog"
	"time"

	"github.com/inovacc/autosync/internal/core"
	"github.com/inovacc/autosync/internal/lockfile"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run sync passes on a recurring schedule until interrupted",
	Long: `Run the engine periodically, one silent pass per tick. The tick period
comes from daemonIntervalMinutes in the global configuration. Intended to
be driven by the system service (see 'autosync service'), but works in the
foreground too.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	paths, err := resolvePaths(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(paths)
	if err != nil {
		return err
	}

	interval := time.Duration(cfg.Global.DaemonIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	logger, writer, err := setupLogger(paths, cfg.Global, true)
	if err != nil {
		return err
	}
	defer func() { _ = writer.Close() }()

	logger.Info("daemon started", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First pass immediately, then on every tick.
	for {
		if _, err := runEngine(cmd, true, core.Options{}); err != nil {
			if !errors.Is(err, lockfile.ErrLockHeld) {
				logger.Error("sync pass failed", slog.String("error", err.Error()))
			}
		}

		select {
		case <-cmd.Context().Done():
			logger.Info("daemon stopping")
			return nil
		case <-ticker.C:
		}
	}
}
