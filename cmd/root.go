package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autosync",
	Short: "Keep local git repositories synchronized with their remotes",
	Long: `Autosync keeps a set of independently-owned local git repositories
synchronized with their remotes on a recurring schedule.

Repositories are registered with 'set', then synced by 'sync' runs which an
OS scheduler (see 'service') triggers periodically. Each run fetches,
reconciles divergence with the declared strategy, and pushes safely.`,
	SilenceUsage: true,
}

// Execute runs the root command with signal-aware cancellation so an
// interrupt mid-run still releases the lock.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (state files live alongside it)")
}
