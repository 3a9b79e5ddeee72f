package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/inovacc/autosync/internal/encoding"
	"github.com/inovacc/autosync/internal/git"
	"github.com/inovacc/autosync/internal/model"
	"github.com/spf13/cobra"
)

var (
	setInterval int
	setStrategy string
	setBranch   string
	setRemote   string
)

var setCmd = &cobra.Command{
	Use:   "set <path>",
	Short: "Register a repository for automatic syncing, or update it",
	Long: `Register a local git working tree for automatic syncing. The path must
contain a .git directory and have the target remote configured. Running
set again for the same path updates the entry in place.

Examples:
  autosync set ~/notes
  autosync set ~/work/project --interval 30 --strategy theirs
  autosync set ~/dotfiles --branch master --remote backup`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().IntVar(&setInterval, "interval", model.DefaultIntervalMinutes, "Minimum minutes between successful syncs")
	setCmd.Flags().StringVar(&setStrategy, "strategy", string(model.StrategyOurs), "Conflict strategy on divergence: ours or theirs")
	setCmd.Flags().StringVar(&setBranch, "branch", model.DefaultBranch, "Branch to sync")
	setCmd.Flags().StringVar(&setRemote, "remote", model.DefaultRemote, "Remote to sync against")
}

func runSet(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	if !encoding.DirExists(filepath.Join(path, ".git")) {
		return fmt.Errorf("not a git repository: %s", path)
	}

	repoCfg, err := git.LoadRepoConfig(path)
	if err != nil {
		return err
	}

	if !repoCfg.HasRemote(setRemote) {
		return fmt.Errorf("remote %q is not configured in %s", setRemote, path)
	}

	entry := model.RepositoryEntry{
		Path:            path,
		IntervalMinutes: setInterval,
		Strategy:        model.ParseStrategy(setStrategy),
		Branch:          setBranch,
		Remote:          setRemote,
		Enabled:         true,
		AddedAt:         time.Now(),
	}

	if err := entry.Validate(); err != nil {
		return err
	}

	paths, err := resolvePaths(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(paths)
	if err != nil {
		return err
	}

	verb := "registered"
	if i := cfg.FindRepo(path); i >= 0 {
		// Preserve engine-owned fields and creation time on update.
		entry.AddedAt = cfg.Repos[i].AddedAt
		entry.LastSyncAt = cfg.Repos[i].LastSyncAt
		entry.LastSyncStatus = cfg.Repos[i].LastSyncStatus
		cfg.Repos[i] = entry
		verb = "updated"
	} else {
		cfg.Repos = append(cfg.Repos, entry)
	}

	if err := saveConfig(paths, cfg); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s %s (%s/%s every %dm, strategy %s)\n",
		verb, path, entry.Remote, entry.Branch, entry.IntervalMinutes, entry.Strategy)
	return nil
}
