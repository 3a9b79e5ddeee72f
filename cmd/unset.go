package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var unsetCmd = &cobra.Command{
	Use:   "unset <path>",
	Short: "Remove a repository from automatic syncing",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnset,
}

func init() {
	rootCmd.AddCommand(unsetCmd)
}

func runUnset(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
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

	i := cfg.FindRepo(path)
	if i < 0 {
		return fmt.Errorf("repository not registered: %s", path)
	}

	cfg.Repos = append(cfg.Repos[:i], cfg.Repos[i+1:]...)

	if err := saveConfig(paths, cfg); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "removed %s\n", path)
	return nil
}
