package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <path>",
	Short: "Enable syncing for a registered repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <path>",
	Short: "Disable syncing for a registered repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func setEnabled(cmd *cobra.Command, arg string, enabled bool) error {
	path, err := filepath.Abs(arg)
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

	cfg.Repos[i].Enabled = enabled

	if err := saveConfig(paths, cfg); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}

	fmt.Fprintf(os.Stdout, "%s %s\n", state, path)
	return nil
}
