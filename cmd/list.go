package cmd

import (
	"fmt"
	"os"

	"github.com/inovacc/autosync/internal/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered repositories",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	paths, err := resolvePaths(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(paths)
	if err != nil {
		return err
	}

	if len(cfg.Repos) == 0 {
		fmt.Fprintln(os.Stdout, "no repositories registered; use 'autosync set <path>'")
		return nil
	}

	for _, entry := range cfg.Repos {
		fmt.Fprint(os.Stdout, cli.RenderEntry(entry))
	}

	return nil
}
