package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/inovacc/autosync/internal/encoding"
	"github.com/spf13/cobra"
)

var logsLines int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the tail of the sync log",
	RunE:  runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 50, "Number of trailing lines to show")
}

func runLogs(cmd *cobra.Command, _ []string) error {
	paths, err := resolvePaths(cmd)
	if err != nil {
		return err
	}

	if !encoding.FileExists(paths.LogFile) {
		fmt.Fprintln(os.Stdout, "no log file yet")
		return nil
	}

	data, err := os.ReadFile(paths.LogFile)
	if err != nil {
		return err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if logsLines > 0 && len(lines) > logsLines {
		lines = lines[len(lines)-logsLines:]
	}

	for _, line := range lines {
		fmt.Fprintln(os.Stdout, line)
	}

	return nil
}
