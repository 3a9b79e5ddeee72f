package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/inovacc/autosync/internal/application"
	"github.com/inovacc/autosync/internal/encoding"
	"github.com/inovacc/autosync/internal/logging"
	"github.com/inovacc/autosync/internal/model"
	"github.com/inovacc/autosync/internal/status"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// resolvePaths returns the engine file layout, honoring --config by
// placing all state files next to the chosen config file.
func resolvePaths(cmd *cobra.Command) (application.Paths, error) {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return application.DefaultPaths()
	}

	abs, err := filepath.Abs(configFile)
	if err != nil {
		return application.Paths{}, err
	}

	if err := encoding.EnsureParentDir(abs); err != nil {
		return application.Paths{}, err
	}

	dir := filepath.Dir(abs)

	return application.Paths{
		ConfigFile:  abs,
		LockFile:    filepath.Join(dir, "lock.pid"),
		StatusFile:  filepath.Join(dir, "last-sync.json"),
		LogFile:     filepath.Join(dir, "autosync.log"),
		HistoryFile: filepath.Join(dir, "history.bolt"),
	}, nil
}

// loadConfig reads the config file; a missing file yields defaults.
func loadConfig(paths application.Paths) (*model.Config, error) {
	cfg, err := encoding.LoadJSON[model.Config](paths.ConfigFile)
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		def := model.DefaultConfig()
		cfg = &def
	}

	return cfg, nil
}

// saveConfig writes the config file atomically.
func saveConfig(paths application.Paths, cfg *model.Config) error {
	return encoding.SaveJSONAtomic(paths.ConfigFile, cfg)
}

// setupLogger builds the engine logger: a text handler appending to the
// size-rotated log file, plus a tinted stdout handler unless silent. The
// returned writer must be closed by the caller.
func setupLogger(paths application.Paths, global model.GlobalConfig, silent bool) (*slog.Logger, *status.RotatingWriter, error) {
	writer, err := status.NewRotatingWriter(paths.LogFile, global.MaxLogSizeBytes)
	if err != nil {
		return nil, nil, err
	}

	fileHandler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: slog.LevelDebug})

	if silent {
		return slog.New(fileHandler), writer, nil
	}

	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:   slog.LevelInfo,
		NoColor: !isatty.IsTerminal(os.Stdout.Fd()),
	})

	return slog.New(logging.NewMultiHandler(stdoutHandler, fileHandler)), writer, nil
}
