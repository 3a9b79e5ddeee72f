package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/inovacc/autosync/internal/encoding"
)

const (
	// AppName is the application name used for directories and identification
	AppName = "autosync"

	// AppExeName is the executable name (without extension)
	AppExeName = "autosync"

	// AppExeNameWindows is the executable name on Windows
	AppExeNameWindows = "autosync.exe"
)

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the autosync configuration directory path.
// Linux: ~/.config/autosync (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\autosync (via os.UserCacheDir)
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, errDir
}

func lazyLoad() {
	var (
		baseDir string
		err     error
	)

	switch runtime.GOOS {
	case "windows":
		// Windows: use AppData\Local (via UserCacheDir)
		baseDir, err = os.UserCacheDir()
	default:
		// Linux/others: use ~/.config (via UserConfigDir)
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)
	}

	appDir = filepath.Join(baseDir, AppName)
}

// Paths groups the well-known files the engine works with. Components
// receive these explicitly; nothing reads them from package globals.
type Paths struct {
	ConfigFile  string
	LockFile    string
	StatusFile  string
	LogFile     string
	HistoryFile string
}

// DefaultPaths resolves the standard file layout under the application
// directory, creating the directory if needed.
func DefaultPaths() (Paths, error) {
	dir, err := GetApplicationDirectory()
	if err != nil {
		return Paths{}, err
	}

	if err := encoding.EnsureDir(dir); err != nil {
		return Paths{}, err
	}

	return Paths{
		ConfigFile:  filepath.Join(dir, "config.json"),
		LockFile:    filepath.Join(dir, "lock.pid"),
		StatusFile:  filepath.Join(dir, "last-sync.json"),
		LogFile:     filepath.Join(dir, "autosync.log"),
		HistoryFile: filepath.Join(dir, "history.bolt"),
	}, nil
}
