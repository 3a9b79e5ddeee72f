package model

import (
	"fmt"
	"path/filepath"
	"time"
)

// ConfigVersion is the schema version written to new config files.
const ConfigVersion = 1

// Defaults applied to new repository entries and fresh global config.
const (
	DefaultBranch          = "main"
	DefaultRemote          = "origin"
	DefaultIntervalMinutes = 60
)

// GlobalConfig holds engine-wide settings shared by every repository.
type GlobalConfig struct {
	// QuietHoursStart and QuietHoursEnd define the hour-of-day window
	// [start, end) during which non-forced syncing is suppressed. The
	// window wraps past midnight when start > end; start == end means
	// no quiet hours.
	QuietHoursStart int `json:"quietHoursStart"`
	QuietHoursEnd   int `json:"quietHoursEnd"`

	// SkipHours lists additional hours of the day that are suppressed
	// independently of the quiet-hours window.
	SkipHours []int `json:"skipHours,omitempty"`

	// LogRetentionDays controls how long rotated log files are kept.
	LogRetentionDays int `json:"logRetentionDays"`

	// MaxLogSizeBytes rotates the log file once it would exceed this size.
	MaxLogSizeBytes int64 `json:"maxLogSizeBytes"`

	// SyncTimeoutSeconds bounds the whole fetch/reconcile/push sequence
	// for a single repository.
	SyncTimeoutSeconds int `json:"syncTimeoutSeconds"`

	// DaemonIntervalMinutes is the tick period of the daemon scheduler.
	DaemonIntervalMinutes int `json:"daemonIntervalMinutes"`
}

// DefaultGlobal returns a GlobalConfig with sensible defaults.
func DefaultGlobal() GlobalConfig {
	return GlobalConfig{
		QuietHoursStart:       22,
		QuietHoursEnd:         9,
		LogRetentionDays:      7,
		MaxLogSizeBytes:       5 << 20,
		SyncTimeoutSeconds:    120,
		DaemonIntervalMinutes: 5,
	}
}

// Validate checks the global settings against the documented invariants.
func (g GlobalConfig) Validate() error {
	if g.QuietHoursStart < 0 || g.QuietHoursStart > 23 {
		return fmt.Errorf("quietHoursStart out of range [0,23]: %d", g.QuietHoursStart)
	}

	if g.QuietHoursEnd < 0 || g.QuietHoursEnd > 23 {
		return fmt.Errorf("quietHoursEnd out of range [0,23]: %d", g.QuietHoursEnd)
	}

	for _, h := range g.SkipHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("skip hour out of range [0,23]: %d", h)
		}
	}

	if g.MaxLogSizeBytes < 0 {
		return fmt.Errorf("maxLogSizeBytes must not be negative: %d", g.MaxLogSizeBytes)
	}

	if g.LogRetentionDays < 0 {
		return fmt.Errorf("logRetentionDays must not be negative: %d", g.LogRetentionDays)
	}

	return nil
}

// RepositoryEntry describes one local working tree to keep in sync.
type RepositoryEntry struct {
	// Path is the absolute filesystem path to the local working tree.
	Path string `json:"path"`

	// IntervalMinutes is the minimum time between two successful syncs.
	IntervalMinutes int `json:"intervalMinutes"`

	// Strategy decides which side wins when histories have diverged.
	Strategy Strategy `json:"strategy"`

	// Branch and Remote the entry targets. One branch per entry.
	Branch string `json:"branch"`
	Remote string `json:"remote"`

	// Enabled gates the entry entirely; disabled entries are never synced.
	Enabled bool `json:"enabled"`

	// AddedAt records when the entry was created. Informational only.
	AddedAt time.Time `json:"addedAt"`

	// LastSyncAt and LastSyncStatus are written back by the engine after
	// each attempt. LastSyncAt only advances on a successful sync.
	LastSyncAt     *time.Time `json:"lastSyncAt,omitempty"`
	LastSyncStatus string     `json:"lastSyncStatus,omitempty"`
}

// Validate checks a single entry.
func (r RepositoryEntry) Validate() error {
	if r.Path == "" {
		return fmt.Errorf("repository path is empty")
	}

	if !filepath.IsAbs(r.Path) {
		return fmt.Errorf("repository path is not absolute: %s", r.Path)
	}

	if r.IntervalMinutes <= 0 {
		return fmt.Errorf("intervalMinutes must be positive: %d", r.IntervalMinutes)
	}

	if !r.Strategy.Valid() {
		return fmt.Errorf("unknown strategy %q (want %q or %q)", r.Strategy, StrategyOurs, StrategyTheirs)
	}

	if r.Branch == "" {
		return fmt.Errorf("branch is empty for %s", r.Path)
	}

	if r.Remote == "" {
		return fmt.Errorf("remote is empty for %s", r.Path)
	}

	return nil
}

// Config is the on-disk configuration consumed by the engine.
type Config struct {
	Version int               `json:"version"`
	Global  GlobalConfig      `json:"global"`
	Repos   []RepositoryEntry `json:"repos"`
}

// DefaultConfig returns an empty configuration with defaults applied.
func DefaultConfig() Config {
	return Config{
		Version: ConfigVersion,
		Global:  DefaultGlobal(),
	}
}

// Validate checks the whole configuration. Duplicate paths are tolerated;
// the engine processes them independently.
func (c Config) Validate() error {
	if err := c.Global.Validate(); err != nil {
		return err
	}

	for i := range c.Repos {
		if err := c.Repos[i].Validate(); err != nil {
			return fmt.Errorf("repos[%d]: %w", i, err)
		}
	}

	return nil
}

// FindRepo returns the index of the entry with the given path, or -1.
func (c Config) FindRepo(path string) int {
	for i := range c.Repos {
		if c.Repos[i].Path == path {
			return i
		}
	}

	return -1
}
