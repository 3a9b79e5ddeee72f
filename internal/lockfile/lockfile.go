// Package lockfile enforces at most one engine invocation at a time via a
// pid-stamped lock file with stale-lock reclamation.
package lockfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/inovacc/autosync/internal/application"
	"github.com/inovacc/autosync/internal/encoding"
	"github.com/inovacc/autosync/internal/process"
)

// ErrLockHeld means another run is already in progress. Callers exit
// quietly without acting; this is an expected guard, not a failure.
var ErrLockHeld = errors.New("another sync run is already in progress")

// Record is the lock file content: who holds the lock and since when.
type Record struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// Liveness answers whether a recorded pid still belongs to a live run.
type Liveness interface {
	AliveWithName(pid int, name string) bool
}

// Manager mediates access to the single well-known lock file. Callers pass
// a Manager handle around; there is no package-level lock state.
type Manager struct {
	path   string
	probe  Liveness
	logger *slog.Logger
}

// NewManager creates a Manager for the given lock file path.
func NewManager(path string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{path: path, logger: logger}
}

// WithLiveness overrides the process prober. Used by tests.
func (m *Manager) WithLiveness(probe Liveness) *Manager {
	m.probe = probe
	return m
}

// Lock is the token returned by a successful acquisition.
type Lock struct {
	path string
}

// Acquire takes the lock or returns ErrLockHeld when a live process owns
// it. A lock whose recorded process is gone, or whose content cannot be
// parsed, is considered stale and reclaimed with a warning.
func (m *Manager) Acquire() (*Lock, error) {
	record, err := encoding.LoadJSON[Record](m.path)
	if err != nil {
		// Unparseable lock file: a previous run died mid-write. Reclaim.
		m.logger.Warn("reclaiming unreadable lock file",
			slog.String("path", m.path),
			slog.String("error", err.Error()),
		)
	}

	if record != nil {
		probe := m.probe
		if probe == nil {
			probe = process.NewProber()
		}

		if probe.AliveWithName(record.PID, application.AppExeName) {
			return nil, fmt.Errorf("%w (pid %d since %s)",
				ErrLockHeld, record.PID, record.AcquiredAt.Format(time.RFC3339))
		}

		m.logger.Warn("reclaiming stale lock",
			slog.Int("pid", record.PID),
			slog.Time("acquired_at", record.AcquiredAt),
		)
	}

	newRecord := Record{PID: os.Getpid(), AcquiredAt: time.Now()}
	if err := encoding.SaveJSON(m.path, newRecord); err != nil {
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	return &Lock{path: m.path}, nil
}

// Release removes the lock file unconditionally. Invoke via defer right
// after Acquire so every exit path releases; liveness-based reclaim is the
// backstop if the process dies before this runs.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	return nil
}
