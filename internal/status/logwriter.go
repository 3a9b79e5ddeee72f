package status

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// rotation timestamp suffix, lexicographically sortable by time.
const rotateTimeFormat = "20060102150405"

// RotatingWriter is an append-only io.Writer over a log file that rotates
// by size: when a write would push the file past maxSize, the current file
// is renamed aside with a timestamp suffix and a fresh one is started.
// It is the file sink behind the engine's slog handler.
type RotatingWriter struct {
	mu          sync.Mutex
	path        string
	maxSize     int64
	file        *os.File
	currentSize int64
	now         func() time.Time
}

// NewRotatingWriter opens (or creates) the log file at path. maxSize <= 0
// disables rotation.
func NewRotatingWriter(path string, maxSize int64) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:    path,
		maxSize: maxSize,
		now:     time.Now,
	}

	if err := w.open(); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = file
	w.currentSize = stat.Size()
	return nil
}

// Write appends to the log, rotating first if the write would exceed the
// size limit.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.maxSize > 0 && w.currentSize+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("failed to rotate log: %w", err)
		}
	}

	n, err := w.file.Write(p)
	w.currentSize += int64(n)
	return n, err
}

// rotate renames the current file aside and reopens a fresh one.
// Caller holds the mutex.
func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	rotated := fmt.Sprintf("%s.%s", w.path, w.now().Format(rotateTimeFormat))
	if err := os.Rename(w.path, rotated); err != nil {
		return err
	}

	return w.open()
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// SweepRotated deletes rotated log files older than retentionDays.
// Advisory housekeeping: the first error is returned but a partial sweep
// is fine.
func (w *RotatingWriter) SweepRotated(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}

	matches, err := filepath.Glob(w.path + ".*")
	if err != nil {
		return err
	}

	cutoff := w.now().AddDate(0, 0, -retentionDays)
	prefix := filepath.Base(w.path) + "."

	for _, match := range matches {
		suffix := strings.TrimPrefix(filepath.Base(match), prefix)

		stamp, err := time.ParseInLocation(rotateTimeFormat, suffix, time.Local)
		if err != nil {
			// Not one of ours.
			continue
		}

		if stamp.Before(cutoff) {
			if err := os.Remove(match); err != nil {
				return err
			}
		}
	}

	return nil
}
