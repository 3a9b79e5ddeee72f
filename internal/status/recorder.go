// Package status persists per-repository sync outcomes and the engine's
// size-rotated log file.
package status

import (
	"fmt"

	"github.com/inovacc/autosync/internal/encoding"
	"github.com/inovacc/autosync/internal/model"
)

// Recorder keeps the status file: a JSON object keyed by repository path
// holding the latest SyncOutcome for each. Writes are atomic so an
// external status reader never observes a torn file.
type Recorder struct {
	path string
}

// NewRecorder creates a Recorder for the given status file path.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// RecordOutcome merges one outcome into the status file, overwriting any
// previous record for the same repository path.
func (r *Recorder) RecordOutcome(outcome model.SyncOutcome) error {
	statuses, err := r.Load()
	if err != nil {
		return err
	}

	statuses[outcome.RepositoryPath] = outcome

	if err := encoding.SaveJSONAtomic(r.path, statuses); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}

	return nil
}

// Load reads the status file. A missing file is an empty map.
func (r *Recorder) Load() (map[string]model.SyncOutcome, error) {
	statuses, err := encoding.LoadJSON[map[string]model.SyncOutcome](r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	if statuses == nil {
		return make(map[string]model.SyncOutcome), nil
	}

	return *statuses, nil
}
