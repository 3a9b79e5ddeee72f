package model

import "time"

// RunReport aggregates one engine invocation.
type RunReport struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	DryRun     bool          `json:"dryRun"`
	Forced     bool          `json:"forced"`
	Outcomes   []SyncOutcome `json:"outcomes"`
}

// FailedCount returns how many repositories ended in a failed outcome.
func (r RunReport) FailedCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result == ResultFailed {
			n++
		}
	}

	return n
}

// SyncedCount returns how many repositories completed a sync.
func (r RunReport) SyncedCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result.Synced() {
			n++
		}
	}

	return n
}
