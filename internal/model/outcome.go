package model

import "time"

// Result classifies what happened to one repository during one run.
type Result string

const (
	ResultSkippedQuietHours Result = "skipped-quiet-hours"
	ResultSkippedInterval   Result = "skipped-interval"
	ResultSkippedDisabled   Result = "skipped-disabled"
	ResultSuccess           Result = "success"
	ResultConflictResolved  Result = "conflict-resolved"
	ResultFailed            Result = "failed"
)

// Synced reports whether the result represents a completed sync.
func (r Result) Synced() bool {
	return r == ResultSuccess || r == ResultConflictResolved
}

// SyncOutcome is the per-repository record of a sync attempt.
type SyncOutcome struct {
	RepositoryPath string    `json:"repositoryPath"`
	AttemptedAt    time.Time `json:"attemptedAt"`
	Result         Result    `json:"result"`
	Detail         string    `json:"detail,omitempty"`
	CommitsFetched int       `json:"commitsFetched"`
	CommitsPushed  int       `json:"commitsPushed"`
}
