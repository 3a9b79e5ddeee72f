package core

import (
	"slices"
	"time"

	"github.com/inovacc/autosync/internal/model"
)

// SkipReason categorizes why a repository was not synced this run.
type SkipReason int

const (
	SkipReasonNone SkipReason = iota
	SkipReasonDisabled
	SkipReasonQuietHours
	SkipReasonIntervalNotElapsed
)

func (r SkipReason) String() string {
	switch r {
	case SkipReasonNone:
		return ""
	case SkipReasonDisabled:
		return "disabled"
	case SkipReasonQuietHours:
		return "quiet hours"
	case SkipReasonIntervalNotElapsed:
		return "interval not elapsed"
	}
	return ""
}

// Result maps the skip reason to its outcome classification.
func (r SkipReason) Result() model.Result {
	switch r {
	case SkipReasonDisabled:
		return model.ResultSkippedDisabled
	case SkipReasonQuietHours:
		return model.ResultSkippedQuietHours
	case SkipReasonIntervalNotElapsed:
		return model.ResultSkippedInterval
	}
	return model.ResultFailed
}

// Decision is the outcome of the eligibility check for one repository.
type Decision struct {
	Eligible bool
	Reason   SkipReason
}

func eligible() Decision {
	return Decision{Eligible: true}
}

func skip(reason SkipReason) Decision {
	return Decision{Reason: reason}
}

// ShouldSync decides whether a repository should be acted on right now.
// Pure function of its inputs; callers inject the clock.
//
// Force bypasses quiet hours and the per-repository interval but never
// revives a disabled entry.
func ShouldSync(entry model.RepositoryEntry, global model.GlobalConfig, now time.Time, force bool) Decision {
	if !entry.Enabled {
		return skip(SkipReasonDisabled)
	}

	if force {
		return eligible()
	}

	hour := now.Hour()
	if inQuietHours(hour, global.QuietHoursStart, global.QuietHoursEnd) || slices.Contains(global.SkipHours, hour) {
		return skip(SkipReasonQuietHours)
	}

	if entry.LastSyncAt != nil {
		elapsed := now.Sub(*entry.LastSyncAt)
		if elapsed < time.Duration(entry.IntervalMinutes)*time.Minute {
			return skip(SkipReasonIntervalNotElapsed)
		}
	}

	return eligible()
}

// inQuietHours tests hour against the [start, end) window, wrapping past
// midnight when start > end. start == end means no quiet hours at all.
func inQuietHours(hour, start, end int) bool {
	switch {
	case start == end:
		return false
	case start < end:
		return hour >= start && hour < end
	default:
		return hour >= start || hour < end
	}
}
