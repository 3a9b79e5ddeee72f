package cli

import (
	"testing"
	"time"

	"github.com/inovacc/autosync/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRenderOutcome(t *testing.T) {
	out := RenderOutcome(model.SyncOutcome{
		RepositoryPath: "/repos/a",
		Result:         model.ResultSuccess,
		CommitsFetched: 2,
		CommitsPushed:  1,
	})

	assert.Contains(t, out, "/repos/a")
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "↓2 ↑1")
}

func TestRenderOutcomeFailedShowsDetail(t *testing.T) {
	out := RenderOutcome(model.SyncOutcome{
		RepositoryPath: "/repos/a",
		Result:         model.ResultFailed,
		Detail:         "fetch origin/main failed",
	})

	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "fetch origin/main failed")
}

func TestRenderReport(t *testing.T) {
	start := time.Now()
	r := model.RunReport{
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Outcomes: []model.SyncOutcome{
			{RepositoryPath: "/repos/a", Result: model.ResultSuccess},
			{RepositoryPath: "/repos/b", Result: model.ResultFailed},
			{RepositoryPath: "/repos/c", Result: model.ResultSkippedInterval},
		},
	}

	out := RenderReport(r)
	assert.Contains(t, out, "3 repo(s)")
	assert.Contains(t, out, "1 synced")
	assert.Contains(t, out, "1 failed")
}

func TestRenderEntry(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	entry := model.RepositoryEntry{
		Path:            "/repos/a",
		IntervalMinutes: 30,
		Strategy:        model.StrategyTheirs,
		Branch:          "main",
		Remote:          "origin",
		Enabled:         true,
		LastSyncAt:      &at,
		LastSyncStatus:  string(model.ResultSuccess),
	}

	out := RenderEntry(entry)
	assert.Contains(t, out, "/repos/a")
	assert.Contains(t, out, "enabled")
	assert.Contains(t, out, "origin/main every 30m, strategy theirs")
	assert.Contains(t, out, "last sync 2026-03-14T09:00:00Z (success)")

	entry.Enabled = false
	assert.Contains(t, RenderEntry(entry), "disabled")
}

func TestRenderHistoryEmpty(t *testing.T) {
	assert.Contains(t, RenderHistory(nil), "no recorded runs")
}

func TestRenderHistory(t *testing.T) {
	out := RenderHistory([]model.RunReport{
		{
			StartedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local),
			DryRun:    true,
			Outcomes: []model.SyncOutcome{
				{RepositoryPath: "/repos/a", Result: model.ResultSuccess},
			},
		},
	})

	assert.Contains(t, out, "2026-03-14 09:00:00")
	assert.Contains(t, out, "dry-run")
	assert.Contains(t, out, "/repos/a")
}
