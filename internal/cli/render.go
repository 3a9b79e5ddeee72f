// Package cli renders engine results for interactive terminal output.
//
// The package uses [Lipgloss] for styling. Common styles are defined as
// package-level variables for reuse.
//
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/autosync/internal/model"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// RenderOutcome formats one per-repository outcome as a single line.
func RenderOutcome(o model.SyncOutcome) string {
	var marker string

	switch o.Result {
	case model.ResultSuccess:
		marker = okStyle.Render("✓")
	case model.ResultConflictResolved:
		marker = warningStyle.Render("✓")
	case model.ResultFailed:
		marker = errorStyle.Render("✗")
	default:
		marker = dimStyle.Render("-")
	}

	line := fmt.Sprintf("%s %s %s", marker, boldStyle.Render(o.RepositoryPath), dimStyle.Render(string(o.Result)))

	if o.CommitsFetched > 0 || o.CommitsPushed > 0 {
		line += dimStyle.Render(fmt.Sprintf(" (↓%d ↑%d)", o.CommitsFetched, o.CommitsPushed))
	}

	if o.Result == model.ResultFailed && o.Detail != "" {
		line += "\n  " + errorStyle.Render(o.Detail)
	}

	return line
}

// RenderReport summarizes a finished run.
func RenderReport(r model.RunReport) string {
	elapsed := r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)

	summary := fmt.Sprintf("%d repo(s), %d synced, %d failed in %s",
		len(r.Outcomes), r.SyncedCount(), r.FailedCount(), elapsed)

	if r.FailedCount() > 0 {
		return errorStyle.Render(summary)
	}

	return okStyle.Render(summary)
}

// RenderEntry formats one configured repository for `autosync list`.
func RenderEntry(e model.RepositoryEntry) string {
	state := okStyle.Render("enabled")
	if !e.Enabled {
		state = dimStyle.Render("disabled")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", boldStyle.Render(e.Path), state)
	fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("%s/%s every %dm, strategy %s",
		e.Remote, e.Branch, e.IntervalMinutes, e.Strategy)))

	if e.LastSyncAt != nil {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("last sync %s (%s)",
			e.LastSyncAt.Format(time.RFC3339), e.LastSyncStatus)))
	}

	return b.String()
}

// RenderStatusEntry formats one status-file record for `autosync status`.
func RenderStatusEntry(o model.SyncOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", boldStyle.Render(o.RepositoryPath))
	fmt.Fprintf(&b, "  %s %s\n", renderResult(o.Result), dimStyle.Render(o.AttemptedAt.Format(time.RFC3339)))

	if o.Detail != "" {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(o.Detail))
	}

	return b.String()
}

// RenderHistory formats recent run reports.
func RenderHistory(reports []model.RunReport) string {
	if len(reports) == 0 {
		return dimStyle.Render("no recorded runs")
	}

	var b strings.Builder

	for _, r := range reports {
		mode := ""
		if r.DryRun {
			mode = " dry-run"
		}
		if r.Forced {
			mode += " forced"
		}

		fmt.Fprintf(&b, "%s%s\n", boldStyle.Render(r.StartedAt.Format("2006-01-02 15:04:05")), infoStyle.Render(mode))

		for _, o := range r.Outcomes {
			fmt.Fprintf(&b, "  %s %s\n", renderResult(o.Result), o.RepositoryPath)
		}
	}

	return b.String()
}

func renderResult(r model.Result) string {
	switch r {
	case model.ResultSuccess:
		return okStyle.Render(string(r))
	case model.ResultConflictResolved:
		return warningStyle.Render(string(r))
	case model.ResultFailed:
		return errorStyle.Render(string(r))
	default:
		return dimStyle.Render(string(r))
	}
}
