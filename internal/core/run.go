package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/autosync/internal/encoding"
	"github.com/inovacc/autosync/internal/lockfile"
	"github.com/inovacc/autosync/internal/model"
)

// StatusRecorder persists the latest outcome per repository path.
type StatusRecorder interface {
	RecordOutcome(outcome model.SyncOutcome) error
}

// RunHistory archives whole-run reports.
type RunHistory interface {
	Append(report model.RunReport) error
}

// Options parameterizes a single engine run.
type Options struct {
	// DryRun evaluates eligibility and comparison without mutating
	// anything: no fetch, no push, no status or config writes.
	DryRun bool

	// Force bypasses quiet hours and interval gating, never the
	// enabled flag.
	Force bool

	// RepoFilter restricts the run to a single configured path.
	RepoFilter string
}

// Orchestrator drives one run: lock, load config, gate and sync each
// repository in configuration order, record outcomes, release the lock.
// All collaborators are passed in; there are no package-level singletons.
type Orchestrator struct {
	configPath string
	lock       *lockfile.Manager
	recorder   StatusRecorder
	history    RunHistory
	logger     *slog.Logger
	now        func() time.Time

	// OnOutcome, when set, observes each outcome as it is produced.
	// Interactive mode uses it to print progress.
	OnOutcome func(outcome model.SyncOutcome)

	// newSyncer is swappable for tests.
	newSyncer func(timeout time.Duration, dryRun bool) repoSyncer
}

type repoSyncer interface {
	Sync(ctx context.Context, entry model.RepositoryEntry) model.SyncOutcome
}

// NewOrchestrator wires an engine run. history may be nil; recording
// history is best-effort either way.
func NewOrchestrator(configPath string, lock *lockfile.Manager, recorder StatusRecorder, history RunHistory, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	o := &Orchestrator{
		configPath: configPath,
		lock:       lock,
		recorder:   recorder,
		history:    history,
		logger:     logger,
		now:        time.Now,
	}

	o.newSyncer = func(timeout time.Duration, dryRun bool) repoSyncer {
		return NewSyncer(logger, timeout, dryRun)
	}

	return o
}

// Run executes one engine invocation. It returns lockfile.ErrLockHeld
// when another run is in progress and *ConfigError for fatal startup
// problems; per-repository failures never surface as an error, they are
// visible through the report.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*model.RunReport, error) {
	lock, err := o.lock.Acquire()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			o.logger.Warn("failed to release lock", slog.String("error", err.Error()))
		}
	}()

	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	entries, err := o.selectEntries(cfg, opts.RepoFilter)
	if err != nil {
		return nil, err
	}

	report := &model.RunReport{
		ID:        uuid.NewString(),
		StartedAt: o.now(),
		DryRun:    opts.DryRun,
		Forced:    opts.Force,
	}

	logger := o.logger.With(slog.String("run_id", report.ID))
	logger.Info("run started",
		slog.Int("repos", len(entries)),
		slog.Bool("dry_run", opts.DryRun),
		slog.Bool("force", opts.Force),
	)

	timeout := time.Duration(cfg.Global.SyncTimeoutSeconds) * time.Second
	syncer := o.newSyncer(timeout, opts.DryRun)

	for _, idx := range entries {
		if ctx.Err() != nil {
			logger.Warn("run interrupted", slog.String("error", ctx.Err().Error()))
			break
		}

		entry := cfg.Repos[idx]
		outcome := o.processOne(ctx, syncer, entry, cfg.Global, opts)
		report.Outcomes = append(report.Outcomes, outcome)

		o.applyOutcome(&cfg.Repos[idx], outcome)

		if !opts.DryRun && o.recorder != nil {
			if err := o.recorder.RecordOutcome(outcome); err != nil {
				logger.Warn("failed to record outcome",
					slog.String("repo", outcome.RepositoryPath),
					slog.String("error", err.Error()),
				)
			}
		}

		if o.OnOutcome != nil {
			o.OnOutcome(outcome)
		}
	}

	report.FinishedAt = o.now()

	if !opts.DryRun {
		if err := encoding.SaveJSONAtomic(o.configPath, cfg); err != nil {
			logger.Warn("failed to write back sync timestamps", slog.String("error", err.Error()))
		}

		if o.history != nil {
			if err := o.history.Append(*report); err != nil {
				logger.Warn("failed to append run history", slog.String("error", err.Error()))
			}
		}
	}

	logger.Info("run finished",
		slog.Int("synced", report.SyncedCount()),
		slog.Int("failed", report.FailedCount()),
		slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)

	return report, nil
}

// processOne gates a single repository and syncs it when eligible.
func (o *Orchestrator) processOne(ctx context.Context, syncer repoSyncer, entry model.RepositoryEntry, global model.GlobalConfig, opts Options) model.SyncOutcome {
	decision := ShouldSync(entry, global, o.now(), opts.Force)
	if !decision.Eligible {
		o.logger.Debug("skipping repository",
			slog.String("repo", entry.Path),
			slog.String("reason", decision.Reason.String()),
		)

		return model.SyncOutcome{
			RepositoryPath: entry.Path,
			AttemptedAt:    o.now(),
			Result:         decision.Reason.Result(),
			Detail:         decision.Reason.String(),
		}
	}

	return syncer.Sync(ctx, entry)
}

// applyOutcome writes the two engine-owned entry fields. Skips do not
// count as attempts: a skipped repository keeps its previous status, and
// lastSyncAt only advances on a completed sync so the interval gate keys
// off the last successful one.
func (o *Orchestrator) applyOutcome(entry *model.RepositoryEntry, outcome model.SyncOutcome) {
	switch outcome.Result {
	case model.ResultSuccess, model.ResultConflictResolved:
		at := outcome.AttemptedAt
		entry.LastSyncAt = &at
		entry.LastSyncStatus = string(outcome.Result)
	case model.ResultFailed:
		entry.LastSyncStatus = string(outcome.Result)
	}
}

// loadConfig reads and validates the configuration. A missing file is an
// empty configuration; anything unreadable or invalid is fatal.
func (o *Orchestrator) loadConfig() (*model.Config, error) {
	cfg, err := encoding.LoadJSON[model.Config](o.configPath)
	if err != nil {
		return nil, &ConfigError{Path: o.configPath, Err: err}
	}

	if cfg == nil {
		def := model.DefaultConfig()
		cfg = &def
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Path: o.configPath, Err: err}
	}

	return cfg, nil
}

// selectEntries resolves the optional repo filter to entry indices,
// preserving configuration order. Duplicate paths are processed
// independently.
func (o *Orchestrator) selectEntries(cfg *model.Config, filter string) ([]int, error) {
	if len(cfg.Repos) == 0 {
		o.logger.Warn("no repositories configured")
	}

	if filter != "" {
		if abs, err := filepath.Abs(filter); err == nil {
			filter = abs
		}
	}

	indices := make([]int, 0, len(cfg.Repos))

	for i := range cfg.Repos {
		if filter != "" && cfg.Repos[i].Path != filter {
			continue
		}

		indices = append(indices, i)
	}

	if filter != "" && len(indices) == 0 {
		return nil, &ConfigError{
			Path: o.configPath,
			Err:  fmt.Errorf("repository not found: %s", filter),
		}
	}

	return indices, nil
}
