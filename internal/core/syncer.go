package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/inovacc/autosync/internal/git"
	"github.com/inovacc/autosync/internal/model"
)

// Per-operation deadlines within the outer per-repository timeout.
const (
	fetchTimeout = 30 * time.Second
	pushTimeout  = 60 * time.Second
)

// timeoutError records which deadline expired, so the outcome detail
// names the operation limit rather than the outer per-repository one.
type timeoutError struct {
	op    string
	limit time.Duration
	err   error
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.op, e.limit)
}

func (e *timeoutError) Unwrap() error {
	return e.err
}

// Syncer performs the fetch/reconcile/push sequence for one repository.
// It never mutates entry fields; the orchestrator records outcomes.
type Syncer struct {
	logger  *slog.Logger
	timeout time.Duration
	dryRun  bool
	now     func() time.Time

	// newClient is swappable for tests.
	newClient func(repoDir string) *git.Client
}

// NewSyncer creates a Syncer with the given outer per-repository timeout.
func NewSyncer(logger *slog.Logger, timeout time.Duration, dryRun bool) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}

	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Syncer{
		logger:    logger,
		timeout:   timeout,
		dryRun:    dryRun,
		now:       time.Now,
		newClient: git.NewClientForRepo,
	}
}

// Sync runs the full sequence for one eligible repository and reports the
// outcome. All failures are per-repository; nothing here aborts the run.
func (s *Syncer) Sync(ctx context.Context, entry model.RepositoryEntry) model.SyncOutcome {
	outcome := model.SyncOutcome{
		RepositoryPath: entry.Path,
		AttemptedAt:    s.now(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c := s.newClient(entry.Path)
	remoteRef := entry.Remote + "/" + entry.Branch

	if err := s.preflight(ctx, c, entry); err != nil {
		return s.failed(outcome, err)
	}

	if s.dryRun {
		return s.plan(ctx, c, entry, outcome)
	}

	s.logger.Debug("fetching",
		slog.String("repo", entry.Path),
		slog.String("remote", entry.Remote),
		slog.String("branch", entry.Branch),
	)

	fetchCtx, cancelFetch := context.WithTimeout(ctx, fetchTimeout)
	err := c.Fetch(fetchCtx, entry.Remote, entry.Branch)
	cancelFetch()

	if err != nil {
		err = s.opTimeout(ctx, "fetch "+remoteRef, fetchTimeout, err)
		return s.failed(outcome, s.classifyFetchError(entry, err))
	}

	remoteTip, err := c.RevParse(ctx, remoteRef)
	if err != nil {
		return s.failed(outcome, fmt.Errorf("failed to resolve %s: %w", remoteRef, err))
	}

	behind, ahead, err := s.aheadBehind(ctx, c, entry.Branch, remoteRef)
	if err != nil {
		return s.failed(outcome, err)
	}

	switch {
	case behind == 0 && ahead == 0:
		// Nothing to do. Idempotent re-entry lands here.
		outcome.Result = model.ResultSuccess
		outcome.Detail = "already up to date"
		return outcome

	case ahead == 0:
		// Remote moved ahead only: fast-forward.
		if err := c.MergeFFOnly(ctx, remoteRef); err != nil {
			return s.failed(outcome, fmt.Errorf("fast-forward to %s failed: %w", remoteRef, err))
		}

		outcome.Result = model.ResultSuccess
		outcome.CommitsFetched = behind
		outcome.Detail = fmt.Sprintf("fast-forwarded %d commit(s)", behind)
		return outcome

	case behind == 0:
		// Local moved ahead only: plain push. Git rejects it if the
		// remote advanced after our fetch, which is exactly the safety
		// contract we want.
		pushCtx, cancelPush := context.WithTimeout(ctx, pushTimeout)
		err := c.Push(pushCtx, entry.Remote, entry.Branch)
		cancelPush()

		if err != nil {
			err = s.opTimeout(ctx, "push "+remoteRef, pushTimeout, err)
			return s.failed(outcome, s.classifyPushError(entry, err))
		}

		outcome.Result = model.ResultSuccess
		outcome.CommitsPushed = ahead
		outcome.Detail = fmt.Sprintf("pushed %d commit(s)", ahead)
		return outcome

	default:
		return s.reconcile(ctx, c, entry, outcome, remoteTip, behind)
	}
}

// reconcile resolves diverged histories per the declared strategy, then
// pushes with a compare-and-swap lease against the fetched remote tip.
func (s *Syncer) reconcile(ctx context.Context, c *git.Client, entry model.RepositoryEntry, outcome model.SyncOutcome, remoteTip string, behind int) model.SyncOutcome {
	s.logger.Info("histories diverged, reconciling",
		slog.String("repo", entry.Path),
		slog.String("strategy", string(entry.Strategy)),
		slog.Int("behind", behind),
	)

	remoteRef := entry.Remote + "/" + entry.Branch

	if err := c.MergeWithStrategy(ctx, remoteRef, string(entry.Strategy)); err != nil {
		// Leave the tree as we found it. Abort errors are secondary;
		// the merge failure is what the outcome reports.
		if abortErr := c.MergeAbort(ctx); abortErr != nil {
			s.logger.Warn("merge abort failed",
				slog.String("repo", entry.Path),
				slog.String("error", abortErr.Error()),
			)
		}

		if git.IsConflict(err) {
			err = fmt.Errorf("conflict not resolvable by strategy %s: %w", entry.Strategy, err)
		}

		return s.failed(outcome, &ReconciliationError{Path: entry.Path, Err: err})
	}

	pushed, err := c.RevListCount(ctx, remoteTip, entry.Branch)
	if err != nil {
		return s.failed(outcome, err)
	}

	pushCtx, cancelPush := context.WithTimeout(ctx, pushTimeout)
	err = c.PushWithLease(pushCtx, entry.Remote, entry.Branch, remoteTip)
	cancelPush()

	if err != nil {
		err = s.opTimeout(ctx, "push "+remoteRef, pushTimeout, err)
		return s.failed(outcome, s.classifyPushError(entry, err))
	}

	outcome.Result = model.ResultConflictResolved
	outcome.CommitsFetched = behind
	outcome.CommitsPushed = pushed
	outcome.Detail = fmt.Sprintf("reconciled with strategy %s", entry.Strategy)
	return outcome
}

// preflight rejects any repository state the engine must not touch. It
// never mutates anything: no stash, no commit, no checkout.
func (s *Syncer) preflight(ctx context.Context, c *git.Client, entry model.RepositoryEntry) error {
	if _, err := os.Stat(entry.Path); err != nil {
		return &RepositoryStateError{Path: entry.Path, Reason: "repository not found"}
	}

	repoCfg, err := git.LoadRepoConfig(entry.Path)
	if err != nil {
		return &RepositoryStateError{Path: entry.Path, Reason: err.Error()}
	}

	if !repoCfg.HasRemote(entry.Remote) {
		return &RepositoryStateError{Path: entry.Path, Reason: fmt.Sprintf("remote %q not configured", entry.Remote)}
	}

	current, err := c.CurrentBranch(ctx)
	if err != nil {
		return &RepositoryStateError{Path: entry.Path, Reason: fmt.Sprintf("cannot resolve HEAD: %v", err)}
	}

	if current == "HEAD" {
		return &RepositoryStateError{Path: entry.Path, Reason: "detached HEAD"}
	}

	if current != entry.Branch {
		return &RepositoryStateError{
			Path:   entry.Path,
			Reason: fmt.Sprintf("branch %q is not checked out (found %q)", entry.Branch, current),
		}
	}

	if !c.HasLocalBranch(ctx, entry.Branch) {
		return &RepositoryStateError{Path: entry.Path, Reason: fmt.Sprintf("branch %q does not exist", entry.Branch)}
	}

	clean, err := c.IsClean(ctx)
	if err != nil {
		return &RepositoryStateError{Path: entry.Path, Reason: fmt.Sprintf("cannot read status: %v", err)}
	}

	if !clean {
		return &RepositoryStateError{Path: entry.Path, Reason: "working tree has uncommitted changes"}
	}

	return nil
}

// plan reports what a real run would do without fetching or mutating
// anything. It compares against the last-known remote-tracking ref, which
// may be stale.
func (s *Syncer) plan(ctx context.Context, c *git.Client, entry model.RepositoryEntry, outcome model.SyncOutcome) model.SyncOutcome {
	remoteRef := entry.Remote + "/" + entry.Branch
	outcome.Result = model.ResultSuccess

	if _, err := c.RevParse(ctx, remoteRef); err != nil {
		outcome.Detail = fmt.Sprintf("dry-run: no local knowledge of %s, would fetch", remoteRef)
		return outcome
	}

	behind, ahead, err := s.aheadBehind(ctx, c, entry.Branch, remoteRef)
	if err != nil {
		return s.failed(outcome, err)
	}

	switch {
	case behind == 0 && ahead == 0:
		outcome.Detail = "dry-run: up to date with last fetched state"
	case ahead == 0:
		outcome.Detail = fmt.Sprintf("dry-run: would fast-forward %d commit(s)", behind)
	case behind == 0:
		outcome.Detail = fmt.Sprintf("dry-run: would push %d commit(s)", ahead)
	default:
		outcome.Detail = fmt.Sprintf("dry-run: diverged (%d behind, %d ahead), would reconcile with strategy %s",
			behind, ahead, entry.Strategy)
	}

	return outcome
}

// aheadBehind counts commits the local branch is behind of and ahead of
// the remote-tracking ref.
func (s *Syncer) aheadBehind(ctx context.Context, c *git.Client, branch, remoteRef string) (behind, ahead int, err error) {
	behind, err = c.RevListCount(ctx, branch, remoteRef)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count commits behind: %w", err)
	}

	ahead, err = c.RevListCount(ctx, remoteRef, branch)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count commits ahead: %w", err)
	}

	return behind, ahead, nil
}

// opTimeout labels a deadline error with the per-operation limit that
// fired, unless the outer per-repository timeout was the one to expire.
func (s *Syncer) opTimeout(outer context.Context, op string, limit time.Duration, err error) error {
	if !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if outer.Err() != nil {
		return &timeoutError{op: op, limit: s.timeout, err: err}
	}

	return &timeoutError{op: op, limit: limit, err: err}
}

// classifyFetchError maps git's stderr chatter onto the error taxonomy.
func (s *Syncer) classifyFetchError(entry model.RepositoryEntry, err error) error {
	op := fmt.Sprintf("fetch %s/%s", entry.Remote, entry.Branch)

	switch {
	case git.IsRefNotFound(err):
		return &RepositoryStateError{
			Path:   entry.Path,
			Reason: fmt.Sprintf("remote %q has no branch %q", entry.Remote, entry.Branch),
		}
	case git.IsNotRepository(err):
		return &RepositoryStateError{Path: entry.Path, Reason: "not a git repository"}
	case git.IsAuthRequired(err):
		return &NetworkError{Operation: op + ": authentication required", Err: err}
	case git.IsNetworkFailure(err):
		return &NetworkError{Operation: op + ": remote unreachable", Err: err}
	default:
		return &NetworkError{Operation: op, Err: err}
	}
}

// classifyPushError distinguishes a concurrently-moved remote from auth
// and connectivity failures.
func (s *Syncer) classifyPushError(entry model.RepositoryEntry, err error) error {
	op := fmt.Sprintf("push %s/%s", entry.Remote, entry.Branch)

	switch {
	case git.IsPushRejected(err):
		return &PushRejectedError{Remote: entry.Remote, Branch: entry.Branch, Err: err}
	case git.IsAuthRequired(err):
		return &NetworkError{Operation: op + ": authentication required", Err: err}
	case git.IsNetworkFailure(err):
		return &NetworkError{Operation: op + ": remote unreachable", Err: err}
	default:
		return &NetworkError{Operation: op, Err: err}
	}
}

// failed finalizes an outcome, logging the diagnostic once.
func (s *Syncer) failed(outcome model.SyncOutcome, err error) model.SyncOutcome {
	var tErr *timeoutError
	if errors.Is(err, context.DeadlineExceeded) && !errors.As(err, &tErr) {
		err = fmt.Errorf("timed out after %s: %w", s.timeout, err)
	}

	attrs := []any{
		slog.String("repo", outcome.RepositoryPath),
		slog.String("error", err.Error()),
	}

	if code := git.GetExitCode(err); code > 0 {
		attrs = append(attrs, slog.Int("git_exit_code", code))
	}

	s.logger.Error("sync failed", attrs...)

	outcome.Result = model.ResultFailed
	outcome.Detail = err.Error()
	return outcome
}
