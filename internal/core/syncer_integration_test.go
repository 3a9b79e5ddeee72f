package core

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/inovacc/autosync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed, skipping integration test")
	}
}

func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}

	return string(out)
}

func gitConfigureUser(t *testing.T, dir string) {
	t.Helper()

	gitRun(t, dir, "config", "user.email", "test@test.com")
	gitRun(t, dir, "config", "user.name", "Test User")
}

func gitCommitFile(t *testing.T, dir, name, content, msg string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	gitRun(t, dir, "add", name)
	gitRun(t, dir, "commit", "-m", msg)
}

// setupRemotePair creates a bare remote with one seed commit and two clones.
func setupRemotePair(t *testing.T) (remote, cloneA, cloneB string) {
	t.Helper()
	requireGit(t)

	base := t.TempDir()
	remote = filepath.Join(base, "remote.git")
	gitRun(t, base, "init", "--bare", "-b", "main", remote)

	seed := filepath.Join(base, "seed")
	gitRun(t, base, "clone", remote, seed)
	gitConfigureUser(t, seed)
	gitCommitFile(t, seed, "README.md", "# Test\n", "Initial commit")
	gitRun(t, seed, "push", "origin", "main")

	cloneA = filepath.Join(base, "a")
	gitRun(t, base, "clone", remote, cloneA)
	gitConfigureUser(t, cloneA)

	cloneB = filepath.Join(base, "b")
	gitRun(t, base, "clone", remote, cloneB)
	gitConfigureUser(t, cloneB)

	return remote, cloneA, cloneB
}

func syncEntry(path string, strategy model.Strategy) model.RepositoryEntry {
	return model.RepositoryEntry{
		Path:            path,
		IntervalMinutes: 60,
		Strategy:        strategy,
		Branch:          "main",
		Remote:          "origin",
		Enabled:         true,
		AddedAt:         time.Now(),
	}
}

func newTestSyncer(dryRun bool) *Syncer {
	return NewSyncer(testLogger(), time.Minute, dryRun)
}

func remoteTip(t *testing.T, remote string) string {
	t.Helper()
	return gitRun(t, remote, "rev-parse", "main")
}

func localTip(t *testing.T, dir string) string {
	t.Helper()
	return gitRun(t, dir, "rev-parse", "main")
}

func TestSyncerUpToDateIsIdempotent(t *testing.T) {
	_, cloneA, _ := setupRemotePair(t)
	s := newTestSyncer(false)

	for i := 0; i < 2; i++ {
		out := s.Sync(context.Background(), syncEntry(cloneA, model.StrategyOurs))
		assert.Equal(t, model.ResultSuccess, out.Result)
		assert.Equal(t, "already up to date", out.Detail)
		assert.Zero(t, out.CommitsFetched)
		assert.Zero(t, out.CommitsPushed)
	}
}

func TestSyncerFastForwards(t *testing.T) {
	_, cloneA, cloneB := setupRemotePair(t)

	gitCommitFile(t, cloneA, "a.txt", "from a\n", "Add a.txt")
	gitRun(t, cloneA, "push", "origin", "main")

	out := newTestSyncer(false).Sync(context.Background(), syncEntry(cloneB, model.StrategyOurs))

	assert.Equal(t, model.ResultSuccess, out.Result)
	assert.Equal(t, 1, out.CommitsFetched)
	assert.Zero(t, out.CommitsPushed)
	assert.FileExists(t, filepath.Join(cloneB, "a.txt"))
}

func TestSyncerPushesLocalCommits(t *testing.T) {
	remote, cloneA, _ := setupRemotePair(t)

	gitCommitFile(t, cloneA, "a.txt", "from a\n", "Add a.txt")
	gitCommitFile(t, cloneA, "b.txt", "more\n", "Add b.txt")

	out := newTestSyncer(false).Sync(context.Background(), syncEntry(cloneA, model.StrategyOurs))

	assert.Equal(t, model.ResultSuccess, out.Result)
	assert.Equal(t, 2, out.CommitsPushed)
	assert.Zero(t, out.CommitsFetched)
	assert.Equal(t, localTip(t, cloneA), remoteTip(t, remote))
}

func TestSyncerReconcilesDivergence(t *testing.T) {
	tests := []struct {
		name     string
		strategy model.Strategy
		want     string
	}{
		{"ours keeps local edits", model.StrategyOurs, "local\n"},
		{"theirs keeps remote edits", model.StrategyTheirs, "remote\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote, cloneA, cloneB := setupRemotePair(t)

			gitCommitFile(t, cloneA, "README.md", "remote\n", "Remote edit")
			gitRun(t, cloneA, "push", "origin", "main")

			gitCommitFile(t, cloneB, "README.md", "local\n", "Local edit")

			out := newTestSyncer(false).Sync(context.Background(), syncEntry(cloneB, tt.strategy))

			assert.Equal(t, model.ResultConflictResolved, out.Result)
			assert.Equal(t, 1, out.CommitsFetched)
			assert.Positive(t, out.CommitsPushed)

			got, err := os.ReadFile(filepath.Join(cloneB, "README.md"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			// The reconciled history landed on the remote.
			assert.Equal(t, localTip(t, cloneB), remoteTip(t, remote))
		})
	}
}

func TestSyncerReconcileFailureRestoresTree(t *testing.T) {
	remote, cloneA, cloneB := setupRemotePair(t)

	// A modify/delete conflict is not resolvable by strategy options.
	gitRun(t, cloneA, "rm", "README.md")
	gitRun(t, cloneA, "commit", "-m", "Remove README")
	gitRun(t, cloneA, "push", "origin", "main")

	gitCommitFile(t, cloneB, "README.md", "edited\n", "Edit README")

	before := localTip(t, cloneB)
	remoteBefore := remoteTip(t, remote)

	out := newTestSyncer(false).Sync(context.Background(), syncEntry(cloneB, model.StrategyOurs))

	assert.Equal(t, model.ResultFailed, out.Result)

	// Local branch and remote are both untouched.
	assert.Equal(t, before, localTip(t, cloneB))
	assert.Equal(t, remoteBefore, remoteTip(t, remote))
	assert.Empty(t, gitRun(t, cloneB, "status", "--porcelain"))
}

func TestSyncerRefusesDirtyTree(t *testing.T) {
	_, cloneA, _ := setupRemotePair(t)

	require.NoError(t, os.WriteFile(filepath.Join(cloneA, "wip.txt"), []byte("draft"), 0644))

	out := newTestSyncer(false).Sync(context.Background(), syncEntry(cloneA, model.StrategyOurs))

	assert.Equal(t, model.ResultFailed, out.Result)
	assert.Contains(t, out.Detail, "uncommitted changes")

	// The draft file was not touched.
	got, err := os.ReadFile(filepath.Join(cloneA, "wip.txt"))
	require.NoError(t, err)
	assert.Equal(t, "draft", string(got))
}

func TestSyncerRefusesDetachedHead(t *testing.T) {
	_, cloneA, _ := setupRemotePair(t)

	gitRun(t, cloneA, "checkout", "--detach", "HEAD")

	out := newTestSyncer(false).Sync(context.Background(), syncEntry(cloneA, model.StrategyOurs))

	assert.Equal(t, model.ResultFailed, out.Result)
	assert.Contains(t, out.Detail, "detached HEAD")
}

func TestSyncerRefusesWrongBranch(t *testing.T) {
	_, cloneA, _ := setupRemotePair(t)

	gitRun(t, cloneA, "checkout", "-b", "feature")

	out := newTestSyncer(false).Sync(context.Background(), syncEntry(cloneA, model.StrategyOurs))

	assert.Equal(t, model.ResultFailed, out.Result)
	assert.Contains(t, out.Detail, `branch "main" is not checked out`)
}

func TestSyncerRefusesMissingRemote(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	gitRun(t, dir, "init", "-b", "main")
	gitConfigureUser(t, dir)
	gitCommitFile(t, dir, "README.md", "# Test\n", "Initial commit")

	out := newTestSyncer(false).Sync(context.Background(), syncEntry(dir, model.StrategyOurs))

	assert.Equal(t, model.ResultFailed, out.Result)
	assert.Contains(t, out.Detail, `remote "origin" not configured`)
}

func TestSyncerRefusesMissingPath(t *testing.T) {
	out := newTestSyncer(false).Sync(context.Background(), syncEntry("/nonexistent/repo", model.StrategyOurs))

	assert.Equal(t, model.ResultFailed, out.Result)
	assert.Contains(t, out.Detail, "repository not found")
}

func TestSyncerDryRunTouchesNothing(t *testing.T) {
	remote, cloneA, cloneB := setupRemotePair(t)

	// The remote moves, but a dry run must not even fetch.
	gitCommitFile(t, cloneA, "a.txt", "from a\n", "Add a.txt")
	gitRun(t, cloneA, "push", "origin", "main")

	trackingBefore := gitRun(t, cloneB, "rev-parse", "origin/main")
	remoteBefore := remoteTip(t, remote)

	out := newTestSyncer(true).Sync(context.Background(), syncEntry(cloneB, model.StrategyOurs))

	assert.Equal(t, model.ResultSuccess, out.Result)
	assert.Contains(t, out.Detail, "dry-run:")

	assert.Equal(t, trackingBefore, gitRun(t, cloneB, "rev-parse", "origin/main"))
	assert.Equal(t, remoteBefore, remoteTip(t, remote))
	assert.NoFileExists(t, filepath.Join(cloneB, "a.txt"))
}

// snapshotRemote makes a bare copy of the remote and points the clone's
// origin at it for fetches while pushes still hit the real remote. The
// clone then reconciles against a tip the remote can move past, which is
// how a remote advancing mid-sync looks to the engine.
func snapshotRemote(t *testing.T, remote, clone string) {
	t.Helper()

	base := filepath.Dir(remote)
	snapshot := filepath.Join(base, "snapshot.git")
	gitRun(t, base, "clone", "--bare", remote, snapshot)

	gitRun(t, clone, "remote", "set-url", "origin", snapshot)
	gitRun(t, clone, "remote", "set-url", "--push", "origin", remote)
}

func TestSyncerLeasePushRefusesMovedRemote(t *testing.T) {
	remote, cloneA, cloneB := setupRemotePair(t)

	gitCommitFile(t, cloneA, "README.md", "remote\n", "Remote edit")
	gitRun(t, cloneA, "push", "origin", "main")

	// Freeze what cloneB's fetch will see, then let the remote move on.
	snapshotRemote(t, remote, cloneB)
	gitCommitFile(t, cloneA, "late.txt", "landed after fetch\n", "Late commit")
	gitRun(t, cloneA, "push", "origin", "main")

	gitCommitFile(t, cloneB, "README.md", "local\n", "Local edit")

	movedTip := remoteTip(t, remote)

	out := newTestSyncer(false).Sync(context.Background(), syncEntry(cloneB, model.StrategyTheirs))

	assert.Equal(t, model.ResultFailed, out.Result)
	assert.Contains(t, out.Detail, "rejected")

	// Nothing was lost: the remote still holds the commit the run never saw.
	assert.Equal(t, movedTip, remoteTip(t, remote))
}

func TestSyncerPlainPushRefusesMovedRemote(t *testing.T) {
	remote, cloneA, cloneB := setupRemotePair(t)

	snapshotRemote(t, remote, cloneB)
	gitCommitFile(t, cloneA, "late.txt", "landed after fetch\n", "Late commit")
	gitRun(t, cloneA, "push", "origin", "main")

	// Against the frozen fetch view cloneB is ahead only, so the engine
	// takes the plain-push path; git itself refuses the stale push.
	gitCommitFile(t, cloneB, "b.txt", "from b\n", "Add b.txt")

	movedTip := remoteTip(t, remote)

	out := newTestSyncer(false).Sync(context.Background(), syncEntry(cloneB, model.StrategyOurs))

	assert.Equal(t, model.ResultFailed, out.Result)
	assert.Contains(t, out.Detail, "rejected")
	assert.Equal(t, movedTip, remoteTip(t, remote))

	// The local commit is intact for the next run to reconcile.
	assert.FileExists(t, filepath.Join(cloneB, "b.txt"))
}

func TestSyncerDryRunReportsPendingPush(t *testing.T) {
	_, cloneA, _ := setupRemotePair(t)

	gitCommitFile(t, cloneA, "a.txt", "from a\n", "Add a.txt")

	out := newTestSyncer(true).Sync(context.Background(), syncEntry(cloneA, model.StrategyOurs))

	assert.Equal(t, model.ResultSuccess, out.Result)
	assert.Equal(t, "dry-run: would push 1 commit(s)", out.Detail)
}
