// Package git drives the external git binary for the sync engine.
// Pattern inspired by github.com/cli/cli
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Client wraps git operations for a single working tree. The engine depends
// only on the git binary's exit codes and textual output, never on an
// embedded implementation.
type Client struct {
	RepoDir string // Repository directory
	GitPath string // Path to git executable
}

// NewClient creates a git client resolving the binary from PATH.
func NewClient() *Client {
	gitPath, _ := exec.LookPath("git")

	return &Client{GitPath: gitPath}
}

// NewClientForRepo creates a client bound to a specific working tree.
func NewClientForRepo(repoDir string) *Client {
	c := NewClient()
	c.RepoDir = repoDir
	return c
}

// Command creates a git command rooted at the client's working tree.
// Note: Do not set Stdout/Stderr if you plan to use CombinedOutput()
func (c *Client) Command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.GitPath, args...)

	if c.RepoDir != "" {
		cmd.Dir = c.RepoDir
	}

	return cmd
}

// output runs git and returns trimmed stdout, converting failures into
// *GitError with the captured stderr.
func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	cmd := c.Command(ctx, args...)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}

		return "", NewGitError(args, stderr.String(), err)
	}

	return strings.TrimSpace(string(out)), nil
}

// run runs git discarding stdout, converting failures into *GitError.
func (c *Client) run(ctx context.Context, args ...string) error {
	cmd := c.Command(ctx, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}

		return NewGitError(args, string(output), err)
	}

	return nil
}

// IsRepository checks if the working tree is a git repository.
func (c *Client) IsRepository(ctx context.Context) bool {
	return c.Command(ctx, "rev-parse", "--git-dir").Run() == nil
}

// Fetch fetches a single branch from the remote.
func (c *Client) Fetch(ctx context.Context, remote, branch string) error {
	return c.run(ctx, "fetch", remote, branch)
}

// RevParse resolves a revision to a full commit hash.
func (c *Client) RevParse(ctx context.Context, rev string) (string, error) {
	return c.output(ctx, "rev-parse", "--verify", rev+"^{commit}")
}

// HasLocalBranch reports whether the branch exists in refs/heads.
func (c *Client) HasLocalBranch(ctx context.Context, branch string) bool {
	return c.Command(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+branch).Run() == nil
}

// CurrentBranch returns the checked-out branch name, or "HEAD" when the
// repository is in detached-HEAD state.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	return c.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// IsClean reports whether the working tree has no uncommitted changes.
func (c *Client) IsClean(ctx context.Context) (bool, error) {
	out, err := c.output(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}

	return out == "", nil
}

// RevListCount counts commits reachable from upper but not from lower.
func (c *Client) RevListCount(ctx context.Context, lower, upper string) (int, error) {
	out, err := c.output(ctx, "rev-list", "--count", lower+".."+upper)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", out, err)
	}

	return n, nil
}

// MergeFFOnly fast-forwards the checked-out branch to ref.
func (c *Client) MergeFFOnly(ctx context.Context, ref string) error {
	return c.run(ctx, "merge", "--ff-only", ref)
}

// MergeWithStrategy merges ref into the checked-out branch, resolving
// conflicting hunks with the given strategy option (ours or theirs).
func (c *Client) MergeWithStrategy(ctx context.Context, ref, strategy string) error {
	return c.run(ctx, "merge", "--no-edit", "-X", strategy, ref)
}

// MergeAbort aborts an in-progress merge, restoring the pre-merge state.
func (c *Client) MergeAbort(ctx context.Context) error {
	return c.run(ctx, "merge", "--abort")
}

// Push pushes the branch without force. Git itself rejects a non
// fast-forward push, which the syncer reports as a concurrent update.
func (c *Client) Push(ctx context.Context, remote, branch string) error {
	return c.run(ctx, "push", remote, branch)
}

// PushWithLease pushes the branch, succeeding only if the remote ref still
// points at expected (the tip recorded at fetch time). Replaces an
// unconditional force-push with a compare-and-swap.
func (c *Client) PushWithLease(ctx context.Context, remote, branch, expected string) error {
	lease := fmt.Sprintf("--force-with-lease=refs/heads/%s:%s", branch, expected)
	return c.run(ctx, "push", lease, "--force-if-includes", remote, branch)
}

// RemoteURL returns the URL for a remote.
func (c *Client) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := c.output(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("failed to get remote URL: %w", err)
	}

	return out, nil
}

// FindGitDir walks upward from startPath to the enclosing working tree root.
func FindGitDir(startPath string) (string, error) {
	current := startPath

	for {
		gitDir := filepath.Join(current, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("not a git repository (or any parent)")
		}
		current = parent
	}
}
