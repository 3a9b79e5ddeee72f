package git

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func gitErr(stderr string, args ...string) *GitError {
	return NewGitError(args, stderr, errors.New("exit status 1"))
}

func TestGitErrorMessage(t *testing.T) {
	err := gitErr("fatal: not a git repository\n", "status", "--porcelain")
	assert.Equal(t, "git status --porcelain failed: fatal: not a git repository", err.Error())

	bare := NewGitError([]string{"fetch"}, "", errors.New("exec: git not found"))
	assert.Equal(t, "git fetch failed: exec: git not found", bare.Error())
}

func TestGitErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewGitError([]string{"push"}, "stderr", inner)
	assert.ErrorIs(t, err, inner)
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		check  func(error) bool
	}{
		{"not a repository", "fatal: not a git repository (or any of the parent directories): .git", IsNotRepository},
		{"auth failed", "fatal: Authentication failed for 'https://example.com/repo.git'", IsAuthRequired},
		{"permission denied", "git@example.com: Permission denied (publickey).", IsAuthRequired},
		{"ref not found", "fatal: couldn't find remote ref refs/heads/main", IsRefNotFound},
		{"conflict", "CONFLICT (content): Merge conflict in README.md", IsConflict},
		{"non-fast-forward", "! [rejected] main -> main (non-fast-forward)", IsPushRejected},
		{"stale lease", "! [rejected] main -> main (stale info)", IsPushRejected},
		{"fetch first", "! [rejected] main -> main (fetch first)", IsPushRejected},
		{"unresolvable host", "fatal: Could not resolve host: example.com", IsNetworkFailure},
		{"connection refused", "fatal: unable to connect: Connection refused", IsNetworkFailure},
		{"timeout", "fatal: unable to access: Connection timed out", IsNetworkFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(gitErr(tt.stderr, "x")))
		})
	}
}

func TestPredicatesMatchWrappedErrors(t *testing.T) {
	err := fmt.Errorf("sync failed: %w", gitErr("non-fast-forward", "push"))
	assert.True(t, IsPushRejected(err))
	assert.False(t, IsConflict(err))
}

func TestPredicatesOnNil(t *testing.T) {
	assert.False(t, IsNotRepository(nil))
	assert.False(t, IsPushRejected(nil))
	assert.False(t, IsNetworkFailure(nil))
}

func TestPredicatesOnPlainErrors(t *testing.T) {
	// Matching falls back to the error string when no GitError is present.
	assert.True(t, IsNotRepository(errors.New("fatal: not a git repository")))
	assert.False(t, IsNotRepository(errors.New("something else")))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, 0, GetExitCode(nil))
	assert.Equal(t, -1, GetExitCode(errors.New("plain")))

	err := &GitError{ExitCode: 128, Args: []string{"x"}}
	assert.Equal(t, 128, GetExitCode(err))
	assert.Equal(t, 128, GetExitCode(fmt.Errorf("wrapped: %w", err)))
}
