package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// GitError represents a git command error with its captured output.
type GitError struct {
	ExitCode int
	Stderr   string
	Args     []string
	err      error
}

func (e *GitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.err)
	}
	return fmt.Sprintf("git %s failed: %s", strings.Join(e.Args, " "), strings.TrimSpace(e.Stderr))
}

func (e *GitError) Unwrap() error {
	return e.err
}

// NewGitError creates a GitError from command output and error
func NewGitError(args []string, stderr string, err error) *GitError {
	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &GitError{
		ExitCode: exitCode,
		Stderr:   stderr,
		Args:     args,
		err:      err,
	}
}

// Common error messages from git
const (
	errMsgNotRepository  = "not a git repository"
	errMsgAuthFailed     = "Authentication failed"
	errMsgPermDenied     = "Permission denied"
	errMsgRefNotFound    = "couldn't find remote ref"
	errMsgConflict       = "CONFLICT"
	errMsgNotFastForward = "non-fast-forward"
	errMsgStaleInfo      = "stale info"
	errMsgFetchFirst     = "fetch first"
	errMsgResolveHost    = "Could not resolve host"
	errMsgConnRefused    = "Connection refused"
	errMsgConnTimedOut   = "timed out"
)

// IsNotRepository checks if the error indicates not a git repository
func IsNotRepository(err error) bool {
	return containsError(err, errMsgNotRepository)
}

// IsAuthRequired checks if the error indicates authentication is required
func IsAuthRequired(err error) bool {
	return containsError(err, errMsgAuthFailed) || containsError(err, errMsgPermDenied)
}

// IsRefNotFound checks if the error indicates a ref was not found
func IsRefNotFound(err error) bool {
	return containsError(err, errMsgRefNotFound)
}

// IsConflict checks if the error indicates a merge conflict
func IsConflict(err error) bool {
	return containsError(err, errMsgConflict)
}

// IsPushRejected checks if the error indicates the remote ref moved past
// what was fetched, so the push was refused rather than overwriting it.
func IsPushRejected(err error) bool {
	return containsError(err, errMsgNotFastForward) ||
		containsError(err, errMsgStaleInfo) ||
		containsError(err, errMsgFetchFirst)
}

// IsNetworkFailure checks if the error looks like a connectivity problem
func IsNetworkFailure(err error) bool {
	return containsError(err, errMsgResolveHost) ||
		containsError(err, errMsgConnRefused) ||
		containsError(err, errMsgConnTimedOut)
}

// containsError checks if the error contains a specific message
func containsError(err error, msg string) bool {
	if err == nil {
		return false
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return strings.Contains(strings.ToLower(gitErr.Stderr), strings.ToLower(msg))
	}

	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(msg))
}

// GetExitCode returns the exit code from a git error, or -1 if not available
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return gitErr.ExitCode
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
