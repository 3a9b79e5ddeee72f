package core

import "fmt"

// ConfigError is fatal for the whole run: nothing is synced when the
// configuration cannot be loaded or fails validation.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RepositoryStateError indicates a working tree the engine refuses to
// touch: dirty, detached HEAD, missing branch or remote.
type RepositoryStateError struct {
	Path   string
	Reason string
}

func (e *RepositoryStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// NetworkError wraps a fetch or push that failed to reach the remote.
type NetworkError struct {
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PushRejectedError means the remote ref advanced past what was fetched,
// so the safe push refused to overwrite it. Resolved by the next run.
type PushRejectedError struct {
	Remote string
	Branch string
	Err    error
}

func (e *PushRejectedError) Error() string {
	return fmt.Sprintf("push to %s/%s rejected, remote moved during sync: %v", e.Remote, e.Branch, e.Err)
}

func (e *PushRejectedError) Unwrap() error {
	return e.Err
}

// ReconciliationError means the declared strategy could not produce a
// clean tip. The merge was aborted; the working tree is left as found.
type ReconciliationError struct {
	Path string
	Err  error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation failed in %s: %v", e.Path, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}
