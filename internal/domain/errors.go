package domain

import "fmt"

// ConfigError is returned when a task's config document is missing or
// malformed. Plugins raise it before touching the platform.
type ConfigError struct {
	TaskType string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config for task type %q: %s", e.TaskType, e.Reason)
}

// AuthenticationError is returned when a platform client cannot be
// constructed because the account's credential is invalid or revoked.
type AuthenticationError struct {
	Handle string
	Err    error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for account %q: %v", e.Handle, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// PermissionError is returned when the executing identity lacks a required
// platform privilege, e.g. moderating a community it does not moderate.
type PermissionError struct {
	User      string
	Subreddit string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %q is not a moderator of r/%s", e.User, e.Subreddit)
}

// UnsupportedTaskTypeError is returned when no plugin is registered for a
// task type. Recoverable per task; it must never crash the worker.
type UnsupportedTaskTypeError struct {
	TaskType string
}

func (e *UnsupportedTaskTypeError) Error() string {
	return fmt.Sprintf("no plugin registered for task type %q", e.TaskType)
}

// TaskNotFoundError is returned when a task ID does not exist.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// AccountNotFoundError is returned when a task references an account that
// no longer exists. Fatal for that task only.
type AccountNotFoundError struct {
	AccountID string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account not found: %s", e.AccountID)
}

// PlatformError wraps a failure reported by the external platform.
type PlatformError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *PlatformError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("reddit %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("reddit %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }
