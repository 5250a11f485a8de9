package domain

import (
	"encoding/json"
	"time"
)

// Status represents the lifecycle states of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal returns true if no further state transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is one queued unit of work against a social-media account.
// Config is an opaque document whose schema is owned by the plugin
// registered for Type, not by the engine.
type Task struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Type      string          `json:"type"`
	Config    json.RawMessage `json:"config"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Account is the credential bundle for one external identity.
// Read-only from the executor's perspective.
type Account struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Platform  string    `json:"platform"`
	Handle    string    `json:"handle"`
	Token     string    `json:"-"` // long-lived refresh credential, never serialized
	CreatedAt time.Time `json:"created_at"`
}

// ExecutionLog records a single execution attempt of a task.
// Rows are append-only; never mutated after insert.
type ExecutionLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AccountID string    `json:"account_id"`
	TaskID    string    `json:"task_id"`
	TaskType  string    `json:"task_type"`
	Status    Status    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
