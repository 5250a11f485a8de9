// Package plugins holds the executor for each task type and the registry
// (kernel) that maps a task's declared type to its executor.
package plugins

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/SebastianTibata/redbot/internal/domain"
	"github.com/SebastianTibata/redbot/internal/reddit"
)

// Plugin performs one task type's action against the platform. Each
// implementation owns the schema of its config document and must validate
// it before touching the platform.
type Plugin interface {
	TaskType() string
	Execute(ctx context.Context, client reddit.Client, config json.RawMessage, account *domain.Account) error
}

// Registry maps task types to their plugins. Built once at startup.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds a plugin. Safe to call concurrently.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.TaskType()] = p
}

// Get returns the plugin for the given task type.
// Returns UnsupportedTaskTypeError if none is registered.
func (r *Registry) Get(taskType string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[taskType]
	if !ok {
		return nil, &domain.UnsupportedTaskTypeError{TaskType: taskType}
	}
	return p, nil
}

// Types returns the registered task types, for startup logging.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.plugins))
	for t := range r.plugins {
		types = append(types, t)
	}
	return types
}
