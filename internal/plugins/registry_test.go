package plugins_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebastianTibata/redbot/internal/domain"
	"github.com/SebastianTibata/redbot/internal/plugins"
	"github.com/SebastianTibata/redbot/internal/reddit"
)

// stub is a minimal Plugin implementation for registry tests.
type stub struct{ taskType string }

func (s *stub) TaskType() string { return s.taskType }
func (s *stub) Execute(_ context.Context, _ reddit.Client, _ json.RawMessage, _ *domain.Account) error {
	return nil
}

func TestRegistry_Get_KnownType(t *testing.T) {
	reg := plugins.NewRegistry()
	reg.Register(&stub{taskType: "publish"})

	p, err := reg.Get("publish")
	require.NoError(t, err)
	assert.Equal(t, "publish", p.TaskType())
}

func TestRegistry_Get_UnknownType(t *testing.T) {
	reg := plugins.NewRegistry()

	_, err := reg.Get("teleport")
	require.Error(t, err)

	var unsupported *domain.UnsupportedTaskTypeError
	assert.True(t, errors.As(err, &unsupported),
		"expected UnsupportedTaskTypeError, got %T", err)
	assert.Equal(t, "teleport", unsupported.TaskType)
}

func TestRegistry_Register_Overwrites(t *testing.T) {
	reg := plugins.NewRegistry()
	first := &stub{taskType: "publish"}
	second := &stub{taskType: "publish"}
	reg.Register(first)
	reg.Register(second)

	p, err := reg.Get("publish")
	require.NoError(t, err)
	assert.Same(t, second, p.(*stub))
}

func TestRegistry_Types(t *testing.T) {
	reg := plugins.NewRegistry()
	reg.Register(&stub{taskType: "publish"})
	reg.Register(&stub{taskType: "reply"})

	assert.ElementsMatch(t, []string{"publish", "reply"}, reg.Types())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := plugins.NewRegistry()
	reg.Register(&stub{taskType: "publish"})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); reg.Register(&stub{taskType: "reply"}) }()
		go func() { defer wg.Done(); _, _ = reg.Get("publish") }()
	}
	wg.Wait()
}
