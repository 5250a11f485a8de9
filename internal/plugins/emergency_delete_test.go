package plugins_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebastianTibata/redbot/internal/domain"
	"github.com/SebastianTibata/redbot/internal/plugins"
	"github.com/SebastianTibata/redbot/internal/reddit"
)

func TestEmergencyDeletePlugin_TaskType(t *testing.T) {
	p := plugins.NewEmergencyDeletePlugin(slog.Default())
	assert.Equal(t, "emergency_delete", p.TaskType())
}

func TestEmergencyDeletePlugin_DeletesOnlyOwnComments(t *testing.T) {
	p := plugins.NewEmergencyDeletePlugin(slog.Default())
	client := &fakeClient{
		me:         "botuser",
		submission: &reddit.Submission{ID: "abc123", Subreddit: "golang"},
		comments: []*reddit.Comment{
			{ID: "c1", Fullname: "t1_c1", Author: "botuser", Body: "oops"},
			{ID: "c2", Fullname: "t1_c2", Author: "alice", Body: "keep me"},
			{ID: "c3", Fullname: "t1_c3", Author: "botuser", Body: "oops again"},
		},
	}

	cfg := json.RawMessage(`{"post_url":"https://reddit.com/r/golang/comments/abc123/x/"}`)
	require.NoError(t, p.Execute(context.Background(), client, cfg, testAccount()))

	assert.Equal(t, []string{"t1_c1", "t1_c3"}, client.deleted)
}

func TestEmergencyDeletePlugin_NoOwnComments(t *testing.T) {
	p := plugins.NewEmergencyDeletePlugin(slog.Default())
	client := &fakeClient{
		me:         "botuser",
		submission: &reddit.Submission{ID: "abc123", Subreddit: "golang"},
		comments: []*reddit.Comment{
			{ID: "c1", Fullname: "t1_c1", Author: "alice", Body: "keep me"},
		},
	}

	cfg := json.RawMessage(`{"post_url":"https://reddit.com/r/golang/comments/abc123/x/"}`)
	require.NoError(t, p.Execute(context.Background(), client, cfg, testAccount()))
	assert.Empty(t, client.deleted)
}

func TestEmergencyDeletePlugin_MissingPostURL(t *testing.T) {
	p := plugins.NewEmergencyDeletePlugin(slog.Default())
	client := &fakeClient{}

	err := p.Execute(context.Background(), client, json.RawMessage(`{}`), testAccount())

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
	assert.Empty(t, client.calls)
}

func TestEmergencyDeletePlugin_PropagatesDeleteError(t *testing.T) {
	sentinel := errors.New("gateway timeout")
	p := plugins.NewEmergencyDeletePlugin(slog.Default())
	client := &fakeClient{
		me:         "botuser",
		submission: &reddit.Submission{ID: "abc123", Subreddit: "golang"},
		comments: []*reddit.Comment{
			{ID: "c1", Fullname: "t1_c1", Author: "botuser", Body: "oops"},
		},
		deleteErr: sentinel,
	}

	cfg := json.RawMessage(`{"post_url":"https://reddit.com/r/golang/comments/abc123/x/"}`)
	err := p.Execute(context.Background(), client, cfg, testAccount())
	require.ErrorIs(t, err, sentinel)
}
