package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SebastianTibata/redbot/internal/domain"
)

const stateTTL = 24 * time.Hour

func stateKey(taskID string) string  { return "task:state:" + taskID }
func detailKey(taskID string) string { return "task:detail:" + taskID }

// StateStore mirrors live task status in Redis so dashboards can poll the
// current state without hitting Postgres. Best-effort from the worker's
// perspective; Postgres remains the source of truth.
type StateStore interface {
	SetStatus(ctx context.Context, taskID string, status domain.Status) error
	GetStatus(ctx context.Context, taskID string) (domain.Status, error)
	SetDetail(ctx context.Context, taskID string, detail *ExecutionDetail) error
	GetDetail(ctx context.Context, taskID string) (*ExecutionDetail, error)
}

// ExecutionDetail is the last-known outcome summary for a task.
type ExecutionDetail struct {
	TaskID     string        `json:"task_id"`
	TaskType   string        `json:"task_type"`
	Status     domain.Status `json:"status"`
	Error      string        `json:"error,omitempty"`
	DurationMs int64         `json:"duration_ms"`
	FinishedAt time.Time     `json:"finished_at"`
}

type stateStore struct {
	client *redis.Client
}

// NewStateStore creates a Redis-backed StateStore.
func NewStateStore(client *redis.Client) StateStore {
	return &stateStore{client: client}
}

// NewClient creates and returns a new Redis client.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
		PoolSize:     10,
	})
}

func (s *stateStore) SetStatus(ctx context.Context, taskID string, status domain.Status) error {
	err := s.client.Set(ctx, stateKey(taskID), string(status), stateTTL).Err()
	if err != nil {
		return fmt.Errorf("redis set status for %s: %w", taskID, err)
	}
	return nil
}

func (s *stateStore) GetStatus(ctx context.Context, taskID string) (domain.Status, error) {
	val, err := s.client.Get(ctx, stateKey(taskID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", &domain.TaskNotFoundError{TaskID: taskID}
		}
		return "", fmt.Errorf("redis get status for %s: %w", taskID, err)
	}
	return domain.Status(val), nil
}

func (s *stateStore) SetDetail(ctx context.Context, taskID string, detail *ExecutionDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal execution detail: %w", err)
	}
	if err := s.client.Set(ctx, detailKey(taskID), data, stateTTL).Err(); err != nil {
		return fmt.Errorf("redis set detail for %s: %w", taskID, err)
	}
	return nil
}

func (s *stateStore) GetDetail(ctx context.Context, taskID string) (*ExecutionDetail, error) {
	data, err := s.client.Get(ctx, detailKey(taskID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &domain.TaskNotFoundError{TaskID: taskID}
		}
		return nil, fmt.Errorf("redis get detail for %s: %w", taskID, err)
	}
	var detail ExecutionDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("unmarshal execution detail: %w", err)
	}
	return &detail, nil
}
