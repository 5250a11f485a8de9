// Package executor implements the worker loop: claim the oldest pending
// task, resolve its account, dispatch to the plugin registered for its type,
// and persist the outcome.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/SebastianTibata/redbot/internal/domain"
	"github.com/SebastianTibata/redbot/internal/kafka"
	"github.com/SebastianTibata/redbot/internal/plugins"
	"github.com/SebastianTibata/redbot/internal/postgres"
	redisstore "github.com/SebastianTibata/redbot/internal/redis"
	"github.com/SebastianTibata/redbot/internal/reddit"
	"github.com/SebastianTibata/redbot/pkg/retry"
	"github.com/SebastianTibata/redbot/pkg/telemetry"
)

// Worker claims pending tasks from Postgres and executes them one at a
// time. A process runs exactly one Worker; running more processes is safe
// because the claim is atomic.
type Worker struct {
	tasks     postgres.TaskRepository
	accounts  postgres.AccountRepository
	logs      postgres.LogRepository
	state     redisstore.StateStore
	events    kafka.EventPublisher
	connector reddit.Connector
	registry  *plugins.Registry

	workerID     string
	idleInterval time.Duration
	errorBackoff time.Duration
	taskTimeout  time.Duration
	logger       *slog.Logger
}

// Option configures a Worker.
type Option func(*Worker)

func WithLogger(l *slog.Logger) Option            { return func(w *Worker) { w.logger = l } }
func WithIdleInterval(d time.Duration) Option     { return func(w *Worker) { w.idleInterval = d } }
func WithErrorBackoff(d time.Duration) Option     { return func(w *Worker) { w.errorBackoff = d } }
func WithTaskTimeout(d time.Duration) Option      { return func(w *Worker) { w.taskTimeout = d } }
func WithEventPublisher(p kafka.EventPublisher) Option {
	return func(w *Worker) { w.events = p }
}

// NewWorker constructs a Worker with the given dependencies and options.
func NewWorker(
	workerID string,
	tasks postgres.TaskRepository,
	accounts postgres.AccountRepository,
	logs postgres.LogRepository,
	state redisstore.StateStore,
	connector reddit.Connector,
	registry *plugins.Registry,
	opts ...Option,
) *Worker {
	w := &Worker{
		workerID:     workerID,
		tasks:        tasks,
		accounts:     accounts,
		logs:         logs,
		state:        state,
		connector:    connector,
		registry:     registry,
		idleInterval: 60 * time.Second,
		errorBackoff: time.Second,
		taskTimeout:  5 * time.Minute,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run claims and processes tasks until ctx is cancelled. A claim error
// backs off briefly before the next attempt; an empty queue sleeps for the
// idle interval.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		claimed, err := w.runOnce(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			w.logger.Error("worker iteration failed", slog.String("error", err.Error()))
			sleepCtx(ctx, w.errorBackoff)
		case !claimed:
			sleepCtx(ctx, w.idleInterval)
		}
	}
}

// runOnce claims at most one task and processes it to a terminal state.
// Returns whether a task was claimed.
func (w *Worker) runOnce(ctx context.Context) (bool, error) {
	task, err := w.tasks.ClaimNextPending(ctx)
	if err != nil {
		return false, fmt.Errorf("claim pending task: %w", err)
	}
	if task == nil {
		telemetry.ExecutorClaimEmptyTotal.Inc()
		return false, nil
	}

	w.process(ctx, task)
	return true, nil
}

// process runs a claimed task to completion. Every exit path writes a
// terminal status; no error escapes to the loop.
func (w *Worker) process(ctx context.Context, task *domain.Task) {
	// Detached from the claim loop's context: shutdown stops new claims,
	// but a claimed task and its terminal-status write run to completion
	// under the per-task deadline. A status write aborted by shutdown
	// would leave the row stuck in running.
	ctx = context.WithoutCancel(ctx)

	ctx, span := otel.Tracer("executor").Start(ctx, "executor.process_task")
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", task.ID),
		attribute.String("task.type", task.Type),
		attribute.String("worker.id", w.workerID),
	)

	log := w.logger.With(
		slog.String("task_id", task.ID),
		slog.String("task_type", task.Type),
	)
	log.Info("task claimed")

	// Best-effort mirror; Postgres already holds the claim.
	if err := w.state.SetStatus(ctx, task.ID, domain.StatusRunning); err != nil {
		log.Warn("failed to mirror running status", slog.String("error", err.Error()))
	}

	telemetry.ExecutorTasksInFlight.Inc()
	defer telemetry.ExecutorTasksInFlight.Dec()

	start := time.Now()
	account, execErr := w.execute(ctx, task)
	durationSec := time.Since(start).Seconds()
	durationMs := int64(durationSec * 1000)

	telemetry.ExecutorTaskDurationSeconds.WithLabelValues(task.Type).Observe(durationSec)

	status := domain.StatusCompleted
	detail := ""
	if execErr != nil {
		status = domain.StatusFailed
		detail = execErr.Error()
		log.Error("task failed",
			slog.String("error", execErr.Error()),
			slog.Int64("duration_ms", durationMs),
		)
		span.RecordError(execErr)
		span.SetStatus(codes.Error, "task failed")
	} else {
		log.Info("task completed", slog.Int64("duration_ms", durationMs))
	}

	w.finish(ctx, task, account, status, detail, durationMs)
}

// execute resolves the account, looks up the plugin, builds the platform
// client and invokes the plugin under a deadline. The plugin lookup happens
// before the client is built so an unsupported task type fails without a
// single platform call.
func (w *Worker) execute(ctx context.Context, task *domain.Task) (*domain.Account, error) {
	account, err := w.accounts.GetByID(ctx, task.AccountID)
	if err != nil {
		return nil, err
	}

	plugin, err := w.registry.Get(task.Type)
	if err != nil {
		return account, err
	}

	client, err := w.connector.Connect(ctx, account)
	if err != nil {
		return account, err
	}

	execCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()
	return account, runPlugin(execCtx, plugin, client, task, account)
}

// runPlugin invokes the plugin, converting a panic into a failed task so a
// misbehaving plugin cannot take the worker down.
func runPlugin(ctx context.Context, p plugins.Plugin, client reddit.Client, task *domain.Task, account *domain.Account) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %q panicked: %v", task.Type, r)
		}
	}()
	return p.Execute(ctx, client, task.Config, account)
}

// finish persists the terminal status, mirrors it to Redis, records the
// execution log and publishes the lifecycle event. The status write is the
// one operation retried with backoff: a task left in running forever breaks
// the lifecycle invariant.
func (w *Worker) finish(ctx context.Context, task *domain.Task, account *domain.Account, status domain.Status, detail string, durationMs int64) {
	log := w.logger.With(
		slog.String("task_id", task.ID),
		slog.String("task_type", task.Type),
	)

	persistErr := retry.Do(ctx, retry.Config{
		MaxAttempts: 5,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		OnRetry: func(attempt int, err error) {
			telemetry.ExecutorStatusPersistRetries.Inc()
			log.Warn("terminal status write failed, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
		},
	}, func() error {
		return w.tasks.UpdateStatus(ctx, task.ID, status)
	})
	if persistErr != nil {
		log.Error("could not persist terminal status, task may be stuck in running",
			slog.String("status", string(status)),
			slog.String("error", persistErr.Error()),
		)
	}

	now := time.Now().UTC()

	if err := w.state.SetStatus(ctx, task.ID, status); err != nil {
		log.Warn("failed to mirror terminal status", slog.String("error", err.Error()))
	}
	if err := w.state.SetDetail(ctx, task.ID, &redisstore.ExecutionDetail{
		TaskID:     task.ID,
		TaskType:   task.Type,
		Status:     status,
		Error:      detail,
		DurationMs: durationMs,
		FinishedAt: now,
	}); err != nil {
		log.Warn("failed to mirror execution detail", slog.String("error", err.Error()))
	}

	executionLog := &domain.ExecutionLog{
		AccountID: task.AccountID,
		TaskID:    task.ID,
		TaskType:  task.Type,
		Status:    status,
		Detail:    detail,
		CreatedAt: now,
	}
	if account != nil {
		executionLog.UserID = account.UserID
	}
	if err := w.logs.RecordExecution(ctx, executionLog); err != nil {
		log.Error("failed to record execution log", slog.String("error", err.Error()))
	}

	if w.events != nil {
		event := &kafka.TaskEvent{
			TaskID:     task.ID,
			AccountID:  task.AccountID,
			TaskType:   task.Type,
			Status:     status,
			Error:      detail,
			DurationMs: durationMs,
			WorkerID:   w.workerID,
			OccurredAt: now,
		}
		if err := w.events.PublishTaskEvent(ctx, event); err != nil {
			log.Error("failed to publish task event", slog.String("error", err.Error()))
		} else {
			telemetry.ExecutorEventsPublished.WithLabelValues(string(status)).Inc()
		}
	}

	telemetry.ExecutorTasksProcessed.WithLabelValues(task.Type, string(status)).Inc()
}

// sleepCtx sleeps for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
