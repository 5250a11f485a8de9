package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExecutorTasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "redbot",
		Subsystem: "executor",
		Name:      "tasks_processed_total",
		Help:      "Total tasks processed, labelled by task type and terminal status.",
	}, []string{"task_type", "status"})

	ExecutorTasksInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "redbot",
		Subsystem: "executor",
		Name:      "tasks_inflight",
		Help:      "Tasks currently being executed.",
	})

	ExecutorTaskDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "redbot",
		Subsystem: "executor",
		Name:      "task_duration_seconds",
		Help:      "End-to-end task execution time in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"task_type"})

	ExecutorClaimEmptyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "redbot",
		Subsystem: "executor",
		Name:      "claim_empty_total",
		Help:      "Claim attempts that found no pending task.",
	})

	ExecutorStatusPersistRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "redbot",
		Subsystem: "executor",
		Name:      "status_persist_retries_total",
		Help:      "Retries while writing a task's terminal status.",
	})

	ExecutorEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "redbot",
		Subsystem: "executor",
		Name:      "events_published_total",
		Help:      "Task lifecycle events published to Kafka.",
	}, []string{"status"})
)
