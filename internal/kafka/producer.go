package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/SebastianTibata/redbot/internal/domain"
)

// TopicEvents carries one message per terminal task transition.
const TopicEvents = "tasks.events"

// TaskEvent is published when a task reaches completed or failed. The
// history and metrics views consume it instead of polling Postgres.
type TaskEvent struct {
	TaskID     string        `json:"task_id"`
	AccountID  string        `json:"account_id"`
	TaskType   string        `json:"task_type"`
	Status     domain.Status `json:"status"`
	Error      string        `json:"error,omitempty"`
	DurationMs int64         `json:"duration_ms"`
	WorkerID   string        `json:"worker_id"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// EventPublisher publishes task lifecycle events.
type EventPublisher interface {
	PublishTaskEvent(ctx context.Context, event *TaskEvent) error
	Close() error
}

type publisher struct {
	writer *kafka.Writer
}

// NewEventPublisher creates a Kafka publisher connected to the given brokers.
func NewEventPublisher(brokers []string) EventPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicEvents,
		Balancer:               &kafka.Hash{}, // key by task ID → deterministic partition
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            3,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &publisher{writer: w}
}

func (p *publisher) PublishTaskEvent(ctx context.Context, event *TaskEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal task event: %w", err)
	}

	// Inject the active trace context into message headers so downstream
	// consumers can continue the trace.
	headers := make(headerCarrier, 0)
	otel.GetTextMapPropagator().Inject(ctx, &headers)

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(event.TaskID),
		Value:   value,
		Headers: []kafka.Header(headers),
		Time:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("kafka publish task event %s: %w", event.TaskID, err)
	}
	return nil
}

func (p *publisher) Close() error {
	return p.writer.Close()
}

// headerCarrier adapts a message's []Header slice to the OpenTelemetry
// propagation.TextMapCarrier interface for outgoing events.
type headerCarrier []kafka.Header

func (c headerCarrier) Get(key string) string {
	for _, h := range c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set replaces any existing header with the same key.
func (c *headerCarrier) Set(key, value string) {
	filtered := (*c)[:0]
	for _, h := range *c {
		if h.Key != key {
			filtered = append(filtered, h)
		}
	}
	*c = append(filtered, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = h.Key
	}
	return keys
}
