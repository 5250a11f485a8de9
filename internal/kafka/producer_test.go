package kafka

import (
	"context"
	"testing"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier_SetReplacesExistingKey(t *testing.T) {
	c := headerCarrier{
		{Key: "traceparent", Value: []byte("old")},
		{Key: "baggage", Value: []byte("tenant=a")},
	}

	c.Set("traceparent", "new")

	assert.Equal(t, "new", c.Get("traceparent"))
	assert.Equal(t, "tenant=a", c.Get("baggage"))
	assert.Len(t, c, 2)
}

func TestHeaderCarrier_GetMissingKey(t *testing.T) {
	c := headerCarrier{{Key: "baggage", Value: []byte("tenant=a")}}

	assert.Empty(t, c.Get("traceparent"))
	assert.Equal(t, []string{"baggage"}, c.Keys())
}

func TestHeaderCarrier_CarriesTraceContext(t *testing.T) {
	propagator := propagation.TraceContext{}

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	headers := make(headerCarrier, 0)
	propagator.Inject(ctx, &headers)
	require.NotEmpty(t, headers)

	// A consumer rebuilding the carrier from the message headers must
	// recover the same span context.
	rebuilt := headerCarrier([]segkafka.Header(headers))
	extracted := propagator.Extract(context.Background(), &rebuilt)
	assert.Equal(t, traceID, trace.SpanContextFromContext(extracted).TraceID())
}
