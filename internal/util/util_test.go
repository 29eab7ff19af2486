package util

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitTracerWithoutExport(t *testing.T) {
	tp, err := InitTracer(TracingOptions{ServiceName: "storefront-test", Environment: "test", SampleRatio: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := StartSpan(context.Background(), "unit")
	defer span.End()
	assert.True(t, span.SpanContext().IsSampled())
	assert.True(t, span.SpanContext().Equal(trace.SpanContextFromContext(ctx)))
}

func TestFailSpanRecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	_, span := tp.Tracer("test").Start(context.Background(), "checkout")
	FailSpan(span, errors.New("cart is empty"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "cart is empty", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
}

func TestLoggerFromContextAddsTraceIDs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := logger
	logger = zap.New(core)
	t.Cleanup(func() { logger = prev })

	LoggerFromContext(context.Background()).Info("plain")

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	LoggerFromContext(ctx).Info("traced")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "trace_id")
	assert.Equal(t, span.SpanContext().TraceID().String(), entries[1].ContextMap()["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entries[1].ContextMap()["span_id"])
}
