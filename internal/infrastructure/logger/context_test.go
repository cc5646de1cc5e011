package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIntoContextRoundTrip(t *testing.T) {
	l := zap.NewNop()
	ctx := IntoContext(context.Background(), l)

	assert.Same(t, l, FromContext(ctx))
}

func TestFromContext_Empty(t *testing.T) {
	l := FromContext(context.Background())

	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Info("no-op") })
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), loggerCtxKey, "not a logger")

	assert.NotNil(t, FromContext(ctx))
}

func TestCorrelationFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	ctx, l := WithRequestID(ctx, base, "req-1")
	ctx, l = WithTenantID(ctx, l, "tenant-1")
	ctx, l = WithActorID(ctx, l, "user-1")

	assert.Equal(t, "req-1", RequestIDFrom(ctx))
	assert.Equal(t, "tenant-1", TenantIDFrom(ctx))
	assert.Equal(t, "user-1", ActorIDFrom(ctx))

	l.Info("tagged")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "tenant-1", fields["tenant_id"])
	assert.Equal(t, "user-1", fields["user_id"])
}

func TestCorrelationFields_Absent(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, RequestIDFrom(ctx))
	assert.Empty(t, TenantIDFrom(ctx))
	assert.Empty(t, ActorIDFrom(ctx))
}

func TestWithRequestID_Overwrite(t *testing.T) {
	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, zap.NewNop(), "first")
	ctx, _ = WithRequestID(ctx, zap.NewNop(), "second")

	assert.Equal(t, "second", RequestIDFrom(ctx))
}

func spanContext(t *testing.T) trace.SpanContext {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
}

func TestTraceIDFrom_NoSpan(t *testing.T) {
	assert.Empty(t, TraceIDFrom(context.Background()))
	assert.Empty(t, SpanIDFrom(context.Background()))
}

func TestTraceIDFrom_NoopSpanInvalid(t *testing.T) {
	// Noop tracers carry an invalid span context; no ids should leak out.
	otel.SetTracerProvider(noop.NewTracerProvider())
	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.Empty(t, TraceIDFrom(ctx))
	assert.Empty(t, SpanIDFrom(ctx))
}

func TestTraceIDFrom_WithSpan(t *testing.T) {
	sc := spanContext(t)
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	assert.Equal(t, sc.TraceID().String(), TraceIDFrom(ctx))
	assert.Equal(t, sc.SpanID().String(), SpanIDFrom(ctx))
}

func TestWithTrace(t *testing.T) {
	t.Run("no span leaves logger unchanged", func(t *testing.T) {
		l := zap.NewNop()
		assert.Same(t, l, WithTrace(context.Background(), l))
	})

	t.Run("valid span adds trace fields", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		sc := spanContext(t)
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		WithTrace(ctx, zap.New(core)).Info("traced")

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
		assert.Equal(t, sc.SpanID().String(), fields["span_id"])
	})
}

func TestFor_EnrichesEverything(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	ctx := trace.ContextWithSpanContext(context.Background(), spanContext(t))
	ctx = IntoContext(ctx, zap.New(core))
	ctx = context.WithValue(ctx, requestIDCtxKey, "req-9")
	ctx = context.WithValue(ctx, tenantIDCtxKey, "tenant-9")
	ctx = context.WithValue(ctx, actorIDCtxKey, "user-9")

	For(ctx).Info("enriched")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "tenant-9", fields["tenant_id"])
	assert.Equal(t, "user-9", fields["user_id"])
	assert.NotEmpty(t, fields["trace_id"])
}

func TestFor_EmptyContext(t *testing.T) {
	assert.NotPanics(t, func() {
		For(context.Background()).Info("nothing to add")
	})
}
