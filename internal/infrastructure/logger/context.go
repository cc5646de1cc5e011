package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerCtxKey ctxKey = iota
	requestIDCtxKey
	tenantIDCtxKey
	actorIDCtxKey
)

// IntoContext stores the logger in ctx so code further down the call chain
// logs with the request's fields.
func IntoContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerCtxKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID tags both the context and the logger with the request id.
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDCtxKey, requestID)
	l = l.With(zap.String("request_id", requestID))
	return IntoContext(ctx, l), l
}

// WithTenantID tags both the context and the logger with the tenant id.
func WithTenantID(ctx context.Context, l *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, tenantIDCtxKey, tenantID)
	l = l.With(zap.String("tenant_id", tenantID))
	return IntoContext(ctx, l), l
}

// WithActorID tags both the context and the logger with the acting user id.
func WithActorID(ctx context.Context, l *zap.Logger, actorID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, actorIDCtxKey, actorID)
	l = l.With(zap.String("user_id", actorID))
	return IntoContext(ctx, l), l
}

// RequestIDFrom returns the request id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(requestIDCtxKey).(string)
	return s
}

// TenantIDFrom returns the tenant id stored in ctx, if any.
func TenantIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(tenantIDCtxKey).(string)
	return s
}

// ActorIDFrom returns the acting user id stored in ctx, if any.
func ActorIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(actorIDCtxKey).(string)
	return s
}

// TraceIDFrom returns the active span's trace id, or "" when no valid span
// is recording on ctx.
func TraceIDFrom(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanIDFrom returns the active span's span id, or "" when no valid span is
// recording on ctx.
func SpanIDFrom(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}

// WithTrace appends trace_id and span_id fields from the active span so log
// lines correlate with traces. Returns l unchanged when there is no span.
func WithTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// For returns the context's logger enriched with every correlation field the
// context carries: trace ids, request id, tenant id and acting user.
func For(ctx context.Context) *zap.Logger {
	l := WithTrace(ctx, FromContext(ctx))
	if id := RequestIDFrom(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	if id := TenantIDFrom(ctx); id != "" {
		l = l.With(zap.String("tenant_id", id))
	}
	if id := ActorIDFrom(ctx); id != "" {
		l = l.With(zap.String("user_id", id))
	}
	return l
}
