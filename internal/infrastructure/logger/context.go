package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is the request-scoped logging state carried in a context
type scope struct {
	logger    *zap.Logger
	requestID string
	tenantID  string
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, s scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithContext attaches logger to ctx, keeping any request or tenant ID
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	s := scopeFrom(ctx)
	s.logger = logger
	return withScope(ctx, s)
}

// FromContext returns the attached logger or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l := scopeFrom(ctx).logger; l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request ID on ctx and on the returned logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	s := scopeFrom(ctx)
	s.requestID = requestID
	s.logger = logger.With(zap.String("request_id", requestID))
	return withScope(ctx, s), s.logger
}

// WithTenantID records the tenant ID on ctx and on the returned logger
func WithTenantID(ctx context.Context, logger *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	s := scopeFrom(ctx)
	s.tenantID = tenantID
	s.logger = logger.With(zap.String("tenant_id", tenantID))
	return withScope(ctx, s), s.logger
}

func GetRequestID(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

func GetTenantID(ctx context.Context) string {
	return scopeFrom(ctx).tenantID
}

// L returns base with trace_id and span_id of the active span. A nil base
// means the logger attached to ctx.
func L(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = FromContext(ctx)
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return base
	}
	return base.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
