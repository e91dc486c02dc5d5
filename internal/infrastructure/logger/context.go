package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey struct{}

// WithContext returns a new context carrying the logger
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger carried by ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithTenant attaches the tenant ID to the carried logger
func WithTenant(ctx context.Context, logger *zap.Logger, tenantID uuid.UUID) (context.Context, *zap.Logger) {
	enriched := logger.With(zap.String("tenant_id", tenantID.String()))
	return WithContext(ctx, enriched), enriched
}

// WithActor attaches the acting principal to the carried logger
func WithActor(ctx context.Context, logger *zap.Logger, actor shared.Principal) (context.Context, *zap.Logger) {
	fields := []zap.Field{zap.String("actor_role", actor.Role)}
	if !actor.IsAnonymous() {
		fields = append(fields, zap.String("user_id", actor.UserID.String()))
	}
	enriched := logger.With(fields...)
	return WithContext(ctx, enriched), enriched
}

// TraceFields returns the trace_id and span_id of the active span, if any
func TraceFields(ctx context.Context) []zap.Field {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
}

// Ctx returns the logger carried by ctx, falling back to fallback, enriched
// with the active trace
func Ctx(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	l, ok := ctx.Value(contextKey{}).(*zap.Logger)
	if !ok {
		l = fallback
	}
	if l == nil {
		l = zap.NewNop()
	}
	if fields := TraceFields(ctx); fields != nil {
		l = l.With(fields...)
	}
	return l
}
