package logger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	l, _ := observed()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithTenant(t *testing.T) {
	l, logs := observed()
	tenantID := uuid.New()

	ctx, enriched := WithTenant(context.Background(), l, tenantID)
	FromContext(ctx).Info("loaded")
	enriched.Info("again")

	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, tenantID.String(), entry.ContextMap()["tenant_id"])
	}
}

func TestWithActor(t *testing.T) {
	t.Run("user", func(t *testing.T) {
		l, logs := observed()
		actor := shared.NewPrincipal(uuid.New(), "controller")
		_, enriched := WithActor(context.Background(), l, actor)
		enriched.Info("approved")

		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "controller", fields["actor_role"])
		assert.Equal(t, actor.UserID.String(), fields["user_id"])
	})

	t.Run("system", func(t *testing.T) {
		l, logs := observed()
		_, enriched := WithActor(context.Background(), l, shared.SystemPrincipal)
		enriched.Info("consumed")

		fields := logs.All()[0].ContextMap()
		assert.NotContains(t, fields, "user_id")
	})
}

func TestTraceFields(t *testing.T) {
	assert.Nil(t, TraceFields(context.Background()))

	fields := TraceFields(spanContext(t))
	require.Len(t, fields, 2)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields[0].String)
	assert.Equal(t, "00f067aa0ba902b7", fields[1].String)
}

func TestCtx(t *testing.T) {
	t.Run("falls back and adds trace", func(t *testing.T) {
		fallback, logs := observed()
		Ctx(spanContext(t), fallback).Info("recalculated")

		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	})

	t.Run("prefers the carried logger", func(t *testing.T) {
		carried, carriedLogs := observed()
		fallback, fallbackLogs := observed()
		ctx := WithContext(context.Background(), carried)

		Ctx(ctx, fallback).Info("recorded")
		assert.Equal(t, 1, carriedLogs.Len())
		assert.Equal(t, 0, fallbackLogs.Len())
	})

	t.Run("nil fallback", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Ctx(context.Background(), nil).Info("dropped")
		})
	})
}
