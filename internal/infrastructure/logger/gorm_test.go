package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Messages(t *testing.T) {
	l, logs := observed()
	g := NewGormLogger(l, gormlogger.Info, 0)

	g.Info(context.Background(), "migrated %d tables", 4)
	g.Warn(context.Background(), "warning %s", "x")
	g.Error(context.Background(), "failed")

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "migrated 4 tables", logs.All()[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[2].Level)
	assert.Equal(t, "gorm", logs.All()[0].LoggerName)
}

func TestGormLogger_Silent(t *testing.T) {
	l, logs := observed()
	g := NewGormLogger(l, gormlogger.Silent, 0)

	g.Info(context.Background(), "hidden")
	g.Error(context.Background(), "hidden")
	g.Trace(context.Background(), time.Now(), statement("SELECT 1", 1), errors.New("boom"))
	assert.Equal(t, 0, logs.Len())
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		l, logs := observed()
		g := NewGormLogger(l, gormlogger.Error, 0)
		g.Trace(spanContext(t), time.Now(), statement("UPDATE budgets", 0), errors.New("boom"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "SQL error", entry.Message)
		assert.Equal(t, "UPDATE budgets", entry.ContextMap()["sql"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry.ContextMap()["trace_id"])
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		l, logs := observed()
		g := NewGormLogger(l, gormlogger.Error, 0)
		g.Trace(context.Background(), time.Now(), statement("SELECT", 0), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow statement", func(t *testing.T) {
		l, logs := observed()
		g := NewGormLogger(l, gormlogger.Warn, time.Millisecond)
		g.Trace(context.Background(), time.Now().Add(-time.Second), statement("SELECT", 10), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "Slow SQL", logs.All()[0].Message)
	})

	t.Run("ordinary statement at info", func(t *testing.T) {
		l, logs := observed()
		g := NewGormLogger(l, gormlogger.Info, time.Minute)
		g.Trace(context.Background(), time.Now(), statement("SELECT", 5), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
		assert.Equal(t, int64(5), logs.All()[0].ContextMap()["rows"])
	})

	t.Run("ordinary statement at warn", func(t *testing.T) {
		l, logs := observed()
		g := NewGormLogger(l, gormlogger.Warn, time.Minute)
		g.Trace(context.Background(), time.Now(), statement("SELECT", 5), nil)
		assert.Equal(t, 0, logs.Len())
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	l, logs := observed()
	g := NewGormLogger(l, gormlogger.Silent, 0)
	loud := g.LogMode(gormlogger.Info)

	loud.Info(context.Background(), "shown")
	g.Info(context.Background(), "hidden")
	assert.Equal(t, 1, logs.Len())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Warn, GormLevel(""))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
}
