//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return config.RedisConfig{Host: host, Port: port.Int()}
}

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(config.CacheConfig{Backend: BackendRedis, SnapshotTTL: time.Minute}, startRedis(t),
		WithInMemoryFallback(false))
	defer f.Close()

	t.Run("snapshot cache", func(t *testing.T) {
		c, err := f.SnapshotCache(ctx)
		require.NoError(t, err)
		require.IsType(t, &RedisSnapshotCache{}, c)

		tenantID, caID := uuid.New(), uuid.New()
		snap := testSnapshot(caID)
		require.NoError(t, c.Set(ctx, tenantID, caID, snap))

		got, ok, err := c.Get(ctx, tenantID, caID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, snap.RecordID, got.RecordID)
		assert.True(t, snap.CPI.Equal(got.CPI))
		assert.True(t, snap.DataDate.Equal(got.DataDate))

		require.NoError(t, c.Invalidate(ctx, tenantID, caID))
		_, ok, err = c.Get(ctx, tenantID, caID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("idempotency store", func(t *testing.T) {
		store, err := f.IdempotencyStore(ctx)
		require.NoError(t, err)
		require.IsType(t, &RedisIdempotencyStore{}, store)

		id := uuid.NewString()
		isNew, err := store.MarkProcessed(ctx, id, time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, id, time.Minute)
		require.NoError(t, err)
		assert.False(t, isNew)

		require.NoError(t, store.Forget(ctx, id))
		processed, err := store.IsProcessed(ctx, id)
		require.NoError(t, err)
		assert.False(t, processed)
	})
}
