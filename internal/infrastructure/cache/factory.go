package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/projectcontrols/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache backends
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

const pingTimeout = 5 * time.Second

// Factory builds the snapshot cache and idempotency store for the
// configured backend. Both share one Redis client.
type Factory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	mu     sync.Mutex
	client *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SnapshotCache returns the configured snapshot cache. The none backend
// returns nil, which disables caching.
func (f *Factory) SnapshotCache(ctx context.Context) (SnapshotCache, error) {
	switch f.cacheConfig.Backend {
	case BackendNone:
		f.logger.Info("snapshot cache disabled")
		return nil, nil
	case BackendRedis:
		client, err := f.redisClient(ctx)
		if err == nil {
			f.logger.Info("using Redis snapshot cache", zap.String("addr", f.redisConfig.Addr()))
			return NewRedisSnapshotCache(client, f.cacheConfig.SnapshotTTL), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for snapshot cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory snapshot cache", zap.Error(err))
	}
	return NewInMemorySnapshotCache(f.cacheConfig.SnapshotTTL), nil
}

// IdempotencyStore returns a Redis store for the redis backend and an
// in-memory store otherwise. In-memory IDs are not shared between
// instances, so duplicates delivered to different instances are not detected.
func (f *Factory) IdempotencyStore(ctx context.Context) (IdempotencyStore, error) {
	if f.cacheConfig.Backend == BackendRedis {
		client, err := f.redisClient(ctx)
		if err == nil {
			return NewRedisIdempotencyStore(client, ""), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
			"This may cause duplicate event processing in distributed deployments.",
			zap.Error(err),
		)
	}
	return NewInMemoryIdempotencyStore(), nil
}

// Close closes the shared Redis client, if one was opened
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil {
		return nil
	}
	err := f.client.Close()
	f.client = nil
	return err
}

func (f *Factory) redisClient(ctx context.Context) (*redis.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil {
		return f.client, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", f.redisConfig.Addr(), err)
	}
	f.client = client
	return client, nil
}
