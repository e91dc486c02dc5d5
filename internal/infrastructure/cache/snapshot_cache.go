package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotTTL bounds how long a current snapshot is served from cache
const DefaultSnapshotTTL = 10 * time.Minute

const snapshotKeyPrefix = "pc:evm:snapshot:"

func snapshotKey(tenantID, controlAccountID uuid.UUID) string {
	return tenantID.String() + ":" + controlAccountID.String()
}

// SnapshotCache caches the current EVM snapshot per control account
type SnapshotCache interface {
	Get(ctx context.Context, tenantID, controlAccountID uuid.UUID) (*evm.Snapshot, bool, error)
	Set(ctx context.Context, tenantID, controlAccountID uuid.UUID, snapshot evm.Snapshot) error
	Invalidate(ctx context.Context, tenantID, controlAccountID uuid.UUID) error
	Close() error
}

// InMemorySnapshotCache keeps snapshots in process memory
type InMemorySnapshotCache struct {
	entries *expiringMap[evm.Snapshot]
	ttl     time.Duration
}

// NewInMemorySnapshotCache creates an in-memory cache. A non-positive ttl
// uses DefaultSnapshotTTL.
func NewInMemorySnapshotCache(ttl time.Duration) *InMemorySnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &InMemorySnapshotCache{
		entries: newExpiringMap[evm.Snapshot](ttl),
		ttl:     ttl,
	}
}

// Get returns a copy of the cached snapshot
func (c *InMemorySnapshotCache) Get(ctx context.Context, tenantID, controlAccountID uuid.UUID) (*evm.Snapshot, bool, error) {
	s, ok := c.entries.get(snapshotKey(tenantID, controlAccountID))
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

// Set stores the snapshot
func (c *InMemorySnapshotCache) Set(ctx context.Context, tenantID, controlAccountID uuid.UUID, snapshot evm.Snapshot) error {
	c.entries.set(snapshotKey(tenantID, controlAccountID), snapshot, c.ttl)
	return nil
}

// Invalidate drops the snapshot
func (c *InMemorySnapshotCache) Invalidate(ctx context.Context, tenantID, controlAccountID uuid.UUID) error {
	c.entries.delete(snapshotKey(tenantID, controlAccountID))
	return nil
}

// Close stops the cleanup loop
func (c *InMemorySnapshotCache) Close() error {
	c.entries.close()
	return nil
}

// RedisSnapshotCache stores snapshots as JSON under a per-account key
type RedisSnapshotCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisSnapshotCache creates a cache on an existing client. A
// non-positive ttl uses DefaultSnapshotTTL.
func NewRedisSnapshotCache(client redis.UniversalClient, ttl time.Duration) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

// Get loads and decodes the cached snapshot
func (c *RedisSnapshotCache) Get(ctx context.Context, tenantID, controlAccountID uuid.UUID) (*evm.Snapshot, bool, error) {
	data, err := c.client.Get(ctx, snapshotKeyPrefix+snapshotKey(tenantID, controlAccountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var s evm.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, true, nil
}

// Set encodes and stores the snapshot with the cache TTL
func (c *RedisSnapshotCache) Set(ctx context.Context, tenantID, controlAccountID uuid.UUID, snapshot evm.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKeyPrefix+snapshotKey(tenantID, controlAccountID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Invalidate deletes the snapshot key
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, tenantID, controlAccountID uuid.UUID) error {
	if err := c.client.Del(ctx, snapshotKeyPrefix+snapshotKey(tenantID, controlAccountID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate snapshot: %w", err)
	}
	return nil
}

// Close is a no-op; the client is owned by the Factory
func (c *RedisSnapshotCache) Close() error {
	return nil
}

var (
	_ SnapshotCache = (*InMemorySnapshotCache)(nil)
	_ SnapshotCache = (*RedisSnapshotCache)(nil)
)
