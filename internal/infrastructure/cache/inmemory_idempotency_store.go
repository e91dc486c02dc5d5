package cache

import (
	"context"
	"time"
)

// InMemoryIdempotencyStore remembers processed event IDs in process memory.
// It suits single-instance deployments and tests; IDs are not shared
// between processes.
type InMemoryIdempotencyStore struct {
	entries *expiringMap[struct{}]
}

// NewInMemoryIdempotencyStore creates a store and starts its cleanup loop
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{entries: newExpiringMap[struct{}](defaultCleanupInterval)}
}

// MarkProcessed records eventID for ttl. It returns false if eventID is
// already recorded and not expired.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.entries.setIfAbsent(eventID, struct{}{}, ttl), nil
}

// IsProcessed reports whether eventID is recorded and not expired
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	_, ok := s.entries.get(eventID)
	return ok, nil
}

// Forget removes eventID
func (s *InMemoryIdempotencyStore) Forget(ctx context.Context, eventID string) error {
	s.entries.delete(eventID)
	return nil
}

// Size returns the number of stored entries, expired ones included until cleanup
func (s *InMemoryIdempotencyStore) Size() int {
	return s.entries.size()
}

// Close stops the cleanup loop. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.entries.close()
	return nil
}
