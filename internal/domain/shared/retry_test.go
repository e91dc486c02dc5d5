package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRetryOnConflict_SucceedsAfterConflicts(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), 3, func(ctx context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return NewConcurrencyConflictError("Budget", uuid.New())
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryOnConflict_SurfacesConflictWhenExhausted(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), 2, func(ctx context.Context, attempt int) error {
		calls++
		return NewConcurrencyConflictError("Commitment", uuid.New())
	})
	assert.True(t, IsConcurrencyConflictError(err))
	assert.Equal(t, 2, calls)
}

func TestRetryOnConflict_DoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := RetryOnConflict(context.Background(), 5, func(ctx context.Context, attempt int) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryOnConflict_DefaultsAndContext(t *testing.T) {
	calls := 0
	_ = RetryOnConflict(context.Background(), 0, func(ctx context.Context, attempt int) error {
		calls++
		return NewConcurrencyConflictError("EVMRecord", uuid.New())
	})
	assert.Equal(t, DefaultMaxConflictRetries, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryOnConflict(ctx, 3, func(ctx context.Context, attempt int) error {
		t.Fatal("must not be called with a cancelled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilterOffsetAndPaginated(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, 0, f.Offset())
	f.Page = 3
	assert.Equal(t, 40, f.Offset())

	p := NewPaginated([]int{1, 2}, 41, 3, 20)
	assert.Equal(t, 3, p.TotalPages)
}
