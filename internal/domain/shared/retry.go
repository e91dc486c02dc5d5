package shared

import (
	"context"
)

// DefaultMaxConflictRetries is the number of attempts used when none is configured
const DefaultMaxConflictRetries = 3

// RetryOnConflict runs fn until it succeeds, fails with a non-conflict error,
// or maxAttempts attempts have failed with a concurrency conflict. fn must
// reload the aggregate on every attempt. The last conflict error is returned
// when attempts are exhausted.
func RetryOnConflict(ctx context.Context, maxAttempts int, fn func(ctx context.Context, attempt int) error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxConflictRetries
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn(ctx, attempt)
		if err == nil || !IsConcurrencyConflictError(err) {
			return err
		}
	}
	return err
}
