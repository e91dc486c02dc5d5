package common

import (
	"context"

	"github.com/projectcontrols/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PublishEvents publishes the pending events of agg and clears them. It is
// called after the aggregate was saved; a publish failure is logged and
// never returned, so the persisted transition stands.
func PublishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	agg.ClearDomainEvents()
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("Failed to publish domain events",
			zap.String("aggregate_id", agg.GetID().String()),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}
