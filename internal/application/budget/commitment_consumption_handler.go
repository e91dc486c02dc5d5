package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/budget"
	"github.com/projectcontrols/backend/internal/domain/commitment"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CommitmentConsumptionHandler keeps budget item consumption in step with
// the commitments drawn against it. Approvals and approved revisions move
// the committed amount, cancellations release it and invoices post actuals.
type CommitmentConsumptionHandler struct {
	budgetRepo budget.BudgetRepository
	metrics    *telemetry.ProjectControlMetrics
	logger     *zap.Logger
	maxRetries int
}

// NewCommitmentConsumptionHandler creates a new handler for commitment events
func NewCommitmentConsumptionHandler(budgetRepo budget.BudgetRepository, logger *zap.Logger) *CommitmentConsumptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitmentConsumptionHandler{
		budgetRepo: budgetRepo,
		logger:     logger,
		maxRetries: shared.DefaultMaxConflictRetries,
	}
}

// SetMetrics sets the project-control metrics collector
func (h *CommitmentConsumptionHandler) SetMetrics(m *telemetry.ProjectControlMetrics) {
	h.metrics = m
}

// SetMaxRetries sets the number of attempts made on optimistic lock conflicts
func (h *CommitmentConsumptionHandler) SetMaxRetries(n int) {
	h.maxRetries = n
}

// EventTypes returns the event types this handler is interested in
func (h *CommitmentConsumptionHandler) EventTypes() []string {
	return []string{
		commitment.EventTypeCommitmentApproved,
		commitment.EventTypeCommitmentRevisionApproved,
		commitment.EventTypeCommitmentCancelled,
		commitment.EventTypeCommitmentInvoiceRecorded,
	}
}

type consumptionKind int

const (
	consumptionCommitted consumptionKind = iota
	consumptionActual
)

// Handle applies the event to the referenced budget item
func (h *CommitmentConsumptionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		itemID *uuid.UUID
		amount decimal.Decimal
		kind   = consumptionCommitted
	)
	switch e := event.(type) {
	case *commitment.CommitmentApprovedEvent:
		itemID, amount = e.BudgetItemID, e.TotalAmount
	case *commitment.CommitmentRevisionApprovedEvent:
		itemID, amount = e.BudgetItemID, e.ChangeAmount
	case *commitment.CommitmentCancelledEvent:
		itemID, amount = e.BudgetItemID, e.ReleasedAmount.Neg()
	case *commitment.CommitmentInvoiceRecordedEvent:
		itemID, amount, kind = e.BudgetItemID, e.Amount, consumptionActual
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if itemID == nil || amount.IsZero() {
		return nil
	}

	err := h.apply(ctx, event.TenantID(), *itemID, kind, amount)
	if shared.IsNotFoundError(err) {
		h.logger.Warn("budget item referenced by commitment not found, skipping",
			zap.String("event_type", event.EventType()),
			zap.String("commitment_id", event.AggregateID().String()),
			zap.String("budget_item_id", itemID.String()),
		)
		return nil
	}
	if err != nil {
		h.logger.Error("failed to update budget consumption",
			zap.String("event_type", event.EventType()),
			zap.String("commitment_id", event.AggregateID().String()),
			zap.String("budget_item_id", itemID.String()),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update budget item %s: %w", itemID, err)
	}

	h.logger.Info("budget consumption updated",
		zap.String("event_type", event.EventType()),
		zap.String("commitment_id", event.AggregateID().String()),
		zap.String("budget_item_id", itemID.String()),
		zap.String("amount", amount.String()),
	)
	return nil
}

func (h *CommitmentConsumptionHandler) apply(ctx context.Context, tenantID, itemID uuid.UUID, kind consumptionKind, amount decimal.Decimal) error {
	return shared.RetryOnConflict(ctx, h.maxRetries, func(ctx context.Context, attempt int) error {
		b, err := h.budgetRepo.FindByItemID(ctx, tenantID, itemID)
		if err != nil {
			return err
		}
		if attempt > 1 {
			onConflictRetry(ctx, h.logger, h.metrics, b.ID, attempt)
		}
		if kind == consumptionActual {
			err = b.RecordActual(itemID, amount, shared.SystemPrincipal)
		} else {
			err = b.RecordCommitment(itemID, amount, shared.SystemPrincipal)
		}
		if err != nil {
			return err
		}
		return h.budgetRepo.SaveWithLock(ctx, b)
	})
}

// Ensure CommitmentConsumptionHandler implements shared.EventHandler
var _ shared.EventHandler = (*CommitmentConsumptionHandler)(nil)
