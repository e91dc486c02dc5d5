package commitment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/application/common"
	"github.com/projectcontrols/backend/internal/domain/commitment"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CommitmentService handles the commitment lifecycle and its ledgers
type CommitmentService struct {
	commitmentRepo commitment.CommitmentRepository
	accountRepo    controlaccount.ControlAccountRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ProjectControlMetrics
	logger         *zap.Logger
	maxRetries     int
}

// NewCommitmentService creates a new CommitmentService. accountRepo may be nil,
// in which case control account references are not checked.
func NewCommitmentService(commitmentRepo commitment.CommitmentRepository, accountRepo controlaccount.ControlAccountRepository) *CommitmentService {
	return &CommitmentService{
		commitmentRepo: commitmentRepo,
		accountRepo:    accountRepo,
		logger:         zap.NewNop(),
		maxRetries:     shared.DefaultMaxConflictRetries,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CommitmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the project-control metrics collector
func (s *CommitmentService) SetMetrics(m *telemetry.ProjectControlMetrics) {
	s.metrics = m
}

// SetLogger sets the logger
func (s *CommitmentService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetMaxRetries sets the number of attempts made on optimistic lock conflicts
func (s *CommitmentService) SetMaxRetries(n int) {
	s.maxRetries = n
}

// Create creates a new commitment in DRAFT status with its initial items
func (s *CommitmentService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCommitmentRequest, actor shared.Principal) (*CommitmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commitment", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID),
	)
	defer span.End()

	if err := common.Validate(req); err != nil {
		return nil, err
	}

	number := strings.TrimSpace(req.CommitmentNumber)
	exists, err := s.commitmentRepo.ExistsByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError(commitment.AggregateTypeCommitment, uuid.Nil, "DUPLICATE_NUMBER",
			fmt.Sprintf("Commitment number %s already exists", number), "commitment_number")
	}
	if req.ControlAccountID != nil && s.accountRepo != nil {
		if _, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, *req.ControlAccountID); err != nil {
			return nil, err
		}
	}

	c, err := commitment.NewCommitment(tenantID, commitment.NewCommitmentParams{
		CommitmentNumber:    number,
		Type:                req.Type,
		Description:         req.Description,
		ProjectID:           req.ProjectID,
		ControlAccountID:    req.ControlAccountID,
		BudgetItemID:        req.BudgetItemID,
		VendorID:            req.VendorID,
		VendorName:          req.VendorName,
		Currency:            req.Currency,
		ExchangeRate:        req.ExchangeRate,
		ContractDate:        req.ContractDate,
		EndDate:             req.EndDate,
		RetentionPercentage: req.RetentionPercentage,
	}, actor)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if err := addItem(c, item, actor); err != nil {
			return nil, err
		}
	}

	if err := s.commitmentRepo.Save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	common.PublishEvents(ctx, s.eventPublisher, s.logger, c)
	s.logger.Info("Commitment created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("commitment_id", c.ID.String()),
		zap.String("commitment_number", c.CommitmentNumber),
		zap.String("total_amount", c.TotalAmount.String()),
	)

	response := ToCommitmentResponse(c)
	return &response, nil
}

func addItem(c *commitment.Commitment, req AddItemRequest, actor shared.Principal) error {
	item, err := c.AddItem(req.Description, req.Unit, req.Quantity, req.UnitPrice, actor)
	if err != nil {
		return err
	}
	itemID := item.ID
	if !req.DiscountPercentage.IsZero() || !req.DiscountAmount.IsZero() {
		if err := c.SetItemDiscount(itemID, req.DiscountPercentage, req.DiscountAmount, actor); err != nil {
			return err
		}
	}
	if !req.TaxRate.IsZero() {
		if err := c.SetItemTax(itemID, req.TaxRate, actor); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a commitment by ID
func (s *CommitmentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CommitmentResponse, error) {
	c, err := s.commitmentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToCommitmentResponse(c)
	return &response, nil
}

// GetByNumber retrieves a commitment by its number
func (s *CommitmentService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*CommitmentResponse, error) {
	c, err := s.commitmentRepo.FindByNumber(ctx, tenantID, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	response := ToCommitmentResponse(c)
	return &response, nil
}

// List lists commitments with filtering and pagination
func (s *CommitmentService) List(ctx context.Context, tenantID uuid.UUID, filter CommitmentListFilter) ([]CommitmentResponse, int64, error) {
	if err := common.Validate(filter); err != nil {
		return nil, 0, err
	}
	domainFilter := filter.ToDomain()
	if filter.ProjectID != nil {
		domainFilter.Filters["project_id"] = *filter.ProjectID
	}
	if filter.ControlAccountID != nil {
		domainFilter.Filters["control_account_id"] = *filter.ControlAccountID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.Type != nil {
		domainFilter.Filters["type"] = string(*filter.Type)
	}

	commitments, err := s.commitmentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.commitmentRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCommitmentResponses(commitments), total, nil
}

// FinancialSummary returns the financial projection of a commitment
func (s *CommitmentService) FinancialSummary(ctx context.Context, tenantID, id uuid.UUID) (*commitment.FinancialSummary, error) {
	c, err := s.commitmentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	summary := c.FinancialSummary()
	return &summary, nil
}

// Delete deletes a DRAFT commitment
func (s *CommitmentService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	c, err := s.commitmentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if c.Status != commitment.StatusDraft {
		return shared.NewInvalidStateError(commitment.AggregateTypeCommitment, id, c.Status.String(), "delete")
	}
	if err := s.commitmentRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Commitment deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("commitment_id", id.String()),
	)
	return nil
}

// ============================================
// Items
// ============================================

// AddItem adds a priced line to a DRAFT commitment
func (s *CommitmentService) AddItem(ctx context.Context, tenantID, id uuid.UUID, req AddItemRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "add_item", func(c *commitment.Commitment) error {
		return addItem(c, req, actor)
	})
}

// UpdateItem replaces the quantity and unit price of an item
func (s *CommitmentService) UpdateItem(ctx context.Context, tenantID, id, itemID uuid.UUID, req UpdateItemRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "update_item", func(c *commitment.Commitment) error {
		return c.UpdateItem(itemID, req.Quantity, req.UnitPrice, actor)
	})
}

// SetItemDiscount sets the discount of an item
func (s *CommitmentService) SetItemDiscount(ctx context.Context, tenantID, id, itemID uuid.UUID, req SetItemDiscountRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "set_item_discount", func(c *commitment.Commitment) error {
		return c.SetItemDiscount(itemID, req.DiscountPercentage, req.DiscountAmount, actor)
	})
}

// SetItemTax sets the tax rate of an item
func (s *CommitmentService) SetItemTax(ctx context.Context, tenantID, id, itemID uuid.UUID, req SetItemTaxRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "set_item_tax", func(c *commitment.Commitment) error {
		return c.SetItemTax(itemID, req.TaxRate, actor)
	})
}

// RemoveItem removes an item from a DRAFT commitment
func (s *CommitmentService) RemoveItem(ctx context.Context, tenantID, id, itemID uuid.UUID, actor shared.Principal) (*CommitmentResponse, error) {
	return s.mutate(ctx, tenantID, id, "remove_item", func(c *commitment.Commitment) error {
		return c.RemoveItem(itemID, actor)
	})
}

// CancelItem cancels an item that has not been invoiced
func (s *CommitmentService) CancelItem(ctx context.Context, tenantID, id, itemID uuid.UUID, actor shared.Principal) (*CommitmentResponse, error) {
	return s.mutate(ctx, tenantID, id, "cancel_item", func(c *commitment.Commitment) error {
		return c.CancelItem(itemID, actor)
	})
}

// RecordItemDelivery records a delivered quantity on an item
func (s *CommitmentService) RecordItemDelivery(ctx context.Context, tenantID, id, itemID uuid.UUID, req RecordItemProgressRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "record_item_delivery", func(c *commitment.Commitment) error {
		return c.RecordItemDelivery(itemID, req.Quantity, actor)
	})
}

// RecordItemInvoice records an invoiced quantity and amount on an item
func (s *CommitmentService) RecordItemInvoice(ctx context.Context, tenantID, id, itemID uuid.UUID, req RecordItemProgressRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "record_item_invoice", func(c *commitment.Commitment) error {
		return c.RecordItemInvoice(itemID, req.Quantity, req.Amount, actor)
	})
}

// RecordItemPayment records a paid amount on an item
func (s *CommitmentService) RecordItemPayment(ctx context.Context, tenantID, id, itemID uuid.UUID, req RecordItemProgressRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "record_item_payment", func(c *commitment.Commitment) error {
		return c.RecordItemPayment(itemID, req.Amount, actor)
	})
}

// ============================================
// Lifecycle
// ============================================

// Submit sends a DRAFT commitment for approval
func (s *CommitmentService) Submit(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*CommitmentResponse, error) {
	return s.mutate(ctx, tenantID, id, "submit", func(c *commitment.Commitment) error {
		return c.Submit(actor)
	})
}

// Approve approves a pending commitment
func (s *CommitmentService) Approve(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*CommitmentResponse, error) {
	return s.mutate(ctx, tenantID, id, "approve", func(c *commitment.Commitment) error {
		return c.Approve(actor)
	})
}

// Reject returns a pending commitment to DRAFT
func (s *CommitmentService) Reject(ctx context.Context, tenantID, id uuid.UUID, req ReasonRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "reject", func(c *commitment.Commitment) error {
		return c.Reject(req.Reason, actor)
	})
}

// Activate moves an approved commitment into execution
func (s *CommitmentService) Activate(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*CommitmentResponse, error) {
	return s.mutate(ctx, tenantID, id, "activate", func(c *commitment.Commitment) error {
		return c.Activate(actor)
	})
}

// Cancel cancels a commitment that has not been invoiced
func (s *CommitmentService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req ReasonRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "cancel", func(c *commitment.Commitment) error {
		return c.Cancel(req.Reason, actor)
	})
}

// Close closes a commitment and locks its items
func (s *CommitmentService) Close(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*CommitmentResponse, error) {
	return s.mutate(ctx, tenantID, id, "close", func(c *commitment.Commitment) error {
		return c.Close(actor)
	})
}

// ============================================
// Allocations, invoices and payments
// ============================================

// Allocate distributes part of the commitment value to a work package or budget item
func (s *CommitmentService) Allocate(ctx context.Context, tenantID, id uuid.UUID, req AllocateRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	target := commitment.AllocationTarget{
		ControlAccountID: req.ControlAccountID,
		WorkPackageID:    req.WorkPackageID,
		BudgetItemID:     req.BudgetItemID,
		Description:      req.Description,
	}
	return s.mutate(ctx, tenantID, id, "allocate", func(c *commitment.Commitment) error {
		_, err := c.Allocate(target, req.Amount, actor)
		return err
	})
}

// UpdateAllocation replaces an allocated amount
func (s *CommitmentService) UpdateAllocation(ctx context.Context, tenantID, id, allocationID uuid.UUID, req UpdateAllocationRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "update_allocation", func(c *commitment.Commitment) error {
		return c.UpdateAllocation(allocationID, req.Amount, actor)
	})
}

// RecordInvoice posts a vendor invoice against an allocation
func (s *CommitmentService) RecordInvoice(ctx context.Context, tenantID, id uuid.UUID, req RecordInvoiceRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	var invoiced decimal.Decimal
	resp, err := s.mutate(ctx, tenantID, id, "record_invoice", func(c *commitment.Commitment) error {
		inv, err := c.RecordInvoice(commitment.RecordInvoiceParams{
			AllocationID:  req.AllocationID,
			InvoiceNumber: req.InvoiceNumber,
			InvoiceDate:   req.InvoiceDate,
			Amount:        req.Amount,
			Retention:     req.RetentionAmount,
		}, actor)
		if err != nil {
			return err
		}
		invoiced = inv.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordInvoiced(ctx, tenantID, string(resp.Currency), invoiced)
	}
	return resp, nil
}

// RecordPayment pays part of an invoice
func (s *CommitmentService) RecordPayment(ctx context.Context, tenantID, id, invoiceID uuid.UUID, req AmountRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	resp, err := s.mutate(ctx, tenantID, id, "record_payment", func(c *commitment.Commitment) error {
		return c.RecordPayment(invoiceID, req.Amount, actor)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordPaid(ctx, tenantID, string(resp.Currency), req.Amount)
	}
	return resp, nil
}

// ReleaseRetention releases retention withheld on an invoice
func (s *CommitmentService) ReleaseRetention(ctx context.Context, tenantID, id, invoiceID uuid.UUID, req AmountRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "release_retention", func(c *commitment.Commitment) error {
		return c.ReleaseRetention(invoiceID, req.Amount, actor)
	})
}

// ============================================
// Revisions
// ============================================

// RequestRevision records a pending change to the commitment value
func (s *CommitmentService) RequestRevision(ctx context.Context, tenantID, id uuid.UUID, req RequestRevisionRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "request_revision", func(c *commitment.Commitment) error {
		_, err := c.RequestRevision(req.ChangeAmount, req.Reason, actor)
		return err
	})
}

// ApproveRevision applies a pending revision to the revised amount
func (s *CommitmentService) ApproveRevision(ctx context.Context, tenantID, id, revisionID uuid.UUID, actor shared.Principal) (*CommitmentResponse, error) {
	return s.mutate(ctx, tenantID, id, "approve_revision", func(c *commitment.Commitment) error {
		return c.ApproveRevision(revisionID, actor)
	})
}

// RejectRevision rejects a pending revision
func (s *CommitmentService) RejectRevision(ctx context.Context, tenantID, id, revisionID uuid.UUID, req ReasonRequest, actor shared.Principal) (*CommitmentResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "reject_revision", func(c *commitment.Commitment) error {
		return c.RejectRevision(revisionID, req.Reason, actor)
	})
}

// mutate reloads the commitment, applies fn and saves it with its version
// check, retrying on optimistic lock conflicts
func (s *CommitmentService) mutate(ctx context.Context, tenantID, id uuid.UUID, operation string, fn func(*commitment.Commitment) error) (*CommitmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "commitment", operation,
		telemetry.WithAttribute(telemetry.SpanAttrCommitmentID, id),
	)
	defer span.End()

	var (
		c    *commitment.Commitment
		from commitment.Status
	)
	err := shared.RetryOnConflict(ctx, s.maxRetries, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			s.onRetry(ctx, id, attempt)
		}
		var err error
		c, err = s.commitmentRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		from = c.Status
		if err := fn(c); err != nil {
			return err
		}
		return s.commitmentRepo.SaveWithLock(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if c.Status != from {
		telemetry.SetAttributes(span, telemetry.SpanAttrStatus, c.Status.String())
		if s.metrics != nil {
			s.metrics.RecordTransition(ctx, tenantID, commitment.AggregateTypeCommitment, c.Status.String())
		}
		s.logger.Info("Commitment status changed",
			zap.String("commitment_id", id.String()),
			zap.String("from", from.String()),
			zap.String("to", c.Status.String()),
		)
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, c)

	response := ToCommitmentResponse(c)
	return &response, nil
}

func (s *CommitmentService) onRetry(ctx context.Context, id uuid.UUID, attempt int) {
	s.logger.Warn("Retrying after concurrency conflict",
		zap.String("aggregate_type", commitment.AggregateTypeCommitment),
		zap.String("aggregate_id", id.String()),
		zap.Int("attempt", attempt),
	)
	if s.metrics != nil {
		s.metrics.RecordConflictRetry(ctx, commitment.AggregateTypeCommitment)
	}
}
