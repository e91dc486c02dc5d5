package budget

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/application/common"
	"github.com/projectcontrols/backend/internal/domain/budget"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// BudgetService handles budget versions, their items and the revision workflow
type BudgetService struct {
	budgetRepo     budget.BudgetRepository
	accountRepo    controlaccount.ControlAccountRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ProjectControlMetrics
	logger         *zap.Logger
	maxRetries     int
}

// NewBudgetService creates a new BudgetService. accountRepo may be nil,
// in which case control account references on items are not checked.
func NewBudgetService(budgetRepo budget.BudgetRepository, accountRepo controlaccount.ControlAccountRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:  budgetRepo,
		accountRepo: accountRepo,
		logger:      zap.NewNop(),
		maxRetries:  shared.DefaultMaxConflictRetries,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BudgetService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the project-control metrics collector
func (s *BudgetService) SetMetrics(m *telemetry.ProjectControlMetrics) {
	s.metrics = m
}

// SetLogger sets the logger
func (s *BudgetService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetMaxRetries sets the number of attempts made on optimistic lock conflicts
func (s *BudgetService) SetMaxRetries(n int) {
	s.maxRetries = n
}

// Create creates the next budget version of a project in DRAFT status
func (s *BudgetService) Create(ctx context.Context, tenantID uuid.UUID, req CreateBudgetRequest, actor shared.Principal) (*BudgetResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID),
	)
	defer span.End()

	if err := common.Validate(req); err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if err := s.checkControlAccount(ctx, tenantID, item); err != nil {
			return nil, err
		}
	}

	version, err := s.budgetRepo.NextBudgetVersion(ctx, tenantID, req.ProjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	b, err := budget.NewBudget(tenantID, req.ProjectID, req.Name, version, req.Currency, actor)
	if err != nil {
		return nil, err
	}
	b.Description = req.Description
	for _, item := range req.Items {
		if _, err := b.AddItem(item.Code, item.Description, item.ControlAccountID, item.Amount, actor); err != nil {
			return nil, err
		}
	}

	if err := s.budgetRepo.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	common.PublishEvents(ctx, s.eventPublisher, s.logger, b)
	s.logger.Info("Budget created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("budget_id", b.ID.String()),
		zap.String("project_id", b.ProjectID.String()),
		zap.Int("budget_version", b.BudgetVersion),
	)

	response := ToBudgetResponse(b)
	return &response, nil
}

func (s *BudgetService) checkControlAccount(ctx context.Context, tenantID uuid.UUID, req AddItemRequest) error {
	if req.ControlAccountID == nil || s.accountRepo == nil {
		return nil
	}
	_, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, *req.ControlAccountID)
	return err
}

// GetByID retrieves a budget by ID
func (s *BudgetService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BudgetResponse, error) {
	b, err := s.budgetRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToBudgetResponse(b)
	return &response, nil
}

// List lists budgets with filtering and pagination
func (s *BudgetService) List(ctx context.Context, tenantID uuid.UUID, filter BudgetListFilter) ([]BudgetResponse, int64, error) {
	if err := common.Validate(filter); err != nil {
		return nil, 0, err
	}
	domainFilter := filter.ToDomain()
	if filter.ProjectID != nil {
		domainFilter.Filters["project_id"] = *filter.ProjectID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}

	budgets, err := s.budgetRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.budgetRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToBudgetResponses(budgets), total, nil
}

// Summary returns the consumption projection of a budget
func (s *BudgetService) Summary(ctx context.Context, tenantID, id uuid.UUID) (*budget.BudgetSummary, error) {
	b, err := s.budgetRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	summary := b.Summary()
	return &summary, nil
}

// Delete deletes a budget that has not been submitted or was rejected
func (s *BudgetService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	b, err := s.budgetRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !b.Status.IsEditable() {
		return shared.NewInvalidStateError(budget.AggregateTypeBudget, id, b.Status.String(), "delete")
	}
	if err := s.budgetRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Budget deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("budget_id", id.String()),
	)
	return nil
}

// UpdateDetails changes the header of an editable budget
func (s *BudgetService) UpdateDetails(ctx context.Context, tenantID, id uuid.UUID, req UpdateBudgetRequest, actor shared.Principal) (*BudgetResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "update", func(b *budget.Budget) error {
		return b.UpdateDetails(req.Name, req.Description, req.ExchangeRate, actor)
	})
}

// ============================================
// Items
// ============================================

// AddItem adds a budget line to an editable budget
func (s *BudgetService) AddItem(ctx context.Context, tenantID, id uuid.UUID, req AddItemRequest, actor shared.Principal) (*BudgetResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkControlAccount(ctx, tenantID, req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "add_item", func(b *budget.Budget) error {
		_, err := b.AddItem(req.Code, req.Description, req.ControlAccountID, req.Amount, actor)
		return err
	})
}

// UpdateItem changes the description and amount of a budget line
func (s *BudgetService) UpdateItem(ctx context.Context, tenantID, id, itemID uuid.UUID, req UpdateItemRequest, actor shared.Principal) (*BudgetResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "update_item", func(b *budget.Budget) error {
		return b.UpdateItem(itemID, req.Description, req.Amount, actor)
	})
}

// RemoveItem removes an unconsumed budget line
func (s *BudgetService) RemoveItem(ctx context.Context, tenantID, id, itemID uuid.UUID, actor shared.Principal) (*BudgetResponse, error) {
	return s.mutate(ctx, tenantID, id, "remove_item", func(b *budget.Budget) error {
		return b.RemoveItem(itemID, actor)
	})
}

// ============================================
// Workflow
// ============================================

// Submit sends a budget for review
func (s *BudgetService) Submit(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*BudgetResponse, error) {
	return s.mutate(ctx, tenantID, id, "submit", func(b *budget.Budget) error {
		return b.Submit(actor)
	})
}

// Baseline accepts a reviewed budget as the project baseline
func (s *BudgetService) Baseline(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*BudgetResponse, error) {
	return s.mutate(ctx, tenantID, id, "baseline", func(b *budget.Budget) error {
		return b.Baseline(actor)
	})
}

// Approve approves a reviewed budget
func (s *BudgetService) Approve(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*BudgetResponse, error) {
	return s.mutate(ctx, tenantID, id, "approve", func(b *budget.Budget) error {
		return b.Approve(actor)
	})
}

// Reject rejects a reviewed budget
func (s *BudgetService) Reject(ctx context.Context, tenantID, id uuid.UUID, req ReasonRequest, actor shared.Principal) (*BudgetResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "reject", func(b *budget.Budget) error {
		return b.Reject(req.Reason, actor)
	})
}

// Reopen returns a rejected budget to DRAFT
func (s *BudgetService) Reopen(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*BudgetResponse, error) {
	return s.mutate(ctx, tenantID, id, "reopen", func(b *budget.Budget) error {
		return b.Reopen(actor)
	})
}

// Activate puts a baselined budget into use
func (s *BudgetService) Activate(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*BudgetResponse, error) {
	return s.mutate(ctx, tenantID, id, "activate", func(b *budget.Budget) error {
		return b.Activate(actor)
	})
}

// Lock freezes the budget amounts
func (s *BudgetService) Lock(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*BudgetResponse, error) {
	return s.mutate(ctx, tenantID, id, "lock", func(b *budget.Budget) error {
		return b.Lock(actor)
	})
}

// Close closes the budget
func (s *BudgetService) Close(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*BudgetResponse, error) {
	return s.mutate(ctx, tenantID, id, "close", func(b *budget.Budget) error {
		return b.Close(actor)
	})
}

// ============================================
// Revisions
// ============================================

// RequestRevision records a pending change to one budget line
func (s *BudgetService) RequestRevision(ctx context.Context, tenantID, id uuid.UUID, req RequestRevisionRequest, actor shared.Principal) (*BudgetResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "request_revision", func(b *budget.Budget) error {
		_, err := b.RequestRevision(req.BudgetItemID, req.ChangeAmount, req.Reason, actor)
		return err
	})
}

// ApproveRevision applies a pending revision to its budget line
func (s *BudgetService) ApproveRevision(ctx context.Context, tenantID, id, revisionID uuid.UUID, actor shared.Principal) (*BudgetResponse, error) {
	return s.mutate(ctx, tenantID, id, "approve_revision", func(b *budget.Budget) error {
		return b.ApproveRevision(revisionID, actor)
	})
}

// RejectRevision rejects a pending revision
func (s *BudgetService) RejectRevision(ctx context.Context, tenantID, id, revisionID uuid.UUID, req ReasonRequest, actor shared.Principal) (*BudgetResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "reject_revision", func(b *budget.Budget) error {
		return b.RejectRevision(revisionID, req.Reason, actor)
	})
}

// mutate reloads the budget, applies fn and saves it with its version
// check, retrying on optimistic lock conflicts
func (s *BudgetService) mutate(ctx context.Context, tenantID, id uuid.UUID, operation string, fn func(*budget.Budget) error) (*BudgetResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", operation,
		telemetry.WithAttribute(telemetry.SpanAttrBudgetID, id),
	)
	defer span.End()

	var (
		b    *budget.Budget
		from budget.Status
	)
	err := shared.RetryOnConflict(ctx, s.maxRetries, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			onConflictRetry(ctx, s.logger, s.metrics, id, attempt)
		}
		var err error
		b, err = s.budgetRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		from = b.Status
		if err := fn(b); err != nil {
			return err
		}
		return s.budgetRepo.SaveWithLock(ctx, b)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if b.Status != from {
		telemetry.SetAttributes(span, telemetry.SpanAttrStatus, b.Status.String())
		if s.metrics != nil {
			s.metrics.RecordTransition(ctx, tenantID, budget.AggregateTypeBudget, b.Status.String())
		}
		s.logger.Info("Budget status changed",
			zap.String("budget_id", id.String()),
			zap.String("from", from.String()),
			zap.String("to", b.Status.String()),
		)
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, b)

	response := ToBudgetResponse(b)
	return &response, nil
}

func onConflictRetry(ctx context.Context, logger *zap.Logger, metrics *telemetry.ProjectControlMetrics, id uuid.UUID, attempt int) {
	logger.Warn("Retrying after concurrency conflict",
		zap.String("aggregate_type", budget.AggregateTypeBudget),
		zap.String("aggregate_id", id.String()),
		zap.Int("attempt", attempt),
	)
	if metrics != nil {
		metrics.RecordConflictRetry(ctx, budget.AggregateTypeBudget)
	}
}
