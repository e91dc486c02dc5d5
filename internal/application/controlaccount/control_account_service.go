package controlaccount

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/application/common"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ControlAccountService handles control account lifecycle, packages and team
type ControlAccountService struct {
	accountRepo    controlaccount.ControlAccountRepository
	recordRepo     evm.EVMRecordRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ProjectControlMetrics
	logger         *zap.Logger
	maxRetries     int
}

// NewControlAccountService creates a new ControlAccountService
func NewControlAccountService(accountRepo controlaccount.ControlAccountRepository, recordRepo evm.EVMRecordRepository) *ControlAccountService {
	return &ControlAccountService{
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		logger:      zap.NewNop(),
		maxRetries:  shared.DefaultMaxConflictRetries,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ControlAccountService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the project-control metrics collector
func (s *ControlAccountService) SetMetrics(m *telemetry.ProjectControlMetrics) {
	s.metrics = m
}

// SetLogger sets the logger
func (s *ControlAccountService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetMaxRetries sets the number of attempts made on optimistic lock conflicts
func (s *ControlAccountService) SetMaxRetries(n int) {
	s.maxRetries = n
}

// Create creates a new control account, optionally assigning its CAM
func (s *ControlAccountService) Create(ctx context.Context, tenantID uuid.UUID, req CreateControlAccountRequest, actor shared.Principal) (*ControlAccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "control_account", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID),
	)
	defer span.End()

	if err := common.Validate(req); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.accountRepo.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError(controlaccount.AggregateTypeControlAccount, uuid.Nil, "DUPLICATE_CODE",
			fmt.Sprintf("Control account code %s already exists", code), "code")
	}

	account, err := controlaccount.NewControlAccount(tenantID, req.ProjectID, code, req.Name, req.MeasurementMethod, req.BAC, actor)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		account.SetDescription(req.Description, actor)
	}
	if req.CAMUserID != nil {
		if _, err := account.Assign(*req.CAMUserID, controlaccount.RoleCAM, actor); err != nil {
			return nil, err
		}
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	common.PublishEvents(ctx, s.eventPublisher, s.logger, account)
	s.logger.Info("Control account created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("control_account_id", account.ID.String()),
		zap.String("code", account.Code),
	)

	response := ToControlAccountResponse(account)
	return &response, nil
}

// GetByID retrieves a control account by ID
func (s *ControlAccountService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ControlAccountResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToControlAccountResponse(account)
	return &response, nil
}

// GetByCode retrieves a control account by code
func (s *ControlAccountService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ControlAccountResponse, error) {
	account, err := s.accountRepo.FindByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	response := ToControlAccountResponse(account)
	return &response, nil
}

// List lists control accounts with filtering and pagination
func (s *ControlAccountService) List(ctx context.Context, tenantID uuid.UUID, filter ControlAccountListFilter) ([]ControlAccountResponse, int64, error) {
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

	accounts, err := s.accountRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.accountRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToControlAccountResponses(accounts), total, nil
}

// Baseline freezes the budget of an OPEN control account
func (s *ControlAccountService) Baseline(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*ControlAccountResponse, error) {
	return s.mutate(ctx, tenantID, id, "baseline", func(ca *controlaccount.ControlAccount) error {
		return ca.Baseline(actor)
	})
}

// UpdateProgress sets the percent complete of a control account
func (s *ControlAccountService) UpdateProgress(ctx context.Context, tenantID, id uuid.UUID, req UpdateProgressRequest, actor shared.Principal) (*ControlAccountResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "update_progress", func(ca *controlaccount.ControlAccount) error {
		return ca.UpdateProgress(req.PercentComplete, actor)
	})
}

// RollUpProgress sets the account progress from its work packages
func (s *ControlAccountService) RollUpProgress(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*ControlAccountResponse, error) {
	return s.mutate(ctx, tenantID, id, "roll_up_progress", func(ca *controlaccount.ControlAccount) error {
		return ca.RollUpProgress(actor)
	})
}

// Close closes a control account whose work packages are all complete
func (s *ControlAccountService) Close(ctx context.Context, tenantID, id uuid.UUID, actor shared.Principal) (*ControlAccountResponse, error) {
	return s.mutate(ctx, tenantID, id, "close", func(ca *controlaccount.ControlAccount) error {
		return ca.Close(actor)
	})
}

// UpdateBudget replaces the BAC and reserves of a control account
func (s *ControlAccountService) UpdateBudget(ctx context.Context, tenantID, id uuid.UUID, req UpdateBudgetRequest, actor shared.Principal) (*ControlAccountResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "update_budget", func(ca *controlaccount.ControlAccount) error {
		return ca.UpdateBudget(req.BAC, req.ContingencyReserve, req.ManagementReserve, actor)
	})
}

// Delete deletes an OPEN control account with no children and no EVM records
func (s *ControlAccountService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "control_account", "delete",
		telemetry.WithAttribute(telemetry.SpanAttrControlAccountID, id),
	)
	defer span.End()

	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := account.EnsureDeletable(); err != nil {
		return err
	}
	count, err := s.recordRepo.CountByControlAccount(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewInvariantViolationError(controlaccount.AggregateTypeControlAccount, id, "HAS_EVM_RECORDS",
			fmt.Sprintf("Cannot delete a control account with %d EVM record(s)", count), "evm_records")
	}

	if err := s.accountRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.logger.Info("Control account deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("control_account_id", id.String()),
	)
	return nil
}

// AddWorkPackage adds a work package funded from the unallocated BAC
func (s *ControlAccountService) AddWorkPackage(ctx context.Context, tenantID, id uuid.UUID, req AddPackageRequest, actor shared.Principal) (*ControlAccountResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "add_work_package", func(ca *controlaccount.ControlAccount) error {
		_, err := ca.AddWorkPackage(req.Code, req.Name, req.Budget, actor)
		return err
	})
}

// UpdateWorkPackageProgress sets the percent complete of a work package
func (s *ControlAccountService) UpdateWorkPackageProgress(ctx context.Context, tenantID, id, workPackageID uuid.UUID, req UpdateProgressRequest, actor shared.Principal) (*ControlAccountResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "update_work_package_progress", func(ca *controlaccount.ControlAccount) error {
		return ca.UpdateWorkPackageProgress(workPackageID, req.PercentComplete, actor)
	})
}

// RemoveWorkPackage removes a work package with no recorded progress
func (s *ControlAccountService) RemoveWorkPackage(ctx context.Context, tenantID, id, workPackageID uuid.UUID, actor shared.Principal) (*ControlAccountResponse, error) {
	return s.mutate(ctx, tenantID, id, "remove_work_package", func(ca *controlaccount.ControlAccount) error {
		return ca.RemoveWorkPackage(workPackageID, actor)
	})
}

// AddMilestone adds a weighted milestone to a work package
func (s *ControlAccountService) AddMilestone(ctx context.Context, tenantID, id, workPackageID uuid.UUID, req AddMilestoneRequest, actor shared.Principal) (*ControlAccountResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "add_milestone", func(ca *controlaccount.ControlAccount) error {
		_, err := ca.AddMilestone(workPackageID, req.Name, req.Weight, actor)
		return err
	})
}

// UpdateMilestoneProgress sets the percent complete of a milestone
func (s *ControlAccountService) UpdateMilestoneProgress(ctx context.Context, tenantID, id, workPackageID, milestoneID uuid.UUID, req UpdateProgressRequest, actor shared.Principal) (*ControlAccountResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "update_milestone_progress", func(ca *controlaccount.ControlAccount) error {
		return ca.UpdateMilestoneProgress(workPackageID, milestoneID, req.PercentComplete, actor)
	})
}

// AddPlanningPackage adds a planning package funded from the unallocated BAC
func (s *ControlAccountService) AddPlanningPackage(ctx context.Context, tenantID, id uuid.UUID, req AddPackageRequest, actor shared.Principal) (*ControlAccountResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "add_planning_package", func(ca *controlaccount.ControlAccount) error {
		_, err := ca.AddPlanningPackage(req.Code, req.Name, req.Budget, actor)
		return err
	})
}

// ConvertPlanningPackage turns a planning package into a work package
func (s *ControlAccountService) ConvertPlanningPackage(ctx context.Context, tenantID, id, planningPackageID uuid.UUID, actor shared.Principal) (*ControlAccountResponse, error) {
	return s.mutate(ctx, tenantID, id, "convert_planning_package", func(ca *controlaccount.ControlAccount) error {
		_, err := ca.ConvertPlanningPackage(planningPackageID, actor)
		return err
	})
}

// Assign adds a team member; a new CAM replaces the active one
func (s *ControlAccountService) Assign(ctx context.Context, tenantID, id uuid.UUID, req AssignRequest, actor shared.Principal) (*ControlAccountResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "assign", func(ca *controlaccount.ControlAccount) error {
		_, err := ca.Assign(req.UserID, req.Role, actor)
		return err
	})
}

// Unassign deactivates every active assignment of a user
func (s *ControlAccountService) Unassign(ctx context.Context, tenantID, id, userID uuid.UUID, actor shared.Principal) (*ControlAccountResponse, error) {
	return s.mutate(ctx, tenantID, id, "unassign", func(ca *controlaccount.ControlAccount) error {
		return ca.Unassign(userID, actor)
	})
}

// GetPerformance returns the EVM performance projection of a control account
func (s *ControlAccountService) GetPerformance(ctx context.Context, tenantID, id uuid.UUID) (*controlaccount.Metrics, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "control_account", "get_performance",
		telemetry.WithAttribute(telemetry.SpanAttrControlAccountID, id),
	)
	defer span.End()

	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	var records []evm.EVMRecord
	latest, err := s.recordRepo.FindLatestByControlAccount(ctx, tenantID, id)
	switch {
	case shared.IsNotFoundError(err):
	case err != nil:
		telemetry.RecordError(span, err)
		return nil, err
	default:
		records = append(records, *latest)
	}

	metrics := controlaccount.NewPerformance(account, records).Metrics()
	if s.metrics != nil && metrics.HasData {
		s.metrics.RecordIndices(ctx, tenantID, id, metrics.CPI, metrics.SPI)
	}
	return &metrics, nil
}

// mutate reloads the account, applies fn and saves it with its version
// check, retrying on optimistic lock conflicts
func (s *ControlAccountService) mutate(ctx context.Context, tenantID, id uuid.UUID, operation string, fn func(*controlaccount.ControlAccount) error) (*ControlAccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "control_account", operation,
		telemetry.WithAttribute(telemetry.SpanAttrControlAccountID, id),
	)
	defer span.End()

	var (
		account *controlaccount.ControlAccount
		from    controlaccount.Status
	)
	err := shared.RetryOnConflict(ctx, s.maxRetries, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			s.onRetry(ctx, id, attempt)
		}
		var err error
		account, err = s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		from = account.Status
		if err := fn(account); err != nil {
			return err
		}
		return s.accountRepo.SaveWithLock(ctx, account)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if account.Status != from {
		telemetry.SetAttributes(span, telemetry.SpanAttrStatus, account.Status.String())
		if s.metrics != nil {
			s.metrics.RecordTransition(ctx, tenantID, controlaccount.AggregateTypeControlAccount, account.Status.String())
		}
		s.logger.Info("Control account status changed",
			zap.String("control_account_id", id.String()),
			zap.String("from", from.String()),
			zap.String("to", account.Status.String()),
		)
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, account)

	response := ToControlAccountResponse(account)
	return &response, nil
}

func (s *ControlAccountService) onRetry(ctx context.Context, id uuid.UUID, attempt int) {
	s.logger.Warn("Retrying after concurrency conflict",
		zap.String("aggregate_type", controlaccount.AggregateTypeControlAccount),
		zap.String("aggregate_id", id.String()),
		zap.Int("attempt", attempt),
	)
	if s.metrics != nil {
		s.metrics.RecordConflictRetry(ctx, controlaccount.AggregateTypeControlAccount)
	}
}
