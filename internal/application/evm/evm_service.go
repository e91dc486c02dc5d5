package evm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/application/common"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SnapshotCache caches the current snapshot per control account
type SnapshotCache interface {
	Get(ctx context.Context, tenantID, controlAccountID uuid.UUID) (*evm.Snapshot, bool, error)
	Set(ctx context.Context, tenantID, controlAccountID uuid.UUID, snapshot evm.Snapshot) error
	Invalidate(ctx context.Context, tenantID, controlAccountID uuid.UUID) error
}

// recalculationPageSize is the page size used when scanning records
const recalculationPageSize = 100

// EVMService records and corrects EVM snapshots and serves the current snapshot
type EVMService struct {
	recordRepo     evm.EVMRecordRepository
	accountRepo    controlaccount.ControlAccountRepository
	calc           *evm.Calculator
	cache          SnapshotCache
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ProjectControlMetrics
	logger         *zap.Logger
	maxRetries     int
}

// NewEVMService creates a new EVMService. A nil calculator uses the defaults.
func NewEVMService(recordRepo evm.EVMRecordRepository, accountRepo controlaccount.ControlAccountRepository, calc *evm.Calculator) *EVMService {
	if calc == nil {
		calc = evm.NewCalculator()
	}
	return &EVMService{
		recordRepo:  recordRepo,
		accountRepo: accountRepo,
		calc:        calc,
		logger:      zap.NewNop(),
		maxRetries:  shared.DefaultMaxConflictRetries,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *EVMService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the project-control metrics collector
func (s *EVMService) SetMetrics(m *telemetry.ProjectControlMetrics) {
	s.metrics = m
}

// SetSnapshotCache sets the current snapshot cache
func (s *EVMService) SetSnapshotCache(cache SnapshotCache) {
	s.cache = cache
}

// SetLogger sets the logger
func (s *EVMService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetMaxRetries sets the number of attempts made on optimistic lock conflicts
func (s *EVMService) SetMaxRetries(n int) {
	s.maxRetries = n
}

// Calculator returns the calculator used by the service
func (s *EVMService) Calculator() *evm.Calculator {
	return s.calc
}

// RecordPeriod derives and stores the snapshot of one reporting period
func (s *EVMService) RecordPeriod(ctx context.Context, tenantID uuid.UUID, req RecordPeriodRequest, actor shared.Principal) (*RecordResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "evm", "record_period",
		telemetry.WithAttribute(telemetry.SpanAttrControlAccountID, req.ControlAccountID),
	)
	defer span.End()

	if err := common.Validate(req); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, req.ControlAccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	period := evm.PeriodKey{PeriodType: req.PeriodType, Year: req.Year, PeriodNumber: req.PeriodNumber}
	exists, err := s.recordRepo.ExistsForPeriod(ctx, tenantID, account.ID, period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError(evm.AggregateTypeEVMRecord, uuid.Nil, "DUPLICATE_PERIOD",
			"An EVM record already exists for this control account and period", "period_type", "year", "period_number")
	}

	params := evm.NewRecordParams{
		ControlAccountID:  account.ID,
		DataDate:          req.DataDate,
		PeriodType:        req.PeriodType,
		PeriodNumber:      req.PeriodNumber,
		Year:              req.Year,
		PV:                req.PV,
		EV:                req.EV,
		AC:                req.AC,
		BAC:               account.BAC,
		PlannedFinishDate: req.PlannedFinishDate,
		Comments:          req.Comments,
	}
	if req.BAC != nil {
		params.BAC = *req.BAC
	}
	if err := s.fillCumulative(ctx, tenantID, account.ID, req, &params); err != nil {
		return nil, err
	}

	record, err := evm.NewEVMRecord(tenantID, params, s.calc, actor)
	if err != nil {
		return nil, err
	}

	if err := s.recordRepo.Save(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterWrite(ctx, record)
	s.logger.Info("EVM period recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("control_account_id", account.ID.String()),
		zap.String("record_id", record.ID.String()),
		zap.String("status", record.Status.String()),
	)

	response := ToRecordResponse(record)
	return &response, nil
}

// fillCumulative completes missing cumulative values from the latest earlier record
func (s *EVMService) fillCumulative(ctx context.Context, tenantID, controlAccountID uuid.UUID, req RecordPeriodRequest, p *evm.NewRecordParams) error {
	if req.CumulativePV != nil && req.CumulativeEV != nil && req.CumulativeAC != nil {
		p.CumulativePV = *req.CumulativePV
		p.CumulativeEV = *req.CumulativeEV
		p.CumulativeAC = *req.CumulativeAC
		return nil
	}

	p.CumulativePV = req.PV
	p.CumulativeEV = req.EV
	p.CumulativeAC = req.AC

	previous, err := s.recordRepo.FindLatestByControlAccount(ctx, tenantID, controlAccountID)
	switch {
	case shared.IsNotFoundError(err):
	case err != nil:
		return err
	case previous.DataDate.Before(req.DataDate):
		p.CumulativePV = previous.CumulativePV.Add(req.PV)
		p.CumulativeEV = previous.CumulativeEV.Add(req.EV)
		p.CumulativeAC = previous.CumulativeAC.Add(req.AC)
	}

	if req.CumulativePV != nil {
		p.CumulativePV = *req.CumulativePV
	}
	if req.CumulativeEV != nil {
		p.CumulativeEV = *req.CumulativeEV
	}
	if req.CumulativeAC != nil {
		p.CumulativeAC = *req.CumulativeAC
	}
	return nil
}

// CorrectRecord replaces the cumulative values of a record and recomputes it
func (s *EVMService) CorrectRecord(ctx context.Context, tenantID, recordID uuid.UUID, req CorrectRecordRequest, actor shared.Principal) (*RecordResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "evm", "correct_record",
		telemetry.WithAttribute(telemetry.SpanAttrRecordID, recordID),
	)
	defer span.End()

	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var record *evm.EVMRecord
	err := shared.RetryOnConflict(ctx, s.maxRetries, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			s.onRetry(ctx, evm.AggregateTypeEVMRecord, recordID, attempt)
		}
		var err error
		record, err = s.recordRepo.FindByIDForTenant(ctx, tenantID, recordID)
		if err != nil {
			return err
		}
		if err := record.UpdateCumulative(req.CumulativePV, req.CumulativeEV, req.CumulativeAC, s.calc, actor); err != nil {
			return err
		}
		if req.Comments != nil {
			record.SetComments(*req.Comments, actor)
		}
		return s.recordRepo.SaveWithLock(ctx, record)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterWrite(ctx, record)

	response := ToRecordResponse(record)
	return &response, nil
}

// GetRecord retrieves an EVM record by ID
func (s *EVMService) GetRecord(ctx context.Context, tenantID, recordID uuid.UUID) (*RecordResponse, error) {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, recordID)
	if err != nil {
		return nil, err
	}
	response := ToRecordResponse(record)
	return &response, nil
}

// ListByControlAccount lists the records of a control account, oldest first
func (s *EVMService) ListByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID, filter RecordListFilter) ([]RecordResponse, int64, error) {
	if err := common.Validate(filter); err != nil {
		return nil, 0, err
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "data_date"
		filter.OrderDir = "asc"
	}
	domainFilter := filter.ToDomain()
	domainFilter.Filters["control_account_id"] = controlAccountID
	if filter.PeriodType != nil {
		domainFilter.Filters["period_type"] = string(*filter.PeriodType)
	}
	if filter.Year != nil {
		domainFilter.Filters["year"] = *filter.Year
	}

	records, err := s.recordRepo.FindByControlAccount(ctx, tenantID, controlAccountID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recordRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToRecordResponses(records), total, nil
}

// CurrentSnapshot returns the snapshot of the most recent record of a control
// account, or an all-zero snapshot when it has none
func (s *EVMService) CurrentSnapshot(ctx context.Context, tenantID, controlAccountID uuid.UUID) (*evm.Snapshot, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, tenantID, controlAccountID)
		if err != nil {
			s.logger.Warn("Snapshot cache read failed",
				zap.String("control_account_id", controlAccountID.String()),
				zap.Error(err),
			)
		} else if ok {
			return cached, nil
		}
	}

	if _, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, controlAccountID); err != nil {
		return nil, err
	}

	snapshot := evm.EmptySnapshot(controlAccountID)
	latest, err := s.recordRepo.FindLatestByControlAccount(ctx, tenantID, controlAccountID)
	switch {
	case shared.IsNotFoundError(err):
	case err != nil:
		return nil, err
	default:
		snapshot = latest.Snapshot()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, controlAccountID, snapshot); err != nil {
			s.logger.Warn("Snapshot cache write failed",
				zap.String("control_account_id", controlAccountID.String()),
				zap.Error(err),
			)
		}
	}
	return &snapshot, nil
}

// Recalculate scans the records of a tenant, optionally limited to one control
// account, and reports those whose stored derived fields drift from a fresh
// computation. With apply set each drifted record is recomputed and saved
// with its version check.
func (s *EVMService) Recalculate(ctx context.Context, tenantID uuid.UUID, controlAccountID *uuid.UUID, apply bool, actor shared.Principal) (*RecalculationReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "evm", "recalculate",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID),
	)
	defer span.End()

	start := time.Now()
	report := &RecalculationReport{TenantID: tenantID, Drifted: make([]DriftEntry, 0)}

	filter := shared.DefaultFilter()
	filter.PageSize = recalculationPageSize
	filter.OrderBy = "data_date"
	filter.OrderDir = "asc"
	if controlAccountID != nil {
		filter.Filters["control_account_id"] = *controlAccountID
	}

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		records, err := s.recordRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			telemetry.RecordError(span, err)
			return report, err
		}
		for i := range records {
			s.checkRecord(ctx, &records[i], apply, actor, report)
		}
		report.Scanned += len(records)
		if len(records) < filter.PageSize {
			break
		}
		filter.Page++
	}

	report.Duration = time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordRecalculation(ctx, tenantID, report.Duration, len(report.Drifted))
	}
	s.logger.Info("EVM recalculation finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("scanned", report.Scanned),
		zap.Int("drifted", len(report.Drifted)),
		zap.Int("applied", report.Applied),
		zap.Int("failed", report.Failed),
		zap.Bool("apply", apply),
	)
	return report, nil
}

func (s *EVMService) checkRecord(ctx context.Context, record *evm.EVMRecord, apply bool, actor shared.Principal, report *RecalculationReport) {
	entry := DriftEntry{
		RecordID:         record.ID,
		ControlAccountID: record.ControlAccountID,
		PeriodType:       record.PeriodType,
		Year:             record.Year,
		PeriodNumber:     record.PeriodNumber,
	}

	fields, err := record.Drift(s.calc)
	if err != nil {
		entry.Error = err.Error()
		report.Failed++
		report.Drifted = append(report.Drifted, entry)
		return
	}
	if len(fields) == 0 {
		return
	}
	entry.Fields = fields

	if apply {
		if err := s.applyRecalculation(ctx, record.TenantID, record.ID, actor); err != nil {
			entry.Error = err.Error()
			report.Failed++
		} else {
			entry.Applied = true
			report.Applied++
		}
	}
	report.Drifted = append(report.Drifted, entry)
}

func (s *EVMService) applyRecalculation(ctx context.Context, tenantID, recordID uuid.UUID, actor shared.Principal) error {
	var record *evm.EVMRecord
	err := shared.RetryOnConflict(ctx, s.maxRetries, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			s.onRetry(ctx, evm.AggregateTypeEVMRecord, recordID, attempt)
		}
		var err error
		record, err = s.recordRepo.FindByIDForTenant(ctx, tenantID, recordID)
		if err != nil {
			return err
		}
		if err := record.Recalculate(s.calc, actor); err != nil {
			return err
		}
		return s.recordRepo.SaveWithLock(ctx, record)
	})
	if err != nil {
		return err
	}
	s.afterWrite(ctx, record)
	return nil
}

// afterWrite drops the cached snapshot, records metrics and publishes events
func (s *EVMService) afterWrite(ctx context.Context, record *evm.EVMRecord) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, record.TenantID, record.ControlAccountID); err != nil {
			s.logger.Warn("Snapshot cache invalidation failed",
				zap.String("control_account_id", record.ControlAccountID.String()),
				zap.Error(err),
			)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSnapshot(ctx, record.TenantID, record.ControlAccountID,
			record.Status.String(), record.CumulativeCPI, record.CumulativeSPI)
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, record)
}

func (s *EVMService) onRetry(ctx context.Context, aggregateType string, id uuid.UUID, attempt int) {
	s.logger.Warn("Retrying after concurrency conflict",
		zap.String("aggregate_type", aggregateType),
		zap.String("aggregate_id", id.String()),
		zap.Int("attempt", attempt),
	)
	if s.metrics != nil {
		s.metrics.RecordConflictRetry(ctx, aggregateType)
	}
}

// IsDuplicatePeriod reports whether err rejected a second record for the same period
func IsDuplicatePeriod(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == "DUPLICATE_PERIOD"
}
