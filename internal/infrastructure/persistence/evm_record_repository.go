package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var evmRecordQuery = listQuery{
	filters: map[string]string{
		"control_account_id": "control_account_id",
		"period_type":        "period_type",
		"year":               "year",
		"status":             "status",
	},
	searchColumns: []string{"comments"},
	sortFields:    EVMRecordSortFields,
	defaultSort:   "data_date",
	defaultDir:    "ASC",
}

// GormEVMRecordRepository implements EVMRecordRepository using GORM
type GormEVMRecordRepository struct {
	db *gorm.DB
}

// NewGormEVMRecordRepository creates a new GormEVMRecordRepository
func NewGormEVMRecordRepository(db *gorm.DB) *GormEVMRecordRepository {
	return &GormEVMRecordRepository{db: db}
}

// FindByID finds a record by its ID
func (r *GormEVMRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*evm.EVMRecord, error) {
	var model models.EVMRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateFind(err, evm.AggregateTypeEVMRecord, id)
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a record by ID within a tenant
func (r *GormEVMRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*evm.EVMRecord, error) {
	var model models.EVMRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateFind(err, evm.AggregateTypeEVMRecord, id)
	}
	return model.ToDomain(), nil
}

// FindByControlAccount finds the records of a control account, oldest first
func (r *GormEVMRecordRepository) FindByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID, filter shared.Filter) ([]evm.EVMRecord, error) {
	return r.find(ctx, filter, "tenant_id = ? AND control_account_id = ?", tenantID, controlAccountID)
}

// FindLatestByControlAccount finds the record with the latest data date
func (r *GormEVMRecordRepository) FindLatestByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID) (*evm.EVMRecord, error) {
	var model models.EVMRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND control_account_id = ?", tenantID, controlAccountID).
		Order("data_date DESC, created_at DESC").
		First(&model).Error; err != nil {
		return nil, translateFind(err, evm.AggregateTypeEVMRecord, controlAccountID)
	}
	return model.ToDomain(), nil
}

// FindByPeriod finds the record of a control account for one period
func (r *GormEVMRecordRepository) FindByPeriod(ctx context.Context, tenantID, controlAccountID uuid.UUID, period evm.PeriodKey) (*evm.EVMRecord, error) {
	var model models.EVMRecordModel
	if err := r.periodScope(ctx, tenantID, controlAccountID, period).First(&model).Error; err != nil {
		return nil, translateFind(err, evm.AggregateTypeEVMRecord, controlAccountID)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all records for a tenant with filtering
func (r *GormEVMRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]evm.EVMRecord, error) {
	return r.find(ctx, filter, "tenant_id = ?", tenantID)
}

func (r *GormEVMRecordRepository) find(ctx context.Context, filter shared.Filter, scope string, args ...any) ([]evm.EVMRecord, error) {
	var rows []models.EVMRecordModel
	query := evmRecordQuery.page(r.db.WithContext(ctx).Where(scope, args...), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]evm.EVMRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

func (r *GormEVMRecordRepository) periodScope(ctx context.Context, tenantID, controlAccountID uuid.UUID, period evm.PeriodKey) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.EVMRecordModel{}).
		Where("tenant_id = ? AND control_account_id = ?", tenantID, controlAccountID).
		Where("period_type = ? AND year = ? AND period_number = ?", period.PeriodType, period.Year, period.PeriodNumber)
}

// ExistsForPeriod checks if a record exists for the control account and period
func (r *GormEVMRecordRepository) ExistsForPeriod(ctx context.Context, tenantID, controlAccountID uuid.UUID, period evm.PeriodKey) (bool, error) {
	var count int64
	if err := r.periodScope(ctx, tenantID, controlAccountID, period).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByControlAccount counts the records of a control account
func (r *GormEVMRecordRepository) CountByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EVMRecordModel{}).
		Where("tenant_id = ? AND control_account_id = ?", tenantID, controlAccountID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForTenant counts records for a tenant with optional filters
func (r *GormEVMRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := evmRecordQuery.apply(r.db.WithContext(ctx).Model(&models.EVMRecordModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a record
func (r *GormEVMRecordRepository) Save(ctx context.Context, record *evm.EVMRecord) error {
	return r.db.WithContext(ctx).Save(models.EVMRecordModelFromDomain(record)).Error
}

// SaveWithLock saves with optimistic locking and advances the version
func (r *GormEVMRecordRepository) SaveWithLock(ctx context.Context, record *evm.EVMRecord) error {
	model := models.EVMRecordModelFromDomain(record)
	model.Version = record.Version + 1
	if err := updateVersioned(r.db.WithContext(ctx), model, evm.AggregateTypeEVMRecord, record.ID, record.Version); err != nil {
		return err
	}
	record.IncrementVersion()
	return nil
}

// Ensure GormEVMRecordRepository implements EVMRecordRepository
var _ evm.EVMRecordRepository = (*GormEVMRecordRepository)(nil)
