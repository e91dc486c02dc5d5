package evm

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
)

// PeriodKey identifies the reporting period of a record
type PeriodKey struct {
	PeriodType   PeriodType
	Year         int
	PeriodNumber int
}

// EVMRecordRepository defines the interface for EVM record persistence
type EVMRecordRepository interface {
	// FindByID finds a record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*EVMRecord, error)

	// FindByIDForTenant finds a record by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*EVMRecord, error)

	// FindByControlAccount finds the records of a control account, oldest first
	FindByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID, filter shared.Filter) ([]EVMRecord, error)

	// FindLatestByControlAccount finds the most recent record by data date
	// Returns shared.ErrNotFound when the control account has no records
	FindLatestByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID) (*EVMRecord, error)

	// FindByPeriod finds the record of a control account for one period
	FindByPeriod(ctx context.Context, tenantID, controlAccountID uuid.UUID, period PeriodKey) (*EVMRecord, error)

	// FindAllForTenant finds all records for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]EVMRecord, error)

	// ExistsForPeriod checks if a record exists for the control account and period
	ExistsForPeriod(ctx context.Context, tenantID, controlAccountID uuid.UUID, period PeriodKey) (bool, error)

	// CountByControlAccount counts the records of a control account
	CountByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID) (int64, error)

	// CountForTenant counts records for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a record
	Save(ctx context.Context, record *EVMRecord) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, record *EVMRecord) error
}

// Key returns the period key of the record
func (r *EVMRecord) Key() PeriodKey {
	return PeriodKey{PeriodType: r.PeriodType, Year: r.Year, PeriodNumber: r.PeriodNumber}
}
