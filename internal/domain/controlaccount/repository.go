package controlaccount

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
)

// ControlAccountRepository defines the interface for control account persistence.
// Work packages, milestones, planning packages and assignments are loaded and
// saved with their account.
type ControlAccountRepository interface {
	// FindByID finds a control account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ControlAccount, error)

	// FindByIDForTenant finds a control account by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ControlAccount, error)

	// FindByCode finds a control account by code for a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ControlAccount, error)

	// FindByProject finds the control accounts of a project
	FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter shared.Filter) ([]ControlAccount, error)

	// FindAllForTenant finds all control accounts for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ControlAccount, error)

	// FindByStatus finds control accounts by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status Status, filter shared.Filter) ([]ControlAccount, error)

	// Save creates or updates a control account
	Save(ctx context.Context, account *ControlAccount) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, account *ControlAccount) error

	// DeleteForTenant deletes a control account for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts control accounts for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a code exists for a tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}
