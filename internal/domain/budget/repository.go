package budget

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
)

// BudgetRepository defines the interface for budget persistence.
// Items and revisions are loaded and saved with their budget.
type BudgetRepository interface {
	// FindByID finds a budget by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Budget, error)

	// FindByIDForTenant finds a budget by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Budget, error)

	// FindByItemID finds the budget that owns a budget item
	FindByItemID(ctx context.Context, tenantID, itemID uuid.UUID) (*Budget, error)

	// FindByProject finds the budgets of a project, newest version first
	FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter shared.Filter) ([]Budget, error)

	// FindByStatus finds budgets by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status Status, filter shared.Filter) ([]Budget, error)

	// FindAllForTenant finds all budgets for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Budget, error)

	// NextBudgetVersion returns the next budget version number for a project
	NextBudgetVersion(ctx context.Context, tenantID, projectID uuid.UUID) (int, error)

	// Save creates or updates a budget
	Save(ctx context.Context, b *Budget) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, b *Budget) error

	// DeleteForTenant deletes a budget for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts budgets for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
