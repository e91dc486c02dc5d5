package commitment

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
)

// CommitmentRepository defines the interface for commitment persistence.
// Items, allocations, revisions and invoices are loaded and saved with the
// commitment in one transaction.
type CommitmentRepository interface {
	// FindByID finds a commitment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Commitment, error)

	// FindByIDForTenant finds a commitment by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Commitment, error)

	// FindByNumber finds a commitment by its number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Commitment, error)

	// FindByProject finds the commitments of a project
	FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter shared.Filter) ([]Commitment, error)

	// FindByControlAccount finds commitments charged to a control account
	FindByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID, filter shared.Filter) ([]Commitment, error)

	// FindByStatus finds commitments by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status Status, filter shared.Filter) ([]Commitment, error)

	// FindAllForTenant finds all commitments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Commitment, error)

	// Save creates or updates a commitment
	Save(ctx context.Context, c *Commitment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, c *Commitment) error

	// DeleteForTenant deletes a commitment for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts commitments for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByNumber checks if a commitment number exists for a tenant
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)
}
