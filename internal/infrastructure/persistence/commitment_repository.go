package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/commitment"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var commitmentQuery = listQuery{
	filters: map[string]string{
		"project_id":         "project_id",
		"control_account_id": "control_account_id",
		"budget_item_id":     "budget_item_id",
		"vendor_id":          "vendor_id",
		"status":             "status",
		"type":               "commitment_type",
	},
	searchColumns: []string{"commitment_number", "vendor_name", "description"},
	sortFields:    CommitmentSortFields,
	defaultSort:   "created_at",
}

// GormCommitmentRepository implements CommitmentRepository using GORM
type GormCommitmentRepository struct {
	db *gorm.DB
}

// NewGormCommitmentRepository creates a new GormCommitmentRepository
func NewGormCommitmentRepository(db *gorm.DB) *GormCommitmentRepository {
	return &GormCommitmentRepository{db: db}
}

func (r *GormCommitmentRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Preload("WorkPackages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Revisions", func(db *gorm.DB) *gorm.DB { return db.Order("revision_number ASC") }).
		Preload("Invoices", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_date ASC, created_at ASC") })
}

// FindByID finds a commitment by its ID
func (r *GormCommitmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*commitment.Commitment, error) {
	var model models.CommitmentModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateFind(err, commitment.AggregateTypeCommitment, id)
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a commitment by ID within a tenant
func (r *GormCommitmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*commitment.Commitment, error) {
	var model models.CommitmentModel
	if err := r.preloaded(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateFind(err, commitment.AggregateTypeCommitment, id)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a commitment by its number within a tenant
func (r *GormCommitmentRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*commitment.Commitment, error) {
	var model models.CommitmentModel
	if err := r.preloaded(ctx).
		Where("tenant_id = ? AND commitment_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		return nil, translateFind(err, commitment.AggregateTypeCommitment, uuid.Nil)
	}
	return model.ToDomain(), nil
}

// FindByProject finds the commitments of a project
func (r *GormCommitmentRepository) FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter shared.Filter) ([]commitment.Commitment, error) {
	return r.find(ctx, filter, "tenant_id = ? AND project_id = ?", tenantID, projectID)
}

// FindByControlAccount finds the commitments charged to a control account
func (r *GormCommitmentRepository) FindByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID, filter shared.Filter) ([]commitment.Commitment, error) {
	return r.find(ctx, filter, "tenant_id = ? AND control_account_id = ?", tenantID, controlAccountID)
}

// FindByStatus finds commitments by status for a tenant
func (r *GormCommitmentRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status commitment.Status, filter shared.Filter) ([]commitment.Commitment, error) {
	return r.find(ctx, filter, "tenant_id = ? AND status = ?", tenantID, status)
}

// FindAllForTenant finds all commitments for a tenant with filtering
func (r *GormCommitmentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]commitment.Commitment, error) {
	return r.find(ctx, filter, "tenant_id = ?", tenantID)
}

func (r *GormCommitmentRepository) find(ctx context.Context, filter shared.Filter, scope string, args ...any) ([]commitment.Commitment, error) {
	var rows []models.CommitmentModel
	query := commitmentQuery.page(r.preloaded(ctx).Where(scope, args...), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	commitments := make([]commitment.Commitment, len(rows))
	for i := range rows {
		commitments[i] = *rows[i].ToDomain()
	}
	return commitments, nil
}

// Save creates or updates a commitment with its children
func (r *GormCommitmentRepository) Save(ctx context.Context, c *commitment.Commitment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.CommitmentModelFromDomain(c)
		if err := tx.Omit("Items", "WorkPackages", "Revisions", "Invoices").Save(model).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
}

// SaveWithLock saves with optimistic locking and advances the version
func (r *GormCommitmentRepository) SaveWithLock(ctx context.Context, c *commitment.Commitment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.CommitmentModelFromDomain(c)
		model.Version = c.Version + 1
		if err := updateVersioned(tx, model, commitment.AggregateTypeCommitment, c.ID, c.Version); err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
	if err != nil {
		return err
	}
	c.IncrementVersion()
	return nil
}

func (r *GormCommitmentRepository) saveChildren(tx *gorm.DB, m *models.CommitmentModel) error {
	if err := replaceChildren(tx, &models.CommitmentItemModel{}, "commitment_id", m.ID,
		ids(m.Items, func(i models.CommitmentItemModel) uuid.UUID { return i.ID }), &m.Items); err != nil {
		return err
	}
	if err := replaceChildren(tx, &models.CommitmentWorkPackageModel{}, "commitment_id", m.ID,
		ids(m.WorkPackages, func(wp models.CommitmentWorkPackageModel) uuid.UUID { return wp.ID }), &m.WorkPackages); err != nil {
		return err
	}
	if err := replaceChildren(tx, &models.CommitmentRevisionModel{}, "commitment_id", m.ID,
		ids(m.Revisions, func(rev models.CommitmentRevisionModel) uuid.UUID { return rev.ID }), &m.Revisions); err != nil {
		return err
	}
	return replaceChildren(tx, &models.CommitmentInvoiceModel{}, "commitment_id", m.ID,
		ids(m.Invoices, func(inv models.CommitmentInvoiceModel) uuid.UUID { return inv.ID }), &m.Invoices)
}

// DeleteForTenant deletes a commitment with its children
func (r *GormCommitmentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.CommitmentModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError(commitment.AggregateTypeCommitment, id)
		}
		for _, child := range []any{
			&models.CommitmentItemModel{},
			&models.CommitmentWorkPackageModel{},
			&models.CommitmentRevisionModel{},
			&models.CommitmentInvoiceModel{},
		} {
			if err := tx.Where("commitment_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountForTenant counts commitments for a tenant with optional filters
func (r *GormCommitmentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := commitmentQuery.apply(r.db.WithContext(ctx).Model(&models.CommitmentModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if a commitment number exists for a tenant
func (r *GormCommitmentRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CommitmentModel{}).
		Where("tenant_id = ? AND commitment_number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormCommitmentRepository implements CommitmentRepository
var _ commitment.CommitmentRepository = (*GormCommitmentRepository)(nil)
