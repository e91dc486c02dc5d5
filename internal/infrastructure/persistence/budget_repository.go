package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/budget"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var budgetQuery = listQuery{
	filters: map[string]string{
		"project_id": "project_id",
		"status":     "status",
		"currency":   "currency",
	},
	searchColumns: []string{"name", "description"},
	sortFields:    BudgetSortFields,
	defaultSort:   "budget_version",
}

// GormBudgetRepository implements BudgetRepository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

func (r *GormBudgetRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("code ASC, id ASC") }).
		Preload("Revisions", func(db *gorm.DB) *gorm.DB { return db.Order("revision_number ASC") })
}

// FindByID finds a budget by its ID
func (r *GormBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	var model models.BudgetModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateFind(err, budget.AggregateTypeBudget, id)
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a budget by ID within a tenant
func (r *GormBudgetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*budget.Budget, error) {
	var model models.BudgetModel
	if err := r.preloaded(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateFind(err, budget.AggregateTypeBudget, id)
	}
	return model.ToDomain(), nil
}

// FindByItemID finds the budget owning a budget item
func (r *GormBudgetRepository) FindByItemID(ctx context.Context, tenantID, itemID uuid.UUID) (*budget.Budget, error) {
	owner := r.db.Session(&gorm.Session{NewDB: true}).
		Model(&models.BudgetItemModel{}).
		Select("budget_id").
		Where("id = ?", itemID)

	var model models.BudgetModel
	if err := r.preloaded(ctx).
		Where("tenant_id = ? AND id IN (?)", tenantID, owner).
		First(&model).Error; err != nil {
		return nil, translateFind(err, budget.EntityTypeBudgetItem, itemID)
	}
	return model.ToDomain(), nil
}

// FindByProject finds the budgets of a project, newest version first
func (r *GormBudgetRepository) FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter shared.Filter) ([]budget.Budget, error) {
	return r.find(ctx, filter, "tenant_id = ? AND project_id = ?", tenantID, projectID)
}

// FindByStatus finds budgets by status for a tenant
func (r *GormBudgetRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status budget.Status, filter shared.Filter) ([]budget.Budget, error) {
	return r.find(ctx, filter, "tenant_id = ? AND status = ?", tenantID, status)
}

// FindAllForTenant finds all budgets for a tenant with filtering
func (r *GormBudgetRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]budget.Budget, error) {
	return r.find(ctx, filter, "tenant_id = ?", tenantID)
}

func (r *GormBudgetRepository) find(ctx context.Context, filter shared.Filter, scope string, args ...any) ([]budget.Budget, error) {
	var rows []models.BudgetModel
	query := budgetQuery.page(r.preloaded(ctx).Where(scope, args...), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	budgets := make([]budget.Budget, len(rows))
	for i := range rows {
		budgets[i] = *rows[i].ToDomain()
	}
	return budgets, nil
}

// NextBudgetVersion returns the version number for the next budget of a project
func (r *GormBudgetRepository) NextBudgetVersion(ctx context.Context, tenantID, projectID uuid.UUID) (int, error) {
	var next int
	if err := r.db.WithContext(ctx).
		Model(&models.BudgetModel{}).
		Select("COALESCE(MAX(budget_version), 0) + 1").
		Where("tenant_id = ? AND project_id = ?", tenantID, projectID).
		Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// Save creates or updates a budget with its children
func (r *GormBudgetRepository) Save(ctx context.Context, b *budget.Budget) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.BudgetModelFromDomain(b)
		if err := tx.Omit("Items", "Revisions").Save(model).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
}

// SaveWithLock saves with optimistic locking and advances the version
func (r *GormBudgetRepository) SaveWithLock(ctx context.Context, b *budget.Budget) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.BudgetModelFromDomain(b)
		model.Version = b.Version + 1
		if err := updateVersioned(tx, model, budget.AggregateTypeBudget, b.ID, b.Version); err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
	if err != nil {
		return err
	}
	b.IncrementVersion()
	return nil
}

func (r *GormBudgetRepository) saveChildren(tx *gorm.DB, m *models.BudgetModel) error {
	if err := replaceChildren(tx, &models.BudgetItemModel{}, "budget_id", m.ID,
		ids(m.Items, func(i models.BudgetItemModel) uuid.UUID { return i.ID }), &m.Items); err != nil {
		return err
	}
	return replaceChildren(tx, &models.BudgetRevisionModel{}, "budget_id", m.ID,
		ids(m.Revisions, func(rev models.BudgetRevisionModel) uuid.UUID { return rev.ID }), &m.Revisions)
}

// DeleteForTenant deletes a budget with its children
func (r *GormBudgetRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.BudgetModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError(budget.AggregateTypeBudget, id)
		}
		if err := tx.Where("budget_id = ?", id).Delete(&models.BudgetRevisionModel{}).Error; err != nil {
			return err
		}
		return tx.Where("budget_id = ?", id).Delete(&models.BudgetItemModel{}).Error
	})
}

// CountForTenant counts budgets for a tenant with optional filters
func (r *GormBudgetRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := budgetQuery.apply(r.db.WithContext(ctx).Model(&models.BudgetModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormBudgetRepository implements BudgetRepository
var _ budget.BudgetRepository = (*GormBudgetRepository)(nil)
