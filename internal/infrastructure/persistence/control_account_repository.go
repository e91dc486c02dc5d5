package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var controlAccountQuery = listQuery{
	filters: map[string]string{
		"project_id":         "project_id",
		"status":             "status",
		"measurement_method": "measurement_method",
		"cam_user_id":        "cam_user_id",
	},
	searchColumns: []string{"code", "name"},
	sortFields:    ControlAccountSortFields,
	defaultSort:   "code",
	defaultDir:    "ASC",
}

// GormControlAccountRepository implements ControlAccountRepository using GORM
type GormControlAccountRepository struct {
	db *gorm.DB
}

// NewGormControlAccountRepository creates a new GormControlAccountRepository
func NewGormControlAccountRepository(db *gorm.DB) *GormControlAccountRepository {
	return &GormControlAccountRepository{db: db}
}

func (r *GormControlAccountRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("WorkPackages", func(db *gorm.DB) *gorm.DB { return db.Order("code ASC") }).
		Preload("WorkPackages.Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("PlanningPackages", func(db *gorm.DB) *gorm.DB { return db.Order("code ASC") }).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("assigned_at ASC, id ASC") })
}

// FindByID finds a control account by its ID
func (r *GormControlAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*controlaccount.ControlAccount, error) {
	var model models.ControlAccountModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateFind(err, controlaccount.AggregateTypeControlAccount, id)
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a control account by ID within a tenant
func (r *GormControlAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*controlaccount.ControlAccount, error) {
	var model models.ControlAccountModel
	if err := r.preloaded(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateFind(err, controlaccount.AggregateTypeControlAccount, id)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a control account by code within a tenant
func (r *GormControlAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*controlaccount.ControlAccount, error) {
	var model models.ControlAccountModel
	if err := r.preloaded(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		return nil, translateFind(err, controlaccount.AggregateTypeControlAccount, uuid.Nil)
	}
	return model.ToDomain(), nil
}

// FindByProject finds the control accounts of a project
func (r *GormControlAccountRepository) FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter shared.Filter) ([]controlaccount.ControlAccount, error) {
	return r.find(ctx, filter, "tenant_id = ? AND project_id = ?", tenantID, projectID)
}

// FindAllForTenant finds all control accounts for a tenant with filtering
func (r *GormControlAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]controlaccount.ControlAccount, error) {
	return r.find(ctx, filter, "tenant_id = ?", tenantID)
}

// FindByStatus finds control accounts by status for a tenant
func (r *GormControlAccountRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status controlaccount.Status, filter shared.Filter) ([]controlaccount.ControlAccount, error) {
	return r.find(ctx, filter, "tenant_id = ? AND status = ?", tenantID, status)
}

func (r *GormControlAccountRepository) find(ctx context.Context, filter shared.Filter, scope string, args ...any) ([]controlaccount.ControlAccount, error) {
	var rows []models.ControlAccountModel
	query := controlAccountQuery.page(r.preloaded(ctx).Where(scope, args...), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]controlaccount.ControlAccount, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, nil
}

// Save creates or updates a control account with its children
func (r *GormControlAccountRepository) Save(ctx context.Context, account *controlaccount.ControlAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.ControlAccountModelFromDomain(account)
		if err := tx.Omit("WorkPackages", "PlanningPackages", "Assignments").Save(model).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
}

// SaveWithLock saves with optimistic locking and advances the version
func (r *GormControlAccountRepository) SaveWithLock(ctx context.Context, account *controlaccount.ControlAccount) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.ControlAccountModelFromDomain(account)
		model.Version = account.Version + 1
		if err := updateVersioned(tx, model, controlaccount.AggregateTypeControlAccount, account.ID, account.Version); err != nil {
			return err
		}
		return r.saveChildren(tx, model)
	})
	if err != nil {
		return err
	}
	account.IncrementVersion()
	return nil
}

func (r *GormControlAccountRepository) saveChildren(tx *gorm.DB, m *models.ControlAccountModel) error {
	wpIDs := ids(m.WorkPackages, func(wp models.WorkPackageModel) uuid.UUID { return wp.ID })
	var milestones []models.MilestoneModel
	for _, wp := range m.WorkPackages {
		milestones = append(milestones, wp.Milestones...)
	}

	ownedWorkPackages := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.WorkPackageModel{}).
		Select("id").
		Where("control_account_id = ?", m.ID)
	del := tx.Where("work_package_id IN (?)", ownedWorkPackages)
	if ms := ids(milestones, func(ms models.MilestoneModel) uuid.UUID { return ms.ID }); len(ms) > 0 {
		del = del.Where("id NOT IN ?", ms)
	}
	if err := del.Delete(&models.MilestoneModel{}).Error; err != nil {
		return err
	}

	if err := replaceChildren(tx, &models.WorkPackageModel{}, "control_account_id", m.ID, wpIDs, &m.WorkPackages); err != nil {
		return err
	}
	if len(milestones) > 0 {
		if err := tx.Save(&milestones).Error; err != nil {
			return err
		}
	}
	if err := replaceChildren(tx, &models.PlanningPackageModel{}, "control_account_id", m.ID,
		ids(m.PlanningPackages, func(pp models.PlanningPackageModel) uuid.UUID { return pp.ID }), &m.PlanningPackages); err != nil {
		return err
	}
	return replaceChildren(tx, &models.AssignmentModel{}, "control_account_id", m.ID,
		ids(m.Assignments, func(a models.AssignmentModel) uuid.UUID { return a.ID }), &m.Assignments)
}

// DeleteForTenant deletes a control account with its children
func (r *GormControlAccountRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.ControlAccountModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError(controlaccount.AggregateTypeControlAccount, id)
		}

		ownedWorkPackages := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.WorkPackageModel{}).
			Select("id").
			Where("control_account_id = ?", id)
		if err := tx.Where("work_package_id IN (?)", ownedWorkPackages).Delete(&models.MilestoneModel{}).Error; err != nil {
			return err
		}
		for _, child := range []any{&models.WorkPackageModel{}, &models.PlanningPackageModel{}, &models.AssignmentModel{}} {
			if err := tx.Where("control_account_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountForTenant counts control accounts for a tenant with optional filters
func (r *GormControlAccountRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := controlAccountQuery.apply(r.db.WithContext(ctx).Model(&models.ControlAccountModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a code exists for a tenant
func (r *GormControlAccountRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ControlAccountModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormControlAccountRepository implements ControlAccountRepository
var _ controlaccount.ControlAccountRepository = (*GormControlAccountRepository)(nil)
