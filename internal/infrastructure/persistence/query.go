package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// listQuery describes how one table is filtered, searched and sorted
type listQuery struct {
	// filters maps accepted shared.Filter keys to columns
	filters       map[string]string
	searchColumns []string
	sortFields    map[string]bool
	defaultSort   string
	// defaultDir applies when the filter names no direction; DESC when empty
	defaultDir string
}

// apply adds filter conditions and search to query
func (q listQuery) apply(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		if column, ok := q.filters[key]; ok && value != nil {
			query = query.Where(fmt.Sprintf("%s = ?", column), value)
		}
	}

	if search := strings.TrimSpace(filter.Search); search != "" && len(q.searchColumns) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		conds := make([]string, len(q.searchColumns))
		args := make([]any, len(q.searchColumns))
		for i, column := range q.searchColumns {
			conds[i] = fmt.Sprintf("LOWER(%s) LIKE ?", column)
			args[i] = pattern
		}
		query = query.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return query
}

// page adds apply plus ordering and pagination
func (q listQuery) page(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = q.apply(query, filter)

	sortField := ValidateSortField(filter.OrderBy, q.sortFields, q.defaultSort)
	dir := filter.OrderDir
	if strings.TrimSpace(dir) == "" {
		dir = q.defaultDir
	}
	query = query.Order(fmt.Sprintf("%s %s, id ASC", sortField, ValidateSortOrder(dir)))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}
	return query
}

// translateFind converts a missing row to a domain NotFound error
func translateFind(err error, entityType string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entityType, id)
	}
	return err
}

// updateVersioned writes every column of model when its stored version
// equals expected. A missing row is NotFound; a stale version is a
// concurrency conflict.
func updateVersioned(tx *gorm.DB, model any, entityType string, id uuid.UUID, expected int) error {
	result := tx.Model(model).
		Where("version = ?", expected).
		Select("*").
		Omit(clause.Associations, "id", "tenant_id", "created_at", "created_by").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.NewNotFoundError(entityType, id)
	}
	return shared.NewConcurrencyConflictError(entityType, id)
}

// replaceChildren deletes the rows of child owned by parentID that are not
// in keep, then upserts rows. rows must be a pointer to a slice of models.
func replaceChildren(tx *gorm.DB, child any, parentColumn string, parentID uuid.UUID, keep []uuid.UUID, rows any) error {
	del := tx.Where(fmt.Sprintf("%s = ?", parentColumn), parentID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(child).Error; err != nil {
		return err
	}
	if len(keep) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Save(rows).Error
}

// ids collects the IDs of a slice of models
func ids[T any](items []T, id func(T) uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}
