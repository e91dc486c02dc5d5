package common

import "github.com/projectcontrols/backend/internal/domain/shared"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListFilter is the paging part of list requests
type ListFilter struct {
	Page     int    `json:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"page_size" validate:"omitempty,min=1,max=100"`
	OrderBy  string `json:"order_by" validate:"omitempty,max=50"`
	OrderDir string `json:"order_dir" validate:"omitempty,oneof=asc desc"`
	Search   string `json:"search" validate:"omitempty,max=100"`
}

// ToDomain converts the filter to a shared.Filter, applying defaults
func (f ListFilter) ToDomain() shared.Filter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	if f.OrderDir == "" {
		f.OrderDir = "desc"
	}
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  make(map[string]interface{}),
	}
}
