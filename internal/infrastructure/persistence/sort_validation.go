package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ControlAccountSortFields contains allowed sort fields for control accounts
var ControlAccountSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"code":             true,
	"name":             true,
	"status":           true,
	"bac":              true,
	"percent_complete": true,
	"baseline_date":    true,
}

// EVMRecordSortFields contains allowed sort fields for EVM records
var EVMRecordSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"data_date":     true,
	"year":          true,
	"period_number": true,
	"cpi":           true,
	"spi":           true,
	"status":        true,
}

// CommitmentSortFields contains allowed sort fields for commitments
var CommitmentSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"commitment_number": true,
	"status":            true,
	"vendor_name":       true,
	"contract_date":     true,
	"total_amount":      true,
	"revised_amount":    true,
	"invoiced_amount":   true,
}

// BudgetSortFields contains allowed sort fields for budgets
var BudgetSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"budget_version": true,
	"status":         true,
	"total_amount":   true,
}
