package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"asc", "ASC"},
		{" ASC ", "ASC"},
		{"desc", "DESC"},
		{"", "DESC"},
		{"sideways", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "code", ValidateSortField("code", ControlAccountSortFields, "created_at"))
	assert.Equal(t, "code", ValidateSortField(" code ", ControlAccountSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", ControlAccountSortFields, "created_at"))
	assert.Equal(t, "data_date", ValidateSortField("vendor_name", EVMRecordSortFields, "data_date"))
}

func TestSortFieldsWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"ControlAccountSortFields": ControlAccountSortFields,
		"EVMRecordSortFields":      EVMRecordSortFields,
		"CommitmentSortFields":     CommitmentSortFields,
		"BudgetSortFields":         BudgetSortFields,
	}
	for name, whitelist := range whitelists {
		for _, field := range []string{"id", "created_at", "updated_at", "status"} {
			assert.True(t, whitelist[field], "%s should contain %q", name, field)
		}
	}
}

func TestSQLInjectionPrevention(t *testing.T) {
	payloads := []string{
		"id; DROP TABLE budgets;--",
		"id' OR '1'='1",
		"id UNION SELECT * FROM commitments",
		"CASE WHEN 1=1 THEN id ELSE name END",
		"id/**/;DROP TABLE budgets",
		"id\n; DROP TABLE budgets",
	}
	for _, payload := range payloads {
		assert.Equal(t, "created_at", ValidateSortField(payload, BudgetSortFields, "created_at"), payload)
		assert.Equal(t, "DESC", ValidateSortOrder(payload), payload)
	}
}
