package budget

import (
	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BudgetSummary is a read-only projection of budget consumption
type BudgetSummary struct {
	BudgetID             uuid.UUID            `json:"budget_id"`
	ProjectID            uuid.UUID            `json:"project_id"`
	Name                 string               `json:"name"`
	BudgetVersion        int                  `json:"budget_version"`
	Status               Status               `json:"status"`
	Currency             valueobject.Currency `json:"currency"`
	TotalAmount          decimal.Decimal      `json:"total_amount"`
	BaselineAmount       decimal.Decimal      `json:"baseline_amount"`
	VarianceFromBaseline decimal.Decimal      `json:"variance_from_baseline"`
	ApprovedRevisions    decimal.Decimal      `json:"approved_revisions"`
	CommittedAmount      decimal.Decimal      `json:"committed_amount"`
	ActualAmount         decimal.Decimal      `json:"actual_amount"`
	AvailableAmount      decimal.Decimal      `json:"available_amount"`
	CommittedPercent     decimal.Decimal      `json:"committed_percent"`
	ActualPercent        decimal.Decimal      `json:"actual_percent"`
	ItemCount            int                  `json:"item_count"`
	PendingRevisions     int                  `json:"pending_revisions"`
}

// Summary returns the current consumption projection of the budget
func (b *Budget) Summary() BudgetSummary {
	committed := b.CommittedAmount()
	actual := b.ActualAmount()
	return BudgetSummary{
		BudgetID:             b.ID,
		ProjectID:            b.ProjectID,
		Name:                 b.Name,
		BudgetVersion:        b.BudgetVersion,
		Status:               b.Status,
		Currency:             b.Currency,
		TotalAmount:          b.TotalAmount,
		BaselineAmount:       b.BaselineAmount,
		VarianceFromBaseline: b.TotalAmount.Sub(b.BaselineAmount),
		ApprovedRevisions:    b.ApprovedRevisionTotal(),
		CommittedAmount:      committed,
		ActualAmount:         actual,
		AvailableAmount:      b.TotalAmount.Sub(committed),
		CommittedPercent:     valueobject.SafeDiv(committed.Mul(valueobject.Hundred), b.TotalAmount, valueobject.PercentPrecision),
		ActualPercent:        valueobject.SafeDiv(actual.Mul(valueobject.Hundred), b.TotalAmount, valueobject.PercentPrecision),
		ItemCount:            len(b.Items),
		PendingRevisions:     b.PendingRevisionCount(),
	}
}
