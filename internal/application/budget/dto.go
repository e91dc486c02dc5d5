package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/application/common"
	"github.com/projectcontrols/backend/internal/domain/budget"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest represents a request to create a budget.
// The budget version is assigned from the project's existing budgets.
type CreateBudgetRequest struct {
	ProjectID   uuid.UUID            `json:"project_id" validate:"required"`
	Name        string               `json:"name" validate:"required,max=200"`
	Description string               `json:"description" validate:"max=2000"`
	Currency    valueobject.Currency `json:"currency" validate:"omitempty,len=3"`
	Items       []AddItemRequest     `json:"items" validate:"dive"`
}

// UpdateBudgetRequest changes the header of an editable budget
type UpdateBudgetRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Description  string          `json:"description" validate:"max=2000"`
	ExchangeRate decimal.Decimal `json:"exchange_rate" validate:"gt=0"`
}

// AddItemRequest adds a budget line
type AddItemRequest struct {
	Code             string          `json:"code" validate:"required,max=50"`
	Description      string          `json:"description" validate:"max=500"`
	ControlAccountID *uuid.UUID      `json:"control_account_id"`
	Amount           decimal.Decimal `json:"amount" validate:"gte=0"`
}

// UpdateItemRequest changes the description and amount of a budget line
type UpdateItemRequest struct {
	Description string          `json:"description" validate:"max=500"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
}

// ReasonRequest carries a mandatory reason
type ReasonRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// RequestRevisionRequest requests a signed change to one budget line
type RequestRevisionRequest struct {
	BudgetItemID uuid.UUID       `json:"budget_item_id" validate:"required"`
	ChangeAmount decimal.Decimal `json:"change_amount"`
	Reason       string          `json:"reason" validate:"required,max=1000"`
}

// BudgetListFilter filters budgets
type BudgetListFilter struct {
	common.ListFilter
	ProjectID *uuid.UUID     `json:"project_id"`
	Status    *budget.Status `json:"status"`
}

// BudgetItemResponse represents a budget line in API responses
type BudgetItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Description      string          `json:"description"`
	ControlAccountID *uuid.UUID      `json:"control_account_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	CommittedAmount  decimal.Decimal `json:"committed_amount"`
	ActualAmount     decimal.Decimal `json:"actual_amount"`
	AvailableAmount  decimal.Decimal `json:"available_amount"`
}

// BudgetRevisionResponse represents a budget revision in API responses
type BudgetRevisionResponse struct {
	ID              uuid.UUID             `json:"id"`
	BudgetItemID    uuid.UUID             `json:"budget_item_id"`
	RevisionNumber  int                   `json:"revision_number"`
	ChangeAmount    decimal.Decimal       `json:"change_amount"`
	Reason          string                `json:"reason"`
	Status          budget.RevisionStatus `json:"status"`
	RequestedBy     *uuid.UUID            `json:"requested_by,omitempty"`
	RequestedAt     time.Time             `json:"requested_at"`
	ApprovedBy      *uuid.UUID            `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time            `json:"approved_at,omitempty"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	PreviousAmount  decimal.Decimal       `json:"previous_amount"`
	NewAmount       decimal.Decimal       `json:"new_amount"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID              uuid.UUID                `json:"id"`
	TenantID        uuid.UUID                `json:"tenant_id"`
	ProjectID       uuid.UUID                `json:"project_id"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	BudgetVersion   int                      `json:"budget_version"`
	Status          budget.Status            `json:"status"`
	Currency        valueobject.Currency     `json:"currency"`
	ExchangeRate    decimal.Decimal          `json:"exchange_rate"`
	TotalAmount     decimal.Decimal          `json:"total_amount"`
	BaselineAmount  decimal.Decimal          `json:"baseline_amount"`
	BaselineDate    *time.Time               `json:"baseline_date,omitempty"`
	CommittedAmount decimal.Decimal          `json:"committed_amount"`
	ActualAmount    decimal.Decimal          `json:"actual_amount"`
	SubmittedBy     *uuid.UUID               `json:"submitted_by,omitempty"`
	SubmittedAt     *time.Time               `json:"submitted_at,omitempty"`
	ApprovedBy      *uuid.UUID               `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time               `json:"approved_at,omitempty"`
	RejectionReason string                   `json:"rejection_reason,omitempty"`
	LockedBy        *uuid.UUID               `json:"locked_by,omitempty"`
	LockedAt        *time.Time               `json:"locked_at,omitempty"`
	ClosedAt        *time.Time               `json:"closed_at,omitempty"`
	Items           []BudgetItemResponse     `json:"items"`
	Revisions       []BudgetRevisionResponse `json:"revisions"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	Version         int                      `json:"version"`
}

// ToBudgetResponse converts a domain Budget to BudgetResponse
func ToBudgetResponse(b *budget.Budget) BudgetResponse {
	items := make([]BudgetItemResponse, len(b.Items))
	for i := range b.Items {
		item := &b.Items[i]
		items[i] = BudgetItemResponse{
			ID:               item.ID,
			Code:             item.Code,
			Description:      item.Description,
			ControlAccountID: item.ControlAccountID,
			Amount:           item.Amount,
			CommittedAmount:  item.CommittedAmount,
			ActualAmount:     item.ActualAmount,
			AvailableAmount:  item.Available(),
		}
	}
	revisions := make([]BudgetRevisionResponse, len(b.Revisions))
	for i, r := range b.Revisions {
		revisions[i] = BudgetRevisionResponse{
			ID:              r.ID,
			BudgetItemID:    r.BudgetItemID,
			RevisionNumber:  r.RevisionNumber,
			ChangeAmount:    r.ChangeAmount,
			Reason:          r.Reason,
			Status:          r.Status,
			RequestedBy:     r.RequestedBy,
			RequestedAt:     r.RequestedAt,
			ApprovedBy:      r.ApprovedBy,
			ApprovedAt:      r.ApprovedAt,
			RejectionReason: r.RejectionReason,
			PreviousAmount:  r.PreviousAmount,
			NewAmount:       r.NewAmount,
		}
	}

	return BudgetResponse{
		ID:              b.ID,
		TenantID:        b.TenantID,
		ProjectID:       b.ProjectID,
		Name:            b.Name,
		Description:     b.Description,
		BudgetVersion:   b.BudgetVersion,
		Status:          b.Status,
		Currency:        b.Currency,
		ExchangeRate:    b.ExchangeRate,
		TotalAmount:     b.TotalAmount,
		BaselineAmount:  b.BaselineAmount,
		BaselineDate:    b.BaselineDate,
		CommittedAmount: b.CommittedAmount(),
		ActualAmount:    b.ActualAmount(),
		SubmittedBy:     b.SubmittedBy,
		SubmittedAt:     b.SubmittedAt,
		ApprovedBy:      b.ApprovedBy,
		ApprovedAt:      b.ApprovedAt,
		RejectionReason: b.RejectionReason,
		LockedBy:        b.LockedBy,
		LockedAt:        b.LockedAt,
		ClosedAt:        b.ClosedAt,
		Items:           items,
		Revisions:       revisions,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Version:         b.Version,
	}
}

// ToBudgetResponses converts a slice of budgets
func ToBudgetResponses(budgets []budget.Budget) []BudgetResponse {
	out := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		out[i] = ToBudgetResponse(&budgets[i])
	}
	return out
}
