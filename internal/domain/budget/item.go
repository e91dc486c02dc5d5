package budget

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BudgetItem is a budget line, optionally tied to a control account
type BudgetItem struct {
	ID               uuid.UUID
	BudgetID         uuid.UUID
	Code             string
	Description      string
	ControlAccountID *uuid.UUID
	Amount           decimal.Decimal
	CommittedAmount  decimal.Decimal
	ActualAmount     decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewBudgetItem creates a new budget line
func NewBudgetItem(budgetID uuid.UUID, code, description string, controlAccountID *uuid.UUID, amount decimal.Decimal) (*BudgetItem, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewValidationError(EntityTypeBudgetItem, uuid.Nil, "INVALID_CODE", "Budget item code cannot be empty", "code")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError(EntityTypeBudgetItem, uuid.Nil, "INVALID_CODE", "Budget item code cannot exceed 50 characters", "code")
	}
	if err := valueobject.RequireNonNegative("amount", amount); err != nil {
		return nil, err.WithEntity(EntityTypeBudgetItem, uuid.Nil)
	}

	now := time.Now()
	return &BudgetItem{
		ID:               uuid.New(),
		BudgetID:         budgetID,
		Code:             code,
		Description:      description,
		ControlAccountID: controlAccountID,
		Amount:           valueobject.RoundMoney(amount),
		CommittedAmount:  decimal.Zero,
		ActualAmount:     decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Available returns Amount - CommittedAmount
func (i *BudgetItem) Available() decimal.Decimal {
	return i.Amount.Sub(i.CommittedAmount)
}

// HasConsumption returns true once commitments or actuals have been recorded
func (i *BudgetItem) HasConsumption() bool {
	return !i.CommittedAmount.IsZero() || !i.ActualAmount.IsZero()
}

func (i *BudgetItem) setAmount(amount decimal.Decimal) error {
	if err := valueobject.RequireNonNegative("amount", amount); err != nil {
		return err.WithEntity(EntityTypeBudgetItem, i.ID)
	}
	if amount.LessThan(i.CommittedAmount) {
		return shared.NewInvariantViolationError(EntityTypeBudgetItem, i.ID, "AMOUNT_BELOW_COMMITTED",
			fmt.Sprintf("Amount %s cannot be less than the committed amount %s", amount, i.CommittedAmount),
			"amount", "committed_amount")
	}
	i.Amount = valueobject.RoundMoney(amount)
	i.UpdatedAt = time.Now()
	return nil
}

// recordCommitment adds a signed committed amount; negative values release budget
func (i *BudgetItem) recordCommitment(amount decimal.Decimal) error {
	committed := i.CommittedAmount.Add(valueobject.RoundMoney(amount))
	if committed.IsNegative() {
		return shared.NewInvariantViolationError(EntityTypeBudgetItem, i.ID, "NEGATIVE_COMMITTED",
			fmt.Sprintf("Cannot release %s, only %s committed", amount.Neg(), i.CommittedAmount), "committed_amount")
	}
	if committed.GreaterThan(i.Amount) {
		return shared.NewInvariantViolationError(EntityTypeBudgetItem, i.ID, "COMMITMENT_EXCEEDS_BUDGET",
			fmt.Sprintf("Committed amount %s would exceed the budget amount %s", committed, i.Amount),
			"committed_amount", "amount")
	}
	i.CommittedAmount = committed
	i.UpdatedAt = time.Now()
	return nil
}

func (i *BudgetItem) recordActual(amount decimal.Decimal) error {
	if err := valueobject.RequireNonNegative("actual_amount", amount); err != nil {
		return err.WithEntity(EntityTypeBudgetItem, i.ID)
	}
	i.ActualAmount = i.ActualAmount.Add(valueobject.RoundMoney(amount))
	i.UpdatedAt = time.Now()
	return nil
}
