package commitment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CommitmentWorkPackage allocates part of a commitment to a work package or
// budget item and keeps its own invoiced, retained and paid sub-ledger.
//
// Ledger invariants:
//   - InvoicedAmount <= AllocatedAmount
//   - RetainedAmount <= InvoicedAmount
//   - PaidAmount <= InvoicedAmount - RetainedAmount
type CommitmentWorkPackage struct {
	ID                uuid.UUID
	CommitmentID      uuid.UUID
	ControlAccountID  *uuid.UUID
	WorkPackageID     *uuid.UUID
	BudgetItemID      *uuid.UUID
	Description       string
	AllocatedAmount   decimal.Decimal
	InvoicedAmount    decimal.Decimal
	RetainedAmount    decimal.Decimal
	RetentionReleased decimal.Decimal
	PaidAmount        decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AllocationTarget identifies what an allocation funds. At least one ID is required.
type AllocationTarget struct {
	ControlAccountID *uuid.UUID
	WorkPackageID    *uuid.UUID
	BudgetItemID     *uuid.UUID
	Description      string
}

func (t AllocationTarget) isEmpty() bool {
	return t.ControlAccountID == nil && t.WorkPackageID == nil && t.BudgetItemID == nil
}

// NewCommitmentWorkPackage creates a new allocation
func NewCommitmentWorkPackage(commitmentID uuid.UUID, target AllocationTarget, amount decimal.Decimal) (*CommitmentWorkPackage, error) {
	if target.isEmpty() {
		return nil, shared.NewValidationError(EntityTypeAllocation, uuid.Nil, "INVALID_TARGET",
			"Allocation requires a control account, work package or budget item", "work_package_id", "budget_item_id")
	}
	if err := valueobject.RequireNonNegative("allocated_amount", amount); err != nil {
		return nil, err.WithEntity(EntityTypeAllocation, uuid.Nil)
	}

	now := time.Now()
	return &CommitmentWorkPackage{
		ID:                uuid.New(),
		CommitmentID:      commitmentID,
		ControlAccountID:  target.ControlAccountID,
		WorkPackageID:     target.WorkPackageID,
		BudgetItemID:      target.BudgetItemID,
		Description:       target.Description,
		AllocatedAmount:   valueobject.RoundMoney(amount),
		InvoicedAmount:    decimal.Zero,
		RetainedAmount:    decimal.Zero,
		RetentionReleased: decimal.Zero,
		PaidAmount:        decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// UpdateAllocation replaces the allocated amount. It cannot drop below the invoiced amount.
func (a *CommitmentWorkPackage) UpdateAllocation(amount decimal.Decimal) error {
	if err := valueobject.RequireNonNegative("allocated_amount", amount); err != nil {
		return err.WithEntity(EntityTypeAllocation, a.ID)
	}
	if amount.LessThan(a.InvoicedAmount) {
		return shared.NewInvariantViolationError(EntityTypeAllocation, a.ID, "ALLOCATION_BELOW_INVOICED",
			fmt.Sprintf("Allocation %s cannot be less than the invoiced amount %s", amount, a.InvoicedAmount),
			"allocated_amount", "invoiced_amount")
	}
	a.AllocatedAmount = valueobject.RoundMoney(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// RemainingToInvoice returns AllocatedAmount - InvoicedAmount
func (a *CommitmentWorkPackage) RemainingToInvoice() decimal.Decimal {
	return a.AllocatedAmount.Sub(a.InvoicedAmount)
}

// RecordInvoice posts an invoice amount and the part of it withheld as retention
func (a *CommitmentWorkPackage) RecordInvoice(amount, retention decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError(EntityTypeAllocation, a.ID, "INVALID_AMOUNT", "Invoice amount must be positive", "invoiced_amount")
	}
	if err := valueobject.RequireNonNegative("retained_amount", retention); err != nil {
		return err.WithEntity(EntityTypeAllocation, a.ID)
	}
	if retention.GreaterThan(amount) {
		return shared.NewInvariantViolationError(EntityTypeAllocation, a.ID, "RETENTION_EXCEEDS_INVOICE",
			fmt.Sprintf("Retention %s cannot exceed the invoice amount %s", retention, amount), "retained_amount")
	}
	if amount.GreaterThan(a.RemainingToInvoice()) {
		return shared.NewInvariantViolationError(EntityTypeAllocation, a.ID, "INVOICE_EXCEEDS_ALLOCATION",
			fmt.Sprintf("Invoice %s exceeds the remaining allocation %s", amount, a.RemainingToInvoice()),
			"invoiced_amount", "allocated_amount")
	}
	a.InvoicedAmount = a.InvoicedAmount.Add(amount)
	a.RetainedAmount = a.RetainedAmount.Add(retention)
	a.UpdatedAt = time.Now()
	return nil
}

// GetBalanceToPay returns InvoicedAmount - RetainedAmount - PaidAmount
func (a *CommitmentWorkPackage) GetBalanceToPay() decimal.Decimal {
	return a.InvoicedAmount.Sub(a.RetainedAmount).Sub(a.PaidAmount)
}

// RecordPayment posts a payment against the payable balance
func (a *CommitmentWorkPackage) RecordPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError(EntityTypeAllocation, a.ID, "INVALID_AMOUNT", "Payment amount must be positive", "paid_amount")
	}
	if balance := a.GetBalanceToPay(); amount.GreaterThan(balance) {
		return shared.NewInvariantViolationError(EntityTypeAllocation, a.ID, "PAYMENT_EXCEEDS_BALANCE",
			fmt.Sprintf("Payment %s exceeds invoiced less retained and paid (%s)", amount, balance),
			"paid_amount", "invoiced_amount", "retained_amount")
	}
	a.PaidAmount = a.PaidAmount.Add(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// ReleaseRetention moves retained money back into the payable balance
func (a *CommitmentWorkPackage) ReleaseRetention(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError(EntityTypeAllocation, a.ID, "INVALID_AMOUNT", "Released retention must be positive", "retained_amount")
	}
	if amount.GreaterThan(a.RetainedAmount) {
		return shared.NewInvariantViolationError(EntityTypeAllocation, a.ID, "RELEASE_EXCEEDS_RETENTION",
			fmt.Sprintf("Cannot release %s, only %s retained", amount, a.RetainedAmount), "retained_amount")
	}
	a.RetainedAmount = a.RetainedAmount.Sub(amount)
	a.RetentionReleased = a.RetentionReleased.Add(amount)
	a.UpdatedAt = time.Now()
	return nil
}
