package commitment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CommitmentItem is a priced line of a commitment with its own delivery,
// invoice and payment sub-ledger
type CommitmentItem struct {
	ID           uuid.UUID
	CommitmentID uuid.UUID
	LineNumber   int
	Description  string
	Unit         string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal

	// DiscountPercentage and DiscountAmount are mutually exclusive inputs
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	TaxRate            decimal.Decimal

	TotalPrice decimal.Decimal // Quantity * UnitPrice
	NetAmount  decimal.Decimal // TotalPrice - discount
	TaxAmount  decimal.Decimal // NetAmount * TaxRate / 100
	LineTotal  decimal.Decimal // NetAmount + TaxAmount

	DeliveredQuantity decimal.Decimal
	InvoicedQuantity  decimal.Decimal
	InvoicedAmount    decimal.Decimal
	PaidAmount        decimal.Decimal

	Status    ItemStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCommitmentItem creates a new priced line
func NewCommitmentItem(commitmentID uuid.UUID, lineNumber int, description, unit string, quantity, unitPrice decimal.Decimal) (*CommitmentItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError(EntityTypeCommitmentItem, uuid.Nil, "INVALID_DESCRIPTION", "Item description cannot be empty", "description")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewValidationError(EntityTypeCommitmentItem, uuid.Nil, "INVALID_UNIT", "Unit cannot be empty", "unit")
	}
	if err := validateQuantityAndPrice(uuid.Nil, quantity, unitPrice); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &CommitmentItem{
		ID:                 uuid.New(),
		CommitmentID:       commitmentID,
		LineNumber:         lineNumber,
		Description:        description,
		Unit:               unit,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		DiscountPercentage: decimal.Zero,
		DiscountAmount:     decimal.Zero,
		TaxRate:            decimal.Zero,
		DeliveredQuantity:  decimal.Zero,
		InvoicedQuantity:   decimal.Zero,
		InvoicedAmount:     decimal.Zero,
		PaidAmount:         decimal.Zero,
		Status:             ItemStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	item.recalculate()
	return item, nil
}

func validateQuantityAndPrice(itemID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError(EntityTypeCommitmentItem, itemID, "INVALID_QUANTITY",
			fmt.Sprintf("Quantity must be positive (got %s)", quantity), "quantity")
	}
	if err := valueobject.RequireNonNegative("unit_price", unitPrice); err != nil {
		return err.WithEntity(EntityTypeCommitmentItem, itemID)
	}
	return nil
}

// DiscountValue returns the discount applied to TotalPrice
func (i *CommitmentItem) DiscountValue() decimal.Decimal {
	if i.DiscountPercentage.IsPositive() {
		return valueobject.RoundMoney(i.TotalPrice.Mul(i.DiscountPercentage).Div(valueobject.Hundred))
	}
	return i.DiscountAmount
}

func (i *CommitmentItem) recalculate() {
	i.TotalPrice = valueobject.RoundMoney(i.Quantity.Mul(i.UnitPrice))
	i.NetAmount = i.TotalPrice.Sub(i.DiscountValue())
	i.TaxAmount = decimal.Zero
	if i.TaxRate.IsPositive() {
		i.TaxAmount = valueobject.RoundMoney(i.NetAmount.Mul(i.TaxRate).Div(valueobject.Hundred))
	}
	i.LineTotal = i.NetAmount.Add(i.TaxAmount)
}

func (i *CommitmentItem) ensureMutable(operation string) error {
	if i.Status.IsFrozen() {
		return shared.NewInvalidStateError(EntityTypeCommitmentItem, i.ID, string(i.Status), operation)
	}
	return nil
}

// UpdateQuantityAndPrice replaces quantity and unit price and recomputes totals.
// Quantity cannot drop below what was already delivered or invoiced.
func (i *CommitmentItem) UpdateQuantityAndPrice(quantity, unitPrice decimal.Decimal) error {
	if err := i.ensureMutable("update"); err != nil {
		return err
	}
	if err := validateQuantityAndPrice(i.ID, quantity, unitPrice); err != nil {
		return err
	}
	if quantity.LessThan(i.DeliveredQuantity) || quantity.LessThan(i.InvoicedQuantity) {
		return shared.NewInvariantViolationError(EntityTypeCommitmentItem, i.ID, "QUANTITY_BELOW_RECORDED",
			fmt.Sprintf("Quantity %s cannot be less than delivered %s or invoiced %s", quantity, i.DeliveredQuantity, i.InvoicedQuantity),
			"quantity")
	}
	newTotal := valueobject.RoundMoney(quantity.Mul(unitPrice))
	if i.DiscountAmount.GreaterThan(newTotal) {
		return shared.NewInvariantViolationError(EntityTypeCommitmentItem, i.ID, "DISCOUNT_EXCEEDS_TOTAL",
			fmt.Sprintf("Fixed discount %s exceeds the new total price %s", i.DiscountAmount, newTotal),
			"discount_amount", "quantity", "unit_price")
	}

	i.Quantity = quantity
	i.UnitPrice = unitPrice
	i.recalculate()
	i.UpdatedAt = time.Now()
	return nil
}

// SetDiscount sets a percentage or a fixed discount. Passing both as non-zero
// fails; passing both as zero removes the discount.
func (i *CommitmentItem) SetDiscount(percentage, amount decimal.Decimal) error {
	if err := i.ensureMutable("discount"); err != nil {
		return err
	}
	if !percentage.IsZero() && !amount.IsZero() {
		return shared.NewValidationError(EntityTypeCommitmentItem, i.ID, "DISCOUNT_EXCLUSIVE",
			"Discount must be a percentage or a fixed amount, not both", "discount_percentage", "discount_amount")
	}
	if err := valueobject.RequirePercent("discount_percentage", percentage); err != nil {
		return err.WithEntity(EntityTypeCommitmentItem, i.ID)
	}
	if err := valueobject.RequireNonNegative("discount_amount", amount); err != nil {
		return err.WithEntity(EntityTypeCommitmentItem, i.ID)
	}
	if amount.GreaterThan(i.TotalPrice) {
		return shared.NewInvariantViolationError(EntityTypeCommitmentItem, i.ID, "DISCOUNT_EXCEEDS_TOTAL",
			fmt.Sprintf("Fixed discount %s exceeds the total price %s", amount, i.TotalPrice), "discount_amount")
	}

	i.DiscountPercentage = percentage
	i.DiscountAmount = valueobject.RoundMoney(amount)
	i.recalculate()
	i.UpdatedAt = time.Now()
	return nil
}

// SetTax sets the tax rate as a percentage of the net amount
func (i *CommitmentItem) SetTax(rate decimal.Decimal) error {
	if err := i.ensureMutable("tax"); err != nil {
		return err
	}
	if err := valueobject.RequirePercent("tax_rate", rate); err != nil {
		return err.WithEntity(EntityTypeCommitmentItem, i.ID)
	}
	i.TaxRate = rate
	i.recalculate()
	i.UpdatedAt = time.Now()
	return nil
}

// RemainingToDeliver returns Quantity - DeliveredQuantity
func (i *CommitmentItem) RemainingToDeliver() decimal.Decimal {
	return valueobject.NonNegative(i.Quantity.Sub(i.DeliveredQuantity))
}

// RemainingToInvoice returns Quantity - InvoicedQuantity
func (i *CommitmentItem) RemainingToInvoice() decimal.Decimal {
	return valueobject.NonNegative(i.Quantity.Sub(i.InvoicedQuantity))
}

// RecordDelivery adds a delivered quantity. The item is unchanged on failure.
func (i *CommitmentItem) RecordDelivery(quantity decimal.Decimal) error {
	if err := i.ensureMutable("record delivery for"); err != nil {
		return err
	}
	if !quantity.IsPositive() {
		return shared.NewValidationError(EntityTypeCommitmentItem, i.ID, "INVALID_QUANTITY", "Delivered quantity must be positive", "delivered_quantity")
	}
	delivered := i.DeliveredQuantity.Add(quantity)
	if delivered.GreaterThan(i.Quantity) {
		return shared.NewInvariantViolationError(EntityTypeCommitmentItem, i.ID, "DELIVERY_EXCEEDS_QUANTITY",
			fmt.Sprintf("Cannot deliver %s, only %s remaining", quantity, i.RemainingToDeliver()), "delivered_quantity", "quantity")
	}
	i.DeliveredQuantity = delivered
	i.UpdateStatus()
	i.UpdatedAt = time.Now()
	return nil
}

// RecordInvoice adds an invoiced quantity and amount. The item is unchanged on failure.
func (i *CommitmentItem) RecordInvoice(quantity, amount decimal.Decimal) error {
	if err := i.ensureMutable("record invoice for"); err != nil {
		return err
	}
	if !quantity.IsPositive() {
		return shared.NewValidationError(EntityTypeCommitmentItem, i.ID, "INVALID_QUANTITY", "Invoiced quantity must be positive", "invoiced_quantity")
	}
	if err := valueobject.RequireNonNegative("invoiced_amount", amount); err != nil {
		return err.WithEntity(EntityTypeCommitmentItem, i.ID)
	}
	invoicedQty := i.InvoicedQuantity.Add(quantity)
	if invoicedQty.GreaterThan(i.Quantity) {
		return shared.NewInvariantViolationError(EntityTypeCommitmentItem, i.ID, "INVOICE_EXCEEDS_QUANTITY",
			fmt.Sprintf("Cannot invoice %s, only %s remaining", quantity, i.RemainingToInvoice()), "invoiced_quantity", "quantity")
	}
	invoicedAmount := i.InvoicedAmount.Add(amount)
	if invoicedAmount.GreaterThan(i.LineTotal) {
		return shared.NewInvariantViolationError(EntityTypeCommitmentItem, i.ID, "INVOICE_EXCEEDS_LINE_TOTAL",
			fmt.Sprintf("Invoiced amount %s would exceed the line total %s", invoicedAmount, i.LineTotal), "invoiced_amount", "line_total")
	}
	i.InvoicedQuantity = invoicedQty
	i.InvoicedAmount = invoicedAmount
	i.UpdateStatus()
	i.UpdatedAt = time.Now()
	return nil
}

// RecordPayment adds a paid amount. Payments cannot exceed the invoiced amount.
func (i *CommitmentItem) RecordPayment(amount decimal.Decimal) error {
	if err := i.ensureMutable("record payment for"); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return shared.NewValidationError(EntityTypeCommitmentItem, i.ID, "INVALID_AMOUNT", "Payment amount must be positive", "paid_amount")
	}
	paid := i.PaidAmount.Add(amount)
	if paid.GreaterThan(i.InvoicedAmount) {
		return shared.NewInvariantViolationError(EntityTypeCommitmentItem, i.ID, "PAYMENT_EXCEEDS_INVOICED",
			fmt.Sprintf("Payment %s would exceed the invoiced amount %s", paid, i.InvoicedAmount), "paid_amount", "invoiced_amount")
	}
	i.PaidAmount = paid
	i.UpdateStatus()
	i.UpdatedAt = time.Now()
	return nil
}

// DeriveItemStatus computes the item status from its quantities and amounts
func DeriveItemStatus(quantity, delivered, invoicedQty, invoicedAmount, paid decimal.Decimal) ItemStatus {
	switch {
	case invoicedQty.GreaterThanOrEqual(quantity) && invoicedAmount.IsPositive() && paid.GreaterThanOrEqual(invoicedAmount):
		return ItemStatusCompleted
	case invoicedQty.GreaterThanOrEqual(quantity):
		return ItemStatusFullyInvoiced
	case invoicedQty.IsPositive():
		return ItemStatusPartiallyInvoiced
	case delivered.GreaterThanOrEqual(quantity):
		return ItemStatusFullyDelivered
	case delivered.IsPositive():
		return ItemStatusPartiallyDelivered
	}
	return ItemStatusActive
}

// UpdateStatus re-derives the status. Cancelled and locked items keep their status.
func (i *CommitmentItem) UpdateStatus() {
	if i.Status.IsFrozen() {
		return
	}
	i.Status = DeriveItemStatus(i.Quantity, i.DeliveredQuantity, i.InvoicedQuantity, i.InvoicedAmount, i.PaidAmount)
}

// Cancel cancels the item. Only legal while nothing has been invoiced.
func (i *CommitmentItem) Cancel() error {
	if i.Status.IsFrozen() {
		return shared.NewInvalidStateError(EntityTypeCommitmentItem, i.ID, string(i.Status), "cancel")
	}
	if !i.InvoicedAmount.IsZero() {
		return shared.NewInvariantViolationError(EntityTypeCommitmentItem, i.ID, "ITEM_INVOICED",
			"Cannot cancel an item that has been invoiced", "invoiced_amount")
	}
	i.Status = ItemStatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}

// Lock freezes the item. Locking is one-way.
func (i *CommitmentItem) Lock() {
	if i.Status == ItemStatusCancelled {
		return
	}
	i.Status = ItemStatusLocked
	i.UpdatedAt = time.Now()
}

// IsCancelled returns true for cancelled items
func (i *CommitmentItem) IsCancelled() bool {
	return i.Status == ItemStatusCancelled
}
