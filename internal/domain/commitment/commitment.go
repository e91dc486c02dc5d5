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

// Commitment is a contractual or purchase obligation against a project.
// Items, allocations, revisions and invoices belong to the aggregate and are
// saved with it, so one version check protects every ledger invariant.
type Commitment struct {
	shared.TenantAggregateRoot
	CommitmentNumber    string
	Type                Type
	Status              Status
	Description         string
	ProjectID           uuid.UUID
	ControlAccountID    *uuid.UUID
	BudgetItemID        *uuid.UUID
	VendorID            *uuid.UUID
	VendorName          string
	Currency            valueobject.Currency
	ExchangeRate        decimal.Decimal
	ContractDate        time.Time
	EndDate             *time.Time
	RetentionPercentage decimal.Decimal

	Subtotal       decimal.Decimal // sum of item TotalPrice
	DiscountAmount decimal.Decimal // sum of item discounts
	NetAmount      decimal.Decimal // sum of item NetAmount
	TaxAmount      decimal.Decimal // sum of item TaxAmount
	TotalAmount    decimal.Decimal // sum of item LineTotal
	RevisedAmount  decimal.Decimal // TotalAmount + approved revisions

	InvoicedAmount decimal.Decimal
	RetainedAmount decimal.Decimal
	PaidAmount     decimal.Decimal

	SubmittedBy     *uuid.UUID
	SubmittedAt     *time.Time
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason string
	CancelledAt     *time.Time
	CancelReason    string
	ClosedAt        *time.Time

	Items        []CommitmentItem
	WorkPackages []CommitmentWorkPackage
	Revisions    []CommitmentRevision
	Invoices     []Invoice
}

// NewCommitmentParams holds the header fields of a new commitment
type NewCommitmentParams struct {
	CommitmentNumber    string
	Type                Type
	Description         string
	ProjectID           uuid.UUID
	ControlAccountID    *uuid.UUID
	BudgetItemID        *uuid.UUID
	VendorID            *uuid.UUID
	VendorName          string
	Currency            valueobject.Currency
	ExchangeRate        decimal.Decimal
	ContractDate        time.Time
	EndDate             *time.Time
	RetentionPercentage decimal.Decimal
}

// NewCommitment creates a new commitment in DRAFT status
func NewCommitment(tenantID uuid.UUID, p NewCommitmentParams, actor shared.Principal) (*Commitment, error) {
	number := strings.TrimSpace(p.CommitmentNumber)
	if number == "" {
		return nil, shared.NewValidationError(AggregateTypeCommitment, uuid.Nil, "INVALID_NUMBER", "Commitment number cannot be empty", "commitment_number")
	}
	if len(number) > 50 {
		return nil, shared.NewValidationError(AggregateTypeCommitment, uuid.Nil, "INVALID_NUMBER", "Commitment number cannot exceed 50 characters", "commitment_number")
	}
	if !p.Type.IsValid() {
		return nil, shared.NewValidationError(AggregateTypeCommitment, uuid.Nil, "INVALID_TYPE",
			fmt.Sprintf("Invalid commitment type: %s", p.Type), "type")
	}
	if p.ProjectID == uuid.Nil {
		return nil, shared.NewValidationError(AggregateTypeCommitment, uuid.Nil, "INVALID_PROJECT", "Project ID cannot be empty", "project_id")
	}
	if strings.TrimSpace(p.VendorName) == "" {
		return nil, shared.NewValidationError(AggregateTypeCommitment, uuid.Nil, "INVALID_VENDOR", "Vendor name cannot be empty", "vendor_name")
	}
	currency := p.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError(AggregateTypeCommitment, uuid.Nil, "INVALID_CURRENCY",
			fmt.Sprintf("Invalid currency: %s", currency), "currency")
	}
	rate := p.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	if err := valueobject.RequirePositive("exchange_rate", rate); err != nil {
		return nil, err.WithEntity(AggregateTypeCommitment, uuid.Nil)
	}
	if err := valueobject.RequirePercent("retention_percentage", p.RetentionPercentage); err != nil {
		return nil, err.WithEntity(AggregateTypeCommitment, uuid.Nil)
	}
	contractDate := p.ContractDate
	if contractDate.IsZero() {
		contractDate = time.Now()
	}
	if p.EndDate != nil && p.EndDate.Before(contractDate) {
		return nil, shared.NewValidationError(AggregateTypeCommitment, uuid.Nil, "INVALID_END_DATE",
			"End date cannot be before the contract date", "end_date", "contract_date")
	}

	c := &Commitment{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, actor),
		CommitmentNumber:    number,
		Type:                p.Type,
		Status:              StatusDraft,
		Description:         p.Description,
		ProjectID:           p.ProjectID,
		ControlAccountID:    p.ControlAccountID,
		BudgetItemID:        p.BudgetItemID,
		VendorID:            p.VendorID,
		VendorName:          p.VendorName,
		Currency:            currency,
		ExchangeRate:        rate,
		ContractDate:        contractDate,
		EndDate:             p.EndDate,
		RetentionPercentage: p.RetentionPercentage,
		Subtotal:            decimal.Zero,
		DiscountAmount:      decimal.Zero,
		NetAmount:           decimal.Zero,
		TaxAmount:           decimal.Zero,
		TotalAmount:         decimal.Zero,
		RevisedAmount:       decimal.Zero,
		InvoicedAmount:      decimal.Zero,
		RetainedAmount:      decimal.Zero,
		PaidAmount:          decimal.Zero,
		Items:               make([]CommitmentItem, 0),
		WorkPackages:        make([]CommitmentWorkPackage, 0),
		Revisions:           make([]CommitmentRevision, 0),
		Invoices:            make([]Invoice, 0),
	}

	c.AddDomainEvent(NewCommitmentCreatedEvent(c, actor))
	return c, nil
}

func (c *Commitment) transitionTo(target Status, actor shared.Principal) error {
	if !c.Status.CanTransitionTo(target) {
		return shared.NewStateTransitionError(AggregateTypeCommitment, c.ID, c.Status.String(), target.String())
	}
	c.Status = target
	c.Touch(actor)
	return nil
}

func (c *Commitment) ensureDraft(operation string) error {
	if c.Status != StatusDraft {
		return shared.NewInvalidStateError(AggregateTypeCommitment, c.ID, c.Status.String(), operation)
	}
	return nil
}

// ============================================
// Items
// ============================================

func (c *Commitment) nextLineNumber() int {
	max := 0
	for _, item := range c.Items {
		if item.LineNumber > max {
			max = item.LineNumber
		}
	}
	return max + 1
}

// AddItem adds a priced line. Only allowed in DRAFT status.
func (c *Commitment) AddItem(description, unit string, quantity, unitPrice decimal.Decimal, actor shared.Principal) (*CommitmentItem, error) {
	if err := c.ensureDraft("add items to"); err != nil {
		return nil, err
	}
	item, err := NewCommitmentItem(c.ID, c.nextLineNumber(), description, unit, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	c.Items = append(c.Items, *item)
	c.recalculateTotals()
	c.Touch(actor)
	return &c.Items[len(c.Items)-1], nil
}

// GetItem returns the item with the given ID
func (c *Commitment) GetItem(itemID uuid.UUID) *CommitmentItem {
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			return &c.Items[idx]
		}
	}
	return nil
}

func (c *Commitment) item(itemID uuid.UUID) (*CommitmentItem, error) {
	item := c.GetItem(itemID)
	if item == nil {
		return nil, shared.NewNotFoundError(EntityTypeCommitmentItem, itemID)
	}
	return item, nil
}

func (c *Commitment) editItem(itemID uuid.UUID, actor shared.Principal, operation string, fn func(*CommitmentItem) error) error {
	if err := c.ensureDraft(operation); err != nil {
		return err
	}
	item, err := c.item(itemID)
	if err != nil {
		return err
	}
	if err := fn(item); err != nil {
		return err
	}
	c.recalculateTotals()
	c.Touch(actor)
	return nil
}

// UpdateItem replaces the quantity and unit price of an item. Only allowed in DRAFT status.
func (c *Commitment) UpdateItem(itemID uuid.UUID, quantity, unitPrice decimal.Decimal, actor shared.Principal) error {
	return c.editItem(itemID, actor, "update items of", func(i *CommitmentItem) error {
		return i.UpdateQuantityAndPrice(quantity, unitPrice)
	})
}

// SetItemDiscount sets the discount of an item. Only allowed in DRAFT status.
func (c *Commitment) SetItemDiscount(itemID uuid.UUID, percentage, amount decimal.Decimal, actor shared.Principal) error {
	return c.editItem(itemID, actor, "discount items of", func(i *CommitmentItem) error {
		return i.SetDiscount(percentage, amount)
	})
}

// SetItemTax sets the tax rate of an item. Only allowed in DRAFT status.
func (c *Commitment) SetItemTax(itemID uuid.UUID, rate decimal.Decimal, actor shared.Principal) error {
	return c.editItem(itemID, actor, "tax items of", func(i *CommitmentItem) error {
		return i.SetTax(rate)
	})
}

// RemoveItem removes an item. Only allowed in DRAFT status.
func (c *Commitment) RemoveItem(itemID uuid.UUID, actor shared.Principal) error {
	if err := c.ensureDraft("remove items from"); err != nil {
		return err
	}
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.recalculateTotals()
			c.Touch(actor)
			return nil
		}
	}
	return shared.NewNotFoundError(EntityTypeCommitmentItem, itemID)
}

// CancelItem cancels an item that has not been invoiced
func (c *Commitment) CancelItem(itemID uuid.UUID, actor shared.Principal) error {
	if c.Status.IsTerminal() {
		return shared.NewInvalidStateError(AggregateTypeCommitment, c.ID, c.Status.String(), "cancel items of")
	}
	item, err := c.item(itemID)
	if err != nil {
		return err
	}
	previous, previousUpdatedAt := item.Status, item.UpdatedAt
	if err := item.Cancel(); err != nil {
		return err
	}
	c.recalculateTotals()
	if allocated := c.AllocatedAmount(); c.RevisedAmount.LessThan(allocated) {
		item.Status, item.UpdatedAt = previous, previousUpdatedAt
		c.recalculateTotals()
		return shared.NewInvariantViolationError(AggregateTypeCommitment, c.ID, "REVISED_BELOW_ALLOCATED",
			fmt.Sprintf("Cancelling the item would drop the commitment value below the allocated amount %s", allocated), "items")
	}
	c.Touch(actor)
	return nil
}

func (c *Commitment) recordItem(itemID uuid.UUID, actor shared.Principal, fn func(*CommitmentItem) error) error {
	if !c.Status.IsCommitted() {
		return shared.NewInvalidStateError(AggregateTypeCommitment, c.ID, c.Status.String(), "record item progress of")
	}
	item, err := c.item(itemID)
	if err != nil {
		return err
	}
	if err := fn(item); err != nil {
		return err
	}
	c.Touch(actor)
	return nil
}

// RecordItemDelivery records a delivered quantity on an item
func (c *Commitment) RecordItemDelivery(itemID uuid.UUID, quantity decimal.Decimal, actor shared.Principal) error {
	return c.recordItem(itemID, actor, func(i *CommitmentItem) error {
		return i.RecordDelivery(quantity)
	})
}

// RecordItemInvoice records an invoiced quantity and amount on an item
func (c *Commitment) RecordItemInvoice(itemID uuid.UUID, quantity, amount decimal.Decimal, actor shared.Principal) error {
	return c.recordItem(itemID, actor, func(i *CommitmentItem) error {
		return i.RecordInvoice(quantity, amount)
	})
}

// RecordItemPayment records a paid amount on an item
func (c *Commitment) RecordItemPayment(itemID uuid.UUID, amount decimal.Decimal, actor shared.Principal) error {
	return c.recordItem(itemID, actor, func(i *CommitmentItem) error {
		return i.RecordPayment(amount)
	})
}

// ItemInvoicedAmount returns the amount invoiced against individual items
func (c *Commitment) ItemInvoicedAmount() decimal.Decimal {
	total := decimal.Zero
	for idx := range c.Items {
		total = total.Add(c.Items[idx].InvoicedAmount)
	}
	return total
}

func (c *Commitment) recalculateTotals() {
	c.Subtotal = decimal.Zero
	c.DiscountAmount = decimal.Zero
	c.NetAmount = decimal.Zero
	c.TaxAmount = decimal.Zero
	c.TotalAmount = decimal.Zero
	for idx := range c.Items {
		item := &c.Items[idx]
		if item.IsCancelled() {
			continue
		}
		c.Subtotal = c.Subtotal.Add(item.TotalPrice)
		c.DiscountAmount = c.DiscountAmount.Add(item.DiscountValue())
		c.NetAmount = c.NetAmount.Add(item.NetAmount)
		c.TaxAmount = c.TaxAmount.Add(item.TaxAmount)
		c.TotalAmount = c.TotalAmount.Add(item.LineTotal)
	}
	c.RevisedAmount = c.TotalAmount.Add(c.approvedRevisionTotal())
}

func (c *Commitment) approvedRevisionTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range c.Revisions {
		if r.Status == RevisionStatusApproved {
			total = total.Add(r.ChangeAmount)
		}
	}
	return total
}

// ============================================
// Lifecycle
// ============================================

// Submit sends the commitment for approval. Requires at least one item and a positive total.
func (c *Commitment) Submit(actor shared.Principal) error {
	if !c.Status.CanTransitionTo(StatusPendingApproval) {
		return shared.NewStateTransitionError(AggregateTypeCommitment, c.ID, c.Status.String(), StatusPendingApproval.String())
	}
	if c.ActiveItemCount() == 0 {
		return shared.NewInvariantViolationError(AggregateTypeCommitment, c.ID, "NO_ITEMS", "Cannot submit a commitment without items", "items")
	}
	if !c.TotalAmount.IsPositive() {
		return shared.NewInvariantViolationError(AggregateTypeCommitment, c.ID, "INVALID_AMOUNT", "Commitment total amount must be positive", "total_amount")
	}

	if err := c.transitionTo(StatusPendingApproval, actor); err != nil {
		return err
	}
	now := time.Now()
	c.SubmittedBy = actor.UserIDPtr()
	c.SubmittedAt = &now
	c.RejectionReason = ""
	c.AddDomainEvent(NewCommitmentSubmittedEvent(c, actor))
	return nil
}

// Approve approves a pending commitment, stamping the approver
func (c *Commitment) Approve(actor shared.Principal) error {
	if c.Status != StatusPendingApproval {
		return shared.NewStateTransitionError(AggregateTypeCommitment, c.ID, c.Status.String(), StatusApproved.String())
	}
	if err := c.transitionTo(StatusApproved, actor); err != nil {
		return err
	}
	now := time.Now()
	c.ApprovedBy = actor.UserIDPtr()
	c.ApprovedAt = &now
	c.AddDomainEvent(NewCommitmentApprovedEvent(c, actor))
	return nil
}

// Reject returns a pending commitment to DRAFT with a reason
func (c *Commitment) Reject(reason string, actor shared.Principal) error {
	if c.Status != StatusPendingApproval {
		return shared.NewStateTransitionError(AggregateTypeCommitment, c.ID, c.Status.String(), StatusDraft.String())
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError(AggregateTypeCommitment, c.ID, "INVALID_REASON", "Rejection reason cannot be empty", "rejection_reason")
	}
	if err := c.transitionTo(StatusDraft, actor); err != nil {
		return err
	}
	c.RejectionReason = reason
	c.AddDomainEvent(NewCommitmentRejectedEvent(c, reason, actor))
	return nil
}

// Activate moves an approved commitment into execution
func (c *Commitment) Activate(actor shared.Principal) error {
	if err := c.transitionTo(StatusActive, actor); err != nil {
		return err
	}
	c.AddDomainEvent(NewCommitmentActivatedEvent(c, actor))
	return nil
}

// Cancel cancels the commitment. Only legal while nothing has been invoiced.
func (c *Commitment) Cancel(reason string, actor shared.Principal) error {
	if !c.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewStateTransitionError(AggregateTypeCommitment, c.ID, c.Status.String(), StatusCancelled.String())
	}
	if !c.InvoicedAmount.IsZero() || !c.ItemInvoicedAmount().IsZero() {
		return shared.NewInvariantViolationError(AggregateTypeCommitment, c.ID, "COMMITMENT_INVOICED",
			"Cannot cancel a commitment that has been invoiced", "invoiced_amount")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError(AggregateTypeCommitment, c.ID, "INVALID_REASON", "Cancel reason cannot be empty", "cancel_reason")
	}

	released := decimal.Zero
	if c.Status.IsCommitted() {
		released = c.RevisedAmount
	}
	if err := c.transitionTo(StatusCancelled, actor); err != nil {
		return err
	}
	now := time.Now()
	c.CancelledAt = &now
	c.CancelReason = reason
	c.AddDomainEvent(NewCommitmentCancelledEvent(c, released, reason, actor))
	return nil
}

// Close closes the commitment and locks every item
func (c *Commitment) Close(actor shared.Principal) error {
	if err := c.transitionTo(StatusClosed, actor); err != nil {
		return err
	}
	now := time.Now()
	c.ClosedAt = &now
	for idx := range c.Items {
		c.Items[idx].Lock()
	}
	c.AddDomainEvent(NewCommitmentClosedEvent(c, actor))
	return nil
}

// ActiveItemCount returns the number of items that are not cancelled
func (c *Commitment) ActiveItemCount() int {
	n := 0
	for _, item := range c.Items {
		if !item.IsCancelled() {
			n++
		}
	}
	return n
}

// ============================================
// Allocations
// ============================================

// AllocatedAmount returns the sum of all allocations
func (c *Commitment) AllocatedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, a := range c.WorkPackages {
		total = total.Add(a.AllocatedAmount)
	}
	return total
}

func (c *Commitment) ensureAllocatable(extra decimal.Decimal) error {
	if c.Status.IsTerminal() {
		return shared.NewInvalidStateError(AggregateTypeCommitment, c.ID, c.Status.String(), "allocate")
	}
	if allocated := c.AllocatedAmount().Add(extra); allocated.GreaterThan(c.RevisedAmount) {
		return shared.NewInvariantViolationError(AggregateTypeCommitment, c.ID, "ALLOCATION_EXCEEDS_COMMITMENT",
			fmt.Sprintf("Allocations %s would exceed the commitment value %s", allocated, c.RevisedAmount),
			"allocated_amount", "revised_amount")
	}
	return nil
}

// Allocate distributes part of the commitment value to a work package or budget item
func (c *Commitment) Allocate(target AllocationTarget, amount decimal.Decimal, actor shared.Principal) (*CommitmentWorkPackage, error) {
	alloc, err := NewCommitmentWorkPackage(c.ID, target, amount)
	if err != nil {
		return nil, err
	}
	if err := c.ensureAllocatable(alloc.AllocatedAmount); err != nil {
		return nil, err
	}
	c.WorkPackages = append(c.WorkPackages, *alloc)
	c.Touch(actor)
	return &c.WorkPackages[len(c.WorkPackages)-1], nil
}

// GetAllocation returns the allocation with the given ID
func (c *Commitment) GetAllocation(allocationID uuid.UUID) *CommitmentWorkPackage {
	for idx := range c.WorkPackages {
		if c.WorkPackages[idx].ID == allocationID {
			return &c.WorkPackages[idx]
		}
	}
	return nil
}

func (c *Commitment) allocation(allocationID uuid.UUID) (*CommitmentWorkPackage, error) {
	a := c.GetAllocation(allocationID)
	if a == nil {
		return nil, shared.NewNotFoundError(EntityTypeAllocation, allocationID)
	}
	return a, nil
}

// UpdateAllocation replaces an allocated amount
func (c *Commitment) UpdateAllocation(allocationID uuid.UUID, amount decimal.Decimal, actor shared.Principal) error {
	a, err := c.allocation(allocationID)
	if err != nil {
		return err
	}
	if err := c.ensureAllocatable(amount.Sub(a.AllocatedAmount)); err != nil {
		return err
	}
	if err := a.UpdateAllocation(amount); err != nil {
		return err
	}
	c.Touch(actor)
	return nil
}

// ============================================
// Invoices and payments
// ============================================

// RecordInvoiceParams holds an invoice to post against one allocation.
// A nil Retention applies RetentionPercentage.
type RecordInvoiceParams struct {
	AllocationID  uuid.UUID
	InvoiceNumber string
	InvoiceDate   time.Time
	Amount        decimal.Decimal
	Retention     *decimal.Decimal
}

// DefaultRetention returns the retention withheld from amount at RetentionPercentage
func (c *Commitment) DefaultRetention(amount decimal.Decimal) decimal.Decimal {
	pct, err := valueobject.NewPercentage(c.RetentionPercentage, "retention_percentage")
	if err != nil {
		return decimal.Zero
	}
	return pct.Of(amount)
}

// RecordInvoice posts an invoice against an allocation and derives the
// invoicing status of the commitment
func (c *Commitment) RecordInvoice(p RecordInvoiceParams, actor shared.Principal) (*Invoice, error) {
	if !c.Status.CanInvoice() {
		return nil, shared.NewInvalidStateError(AggregateTypeCommitment, c.ID, c.Status.String(), "invoice")
	}
	number := strings.TrimSpace(p.InvoiceNumber)
	if number == "" {
		return nil, shared.NewValidationError(AggregateTypeCommitment, c.ID, "INVALID_INVOICE_NUMBER", "Invoice number cannot be empty", "invoice_number")
	}
	for _, inv := range c.Invoices {
		if strings.EqualFold(inv.InvoiceNumber, number) {
			return nil, shared.NewValidationError(AggregateTypeCommitment, c.ID, "DUPLICATE_INVOICE",
				fmt.Sprintf("Invoice %s already recorded", number), "invoice_number")
		}
	}
	alloc, err := c.allocation(p.AllocationID)
	if err != nil {
		return nil, err
	}
	amount := valueobject.RoundMoney(p.Amount)
	retention := c.DefaultRetention(amount)
	if p.Retention != nil {
		retention = valueobject.RoundMoney(*p.Retention)
	}
	if err := alloc.RecordInvoice(amount, retention); err != nil {
		return nil, err
	}

	invoiceDate := p.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}
	now := time.Now()
	c.Invoices = append(c.Invoices, Invoice{
		ID:              uuid.New(),
		CommitmentID:    c.ID,
		AllocationID:    alloc.ID,
		InvoiceNumber:   number,
		InvoiceDate:     invoiceDate,
		Amount:          amount,
		RetentionAmount: retention,
		PaidAmount:      decimal.Zero,
		Status:          InvoiceStatusPending,
		RecordedBy:      actor.UserIDPtr(),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	c.InvoicedAmount = c.InvoicedAmount.Add(amount)
	c.RetainedAmount = c.RetainedAmount.Add(retention)

	target := StatusPartiallyInvoiced
	if c.InvoicedAmount.GreaterThanOrEqual(c.RevisedAmount) {
		target = StatusFullyInvoiced
	}
	if target != c.Status {
		if err := c.transitionTo(target, actor); err != nil {
			return nil, err
		}
	}
	c.Touch(actor)

	inv := &c.Invoices[len(c.Invoices)-1]
	c.AddDomainEvent(NewCommitmentInvoiceRecordedEvent(c, inv, actor))
	return inv, nil
}

// GetInvoice returns the invoice with the given ID
func (c *Commitment) GetInvoice(invoiceID uuid.UUID) *Invoice {
	for idx := range c.Invoices {
		if c.Invoices[idx].ID == invoiceID {
			return &c.Invoices[idx]
		}
	}
	return nil
}

func (c *Commitment) invoiceWithAllocation(invoiceID uuid.UUID) (*Invoice, *CommitmentWorkPackage, error) {
	inv := c.GetInvoice(invoiceID)
	if inv == nil {
		return nil, nil, shared.NewNotFoundError(EntityTypeInvoice, invoiceID)
	}
	alloc, err := c.allocation(inv.AllocationID)
	if err != nil {
		return nil, nil, err
	}
	return inv, alloc, nil
}

// RecordPayment pays part of an invoice. Payments cannot exceed the invoice
// amount less retention and earlier payments.
func (c *Commitment) RecordPayment(invoiceID uuid.UUID, amount decimal.Decimal, actor shared.Principal) error {
	if !c.Status.CanPay() {
		return shared.NewInvalidStateError(AggregateTypeCommitment, c.ID, c.Status.String(), "pay")
	}
	inv, alloc, err := c.invoiceWithAllocation(invoiceID)
	if err != nil {
		return err
	}
	amount = valueobject.RoundMoney(amount)
	if balance := inv.BalanceToPay(); amount.GreaterThan(balance) {
		return shared.NewInvariantViolationError(EntityTypeInvoice, inv.ID, "PAYMENT_EXCEEDS_BALANCE",
			fmt.Sprintf("Payment %s exceeds the invoice balance %s", amount, balance), "paid_amount")
	}
	if err := alloc.RecordPayment(amount); err != nil {
		return err
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.UpdatedAt = time.Now()
	inv.updateStatus()
	c.PaidAmount = c.PaidAmount.Add(amount)
	c.Touch(actor)

	c.AddDomainEvent(NewCommitmentPaymentRecordedEvent(c, inv, amount, actor))
	return nil
}

// ReleaseRetention releases retention withheld on an invoice so it becomes payable
func (c *Commitment) ReleaseRetention(invoiceID uuid.UUID, amount decimal.Decimal, actor shared.Principal) error {
	if !c.Status.CanPay() {
		return shared.NewInvalidStateError(AggregateTypeCommitment, c.ID, c.Status.String(), "release retention of")
	}
	inv, alloc, err := c.invoiceWithAllocation(invoiceID)
	if err != nil {
		return err
	}
	amount = valueobject.RoundMoney(amount)
	if amount.GreaterThan(inv.RetentionAmount) {
		return shared.NewInvariantViolationError(EntityTypeInvoice, inv.ID, "RELEASE_EXCEEDS_RETENTION",
			fmt.Sprintf("Cannot release %s, only %s retained on the invoice", amount, inv.RetentionAmount), "retained_amount")
	}
	if err := alloc.ReleaseRetention(amount); err != nil {
		return err
	}

	inv.RetentionAmount = inv.RetentionAmount.Sub(amount)
	inv.UpdatedAt = time.Now()
	inv.updateStatus()
	c.RetainedAmount = c.RetainedAmount.Sub(amount)
	c.Touch(actor)
	return nil
}

// GetBalanceToPay returns InvoicedAmount - RetainedAmount - PaidAmount
func (c *Commitment) GetBalanceToPay() decimal.Decimal {
	return c.InvoicedAmount.Sub(c.RetainedAmount).Sub(c.PaidAmount)
}

// ============================================
// Revisions
// ============================================

// RequestRevision records a pending signed change to the commitment value
func (c *Commitment) RequestRevision(change decimal.Decimal, reason string, actor shared.Principal) (*CommitmentRevision, error) {
	if c.Status != StatusApproved && c.Status != StatusActive && c.Status != StatusPartiallyInvoiced {
		return nil, shared.NewInvalidStateError(AggregateTypeCommitment, c.ID, c.Status.String(), "revise")
	}
	if change.IsZero() {
		return nil, shared.NewValidationError(AggregateTypeCommitment, c.ID, "INVALID_CHANGE", "Revision change amount cannot be zero", "change_amount")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewValidationError(AggregateTypeCommitment, c.ID, "INVALID_REASON", "Revision reason cannot be empty", "reason")
	}
	for _, r := range c.Revisions {
		if r.IsPending() {
			return nil, shared.NewInvariantViolationError(AggregateTypeCommitment, c.ID, "REVISION_PENDING",
				fmt.Sprintf("Revision %d is still pending", r.RevisionNumber), "revisions")
		}
	}

	c.Revisions = append(c.Revisions, CommitmentRevision{
		ID:             uuid.New(),
		CommitmentID:   c.ID,
		RevisionNumber: len(c.Revisions) + 1,
		ChangeAmount:   valueobject.RoundMoney(change),
		Reason:         reason,
		Status:         RevisionStatusPending,
		RequestedBy:    actor.UserIDPtr(),
		RequestedAt:    time.Now(),
	})
	c.Touch(actor)
	return &c.Revisions[len(c.Revisions)-1], nil
}

func (c *Commitment) pendingRevision(revisionID uuid.UUID) (*CommitmentRevision, error) {
	for idx := range c.Revisions {
		r := &c.Revisions[idx]
		if r.ID != revisionID {
			continue
		}
		if !r.IsPending() {
			return nil, shared.NewInvalidStateError(EntityTypeRevision, r.ID, string(r.Status), "decide")
		}
		return r, nil
	}
	return nil, shared.NewNotFoundError(EntityTypeRevision, revisionID)
}

// ApproveRevision applies a pending revision to RevisedAmount. The revised
// value cannot become negative or drop below invoiced or allocated amounts.
func (c *Commitment) ApproveRevision(revisionID uuid.UUID, actor shared.Principal) error {
	if c.Status.IsTerminal() {
		return shared.NewInvalidStateError(AggregateTypeCommitment, c.ID, c.Status.String(), "revise")
	}
	r, err := c.pendingRevision(revisionID)
	if err != nil {
		return err
	}
	newAmount := c.RevisedAmount.Add(r.ChangeAmount)
	if newAmount.IsNegative() {
		return shared.NewInvariantViolationError(AggregateTypeCommitment, c.ID, "NEGATIVE_REVISED_AMOUNT",
			fmt.Sprintf("Revision would make the commitment value negative (%s)", newAmount), "change_amount")
	}
	if newAmount.LessThan(c.InvoicedAmount) {
		return shared.NewInvariantViolationError(AggregateTypeCommitment, c.ID, "REVISED_BELOW_INVOICED",
			fmt.Sprintf("Revised amount %s cannot be less than the invoiced amount %s", newAmount, c.InvoicedAmount), "change_amount")
	}
	if allocated := c.AllocatedAmount(); newAmount.LessThan(allocated) {
		return shared.NewInvariantViolationError(AggregateTypeCommitment, c.ID, "REVISED_BELOW_ALLOCATED",
			fmt.Sprintf("Revised amount %s cannot be less than the allocated amount %s", newAmount, allocated), "change_amount")
	}

	now := time.Now()
	r.Status = RevisionStatusApproved
	r.ApprovedBy = actor.UserIDPtr()
	r.ApprovedAt = &now
	r.PreviousAmount = c.RevisedAmount
	r.NewAmount = newAmount
	c.RevisedAmount = newAmount

	if c.Status == StatusPartiallyInvoiced && c.InvoicedAmount.GreaterThanOrEqual(c.RevisedAmount) {
		if err := c.transitionTo(StatusFullyInvoiced, actor); err != nil {
			return err
		}
	}
	c.Touch(actor)

	c.AddDomainEvent(NewCommitmentRevisionApprovedEvent(c, r, actor))
	return nil
}

// RejectRevision rejects a pending revision with a reason
func (c *Commitment) RejectRevision(revisionID uuid.UUID, reason string, actor shared.Principal) error {
	r, err := c.pendingRevision(revisionID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError(EntityTypeRevision, r.ID, "INVALID_REASON", "Rejection reason cannot be empty", "rejection_reason")
	}
	now := time.Now()
	r.Status = RevisionStatusRejected
	r.RejectionReason = reason
	r.ApprovedBy = actor.UserIDPtr()
	r.ApprovedAt = &now
	c.Touch(actor)
	return nil
}

// TotalMoney returns TotalAmount in the commitment currency
func (c *Commitment) TotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(c.TotalAmount, c.Currency)
	return m
}

// RevisedMoney returns RevisedAmount in the commitment currency
func (c *Commitment) RevisedMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(c.RevisedAmount, c.Currency)
	return m
}
