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

// Budget is a versioned financial baseline for a project.
// BudgetVersion numbers the baseline; the embedded Version is the optimistic lock token.
type Budget struct {
	shared.TenantAggregateRoot
	ProjectID       uuid.UUID
	Name            string
	Description     string
	BudgetVersion   int
	Status          Status
	Currency        valueobject.Currency
	ExchangeRate    decimal.Decimal
	TotalAmount     decimal.Decimal
	BaselineAmount  decimal.Decimal
	BaselineDate    *time.Time
	SubmittedBy     *uuid.UUID
	SubmittedAt     *time.Time
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason string
	LockedBy        *uuid.UUID
	LockedAt        *time.Time
	ClosedAt        *time.Time
	Items           []BudgetItem
	Revisions       []BudgetRevision
}

// NewBudget creates a new budget in DRAFT status
func NewBudget(tenantID, projectID uuid.UUID, name string, budgetVersion int, currency valueobject.Currency, actor shared.Principal) (*Budget, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewValidationError(AggregateTypeBudget, uuid.Nil, "INVALID_PROJECT", "Project ID cannot be empty", "project_id")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError(AggregateTypeBudget, uuid.Nil, "INVALID_NAME", "Budget name cannot be empty", "name")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError(AggregateTypeBudget, uuid.Nil, "INVALID_NAME", "Budget name cannot exceed 200 characters", "name")
	}
	if budgetVersion < 1 {
		return nil, shared.NewValidationError(AggregateTypeBudget, uuid.Nil, "INVALID_VERSION", "Budget version must be at least 1", "budget_version")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError(AggregateTypeBudget, uuid.Nil, "INVALID_CURRENCY",
			fmt.Sprintf("Invalid currency: %s", currency), "currency")
	}

	b := &Budget{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, actor),
		ProjectID:           projectID,
		Name:                name,
		BudgetVersion:       budgetVersion,
		Status:              StatusDraft,
		Currency:            currency,
		ExchangeRate:        decimal.NewFromInt(1),
		TotalAmount:         decimal.Zero,
		BaselineAmount:      decimal.Zero,
		Items:               make([]BudgetItem, 0),
		Revisions:           make([]BudgetRevision, 0),
	}

	b.AddDomainEvent(NewBudgetCreatedEvent(b, actor))
	return b, nil
}

// ensureEditable rejects direct edits. It runs before any mutator so a
// locked budget is never partially modified.
func (b *Budget) ensureEditable(operation string) error {
	if b.Status == StatusLocked {
		return shared.NewInvariantViolationError(AggregateTypeBudget, b.ID, "BUDGET_LOCKED",
			fmt.Sprintf("Cannot %s a locked budget; request a revision instead", operation), "status")
	}
	if !b.Status.IsEditable() {
		return shared.NewInvalidStateError(AggregateTypeBudget, b.ID, b.Status.String(), operation)
	}
	return nil
}

func (b *Budget) transitionTo(target Status, actor shared.Principal) error {
	if !b.Status.CanTransitionTo(target) {
		return shared.NewStateTransitionError(AggregateTypeBudget, b.ID, b.Status.String(), target.String())
	}
	b.Status = target
	b.Touch(actor)
	return nil
}

func (b *Budget) recalculateTotal() {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Amount)
	}
	b.TotalAmount = total
}

// UpdateDetails changes name, description and exchange rate
func (b *Budget) UpdateDetails(name, description string, exchangeRate decimal.Decimal, actor shared.Principal) error {
	if err := b.ensureEditable("update"); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError(AggregateTypeBudget, b.ID, "INVALID_NAME", "Budget name cannot be empty", "name")
	}
	if err := valueobject.RequirePositive("exchange_rate", exchangeRate); err != nil {
		return err.WithEntity(AggregateTypeBudget, b.ID)
	}
	b.Name = name
	b.Description = description
	b.ExchangeRate = exchangeRate
	b.Touch(actor)
	return nil
}

// ============================================
// Items
// ============================================

// AddItem adds a budget line. Codes are unique within the budget.
func (b *Budget) AddItem(code, description string, controlAccountID *uuid.UUID, amount decimal.Decimal, actor shared.Principal) (*BudgetItem, error) {
	if err := b.ensureEditable("add items to"); err != nil {
		return nil, err
	}
	item, err := NewBudgetItem(b.ID, code, description, controlAccountID, amount)
	if err != nil {
		return nil, err
	}
	for _, existing := range b.Items {
		if existing.Code == item.Code {
			return nil, shared.NewValidationError(AggregateTypeBudget, b.ID, "DUPLICATE_CODE",
				fmt.Sprintf("Budget item %s already exists", item.Code), "code")
		}
	}
	b.Items = append(b.Items, *item)
	b.recalculateTotal()
	b.Touch(actor)
	return &b.Items[len(b.Items)-1], nil
}

// GetItem returns the item with the given ID
func (b *Budget) GetItem(itemID uuid.UUID) *BudgetItem {
	for idx := range b.Items {
		if b.Items[idx].ID == itemID {
			return &b.Items[idx]
		}
	}
	return nil
}

func (b *Budget) item(itemID uuid.UUID) (*BudgetItem, error) {
	item := b.GetItem(itemID)
	if item == nil {
		return nil, shared.NewNotFoundError(EntityTypeBudgetItem, itemID)
	}
	return item, nil
}

// UpdateItem changes the description and amount of an item
func (b *Budget) UpdateItem(itemID uuid.UUID, description string, amount decimal.Decimal, actor shared.Principal) error {
	if err := b.ensureEditable("update items of"); err != nil {
		return err
	}
	item, err := b.item(itemID)
	if err != nil {
		return err
	}
	if err := item.setAmount(amount); err != nil {
		return err
	}
	item.Description = description
	b.recalculateTotal()
	b.Touch(actor)
	return nil
}

// RemoveItem removes an item that has no commitments or actuals
func (b *Budget) RemoveItem(itemID uuid.UUID, actor shared.Principal) error {
	if err := b.ensureEditable("remove items from"); err != nil {
		return err
	}
	for idx := range b.Items {
		if b.Items[idx].ID != itemID {
			continue
		}
		if b.Items[idx].HasConsumption() {
			return shared.NewInvariantViolationError(EntityTypeBudgetItem, itemID, "ITEM_CONSUMED",
				"Cannot remove a budget item with commitments or actuals", "committed_amount", "actual_amount")
		}
		b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
		b.recalculateTotal()
		b.Touch(actor)
		return nil
	}
	return shared.NewNotFoundError(EntityTypeBudgetItem, itemID)
}

// AmountForControlAccount returns the budgeted amount of items tied to a control account
func (b *Budget) AmountForControlAccount(controlAccountID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		if item.ControlAccountID != nil && *item.ControlAccountID == controlAccountID {
			total = total.Add(item.Amount)
		}
	}
	return total
}

// ============================================
// Workflow
// ============================================

// Submit sends the budget for review. Requires at least one item and a positive total.
func (b *Budget) Submit(actor shared.Principal) error {
	if !b.Status.CanTransitionTo(StatusUnderReview) {
		return shared.NewStateTransitionError(AggregateTypeBudget, b.ID, b.Status.String(), StatusUnderReview.String())
	}
	if len(b.Items) == 0 {
		return shared.NewInvariantViolationError(AggregateTypeBudget, b.ID, "NO_ITEMS", "Cannot submit a budget without items", "items")
	}
	if !b.TotalAmount.IsPositive() {
		return shared.NewInvariantViolationError(AggregateTypeBudget, b.ID, "INVALID_AMOUNT", "Budget total amount must be positive", "total_amount")
	}
	if err := b.transitionTo(StatusUnderReview, actor); err != nil {
		return err
	}
	now := time.Now()
	b.SubmittedBy = actor.UserIDPtr()
	b.SubmittedAt = &now
	b.RejectionReason = ""
	b.AddDomainEvent(NewBudgetSubmittedEvent(b, actor))
	return nil
}

func (b *Budget) stampBaseline(target Status, actor shared.Principal) error {
	if err := b.transitionTo(target, actor); err != nil {
		return err
	}
	now := time.Now()
	b.BaselineAmount = b.TotalAmount
	b.BaselineDate = &now
	b.ApprovedBy = actor.UserIDPtr()
	b.ApprovedAt = &now
	return nil
}

// Baseline accepts the reviewed budget as the project baseline
func (b *Budget) Baseline(actor shared.Principal) error {
	if err := b.stampBaseline(StatusBaseline, actor); err != nil {
		return err
	}
	b.AddDomainEvent(NewBudgetBaselinedEvent(b, EventTypeBudgetBaselined, actor))
	return nil
}

// Approve approves the reviewed budget
func (b *Budget) Approve(actor shared.Principal) error {
	if err := b.stampBaseline(StatusApproved, actor); err != nil {
		return err
	}
	b.AddDomainEvent(NewBudgetBaselinedEvent(b, EventTypeBudgetApproved, actor))
	return nil
}

// Reject rejects the reviewed budget with a reason
func (b *Budget) Reject(reason string, actor shared.Principal) error {
	if !b.Status.CanTransitionTo(StatusRejected) {
		return shared.NewStateTransitionError(AggregateTypeBudget, b.ID, b.Status.String(), StatusRejected.String())
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError(AggregateTypeBudget, b.ID, "INVALID_REASON", "Rejection reason cannot be empty", "rejection_reason")
	}
	if err := b.transitionTo(StatusRejected, actor); err != nil {
		return err
	}
	b.RejectionReason = reason
	b.AddDomainEvent(NewBudgetRejectedEvent(b, reason, actor))
	return nil
}

// Reopen returns a rejected budget to DRAFT
func (b *Budget) Reopen(actor shared.Principal) error {
	return b.transitionTo(StatusDraft, actor)
}

// Activate puts a baselined, approved or revised budget into use
func (b *Budget) Activate(actor shared.Principal) error {
	if err := b.transitionTo(StatusActive, actor); err != nil {
		return err
	}
	b.AddDomainEvent(NewBudgetActivatedEvent(b, actor))
	return nil
}

// Lock freezes the budget amounts. Only revisions can change a locked budget.
func (b *Budget) Lock(actor shared.Principal) error {
	if err := b.transitionTo(StatusLocked, actor); err != nil {
		return err
	}
	now := time.Now()
	b.LockedBy = actor.UserIDPtr()
	b.LockedAt = &now
	b.AddDomainEvent(NewBudgetLockedEvent(b, actor))
	return nil
}

// Close closes the budget. Pending revisions must be decided first.
func (b *Budget) Close(actor shared.Principal) error {
	if !b.Status.CanTransitionTo(StatusClosed) {
		return shared.NewStateTransitionError(AggregateTypeBudget, b.ID, b.Status.String(), StatusClosed.String())
	}
	if n := b.PendingRevisionCount(); n > 0 {
		return shared.NewInvariantViolationError(AggregateTypeBudget, b.ID, "REVISIONS_PENDING",
			fmt.Sprintf("Cannot close budget: %d revision(s) pending", n), "revisions")
	}
	if err := b.transitionTo(StatusClosed, actor); err != nil {
		return err
	}
	now := time.Now()
	b.ClosedAt = &now
	b.AddDomainEvent(NewBudgetClosedEvent(b, actor))
	return nil
}

// ============================================
// Revisions
// ============================================

// PendingRevisionCount returns the number of revisions awaiting a decision
func (b *Budget) PendingRevisionCount() int {
	n := 0
	for _, r := range b.Revisions {
		if r.IsPending() {
			n++
		}
	}
	return n
}

// RequestRevision records a pending signed change to one item
func (b *Budget) RequestRevision(itemID uuid.UUID, change decimal.Decimal, reason string, actor shared.Principal) (*BudgetRevision, error) {
	if !b.Status.IsBaselined() {
		return nil, shared.NewInvalidStateError(AggregateTypeBudget, b.ID, b.Status.String(), "revise")
	}
	if _, err := b.item(itemID); err != nil {
		return nil, err
	}
	if change.IsZero() {
		return nil, shared.NewValidationError(AggregateTypeBudget, b.ID, "INVALID_CHANGE", "Revision change amount cannot be zero", "change_amount")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewValidationError(AggregateTypeBudget, b.ID, "INVALID_REASON", "Revision reason cannot be empty", "reason")
	}

	b.Revisions = append(b.Revisions, BudgetRevision{
		ID:             uuid.New(),
		BudgetID:       b.ID,
		BudgetItemID:   itemID,
		RevisionNumber: len(b.Revisions) + 1,
		ChangeAmount:   valueobject.RoundMoney(change),
		Reason:         reason,
		Status:         RevisionStatusPending,
		RequestedBy:    actor.UserIDPtr(),
		RequestedAt:    time.Now(),
	})
	b.Touch(actor)

	r := &b.Revisions[len(b.Revisions)-1]
	b.AddDomainEvent(NewBudgetRevisionRequestedEvent(b, r, actor))
	return r, nil
}

// GetRevision returns the revision with the given ID
func (b *Budget) GetRevision(revisionID uuid.UUID) *BudgetRevision {
	for idx := range b.Revisions {
		if b.Revisions[idx].ID == revisionID {
			return &b.Revisions[idx]
		}
	}
	return nil
}

func (b *Budget) pendingRevision(revisionID uuid.UUID) (*BudgetRevision, error) {
	r := b.GetRevision(revisionID)
	if r == nil {
		return nil, shared.NewNotFoundError(EntityTypeBudgetRevision, revisionID)
	}
	if !r.IsPending() {
		return nil, shared.NewInvalidStateError(EntityTypeBudgetRevision, r.ID, string(r.Status), "decide")
	}
	return r, nil
}

// ApproveRevision applies the delta to the item and TotalAmount. The item
// amount cannot become negative or drop below what is already committed.
// Active and locked budgets move to REVISED.
func (b *Budget) ApproveRevision(revisionID uuid.UUID, actor shared.Principal) error {
	if !b.Status.IsBaselined() {
		return shared.NewInvalidStateError(AggregateTypeBudget, b.ID, b.Status.String(), "revise")
	}
	r, err := b.pendingRevision(revisionID)
	if err != nil {
		return err
	}
	item, err := b.item(r.BudgetItemID)
	if err != nil {
		return err
	}
	newAmount := item.Amount.Add(r.ChangeAmount)
	if newAmount.IsNegative() {
		return shared.NewInvariantViolationError(EntityTypeBudgetItem, item.ID, "NEGATIVE_AMOUNT",
			fmt.Sprintf("Revision would make item %s negative (%s)", item.Code, newAmount), "change_amount")
	}
	if newAmount.LessThan(item.CommittedAmount) {
		return shared.NewInvariantViolationError(EntityTypeBudgetItem, item.ID, "AMOUNT_BELOW_COMMITTED",
			fmt.Sprintf("Revised amount %s of item %s cannot be less than the committed amount %s", newAmount, item.Code, item.CommittedAmount),
			"change_amount", "committed_amount")
	}
	if b.Status == StatusActive || b.Status == StatusLocked {
		if err := b.transitionTo(StatusRevised, actor); err != nil {
			return err
		}
	}

	now := time.Now()
	r.Status = RevisionStatusApproved
	r.ApprovedBy = actor.UserIDPtr()
	r.ApprovedAt = &now
	r.PreviousAmount = item.Amount
	r.NewAmount = newAmount
	item.Amount = newAmount
	item.UpdatedAt = now
	b.recalculateTotal()
	b.Touch(actor)

	b.AddDomainEvent(NewBudgetRevisionApprovedEvent(b, r, actor))
	return nil
}

// RejectRevision rejects a pending revision with a reason
func (b *Budget) RejectRevision(revisionID uuid.UUID, reason string, actor shared.Principal) error {
	r, err := b.pendingRevision(revisionID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError(EntityTypeBudgetRevision, r.ID, "INVALID_REASON", "Rejection reason cannot be empty", "rejection_reason")
	}
	now := time.Now()
	r.Status = RevisionStatusRejected
	r.RejectionReason = reason
	r.ApprovedBy = actor.UserIDPtr()
	r.ApprovedAt = &now
	b.Touch(actor)
	return nil
}

// ApprovedRevisionTotal returns the sum of approved revision deltas
func (b *Budget) ApprovedRevisionTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range b.Revisions {
		if r.Status == RevisionStatusApproved {
			total = total.Add(r.ChangeAmount)
		}
	}
	return total
}

// ============================================
// Consumption
// ============================================

func (b *Budget) ensureConsumable() error {
	if !b.Status.IsBaselined() {
		return shared.NewInvalidStateError(AggregateTypeBudget, b.ID, b.Status.String(), "consume")
	}
	return nil
}

// RecordCommitment adds a signed committed amount to an item. Negative
// amounts release commitments. Committed may not exceed the item amount.
func (b *Budget) RecordCommitment(itemID uuid.UUID, amount decimal.Decimal, actor shared.Principal) error {
	if err := b.ensureConsumable(); err != nil {
		return err
	}
	item, err := b.item(itemID)
	if err != nil {
		return err
	}
	if err := item.recordCommitment(amount); err != nil {
		return err
	}
	b.Touch(actor)
	return nil
}

// RecordActual adds an actual cost to an item
func (b *Budget) RecordActual(itemID uuid.UUID, amount decimal.Decimal, actor shared.Principal) error {
	if err := b.ensureConsumable(); err != nil {
		return err
	}
	item, err := b.item(itemID)
	if err != nil {
		return err
	}
	if err := item.recordActual(amount); err != nil {
		return err
	}
	b.Touch(actor)
	return nil
}

// CommittedAmount returns the committed total across items
func (b *Budget) CommittedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.CommittedAmount)
	}
	return total
}

// ActualAmount returns the actual cost total across items
func (b *Budget) ActualAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.ActualAmount)
	}
	return total
}
