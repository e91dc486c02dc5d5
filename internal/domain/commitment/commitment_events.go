package commitment

import (
	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate and child entity type constants
const (
	AggregateTypeCommitment  = "Commitment"
	EntityTypeCommitmentItem = "CommitmentItem"
	EntityTypeAllocation     = "CommitmentWorkPackage"
	EntityTypeInvoice        = "CommitmentInvoice"
	EntityTypeRevision       = "CommitmentRevision"
)

// Event type constants
const (
	EventTypeCommitmentCreated          = "CommitmentCreated"
	EventTypeCommitmentSubmitted        = "CommitmentSubmitted"
	EventTypeCommitmentApproved         = "CommitmentApproved"
	EventTypeCommitmentRejected         = "CommitmentRejected"
	EventTypeCommitmentActivated        = "CommitmentActivated"
	EventTypeCommitmentInvoiceRecorded  = "CommitmentInvoiceRecorded"
	EventTypeCommitmentPaymentRecorded  = "CommitmentPaymentRecorded"
	EventTypeCommitmentCancelled        = "CommitmentCancelled"
	EventTypeCommitmentClosed           = "CommitmentClosed"
	EventTypeCommitmentRevisionApproved = "CommitmentRevisionApproved"
)

// CommitmentCreatedEvent is raised when a commitment is created
type CommitmentCreatedEvent struct {
	shared.BaseDomainEvent
	CommitmentID     uuid.UUID  `json:"commitment_id"`
	CommitmentNumber string     `json:"commitment_number"`
	Type             Type       `json:"type"`
	ProjectID        uuid.UUID  `json:"project_id"`
	ControlAccountID *uuid.UUID `json:"control_account_id,omitempty"`
	VendorName       string     `json:"vendor_name"`
}

// NewCommitmentCreatedEvent creates a new CommitmentCreatedEvent
func NewCommitmentCreatedEvent(c *Commitment, actor shared.Principal) *CommitmentCreatedEvent {
	return &CommitmentCreatedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeCommitmentCreated, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:     c.ID,
		CommitmentNumber: c.CommitmentNumber,
		Type:             c.Type,
		ProjectID:        c.ProjectID,
		ControlAccountID: c.ControlAccountID,
		VendorName:       c.VendorName,
	}
}

// EventType returns the event type name
func (e *CommitmentCreatedEvent) EventType() string {
	return EventTypeCommitmentCreated
}

// CommitmentSubmittedEvent is raised when a commitment is sent for approval
type CommitmentSubmittedEvent struct {
	shared.BaseDomainEvent
	CommitmentID     uuid.UUID       `json:"commitment_id"`
	CommitmentNumber string          `json:"commitment_number"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	ItemCount        int             `json:"item_count"`
}

// NewCommitmentSubmittedEvent creates a new CommitmentSubmittedEvent
func NewCommitmentSubmittedEvent(c *Commitment, actor shared.Principal) *CommitmentSubmittedEvent {
	return &CommitmentSubmittedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeCommitmentSubmitted, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:     c.ID,
		CommitmentNumber: c.CommitmentNumber,
		TotalAmount:      c.TotalAmount,
		ItemCount:        c.ActiveItemCount(),
	}
}

// EventType returns the event type name
func (e *CommitmentSubmittedEvent) EventType() string {
	return EventTypeCommitmentSubmitted
}

// CommitmentApprovedEvent is raised when a commitment is approved.
// Budget consumers record the committed amount from this event.
type CommitmentApprovedEvent struct {
	shared.BaseDomainEvent
	CommitmentID     uuid.UUID       `json:"commitment_id"`
	CommitmentNumber string          `json:"commitment_number"`
	ProjectID        uuid.UUID       `json:"project_id"`
	ControlAccountID *uuid.UUID      `json:"control_account_id,omitempty"`
	BudgetItemID     *uuid.UUID      `json:"budget_item_id,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// NewCommitmentApprovedEvent creates a new CommitmentApprovedEvent
func NewCommitmentApprovedEvent(c *Commitment, actor shared.Principal) *CommitmentApprovedEvent {
	return &CommitmentApprovedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeCommitmentApproved, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:     c.ID,
		CommitmentNumber: c.CommitmentNumber,
		ProjectID:        c.ProjectID,
		ControlAccountID: c.ControlAccountID,
		BudgetItemID:     c.BudgetItemID,
		TotalAmount:      c.RevisedAmount,
	}
}

// EventType returns the event type name
func (e *CommitmentApprovedEvent) EventType() string {
	return EventTypeCommitmentApproved
}

// CommitmentRejectedEvent is raised when a pending commitment is sent back to draft
type CommitmentRejectedEvent struct {
	shared.BaseDomainEvent
	CommitmentID     uuid.UUID `json:"commitment_id"`
	CommitmentNumber string    `json:"commitment_number"`
	Reason           string    `json:"reason"`
}

// NewCommitmentRejectedEvent creates a new CommitmentRejectedEvent
func NewCommitmentRejectedEvent(c *Commitment, reason string, actor shared.Principal) *CommitmentRejectedEvent {
	return &CommitmentRejectedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeCommitmentRejected, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:     c.ID,
		CommitmentNumber: c.CommitmentNumber,
		Reason:           reason,
	}
}

// EventType returns the event type name
func (e *CommitmentRejectedEvent) EventType() string {
	return EventTypeCommitmentRejected
}

// CommitmentActivatedEvent is raised when an approved commitment enters execution
type CommitmentActivatedEvent struct {
	shared.BaseDomainEvent
	CommitmentID     uuid.UUID `json:"commitment_id"`
	CommitmentNumber string    `json:"commitment_number"`
}

// NewCommitmentActivatedEvent creates a new CommitmentActivatedEvent
func NewCommitmentActivatedEvent(c *Commitment, actor shared.Principal) *CommitmentActivatedEvent {
	return &CommitmentActivatedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeCommitmentActivated, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:     c.ID,
		CommitmentNumber: c.CommitmentNumber,
	}
}

// EventType returns the event type name
func (e *CommitmentActivatedEvent) EventType() string {
	return EventTypeCommitmentActivated
}

// CommitmentInvoiceRecordedEvent is raised when an invoice is posted.
// Budget consumers record the actual cost from this event.
type CommitmentInvoiceRecordedEvent struct {
	shared.BaseDomainEvent
	CommitmentID     uuid.UUID       `json:"commitment_id"`
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	AllocationID     uuid.UUID       `json:"allocation_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	BudgetItemID     *uuid.UUID      `json:"budget_item_id,omitempty"`
	ControlAccountID *uuid.UUID      `json:"control_account_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	RetentionAmount  decimal.Decimal `json:"retention_amount"`
	InvoicedAmount   decimal.Decimal `json:"invoiced_amount"`
	Status           Status          `json:"status"`
}

// NewCommitmentInvoiceRecordedEvent creates a new CommitmentInvoiceRecordedEvent
func NewCommitmentInvoiceRecordedEvent(c *Commitment, inv *Invoice, actor shared.Principal) *CommitmentInvoiceRecordedEvent {
	e := &CommitmentInvoiceRecordedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeCommitmentInvoiceRecorded, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:     c.ID,
		InvoiceID:        inv.ID,
		AllocationID:     inv.AllocationID,
		InvoiceNumber:    inv.InvoiceNumber,
		BudgetItemID:     c.BudgetItemID,
		ControlAccountID: c.ControlAccountID,
		Amount:           inv.Amount,
		RetentionAmount:  inv.RetentionAmount,
		InvoicedAmount:   c.InvoicedAmount,
		Status:           c.Status,
	}
	if alloc := c.GetAllocation(inv.AllocationID); alloc != nil {
		if alloc.BudgetItemID != nil {
			e.BudgetItemID = alloc.BudgetItemID
		}
		if alloc.ControlAccountID != nil {
			e.ControlAccountID = alloc.ControlAccountID
		}
	}
	return e
}

// EventType returns the event type name
func (e *CommitmentInvoiceRecordedEvent) EventType() string {
	return EventTypeCommitmentInvoiceRecorded
}

// CommitmentPaymentRecordedEvent is raised when an invoice is paid
type CommitmentPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	CommitmentID uuid.UUID       `json:"commitment_id"`
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
}

// NewCommitmentPaymentRecordedEvent creates a new CommitmentPaymentRecordedEvent
func NewCommitmentPaymentRecordedEvent(c *Commitment, inv *Invoice, amount decimal.Decimal, actor shared.Principal) *CommitmentPaymentRecordedEvent {
	return &CommitmentPaymentRecordedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeCommitmentPaymentRecorded, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:    c.ID,
		InvoiceID:       inv.ID,
		Amount:          amount,
		PaidAmount:      c.PaidAmount,
	}
}

// EventType returns the event type name
func (e *CommitmentPaymentRecordedEvent) EventType() string {
	return EventTypeCommitmentPaymentRecorded
}

// CommitmentCancelledEvent is raised when a commitment is cancelled
type CommitmentCancelledEvent struct {
	shared.BaseDomainEvent
	CommitmentID     uuid.UUID       `json:"commitment_id"`
	CommitmentNumber string          `json:"commitment_number"`
	BudgetItemID     *uuid.UUID      `json:"budget_item_id,omitempty"`
	ReleasedAmount   decimal.Decimal `json:"released_amount"`
	Reason           string          `json:"reason"`
}

// NewCommitmentCancelledEvent creates a new CommitmentCancelledEvent. released
// is the amount previously committed against the budget, zero when the
// commitment was never approved.
func NewCommitmentCancelledEvent(c *Commitment, released decimal.Decimal, reason string, actor shared.Principal) *CommitmentCancelledEvent {
	return &CommitmentCancelledEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeCommitmentCancelled, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:     c.ID,
		CommitmentNumber: c.CommitmentNumber,
		BudgetItemID:     c.BudgetItemID,
		ReleasedAmount:   released,
		Reason:           reason,
	}
}

// EventType returns the event type name
func (e *CommitmentCancelledEvent) EventType() string {
	return EventTypeCommitmentCancelled
}

// CommitmentClosedEvent is raised when a commitment is closed
type CommitmentClosedEvent struct {
	shared.BaseDomainEvent
	CommitmentID     uuid.UUID       `json:"commitment_id"`
	CommitmentNumber string          `json:"commitment_number"`
	InvoicedAmount   decimal.Decimal `json:"invoiced_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
}

// NewCommitmentClosedEvent creates a new CommitmentClosedEvent
func NewCommitmentClosedEvent(c *Commitment, actor shared.Principal) *CommitmentClosedEvent {
	return &CommitmentClosedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeCommitmentClosed, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:     c.ID,
		CommitmentNumber: c.CommitmentNumber,
		InvoicedAmount:   c.InvoicedAmount,
		PaidAmount:       c.PaidAmount,
	}
}

// EventType returns the event type name
func (e *CommitmentClosedEvent) EventType() string {
	return EventTypeCommitmentClosed
}

// CommitmentRevisionApprovedEvent is raised when a value change is applied
type CommitmentRevisionApprovedEvent struct {
	shared.BaseDomainEvent
	CommitmentID   uuid.UUID       `json:"commitment_id"`
	RevisionID     uuid.UUID       `json:"revision_id"`
	RevisionNumber int             `json:"revision_number"`
	BudgetItemID   *uuid.UUID      `json:"budget_item_id,omitempty"`
	ChangeAmount   decimal.Decimal `json:"change_amount"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	NewAmount      decimal.Decimal `json:"new_amount"`
}

// NewCommitmentRevisionApprovedEvent creates a new CommitmentRevisionApprovedEvent
func NewCommitmentRevisionApprovedEvent(c *Commitment, r *CommitmentRevision, actor shared.Principal) *CommitmentRevisionApprovedEvent {
	return &CommitmentRevisionApprovedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeCommitmentRevisionApproved, AggregateTypeCommitment, c.ID, c.TenantID, actor),
		CommitmentID:    c.ID,
		RevisionID:      r.ID,
		RevisionNumber:  r.RevisionNumber,
		BudgetItemID:    c.BudgetItemID,
		ChangeAmount:    r.ChangeAmount,
		PreviousAmount:  r.PreviousAmount,
		NewAmount:       r.NewAmount,
	}
}

// EventType returns the event type name
func (e *CommitmentRevisionApprovedEvent) EventType() string {
	return EventTypeCommitmentRevisionApproved
}
