package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate and child entity type constants
const (
	AggregateTypeBudget      = "Budget"
	EntityTypeBudgetItem     = "BudgetItem"
	EntityTypeBudgetRevision = "BudgetRevision"
)

// Event type constants
const (
	EventTypeBudgetCreated           = "BudgetCreated"
	EventTypeBudgetSubmitted         = "BudgetSubmitted"
	EventTypeBudgetBaselined         = "BudgetBaselined"
	EventTypeBudgetApproved          = "BudgetApproved"
	EventTypeBudgetRejected          = "BudgetRejected"
	EventTypeBudgetActivated         = "BudgetActivated"
	EventTypeBudgetLocked            = "BudgetLocked"
	EventTypeBudgetRevisionRequested = "BudgetRevisionRequested"
	EventTypeBudgetRevisionApproved  = "BudgetRevisionApproved"
	EventTypeBudgetClosed            = "BudgetClosed"
)

// BudgetCreatedEvent is raised when a budget is created
type BudgetCreatedEvent struct {
	shared.BaseDomainEvent
	BudgetID      uuid.UUID `json:"budget_id"`
	ProjectID     uuid.UUID `json:"project_id"`
	Name          string    `json:"name"`
	BudgetVersion int       `json:"budget_version"`
}

// NewBudgetCreatedEvent creates a new BudgetCreatedEvent
func NewBudgetCreatedEvent(b *Budget, actor shared.Principal) *BudgetCreatedEvent {
	return &BudgetCreatedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeBudgetCreated, AggregateTypeBudget, b.ID, b.TenantID, actor),
		BudgetID:        b.ID,
		ProjectID:       b.ProjectID,
		Name:            b.Name,
		BudgetVersion:   b.BudgetVersion,
	}
}

// EventType returns the event type name
func (e *BudgetCreatedEvent) EventType() string {
	return EventTypeBudgetCreated
}

// BudgetSubmittedEvent is raised when a budget is sent for review
type BudgetSubmittedEvent struct {
	shared.BaseDomainEvent
	BudgetID    uuid.UUID       `json:"budget_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewBudgetSubmittedEvent creates a new BudgetSubmittedEvent
func NewBudgetSubmittedEvent(b *Budget, actor shared.Principal) *BudgetSubmittedEvent {
	return &BudgetSubmittedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeBudgetSubmitted, AggregateTypeBudget, b.ID, b.TenantID, actor),
		BudgetID:        b.ID,
		TotalAmount:     b.TotalAmount,
		ItemCount:       len(b.Items),
	}
}

// EventType returns the event type name
func (e *BudgetSubmittedEvent) EventType() string {
	return EventTypeBudgetSubmitted
}

// BudgetBaselinedEvent is raised when a reviewed budget is baselined or approved.
// Type distinguishes the two.
type BudgetBaselinedEvent struct {
	shared.BaseDomainEvent
	BudgetID       uuid.UUID       `json:"budget_id"`
	ProjectID      uuid.UUID       `json:"project_id"`
	BudgetVersion  int             `json:"budget_version"`
	BaselineAmount decimal.Decimal `json:"baseline_amount"`
	BaselineDate   time.Time       `json:"baseline_date"`
}

// NewBudgetBaselinedEvent creates a new BudgetBaselinedEvent of the given type
func NewBudgetBaselinedEvent(b *Budget, eventType string, actor shared.Principal) *BudgetBaselinedEvent {
	e := &BudgetBaselinedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(eventType, AggregateTypeBudget, b.ID, b.TenantID, actor),
		BudgetID:        b.ID,
		ProjectID:       b.ProjectID,
		BudgetVersion:   b.BudgetVersion,
		BaselineAmount:  b.BaselineAmount,
	}
	if b.BaselineDate != nil {
		e.BaselineDate = *b.BaselineDate
	}
	return e
}

// BudgetRejectedEvent is raised when a reviewed budget is rejected
type BudgetRejectedEvent struct {
	shared.BaseDomainEvent
	BudgetID uuid.UUID `json:"budget_id"`
	Reason   string    `json:"reason"`
}

// NewBudgetRejectedEvent creates a new BudgetRejectedEvent
func NewBudgetRejectedEvent(b *Budget, reason string, actor shared.Principal) *BudgetRejectedEvent {
	return &BudgetRejectedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeBudgetRejected, AggregateTypeBudget, b.ID, b.TenantID, actor),
		BudgetID:        b.ID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *BudgetRejectedEvent) EventType() string {
	return EventTypeBudgetRejected
}

// BudgetActivatedEvent is raised when a budget is put into use
type BudgetActivatedEvent struct {
	shared.BaseDomainEvent
	BudgetID    uuid.UUID       `json:"budget_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewBudgetActivatedEvent creates a new BudgetActivatedEvent
func NewBudgetActivatedEvent(b *Budget, actor shared.Principal) *BudgetActivatedEvent {
	return &BudgetActivatedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeBudgetActivated, AggregateTypeBudget, b.ID, b.TenantID, actor),
		BudgetID:        b.ID,
		TotalAmount:     b.TotalAmount,
	}
}

// EventType returns the event type name
func (e *BudgetActivatedEvent) EventType() string {
	return EventTypeBudgetActivated
}

// BudgetLockedEvent is raised when a budget is locked
type BudgetLockedEvent struct {
	shared.BaseDomainEvent
	BudgetID    uuid.UUID       `json:"budget_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewBudgetLockedEvent creates a new BudgetLockedEvent
func NewBudgetLockedEvent(b *Budget, actor shared.Principal) *BudgetLockedEvent {
	return &BudgetLockedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeBudgetLocked, AggregateTypeBudget, b.ID, b.TenantID, actor),
		BudgetID:        b.ID,
		TotalAmount:     b.TotalAmount,
	}
}

// EventType returns the event type name
func (e *BudgetLockedEvent) EventType() string {
	return EventTypeBudgetLocked
}

// BudgetRevisionRequestedEvent is raised when a revision is requested
type BudgetRevisionRequestedEvent struct {
	shared.BaseDomainEvent
	BudgetID       uuid.UUID       `json:"budget_id"`
	RevisionID     uuid.UUID       `json:"revision_id"`
	BudgetItemID   uuid.UUID       `json:"budget_item_id"`
	RevisionNumber int             `json:"revision_number"`
	ChangeAmount   decimal.Decimal `json:"change_amount"`
	Reason         string          `json:"reason"`
}

// NewBudgetRevisionRequestedEvent creates a new BudgetRevisionRequestedEvent
func NewBudgetRevisionRequestedEvent(b *Budget, r *BudgetRevision, actor shared.Principal) *BudgetRevisionRequestedEvent {
	return &BudgetRevisionRequestedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeBudgetRevisionRequested, AggregateTypeBudget, b.ID, b.TenantID, actor),
		BudgetID:        b.ID,
		RevisionID:      r.ID,
		BudgetItemID:    r.BudgetItemID,
		RevisionNumber:  r.RevisionNumber,
		ChangeAmount:    r.ChangeAmount,
		Reason:          r.Reason,
	}
}

// EventType returns the event type name
func (e *BudgetRevisionRequestedEvent) EventType() string {
	return EventTypeBudgetRevisionRequested
}

// BudgetRevisionApprovedEvent is raised when a revision delta is applied
type BudgetRevisionApprovedEvent struct {
	shared.BaseDomainEvent
	BudgetID       uuid.UUID       `json:"budget_id"`
	RevisionID     uuid.UUID       `json:"revision_id"`
	BudgetItemID   uuid.UUID       `json:"budget_item_id"`
	ChangeAmount   decimal.Decimal `json:"change_amount"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	NewAmount      decimal.Decimal `json:"new_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// NewBudgetRevisionApprovedEvent creates a new BudgetRevisionApprovedEvent
func NewBudgetRevisionApprovedEvent(b *Budget, r *BudgetRevision, actor shared.Principal) *BudgetRevisionApprovedEvent {
	return &BudgetRevisionApprovedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeBudgetRevisionApproved, AggregateTypeBudget, b.ID, b.TenantID, actor),
		BudgetID:        b.ID,
		RevisionID:      r.ID,
		BudgetItemID:    r.BudgetItemID,
		ChangeAmount:    r.ChangeAmount,
		PreviousAmount:  r.PreviousAmount,
		NewAmount:       r.NewAmount,
		TotalAmount:     b.TotalAmount,
	}
}

// EventType returns the event type name
func (e *BudgetRevisionApprovedEvent) EventType() string {
	return EventTypeBudgetRevisionApproved
}

// BudgetClosedEvent is raised when a budget is closed
type BudgetClosedEvent struct {
	shared.BaseDomainEvent
	BudgetID        uuid.UUID       `json:"budget_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CommittedAmount decimal.Decimal `json:"committed_amount"`
	ActualAmount    decimal.Decimal `json:"actual_amount"`
}

// NewBudgetClosedEvent creates a new BudgetClosedEvent
func NewBudgetClosedEvent(b *Budget, actor shared.Principal) *BudgetClosedEvent {
	return &BudgetClosedEvent{
		BaseDomainEvent: shared.NewActorDomainEvent(EventTypeBudgetClosed, AggregateTypeBudget, b.ID, b.TenantID, actor),
		BudgetID:        b.ID,
		TotalAmount:     b.TotalAmount,
		CommittedAmount: b.CommittedAmount(),
		ActualAmount:    b.ActualAmount(),
	}
}

// EventType returns the event type name
func (e *BudgetClosedEvent) EventType() string {
	return EventTypeBudgetClosed
}
