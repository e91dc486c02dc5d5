package controlaccount

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate and child entity type constants
const (
	AggregateTypeControlAccount = "ControlAccount"
	EntityTypeWorkPackage       = "WorkPackage"
	EntityTypePlanningPackage   = "PlanningPackage"
	EntityTypeAssignment        = "Assignment"
)

// Event type constants
const (
	EventTypeControlAccountCreated         = "ControlAccountCreated"
	EventTypeControlAccountBaselined       = "ControlAccountBaselined"
	EventTypeControlAccountProgressUpdated = "ControlAccountProgressUpdated"
	EventTypeControlAccountStatusChanged   = "ControlAccountStatusChanged"
	EventTypeControlAccountClosed          = "ControlAccountClosed"
	EventTypeControlAccountBudgetUpdated   = "ControlAccountBudgetUpdated"
)

// ControlAccountCreatedEvent is raised when a control account is created
type ControlAccountCreatedEvent struct {
	shared.BaseDomainEvent
	ControlAccountID uuid.UUID       `json:"control_account_id"`
	ProjectID        uuid.UUID       `json:"project_id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	BAC              decimal.Decimal `json:"bac"`
}

// NewControlAccountCreatedEvent creates a new ControlAccountCreatedEvent
func NewControlAccountCreatedEvent(ca *ControlAccount, actor shared.Principal) *ControlAccountCreatedEvent {
	return &ControlAccountCreatedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeControlAccountCreated, AggregateTypeControlAccount, ca.ID, ca.TenantID, actor),
		ControlAccountID: ca.ID,
		ProjectID:        ca.ProjectID,
		Code:             ca.Code,
		Name:             ca.Name,
		BAC:              ca.BAC,
	}
}

// EventType returns the event type name
func (e *ControlAccountCreatedEvent) EventType() string {
	return EventTypeControlAccountCreated
}

// ControlAccountBaselinedEvent is raised when the budget of a control account is baselined
type ControlAccountBaselinedEvent struct {
	shared.BaseDomainEvent
	ControlAccountID uuid.UUID       `json:"control_account_id"`
	Code             string          `json:"code"`
	BAC              decimal.Decimal `json:"bac"`
	TotalBudget      decimal.Decimal `json:"total_budget"`
	BaselineDate     time.Time       `json:"baseline_date"`
}

// NewControlAccountBaselinedEvent creates a new ControlAccountBaselinedEvent
func NewControlAccountBaselinedEvent(ca *ControlAccount, actor shared.Principal) *ControlAccountBaselinedEvent {
	e := &ControlAccountBaselinedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeControlAccountBaselined, AggregateTypeControlAccount, ca.ID, ca.TenantID, actor),
		ControlAccountID: ca.ID,
		Code:             ca.Code,
		BAC:              ca.BAC,
		TotalBudget:      ca.TotalBudget(),
	}
	if ca.BaselineDate != nil {
		e.BaselineDate = *ca.BaselineDate
	}
	return e
}

// EventType returns the event type name
func (e *ControlAccountBaselinedEvent) EventType() string {
	return EventTypeControlAccountBaselined
}

// ControlAccountProgressUpdatedEvent is raised when percent complete changes
type ControlAccountProgressUpdatedEvent struct {
	shared.BaseDomainEvent
	ControlAccountID        uuid.UUID       `json:"control_account_id"`
	PreviousPercentComplete decimal.Decimal `json:"previous_percent_complete"`
	PercentComplete         decimal.Decimal `json:"percent_complete"`
	Status                  Status          `json:"status"`
}

// NewControlAccountProgressUpdatedEvent creates a new ControlAccountProgressUpdatedEvent
func NewControlAccountProgressUpdatedEvent(ca *ControlAccount, previous decimal.Decimal, actor shared.Principal) *ControlAccountProgressUpdatedEvent {
	return &ControlAccountProgressUpdatedEvent{
		BaseDomainEvent:         shared.NewActorDomainEvent(EventTypeControlAccountProgressUpdated, AggregateTypeControlAccount, ca.ID, ca.TenantID, actor),
		ControlAccountID:        ca.ID,
		PreviousPercentComplete: previous,
		PercentComplete:         ca.PercentComplete,
		Status:                  ca.Status,
	}
}

// EventType returns the event type name
func (e *ControlAccountProgressUpdatedEvent) EventType() string {
	return EventTypeControlAccountProgressUpdated
}

// ControlAccountStatusChangedEvent is raised on every status transition
type ControlAccountStatusChangedEvent struct {
	shared.BaseDomainEvent
	ControlAccountID uuid.UUID `json:"control_account_id"`
	FromStatus       Status    `json:"from_status"`
	ToStatus         Status    `json:"to_status"`
}

// NewControlAccountStatusChangedEvent creates a new ControlAccountStatusChangedEvent
func NewControlAccountStatusChangedEvent(ca *ControlAccount, from, to Status, actor shared.Principal) *ControlAccountStatusChangedEvent {
	return &ControlAccountStatusChangedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeControlAccountStatusChanged, AggregateTypeControlAccount, ca.ID, ca.TenantID, actor),
		ControlAccountID: ca.ID,
		FromStatus:       from,
		ToStatus:         to,
	}
}

// EventType returns the event type name
func (e *ControlAccountStatusChangedEvent) EventType() string {
	return EventTypeControlAccountStatusChanged
}

// ControlAccountClosedEvent is raised when a control account is closed
type ControlAccountClosedEvent struct {
	shared.BaseDomainEvent
	ControlAccountID uuid.UUID       `json:"control_account_id"`
	Code             string          `json:"code"`
	PercentComplete  decimal.Decimal `json:"percent_complete"`
	ClosedDate       time.Time       `json:"closed_date"`
}

// NewControlAccountClosedEvent creates a new ControlAccountClosedEvent
func NewControlAccountClosedEvent(ca *ControlAccount, actor shared.Principal) *ControlAccountClosedEvent {
	e := &ControlAccountClosedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeControlAccountClosed, AggregateTypeControlAccount, ca.ID, ca.TenantID, actor),
		ControlAccountID: ca.ID,
		Code:             ca.Code,
		PercentComplete:  ca.PercentComplete,
	}
	if ca.ClosedDate != nil {
		e.ClosedDate = *ca.ClosedDate
	}
	return e
}

// EventType returns the event type name
func (e *ControlAccountClosedEvent) EventType() string {
	return EventTypeControlAccountClosed
}

// ControlAccountBudgetUpdatedEvent is raised when BAC or reserves change
type ControlAccountBudgetUpdatedEvent struct {
	shared.BaseDomainEvent
	ControlAccountID    uuid.UUID       `json:"control_account_id"`
	BAC                 decimal.Decimal `json:"bac"`
	ContingencyReserve  decimal.Decimal `json:"contingency_reserve"`
	ManagementReserve   decimal.Decimal `json:"management_reserve"`
	PreviousTotalBudget decimal.Decimal `json:"previous_total_budget"`
	TotalBudget         decimal.Decimal `json:"total_budget"`
}

// NewControlAccountBudgetUpdatedEvent creates a new ControlAccountBudgetUpdatedEvent
func NewControlAccountBudgetUpdatedEvent(ca *ControlAccount, previousTotal decimal.Decimal, actor shared.Principal) *ControlAccountBudgetUpdatedEvent {
	return &ControlAccountBudgetUpdatedEvent{
		BaseDomainEvent:     shared.NewActorDomainEvent(EventTypeControlAccountBudgetUpdated, AggregateTypeControlAccount, ca.ID, ca.TenantID, actor),
		ControlAccountID:    ca.ID,
		BAC:                 ca.BAC,
		ContingencyReserve:  ca.ContingencyReserve,
		ManagementReserve:   ca.ManagementReserve,
		PreviousTotalBudget: previousTotal,
		TotalBudget:         ca.TotalBudget(),
	}
}

// EventType returns the event type name
func (e *ControlAccountBudgetUpdatedEvent) EventType() string {
	return EventTypeControlAccountBudgetUpdated
}
