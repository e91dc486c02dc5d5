package evm

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeEVMRecord = "EVMRecord"

// Event type constants
const (
	EventTypeEVMRecordCreated   = "EVMRecordCreated"
	EventTypeEVMRecordCorrected = "EVMRecordCorrected"
)

// EVMRecordCreatedEvent is raised when a snapshot is recorded for a period
type EVMRecordCreatedEvent struct {
	shared.BaseDomainEvent
	RecordID         uuid.UUID         `json:"record_id"`
	ControlAccountID uuid.UUID         `json:"control_account_id"`
	DataDate         time.Time         `json:"data_date"`
	PeriodType       PeriodType        `json:"period_type"`
	PeriodNumber     int               `json:"period_number"`
	Year             int               `json:"year"`
	CPI              decimal.Decimal   `json:"cpi"`
	SPI              decimal.Decimal   `json:"spi"`
	EAC              decimal.Decimal   `json:"eac"`
	Status           PerformanceStatus `json:"status"`
}

// NewEVMRecordCreatedEvent creates a new EVMRecordCreatedEvent
func NewEVMRecordCreatedEvent(r *EVMRecord, actor shared.Principal) *EVMRecordCreatedEvent {
	return &EVMRecordCreatedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeEVMRecordCreated, AggregateTypeEVMRecord, r.ID, r.TenantID, actor),
		RecordID:         r.ID,
		ControlAccountID: r.ControlAccountID,
		DataDate:         r.DataDate,
		PeriodType:       r.PeriodType,
		PeriodNumber:     r.PeriodNumber,
		Year:             r.Year,
		CPI:              r.CumulativeCPI,
		SPI:              r.CumulativeSPI,
		EAC:              r.EAC,
		Status:           r.Status,
	}
}

// EventType returns the event type name
func (e *EVMRecordCreatedEvent) EventType() string {
	return EventTypeEVMRecordCreated
}

// EVMRecordCorrectedEvent is raised when cumulative values of a record are replaced
type EVMRecordCorrectedEvent struct {
	shared.BaseDomainEvent
	RecordID         uuid.UUID         `json:"record_id"`
	ControlAccountID uuid.UUID         `json:"control_account_id"`
	Previous         CumulativeValues  `json:"previous"`
	Current          CumulativeValues  `json:"current"`
	Status           PerformanceStatus `json:"status"`
}

// NewEVMRecordCorrectedEvent creates a new EVMRecordCorrectedEvent
func NewEVMRecordCorrectedEvent(r *EVMRecord, previous CumulativeValues, actor shared.Principal) *EVMRecordCorrectedEvent {
	return &EVMRecordCorrectedEvent{
		BaseDomainEvent:  shared.NewActorDomainEvent(EventTypeEVMRecordCorrected, AggregateTypeEVMRecord, r.ID, r.TenantID, actor),
		RecordID:         r.ID,
		ControlAccountID: r.ControlAccountID,
		Previous:         previous,
		Current:          r.cumulative(),
		Status:           r.Status,
	}
}

// EventType returns the event type name
func (e *EVMRecordCorrectedEvent) EventType() string {
	return EventTypeEVMRecordCorrected
}
