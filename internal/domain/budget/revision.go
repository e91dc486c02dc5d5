package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetRevision is a signed change to one budget item that requires its own
// approval before the budget amounts move
type BudgetRevision struct {
	ID              uuid.UUID
	BudgetID        uuid.UUID
	BudgetItemID    uuid.UUID
	RevisionNumber  int
	ChangeAmount    decimal.Decimal
	Reason          string
	Status          RevisionStatus
	RequestedBy     *uuid.UUID
	RequestedAt     time.Time
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason string
	PreviousAmount  decimal.Decimal
	NewAmount       decimal.Decimal
}

// IsPending returns true while the revision awaits a decision
func (r *BudgetRevision) IsPending() bool {
	return r.Status == RevisionStatusPending
}
