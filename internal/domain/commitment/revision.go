package commitment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommitmentRevision is a signed change to the commitment value that needs
// its own approval before RevisedAmount moves
type CommitmentRevision struct {
	ID              uuid.UUID
	CommitmentID    uuid.UUID
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
func (r *CommitmentRevision) IsPending() bool {
	return r.Status == RevisionStatusPending
}

// Invoice is a vendor invoice posted against one allocation
type Invoice struct {
	ID              uuid.UUID
	CommitmentID    uuid.UUID
	AllocationID    uuid.UUID
	InvoiceNumber   string
	InvoiceDate     time.Time
	Amount          decimal.Decimal
	RetentionAmount decimal.Decimal
	PaidAmount      decimal.Decimal
	Status          InvoiceStatus
	RecordedBy      *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BalanceToPay returns Amount - RetentionAmount - PaidAmount
func (inv *Invoice) BalanceToPay() decimal.Decimal {
	return inv.Amount.Sub(inv.RetentionAmount).Sub(inv.PaidAmount)
}

func (inv *Invoice) updateStatus() {
	switch {
	case inv.PaidAmount.IsZero():
		inv.Status = InvoiceStatusPending
	case inv.BalanceToPay().IsPositive():
		inv.Status = InvoiceStatusPartiallyPaid
	default:
		inv.Status = InvoiceStatusPaid
	}
}
