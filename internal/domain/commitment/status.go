package commitment

// Status represents the lifecycle status of a commitment
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusPendingApproval   Status = "PENDING_APPROVAL"
	StatusApproved          Status = "APPROVED"
	StatusActive            Status = "ACTIVE"
	StatusPartiallyInvoiced Status = "PARTIALLY_INVOICED"
	StatusFullyInvoiced     Status = "FULLY_INVOICED"
	StatusClosed            Status = "CLOSED"
	StatusCancelled         Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusActive,
		StatusPartiallyInvoiced, StatusFullyInvoiced, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusPendingApproval || target == StatusCancelled
	case StatusPendingApproval:
		// back to DRAFT on rejection
		return target == StatusApproved || target == StatusDraft || target == StatusCancelled
	case StatusApproved:
		return target == StatusActive || target == StatusCancelled
	case StatusActive:
		return target == StatusPartiallyInvoiced || target == StatusFullyInvoiced ||
			target == StatusClosed || target == StatusCancelled
	case StatusPartiallyInvoiced:
		return target == StatusFullyInvoiced || target == StatusClosed
	case StatusFullyInvoiced:
		return target == StatusClosed
	case StatusClosed, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for CLOSED and CANCELLED
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// CanInvoice returns true if invoices can be recorded in this status
func (s Status) CanInvoice() bool {
	return s == StatusActive || s == StatusPartiallyInvoiced
}

// CanPay returns true if payments can be recorded in this status
func (s Status) CanPay() bool {
	return s == StatusActive || s == StatusPartiallyInvoiced || s == StatusFullyInvoiced
}

// IsCommitted returns true once the commitment is approved and not terminal
func (s Status) IsCommitted() bool {
	switch s {
	case StatusApproved, StatusActive, StatusPartiallyInvoiced, StatusFullyInvoiced:
		return true
	}
	return false
}

// Type is the kind of contractual obligation
type Type string

const (
	TypePurchaseOrder    Type = "PURCHASE_ORDER"
	TypeContract         Type = "CONTRACT"
	TypeServiceAgreement Type = "SERVICE_AGREEMENT"
	TypeSubcontract      Type = "SUBCONTRACT"
	TypeFramework        Type = "FRAMEWORK"
)

// IsValid checks if the commitment type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypePurchaseOrder, TypeContract, TypeServiceAgreement, TypeSubcontract, TypeFramework:
		return true
	}
	return false
}

// ItemStatus is the delivery and invoicing state of a commitment item
type ItemStatus string

const (
	ItemStatusActive             ItemStatus = "ACTIVE"
	ItemStatusPartiallyDelivered ItemStatus = "PARTIALLY_DELIVERED"
	ItemStatusFullyDelivered     ItemStatus = "FULLY_DELIVERED"
	ItemStatusPartiallyInvoiced  ItemStatus = "PARTIALLY_INVOICED"
	ItemStatusFullyInvoiced      ItemStatus = "FULLY_INVOICED"
	ItemStatusCompleted          ItemStatus = "COMPLETED"
	ItemStatusCancelled          ItemStatus = "CANCELLED"
	ItemStatusLocked             ItemStatus = "LOCKED"
)

// IsValid checks if the item status is valid
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusPartiallyDelivered, ItemStatusFullyDelivered,
		ItemStatusPartiallyInvoiced, ItemStatusFullyInvoiced, ItemStatusCompleted,
		ItemStatusCancelled, ItemStatusLocked:
		return true
	}
	return false
}

// IsFrozen returns true for statuses that override the derived status
func (s ItemStatus) IsFrozen() bool {
	return s == ItemStatusCancelled || s == ItemStatusLocked
}

// RevisionStatus is the approval state of a commitment revision
type RevisionStatus string

const (
	RevisionStatusPending  RevisionStatus = "PENDING"
	RevisionStatusApproved RevisionStatus = "APPROVED"
	RevisionStatusRejected RevisionStatus = "REJECTED"
)

// InvoiceStatus is the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
)
