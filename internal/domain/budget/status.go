package budget

// Status represents the workflow status of a budget
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusBaseline    Status = "BASELINE"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusActive      Status = "ACTIVE"
	StatusLocked      Status = "LOCKED"
	StatusRevised     Status = "REVISED"
	StatusClosed      Status = "CLOSED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusUnderReview, StatusBaseline, StatusApproved, StatusRejected,
		StatusActive, StatusLocked, StatusRevised, StatusClosed:
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
		return target == StatusUnderReview
	case StatusUnderReview:
		return target == StatusBaseline || target == StatusApproved || target == StatusRejected
	case StatusRejected:
		return target == StatusDraft
	case StatusBaseline, StatusApproved:
		return target == StatusActive
	case StatusActive:
		return target == StatusLocked || target == StatusRevised || target == StatusClosed
	case StatusLocked:
		return target == StatusRevised || target == StatusClosed
	case StatusRevised:
		return target == StatusActive || target == StatusLocked || target == StatusClosed
	case StatusClosed:
		return false // Terminal state
	}
	return false
}

// IsEditable returns true when items and header fields may be changed directly
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusRejected
}

// IsBaselined returns true once the budget has been baselined or approved and is not closed
func (s Status) IsBaselined() bool {
	switch s {
	case StatusBaseline, StatusApproved, StatusActive, StatusLocked, StatusRevised:
		return true
	}
	return false
}

// RevisionStatus is the approval state of a budget revision
type RevisionStatus string

const (
	RevisionStatusPending  RevisionStatus = "PENDING"
	RevisionStatusApproved RevisionStatus = "APPROVED"
	RevisionStatusRejected RevisionStatus = "REJECTED"
)

// IsValid checks if the revision status is valid
func (s RevisionStatus) IsValid() bool {
	return s == RevisionStatusPending || s == RevisionStatusApproved || s == RevisionStatusRejected
}
