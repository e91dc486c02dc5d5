package controlaccount

// Status represents the lifecycle status of a control account
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusBaselined  Status = "BASELINED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusClosed     Status = "CLOSED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusBaselined, StatusInProgress, StatusCompleted, StatusClosed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Closed is reachable from every non-terminal status as the abort path.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusOpen:
		return target == StatusBaselined || target == StatusClosed
	case StatusBaselined:
		return target == StatusInProgress || target == StatusClosed
	case StatusInProgress:
		return target == StatusCompleted || target == StatusClosed
	case StatusCompleted:
		return target == StatusClosed
	case StatusClosed:
		return false // Terminal state
	}
	return false
}

// IsTerminal returns true for Closed
func (s Status) IsTerminal() bool {
	return s == StatusClosed
}

// MeasurementMethod is the earned value technique of a control account
type MeasurementMethod string

const (
	MeasurementPercentComplete   MeasurementMethod = "PERCENT_COMPLETE"
	MeasurementWeightedMilestone MeasurementMethod = "WEIGHTED_MILESTONE"
	MeasurementUnits             MeasurementMethod = "UNITS"
	MeasurementLOE               MeasurementMethod = "LOE"
	MeasurementApportioned       MeasurementMethod = "APPORTIONED"
	MeasurementEarnedStandards   MeasurementMethod = "EARNED_STANDARDS"
)

// IsValid checks if the measurement method is valid
func (m MeasurementMethod) IsValid() bool {
	switch m {
	case MeasurementPercentComplete, MeasurementWeightedMilestone, MeasurementUnits,
		MeasurementLOE, MeasurementApportioned, MeasurementEarnedStandards:
		return true
	}
	return false
}

// String returns the string representation of MeasurementMethod
func (m MeasurementMethod) String() string {
	return string(m)
}

// Role is the responsibility of a team member on a control account
type Role string

const (
	RoleCAM          Role = "CAM"
	RolePlanner      Role = "PLANNER"
	RoleCostEngineer Role = "COST_ENGINEER"
	RoleScheduler    Role = "SCHEDULER"
	RoleViewer       Role = "VIEWER"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleCAM, RolePlanner, RoleCostEngineer, RoleScheduler, RoleViewer:
		return true
	}
	return false
}
