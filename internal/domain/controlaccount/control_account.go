package controlaccount

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// codePattern is C-XXX-YY-CAM-## with letters or digits in the X and Y slots
var codePattern = regexp.MustCompile(`^C-[A-Z0-9]{3}-[A-Z0-9]{2}-CAM-[0-9]{2}$`)

// IsValidCode reports whether code has the C-XXX-YY-CAM-## format
func IsValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// ControlAccount is the unit of budget ownership and EVM roll-up.
// Children reference the account by ID only.
type ControlAccount struct {
	shared.TenantAggregateRoot
	ProjectID          uuid.UUID
	Code               string
	Name               string
	Description        string
	BAC                decimal.Decimal
	ContingencyReserve decimal.Decimal
	ManagementReserve  decimal.Decimal
	MeasurementMethod  MeasurementMethod
	Status             Status
	PercentComplete    decimal.Decimal
	CAMUserID          *uuid.UUID
	BaselineDate       *time.Time
	ClosedDate         *time.Time
	WorkPackages       []WorkPackage
	PlanningPackages   []PlanningPackage
	Assignments        []Assignment
}

// NewControlAccount creates a new control account in OPEN status
func NewControlAccount(tenantID, projectID uuid.UUID, code, name string, method MeasurementMethod, bac decimal.Decimal, actor shared.Principal) (*ControlAccount, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !IsValidCode(code) {
		return nil, shared.NewValidationError(AggregateTypeControlAccount, uuid.Nil, "INVALID_CODE",
			fmt.Sprintf("Control account code %q must match C-XXX-YY-CAM-##", code), "code")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewValidationError(AggregateTypeControlAccount, uuid.Nil, "INVALID_PROJECT", "Project ID cannot be empty", "project_id")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError(AggregateTypeControlAccount, uuid.Nil, "INVALID_NAME", "Control account name cannot be empty", "name")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError(AggregateTypeControlAccount, uuid.Nil, "INVALID_NAME", "Control account name cannot exceed 200 characters", "name")
	}
	if method == "" {
		method = MeasurementPercentComplete
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(AggregateTypeControlAccount, uuid.Nil, "INVALID_MEASUREMENT_METHOD",
			fmt.Sprintf("Invalid measurement method: %s", method), "measurement_method")
	}
	if err := valueobject.RequireNonNegative("bac", bac); err != nil {
		return nil, err.WithEntity(AggregateTypeControlAccount, uuid.Nil)
	}

	ca := &ControlAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, actor),
		ProjectID:           projectID,
		Code:                code,
		Name:                name,
		BAC:                 valueobject.RoundMoney(bac),
		ContingencyReserve:  decimal.Zero,
		ManagementReserve:   decimal.Zero,
		MeasurementMethod:   method,
		Status:              StatusOpen,
		PercentComplete:     decimal.Zero,
		WorkPackages:        make([]WorkPackage, 0),
		PlanningPackages:    make([]PlanningPackage, 0),
		Assignments:         make([]Assignment, 0),
	}

	ca.AddDomainEvent(NewControlAccountCreatedEvent(ca, actor))
	return ca, nil
}

// TotalBudget returns BAC + contingency reserve + management reserve
func (c *ControlAccount) TotalBudget() decimal.Decimal {
	return valueobject.Sum(c.BAC, c.ContingencyReserve, c.ManagementReserve)
}

// AllocatedBudget returns the budget distributed to work and planning packages
func (c *ControlAccount) AllocatedBudget() decimal.Decimal {
	total := decimal.Zero
	for _, wp := range c.WorkPackages {
		total = total.Add(wp.Budget)
	}
	for _, pp := range c.PlanningPackages {
		total = total.Add(pp.Budget)
	}
	return total
}

// UnallocatedBudget returns BAC minus the allocated budget
func (c *ControlAccount) UnallocatedBudget() decimal.Decimal {
	return c.BAC.Sub(c.AllocatedBudget())
}

// SetDescription sets the description
func (c *ControlAccount) SetDescription(description string, actor shared.Principal) {
	c.Description = description
	c.Touch(actor)
}

func (c *ControlAccount) transitionTo(target Status, actor shared.Principal) error {
	if !c.Status.CanTransitionTo(target) {
		return shared.NewStateTransitionError(AggregateTypeControlAccount, c.ID, c.Status.String(), target.String())
	}
	from := c.Status
	c.Status = target
	c.Touch(actor)
	c.AddDomainEvent(NewControlAccountStatusChangedEvent(c, from, target, actor))
	return nil
}

// Baseline freezes the budget, transitioning from OPEN to BASELINED.
// Requires a positive BAC.
func (c *ControlAccount) Baseline(actor shared.Principal) error {
	if !c.Status.CanTransitionTo(StatusBaselined) {
		return shared.NewStateTransitionError(AggregateTypeControlAccount, c.ID, c.Status.String(), StatusBaselined.String())
	}
	if !c.BAC.IsPositive() {
		return shared.NewInvariantViolationError(AggregateTypeControlAccount, c.ID, "BAC_REQUIRED",
			"Cannot baseline a control account without a positive BAC", "bac")
	}

	if err := c.transitionTo(StatusBaselined, actor); err != nil {
		return err
	}
	now := time.Now()
	c.BaselineDate = &now
	c.AddDomainEvent(NewControlAccountBaselinedEvent(c, actor))
	return nil
}

// UpdateProgress records the percent complete of the account.
// From BASELINED a value between 0 and 100 moves the account to IN_PROGRESS;
// 100 moves it on to COMPLETED. Completed accounts cannot regress.
func (c *ControlAccount) UpdateProgress(percent decimal.Decimal, actor shared.Principal) error {
	if c.Status == StatusClosed {
		return shared.NewInvalidStateError(AggregateTypeControlAccount, c.ID, c.Status.String(), "update progress of")
	}
	if err := valueobject.RequirePercent("percent_complete", percent); err != nil {
		return err.WithEntity(AggregateTypeControlAccount, c.ID)
	}
	percent = valueobject.RoundPercent(percent)
	complete := percent.Equal(valueobject.Hundred)
	started := percent.IsPositive()

	// plan the transitions before mutating so a failure leaves the account unchanged
	var path []Status
	switch c.Status {
	case StatusBaselined:
		if started {
			path = append(path, StatusInProgress)
		}
		if complete {
			path = append(path, StatusCompleted)
		}
	case StatusInProgress:
		if complete {
			path = append(path, StatusCompleted)
		}
	case StatusCompleted:
		if !complete {
			return shared.NewStateTransitionError(AggregateTypeControlAccount, c.ID, c.Status.String(), StatusInProgress.String())
		}
	}

	previous := c.PercentComplete
	c.PercentComplete = percent
	c.Touch(actor)
	for _, next := range path {
		if err := c.transitionTo(next, actor); err != nil {
			return err
		}
	}

	c.AddDomainEvent(NewControlAccountProgressUpdatedEvent(c, previous, actor))
	return nil
}

// RollUpProgress sets the account progress to the budget-weighted progress of
// its work packages. Packages are weighted equally when no budget is assigned.
func (c *ControlAccount) RollUpProgress(actor shared.Principal) error {
	if len(c.WorkPackages) == 0 {
		return shared.NewInvariantViolationError(AggregateTypeControlAccount, c.ID, "NO_WORK_PACKAGES",
			"Cannot roll up progress without work packages", "work_packages")
	}
	return c.UpdateProgress(c.WeightedProgress(), actor)
}

// WeightedProgress returns the budget-weighted progress of the work packages
func (c *ControlAccount) WeightedProgress() decimal.Decimal {
	if len(c.WorkPackages) == 0 {
		return decimal.Zero
	}
	totalBudget := decimal.Zero
	weighted := decimal.Zero
	simple := decimal.Zero
	for i := range c.WorkPackages {
		wp := &c.WorkPackages[i]
		p := wp.WeightedProgress()
		totalBudget = totalBudget.Add(wp.Budget)
		weighted = weighted.Add(wp.Budget.Mul(p))
		simple = simple.Add(p)
	}
	if totalBudget.IsZero() {
		return simple.DivRound(decimal.NewFromInt(int64(len(c.WorkPackages))), valueobject.PercentPrecision)
	}
	return weighted.DivRound(totalBudget, valueobject.PercentPrecision)
}

// IncompleteWorkPackages returns the work packages below 100% weighted progress
func (c *ControlAccount) IncompleteWorkPackages() []WorkPackage {
	var incomplete []WorkPackage
	for i := range c.WorkPackages {
		if !c.WorkPackages[i].IsComplete() {
			incomplete = append(incomplete, c.WorkPackages[i])
		}
	}
	return incomplete
}

// Close closes the account. Every work package must be 100% complete.
func (c *ControlAccount) Close(actor shared.Principal) error {
	if !c.Status.CanTransitionTo(StatusClosed) {
		return shared.NewStateTransitionError(AggregateTypeControlAccount, c.ID, c.Status.String(), StatusClosed.String())
	}
	if incomplete := c.IncompleteWorkPackages(); len(incomplete) > 0 {
		return shared.NewInvariantViolationError(AggregateTypeControlAccount, c.ID, "WORK_PACKAGES_INCOMPLETE",
			fmt.Sprintf("Cannot close control account: %d work package(s) incomplete", len(incomplete)), "work_packages")
	}

	if err := c.transitionTo(StatusClosed, actor); err != nil {
		return err
	}
	now := time.Now()
	c.ClosedDate = &now
	c.AddDomainEvent(NewControlAccountClosedEvent(c, actor))
	return nil
}

// CanDelete returns true if the account is OPEN and has no children
func (c *ControlAccount) CanDelete() bool {
	return c.Status == StatusOpen &&
		len(c.WorkPackages) == 0 &&
		len(c.PlanningPackages) == 0 &&
		len(c.Assignments) == 0
}

// EnsureDeletable returns an error describing why the account cannot be deleted
func (c *ControlAccount) EnsureDeletable() error {
	if c.Status != StatusOpen {
		return shared.NewInvalidStateError(AggregateTypeControlAccount, c.ID, c.Status.String(), "delete")
	}
	if !c.CanDelete() {
		return shared.NewInvariantViolationError(AggregateTypeControlAccount, c.ID, "HAS_CHILDREN",
			"Cannot delete a control account with work packages, planning packages or assignments",
			"work_packages", "planning_packages", "assignments")
	}
	return nil
}

// UpdateBudget replaces the BAC and reserves. BAC cannot drop below the
// budget already allocated to packages.
func (c *ControlAccount) UpdateBudget(bac, contingency, management decimal.Decimal, actor shared.Principal) error {
	if c.Status == StatusClosed {
		return shared.NewInvalidStateError(AggregateTypeControlAccount, c.ID, c.Status.String(), "update budget of")
	}
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"bac", bac},
		{"contingency_reserve", contingency},
		{"management_reserve", management},
	} {
		if err := valueobject.RequireNonNegative(f.name, f.value); err != nil {
			return err.WithEntity(AggregateTypeControlAccount, c.ID)
		}
	}
	if allocated := c.AllocatedBudget(); bac.LessThan(allocated) {
		return shared.NewInvariantViolationError(AggregateTypeControlAccount, c.ID, "BAC_BELOW_ALLOCATED",
			fmt.Sprintf("BAC %s cannot be less than the allocated budget %s", bac.StringFixed(2), allocated.StringFixed(2)), "bac")
	}

	previous := c.TotalBudget()
	c.BAC = valueobject.RoundMoney(bac)
	c.ContingencyReserve = valueobject.RoundMoney(contingency)
	c.ManagementReserve = valueobject.RoundMoney(management)
	c.Touch(actor)

	c.AddDomainEvent(NewControlAccountBudgetUpdatedEvent(c, previous, actor))
	return nil
}

func (c *ControlAccount) ensurePackagesEditable(operation string) error {
	if c.Status == StatusCompleted || c.Status == StatusClosed {
		return shared.NewInvalidStateError(AggregateTypeControlAccount, c.ID, c.Status.String(), operation)
	}
	return nil
}

func (c *ControlAccount) ensureBudgetAvailable(amount decimal.Decimal) error {
	if available := c.UnallocatedBudget(); amount.GreaterThan(available) {
		return shared.NewInvariantViolationError(AggregateTypeControlAccount, c.ID, "BUDGET_EXCEEDED",
			fmt.Sprintf("Package budget %s exceeds the unallocated budget %s", amount.StringFixed(2), available.StringFixed(2)), "budget")
	}
	return nil
}

func (c *ControlAccount) ensureUniquePackageCode(code string) error {
	for _, wp := range c.WorkPackages {
		if strings.EqualFold(wp.Code, code) {
			return shared.NewValidationError(AggregateTypeControlAccount, c.ID, "DUPLICATE_CODE",
				fmt.Sprintf("Package code %s already exists", code), "code")
		}
	}
	for _, pp := range c.PlanningPackages {
		if strings.EqualFold(pp.Code, code) {
			return shared.NewValidationError(AggregateTypeControlAccount, c.ID, "DUPLICATE_CODE",
				fmt.Sprintf("Package code %s already exists", code), "code")
		}
	}
	return nil
}

// AddWorkPackage adds a work package funded from the unallocated BAC
func (c *ControlAccount) AddWorkPackage(code, name string, budget decimal.Decimal, actor shared.Principal) (*WorkPackage, error) {
	if err := c.ensurePackagesEditable("add work packages to"); err != nil {
		return nil, err
	}
	wp, err := NewWorkPackage(c.ID, code, name, budget)
	if err != nil {
		return nil, err
	}
	if err := c.ensureUniquePackageCode(wp.Code); err != nil {
		return nil, err
	}
	if err := c.ensureBudgetAvailable(wp.Budget); err != nil {
		return nil, err
	}

	c.WorkPackages = append(c.WorkPackages, *wp)
	c.Touch(actor)
	return &c.WorkPackages[len(c.WorkPackages)-1], nil
}

// GetWorkPackage returns the work package with the given ID
func (c *ControlAccount) GetWorkPackage(id uuid.UUID) *WorkPackage {
	for i := range c.WorkPackages {
		if c.WorkPackages[i].ID == id {
			return &c.WorkPackages[i]
		}
	}
	return nil
}

func (c *ControlAccount) workPackage(id uuid.UUID) (*WorkPackage, error) {
	wp := c.GetWorkPackage(id)
	if wp == nil {
		return nil, shared.NewNotFoundError(EntityTypeWorkPackage, id)
	}
	return wp, nil
}

// UpdateWorkPackageProgress sets the percent complete of a work package
func (c *ControlAccount) UpdateWorkPackageProgress(workPackageID uuid.UUID, percent decimal.Decimal, actor shared.Principal) error {
	if c.Status == StatusClosed {
		return shared.NewInvalidStateError(AggregateTypeControlAccount, c.ID, c.Status.String(), "update progress of")
	}
	wp, err := c.workPackage(workPackageID)
	if err != nil {
		return err
	}
	if err := wp.UpdateProgress(percent); err != nil {
		return err
	}
	c.Touch(actor)
	return nil
}

// AddMilestone adds a weighted milestone to a work package
func (c *ControlAccount) AddMilestone(workPackageID uuid.UUID, name string, weight decimal.Decimal, actor shared.Principal) (*Milestone, error) {
	if err := c.ensurePackagesEditable("add milestones to"); err != nil {
		return nil, err
	}
	wp, err := c.workPackage(workPackageID)
	if err != nil {
		return nil, err
	}
	m, err := wp.AddMilestone(name, weight)
	if err != nil {
		return nil, err
	}
	c.Touch(actor)
	return m, nil
}

// UpdateMilestoneProgress sets the percent complete of one milestone
func (c *ControlAccount) UpdateMilestoneProgress(workPackageID, milestoneID uuid.UUID, percent decimal.Decimal, actor shared.Principal) error {
	if c.Status == StatusClosed {
		return shared.NewInvalidStateError(AggregateTypeControlAccount, c.ID, c.Status.String(), "update progress of")
	}
	wp, err := c.workPackage(workPackageID)
	if err != nil {
		return err
	}
	if err := wp.UpdateMilestoneProgress(milestoneID, percent); err != nil {
		return err
	}
	c.Touch(actor)
	return nil
}

// RemoveWorkPackage removes a work package with no recorded progress.
// Only allowed in OPEN or BASELINED status.
func (c *ControlAccount) RemoveWorkPackage(workPackageID uuid.UUID, actor shared.Principal) error {
	if c.Status != StatusOpen && c.Status != StatusBaselined {
		return shared.NewInvalidStateError(AggregateTypeControlAccount, c.ID, c.Status.String(), "remove work packages from")
	}
	for idx := range c.WorkPackages {
		if c.WorkPackages[idx].ID != workPackageID {
			continue
		}
		if c.WorkPackages[idx].HasProgress() {
			return shared.NewInvariantViolationError(AggregateTypeControlAccount, c.ID, "WORK_PACKAGE_IN_PROGRESS",
				"Cannot remove a work package with recorded progress", "work_packages")
		}
		c.WorkPackages = append(c.WorkPackages[:idx], c.WorkPackages[idx+1:]...)
		c.Touch(actor)
		return nil
	}
	return shared.NewNotFoundError(EntityTypeWorkPackage, workPackageID)
}

// AddPlanningPackage adds a planning package funded from the unallocated BAC
func (c *ControlAccount) AddPlanningPackage(code, name string, budget decimal.Decimal, actor shared.Principal) (*PlanningPackage, error) {
	if err := c.ensurePackagesEditable("add planning packages to"); err != nil {
		return nil, err
	}
	pp, err := NewPlanningPackage(c.ID, code, name, budget)
	if err != nil {
		return nil, err
	}
	if err := c.ensureUniquePackageCode(pp.Code); err != nil {
		return nil, err
	}
	if err := c.ensureBudgetAvailable(pp.Budget); err != nil {
		return nil, err
	}

	c.PlanningPackages = append(c.PlanningPackages, *pp)
	c.Touch(actor)
	return &c.PlanningPackages[len(c.PlanningPackages)-1], nil
}

// ConvertPlanningPackage turns a planning package into a work package with the same code and budget
func (c *ControlAccount) ConvertPlanningPackage(planningPackageID uuid.UUID, actor shared.Principal) (*WorkPackage, error) {
	if err := c.ensurePackagesEditable("convert planning packages of"); err != nil {
		return nil, err
	}
	for idx := range c.PlanningPackages {
		pp := c.PlanningPackages[idx]
		if pp.ID != planningPackageID {
			continue
		}
		wp, err := NewWorkPackage(c.ID, pp.Code, pp.Name, pp.Budget)
		if err != nil {
			return nil, err
		}
		c.PlanningPackages = append(c.PlanningPackages[:idx], c.PlanningPackages[idx+1:]...)
		c.WorkPackages = append(c.WorkPackages, *wp)
		c.Touch(actor)
		return &c.WorkPackages[len(c.WorkPackages)-1], nil
	}
	return nil, shared.NewNotFoundError(EntityTypePlanningPackage, planningPackageID)
}

// ActiveAssignments returns the active team members
func (c *ControlAccount) ActiveAssignments() []Assignment {
	active := make([]Assignment, 0, len(c.Assignments))
	for _, a := range c.Assignments {
		if a.Active {
			active = append(active, a)
		}
	}
	return active
}

// Assign adds a team member. Assigning a CAM replaces the active CAM.
func (c *ControlAccount) Assign(userID uuid.UUID, role Role, actor shared.Principal) (*Assignment, error) {
	if c.Status == StatusClosed {
		return nil, shared.NewInvalidStateError(AggregateTypeControlAccount, c.ID, c.Status.String(), "assign members to")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError(AggregateTypeControlAccount, c.ID, "INVALID_USER", "User ID cannot be empty", "user_id")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError(AggregateTypeControlAccount, c.ID, "INVALID_ROLE",
			fmt.Sprintf("Invalid role: %s", role), "role")
	}
	for _, a := range c.Assignments {
		if a.Active && a.UserID == userID && a.Role == role {
			return nil, shared.NewValidationError(AggregateTypeControlAccount, c.ID, "DUPLICATE_ASSIGNMENT",
				fmt.Sprintf("User %s is already assigned as %s", userID, role), "user_id", "role")
		}
	}

	now := time.Now()
	if role == RoleCAM {
		for idx := range c.Assignments {
			if c.Assignments[idx].Active && c.Assignments[idx].Role == RoleCAM {
				c.Assignments[idx].Active = false
				c.Assignments[idx].UnassignedAt = &now
			}
		}
		id := userID
		c.CAMUserID = &id
	}

	c.Assignments = append(c.Assignments, Assignment{
		ID:               uuid.New(),
		ControlAccountID: c.ID,
		UserID:           userID,
		Role:             role,
		Active:           true,
		AssignedAt:       now,
		AssignedBy:       actor.UserIDPtr(),
	})
	c.Touch(actor)
	return &c.Assignments[len(c.Assignments)-1], nil
}

// Unassign deactivates every active assignment of the user
func (c *ControlAccount) Unassign(userID uuid.UUID, actor shared.Principal) error {
	found := false
	now := time.Now()
	for idx := range c.Assignments {
		a := &c.Assignments[idx]
		if !a.Active || a.UserID != userID {
			continue
		}
		a.Active = false
		a.UnassignedAt = &now
		if a.Role == RoleCAM {
			c.CAMUserID = nil
		}
		found = true
	}
	if !found {
		return shared.NewNotFoundError(EntityTypeAssignment, userID)
	}
	c.Touch(actor)
	return nil
}
