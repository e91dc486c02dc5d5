package controlaccount

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Milestone is a weighted progress point of a work package
type Milestone struct {
	ID              uuid.UUID
	WorkPackageID   uuid.UUID
	Name            string
	Weight          decimal.Decimal
	PercentComplete decimal.Decimal
	Achieved        bool
	AchievedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WorkPackage is a unit of measured work owned by a control account
type WorkPackage struct {
	ID               uuid.UUID
	ControlAccountID uuid.UUID
	Code             string
	Name             string
	Budget           decimal.Decimal
	PercentComplete  decimal.Decimal
	Milestones       []Milestone
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewWorkPackage creates a new work package
func NewWorkPackage(controlAccountID uuid.UUID, code, name string, budget decimal.Decimal) (*WorkPackage, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError(EntityTypeWorkPackage, uuid.Nil, "INVALID_CODE", "Work package code cannot be empty", "code")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError(EntityTypeWorkPackage, uuid.Nil, "INVALID_CODE", "Work package code cannot exceed 50 characters", "code")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError(EntityTypeWorkPackage, uuid.Nil, "INVALID_NAME", "Work package name cannot be empty", "name")
	}
	if err := valueobject.RequireNonNegative("budget", budget); err != nil {
		return nil, err.WithEntity(EntityTypeWorkPackage, uuid.Nil)
	}

	now := time.Now()
	return &WorkPackage{
		ID:               uuid.New(),
		ControlAccountID: controlAccountID,
		Code:             code,
		Name:             name,
		Budget:           valueobject.RoundMoney(budget),
		PercentComplete:  decimal.Zero,
		Milestones:       make([]Milestone, 0),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// HasMilestones returns true if progress is driven by weighted milestones
func (w *WorkPackage) HasMilestones() bool {
	return len(w.Milestones) > 0
}

// WeightedProgress returns sum(weight x percent) / sum(weight) over the
// milestones, or PercentComplete when there are none
func (w *WorkPackage) WeightedProgress() decimal.Decimal {
	if !w.HasMilestones() {
		return w.PercentComplete
	}
	totalWeight := decimal.Zero
	weighted := decimal.Zero
	for _, m := range w.Milestones {
		totalWeight = totalWeight.Add(m.Weight)
		weighted = weighted.Add(m.Weight.Mul(m.PercentComplete))
	}
	return valueobject.SafeDiv(weighted, totalWeight, valueobject.PercentPrecision)
}

// IsComplete returns true when weighted progress reached 100%
func (w *WorkPackage) IsComplete() bool {
	return w.WeightedProgress().GreaterThanOrEqual(valueobject.Hundred)
}

// HasProgress returns true if any progress was recorded
func (w *WorkPackage) HasProgress() bool {
	return w.WeightedProgress().IsPositive()
}

// UpdateProgress sets the percent complete of a work package without milestones
func (w *WorkPackage) UpdateProgress(percent decimal.Decimal) error {
	if err := valueobject.RequirePercent("percent_complete", percent); err != nil {
		return err.WithEntity(EntityTypeWorkPackage, w.ID)
	}
	if w.HasMilestones() {
		return shared.NewInvariantViolationError(EntityTypeWorkPackage, w.ID, "MILESTONE_DRIVEN",
			"Progress of a work package with milestones is derived from its milestones", "percent_complete")
	}
	w.PercentComplete = valueobject.RoundPercent(percent)
	w.UpdatedAt = time.Now()
	return nil
}

// AddMilestone adds a weighted milestone
func (w *WorkPackage) AddMilestone(name string, weight decimal.Decimal) (*Milestone, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError(EntityTypeWorkPackage, w.ID, "INVALID_MILESTONE_NAME", "Milestone name cannot be empty", "name")
	}
	if err := valueobject.RequirePositive("weight", weight); err != nil {
		return nil, err.WithEntity(EntityTypeWorkPackage, w.ID)
	}
	for _, m := range w.Milestones {
		if strings.EqualFold(m.Name, name) {
			return nil, shared.NewValidationError(EntityTypeWorkPackage, w.ID, "DUPLICATE_MILESTONE",
				fmt.Sprintf("Milestone %q already exists", name), "name")
		}
	}

	now := time.Now()
	m := Milestone{
		ID:              uuid.New(),
		WorkPackageID:   w.ID,
		Name:            name,
		Weight:          weight,
		PercentComplete: decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	w.Milestones = append(w.Milestones, m)
	w.UpdatedAt = now
	return &w.Milestones[len(w.Milestones)-1], nil
}

// UpdateMilestoneProgress sets the percent complete of a milestone.
// A milestone at 100% is marked achieved.
func (w *WorkPackage) UpdateMilestoneProgress(milestoneID uuid.UUID, percent decimal.Decimal) error {
	if err := valueobject.RequirePercent("percent_complete", percent); err != nil {
		return err.WithEntity(EntityTypeWorkPackage, w.ID)
	}
	for idx := range w.Milestones {
		m := &w.Milestones[idx]
		if m.ID != milestoneID {
			continue
		}
		now := time.Now()
		m.PercentComplete = valueobject.RoundPercent(percent)
		m.Achieved = percent.Equal(valueobject.Hundred)
		if m.Achieved {
			m.AchievedAt = &now
		} else {
			m.AchievedAt = nil
		}
		m.UpdatedAt = now
		w.UpdatedAt = now
		return nil
	}
	return shared.NewNotFoundError("Milestone", milestoneID)
}

// PlanningPackage is budget held for work not yet detailed into work packages
type PlanningPackage struct {
	ID               uuid.UUID
	ControlAccountID uuid.UUID
	Code             string
	Name             string
	Budget           decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewPlanningPackage creates a new planning package
func NewPlanningPackage(controlAccountID uuid.UUID, code, name string, budget decimal.Decimal) (*PlanningPackage, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError(EntityTypePlanningPackage, uuid.Nil, "INVALID_CODE", "Planning package code cannot be empty", "code")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError(EntityTypePlanningPackage, uuid.Nil, "INVALID_NAME", "Planning package name cannot be empty", "name")
	}
	if err := valueobject.RequireNonNegative("budget", budget); err != nil {
		return nil, err.WithEntity(EntityTypePlanningPackage, uuid.Nil)
	}

	now := time.Now()
	return &PlanningPackage{
		ID:               uuid.New(),
		ControlAccountID: controlAccountID,
		Code:             code,
		Name:             name,
		Budget:           valueobject.RoundMoney(budget),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Assignment is a role-based team membership on a control account
type Assignment struct {
	ID               uuid.UUID
	ControlAccountID uuid.UUID
	UserID           uuid.UUID
	Role             Role
	Active           bool
	AssignedAt       time.Time
	AssignedBy       *uuid.UUID
	UnassignedAt     *time.Time
}
