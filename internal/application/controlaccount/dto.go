package controlaccount

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/application/common"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/shopspring/decimal"
)

// CreateControlAccountRequest represents a request to create a control account
type CreateControlAccountRequest struct {
	ProjectID         uuid.UUID                        `json:"project_id" validate:"required"`
	Code              string                           `json:"code" validate:"required,max=50"`
	Name              string                           `json:"name" validate:"required,max=200"`
	Description       string                           `json:"description" validate:"max=2000"`
	MeasurementMethod controlaccount.MeasurementMethod `json:"measurement_method"`
	BAC               decimal.Decimal                  `json:"bac" validate:"gte=0"`
	CAMUserID         *uuid.UUID                       `json:"cam_user_id"`
}

// UpdateBudgetRequest replaces the BAC and reserves of a control account
type UpdateBudgetRequest struct {
	BAC                decimal.Decimal `json:"bac" validate:"gte=0"`
	ContingencyReserve decimal.Decimal `json:"contingency_reserve" validate:"gte=0"`
	ManagementReserve  decimal.Decimal `json:"management_reserve" validate:"gte=0"`
}

// UpdateProgressRequest sets a percent complete between 0 and 100
type UpdateProgressRequest struct {
	PercentComplete decimal.Decimal `json:"percent_complete" validate:"gte=0,lte=100"`
}

// AddPackageRequest adds a work package or a planning package
type AddPackageRequest struct {
	Code   string          `json:"code" validate:"required,max=50"`
	Name   string          `json:"name" validate:"required,max=200"`
	Budget decimal.Decimal `json:"budget" validate:"gte=0"`
}

// AddMilestoneRequest adds a weighted milestone to a work package
type AddMilestoneRequest struct {
	Name   string          `json:"name" validate:"required,max=200"`
	Weight decimal.Decimal `json:"weight" validate:"gt=0,lte=100"`
}

// AssignRequest adds a team member to a control account
type AssignRequest struct {
	UserID uuid.UUID           `json:"user_id" validate:"required"`
	Role   controlaccount.Role `json:"role" validate:"required"`
}

// ControlAccountListFilter filters control accounts
type ControlAccountListFilter struct {
	common.ListFilter
	ProjectID *uuid.UUID             `json:"project_id"`
	Status    *controlaccount.Status `json:"status"`
}

// MilestoneResponse represents a milestone in API responses
type MilestoneResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Weight          decimal.Decimal `json:"weight"`
	PercentComplete decimal.Decimal `json:"percent_complete"`
	Achieved        bool            `json:"achieved"`
	AchievedAt      *time.Time      `json:"achieved_at,omitempty"`
}

// WorkPackageResponse represents a work package in API responses
type WorkPackageResponse struct {
	ID               uuid.UUID           `json:"id"`
	Code             string              `json:"code"`
	Name             string              `json:"name"`
	Budget           decimal.Decimal     `json:"budget"`
	PercentComplete  decimal.Decimal     `json:"percent_complete"`
	WeightedProgress decimal.Decimal     `json:"weighted_progress"`
	Milestones       []MilestoneResponse `json:"milestones"`
}

// PlanningPackageResponse represents a planning package in API responses
type PlanningPackageResponse struct {
	ID     uuid.UUID       `json:"id"`
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Budget decimal.Decimal `json:"budget"`
}

// AssignmentResponse represents a team assignment in API responses
type AssignmentResponse struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"user_id"`
	Role         controlaccount.Role `json:"role"`
	Active       bool                `json:"active"`
	AssignedAt   time.Time           `json:"assigned_at"`
	UnassignedAt *time.Time          `json:"unassigned_at,omitempty"`
}

// ControlAccountResponse represents a control account in API responses
type ControlAccountResponse struct {
	ID                 uuid.UUID                        `json:"id"`
	TenantID           uuid.UUID                        `json:"tenant_id"`
	ProjectID          uuid.UUID                        `json:"project_id"`
	Code               string                           `json:"code"`
	Name               string                           `json:"name"`
	Description        string                           `json:"description,omitempty"`
	Status             controlaccount.Status            `json:"status"`
	MeasurementMethod  controlaccount.MeasurementMethod `json:"measurement_method"`
	BAC                decimal.Decimal                  `json:"bac"`
	ContingencyReserve decimal.Decimal                  `json:"contingency_reserve"`
	ManagementReserve  decimal.Decimal                  `json:"management_reserve"`
	TotalBudget        decimal.Decimal                  `json:"total_budget"`
	AllocatedBudget    decimal.Decimal                  `json:"allocated_budget"`
	PercentComplete    decimal.Decimal                  `json:"percent_complete"`
	CAMUserID          *uuid.UUID                       `json:"cam_user_id,omitempty"`
	BaselineDate       *time.Time                       `json:"baseline_date,omitempty"`
	ClosedDate         *time.Time                       `json:"closed_date,omitempty"`
	WorkPackages       []WorkPackageResponse            `json:"work_packages"`
	PlanningPackages   []PlanningPackageResponse        `json:"planning_packages"`
	Assignments        []AssignmentResponse             `json:"assignments"`
	Version            int                              `json:"version"`
	CreatedAt          time.Time                        `json:"created_at"`
	UpdatedAt          time.Time                        `json:"updated_at"`
}

// ToControlAccountResponse converts a domain ControlAccount to ControlAccountResponse
func ToControlAccountResponse(ca *controlaccount.ControlAccount) ControlAccountResponse {
	wps := make([]WorkPackageResponse, len(ca.WorkPackages))
	for i := range ca.WorkPackages {
		wps[i] = toWorkPackageResponse(&ca.WorkPackages[i])
	}
	pps := make([]PlanningPackageResponse, len(ca.PlanningPackages))
	for i, pp := range ca.PlanningPackages {
		pps[i] = PlanningPackageResponse{ID: pp.ID, Code: pp.Code, Name: pp.Name, Budget: pp.Budget}
	}
	assignments := make([]AssignmentResponse, len(ca.Assignments))
	for i, a := range ca.Assignments {
		assignments[i] = AssignmentResponse{
			ID:           a.ID,
			UserID:       a.UserID,
			Role:         a.Role,
			Active:       a.Active,
			AssignedAt:   a.AssignedAt,
			UnassignedAt: a.UnassignedAt,
		}
	}

	return ControlAccountResponse{
		ID:                 ca.ID,
		TenantID:           ca.TenantID,
		ProjectID:          ca.ProjectID,
		Code:               ca.Code,
		Name:               ca.Name,
		Description:        ca.Description,
		Status:             ca.Status,
		MeasurementMethod:  ca.MeasurementMethod,
		BAC:                ca.BAC,
		ContingencyReserve: ca.ContingencyReserve,
		ManagementReserve:  ca.ManagementReserve,
		TotalBudget:        ca.TotalBudget(),
		AllocatedBudget:    ca.AllocatedBudget(),
		PercentComplete:    ca.PercentComplete,
		CAMUserID:          ca.CAMUserID,
		BaselineDate:       ca.BaselineDate,
		ClosedDate:         ca.ClosedDate,
		WorkPackages:       wps,
		PlanningPackages:   pps,
		Assignments:        assignments,
		Version:            ca.Version,
		CreatedAt:          ca.CreatedAt,
		UpdatedAt:          ca.UpdatedAt,
	}
}

func toWorkPackageResponse(wp *controlaccount.WorkPackage) WorkPackageResponse {
	milestones := make([]MilestoneResponse, len(wp.Milestones))
	for i, m := range wp.Milestones {
		milestones[i] = MilestoneResponse{
			ID:              m.ID,
			Name:            m.Name,
			Weight:          m.Weight,
			PercentComplete: m.PercentComplete,
			Achieved:        m.Achieved,
			AchievedAt:      m.AchievedAt,
		}
	}
	return WorkPackageResponse{
		ID:               wp.ID,
		Code:             wp.Code,
		Name:             wp.Name,
		Budget:           wp.Budget,
		PercentComplete:  wp.PercentComplete,
		WeightedProgress: wp.WeightedProgress(),
		Milestones:       milestones,
	}
}

// ToControlAccountResponses converts a slice of accounts to responses
func ToControlAccountResponses(accounts []controlaccount.ControlAccount) []ControlAccountResponse {
	out := make([]ControlAccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToControlAccountResponse(&accounts[i])
	}
	return out
}
