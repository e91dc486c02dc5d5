package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/shopspring/decimal"
)

// ControlAccountModel is the persistence model for the ControlAccount aggregate
type ControlAccountModel struct {
	TenantAggregateModel
	ProjectID          uuid.UUID                        `gorm:"type:uuid;not null;index"`
	Code               string                           `gorm:"type:varchar(50);not null;index"`
	Name               string                           `gorm:"type:varchar(200);not null"`
	Description        string                           `gorm:"type:text"`
	BAC                decimal.Decimal                  `gorm:"column:bac;type:decimal(18,4);not null;default:0"`
	ContingencyReserve decimal.Decimal                  `gorm:"type:decimal(18,4);not null;default:0"`
	ManagementReserve  decimal.Decimal                  `gorm:"type:decimal(18,4);not null;default:0"`
	MeasurementMethod  controlaccount.MeasurementMethod `gorm:"type:varchar(30);not null"`
	Status             controlaccount.Status            `gorm:"type:varchar(20);not null;index"`
	PercentComplete    decimal.Decimal                  `gorm:"type:decimal(7,4);not null;default:0"`
	CAMUserID          *uuid.UUID                       `gorm:"column:cam_user_id;type:uuid"`
	BaselineDate       *time.Time
	ClosedDate         *time.Time
	WorkPackages       []WorkPackageModel     `gorm:"foreignKey:ControlAccountID;references:ID"`
	PlanningPackages   []PlanningPackageModel `gorm:"foreignKey:ControlAccountID;references:ID"`
	Assignments        []AssignmentModel      `gorm:"foreignKey:ControlAccountID;references:ID"`
}

// TableName returns the table name for GORM
func (ControlAccountModel) TableName() string {
	return "control_accounts"
}

// WorkPackageModel is the persistence model for a work package
type WorkPackageModel struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key"`
	ControlAccountID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Code             string           `gorm:"type:varchar(50);not null"`
	Name             string           `gorm:"type:varchar(200);not null"`
	Budget           decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	PercentComplete  decimal.Decimal  `gorm:"type:decimal(7,4);not null;default:0"`
	Milestones       []MilestoneModel `gorm:"foreignKey:WorkPackageID;references:ID"`
	CreatedAt        time.Time        `gorm:"not null"`
	UpdatedAt        time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WorkPackageModel) TableName() string {
	return "work_packages"
}

// MilestoneModel is the persistence model for a work package milestone
type MilestoneModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	WorkPackageID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Weight          decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	PercentComplete decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	Achieved        bool            `gorm:"not null;default:false"`
	AchievedAt      *time.Time
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MilestoneModel) TableName() string {
	return "work_package_milestones"
}

// PlanningPackageModel is the persistence model for a planning package
type PlanningPackageModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	ControlAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code             string          `gorm:"type:varchar(50);not null"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Budget           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlanningPackageModel) TableName() string {
	return "planning_packages"
}

// AssignmentModel is the persistence model for a control account assignment
type AssignmentModel struct {
	ID               uuid.UUID           `gorm:"type:uuid;primary_key"`
	ControlAccountID uuid.UUID           `gorm:"type:uuid;not null;index"`
	UserID           uuid.UUID           `gorm:"type:uuid;not null"`
	Role             controlaccount.Role `gorm:"type:varchar(30);not null"`
	Active           bool                `gorm:"not null"`
	AssignedAt       time.Time           `gorm:"not null"`
	AssignedBy       *uuid.UUID          `gorm:"type:uuid"`
	UnassignedAt     *time.Time
}

// TableName returns the table name for GORM
func (AssignmentModel) TableName() string {
	return "control_account_assignments"
}

// ToDomain converts the model to a domain ControlAccount
func (m *ControlAccountModel) ToDomain() *controlaccount.ControlAccount {
	ca := &controlaccount.ControlAccount{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		ProjectID:           m.ProjectID,
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		BAC:                 m.BAC,
		ContingencyReserve:  m.ContingencyReserve,
		ManagementReserve:   m.ManagementReserve,
		MeasurementMethod:   m.MeasurementMethod,
		Status:              m.Status,
		PercentComplete:     m.PercentComplete,
		CAMUserID:           m.CAMUserID,
		BaselineDate:        m.BaselineDate,
		ClosedDate:          m.ClosedDate,
		WorkPackages:        make([]controlaccount.WorkPackage, len(m.WorkPackages)),
		PlanningPackages:    make([]controlaccount.PlanningPackage, len(m.PlanningPackages)),
		Assignments:         make([]controlaccount.Assignment, len(m.Assignments)),
	}
	for i, wp := range m.WorkPackages {
		milestones := make([]controlaccount.Milestone, len(wp.Milestones))
		for j, ms := range wp.Milestones {
			milestones[j] = controlaccount.Milestone{
				ID:              ms.ID,
				WorkPackageID:   ms.WorkPackageID,
				Name:            ms.Name,
				Weight:          ms.Weight,
				PercentComplete: ms.PercentComplete,
				Achieved:        ms.Achieved,
				AchievedAt:      ms.AchievedAt,
				CreatedAt:       ms.CreatedAt,
				UpdatedAt:       ms.UpdatedAt,
			}
		}
		ca.WorkPackages[i] = controlaccount.WorkPackage{
			ID:               wp.ID,
			ControlAccountID: wp.ControlAccountID,
			Code:             wp.Code,
			Name:             wp.Name,
			Budget:           wp.Budget,
			PercentComplete:  wp.PercentComplete,
			Milestones:       milestones,
			CreatedAt:        wp.CreatedAt,
			UpdatedAt:        wp.UpdatedAt,
		}
	}
	for i, pp := range m.PlanningPackages {
		ca.PlanningPackages[i] = controlaccount.PlanningPackage{
			ID:               pp.ID,
			ControlAccountID: pp.ControlAccountID,
			Code:             pp.Code,
			Name:             pp.Name,
			Budget:           pp.Budget,
			CreatedAt:        pp.CreatedAt,
			UpdatedAt:        pp.UpdatedAt,
		}
	}
	for i, a := range m.Assignments {
		ca.Assignments[i] = controlaccount.Assignment{
			ID:               a.ID,
			ControlAccountID: a.ControlAccountID,
			UserID:           a.UserID,
			Role:             a.Role,
			Active:           a.Active,
			AssignedAt:       a.AssignedAt,
			AssignedBy:       a.AssignedBy,
			UnassignedAt:     a.UnassignedAt,
		}
	}
	return ca
}

// ControlAccountModelFromDomain converts a domain ControlAccount to its model
func ControlAccountModelFromDomain(ca *controlaccount.ControlAccount) *ControlAccountModel {
	m := &ControlAccountModel{
		ProjectID:          ca.ProjectID,
		Code:               ca.Code,
		Name:               ca.Name,
		Description:        ca.Description,
		BAC:                ca.BAC,
		ContingencyReserve: ca.ContingencyReserve,
		ManagementReserve:  ca.ManagementReserve,
		MeasurementMethod:  ca.MeasurementMethod,
		Status:             ca.Status,
		PercentComplete:    ca.PercentComplete,
		CAMUserID:          ca.CAMUserID,
		BaselineDate:       ca.BaselineDate,
		ClosedDate:         ca.ClosedDate,
		WorkPackages:       make([]WorkPackageModel, len(ca.WorkPackages)),
		PlanningPackages:   make([]PlanningPackageModel, len(ca.PlanningPackages)),
		Assignments:        make([]AssignmentModel, len(ca.Assignments)),
	}
	m.FromDomainTenantAggregateRoot(ca.TenantAggregateRoot)

	for i, wp := range ca.WorkPackages {
		milestones := make([]MilestoneModel, len(wp.Milestones))
		for j, ms := range wp.Milestones {
			milestones[j] = MilestoneModel{
				ID:              ms.ID,
				WorkPackageID:   wp.ID,
				Name:            ms.Name,
				Weight:          ms.Weight,
				PercentComplete: ms.PercentComplete,
				Achieved:        ms.Achieved,
				AchievedAt:      ms.AchievedAt,
				CreatedAt:       ms.CreatedAt,
				UpdatedAt:       ms.UpdatedAt,
			}
		}
		m.WorkPackages[i] = WorkPackageModel{
			ID:               wp.ID,
			ControlAccountID: ca.ID,
			Code:             wp.Code,
			Name:             wp.Name,
			Budget:           wp.Budget,
			PercentComplete:  wp.PercentComplete,
			Milestones:       milestones,
			CreatedAt:        wp.CreatedAt,
			UpdatedAt:        wp.UpdatedAt,
		}
	}
	for i, pp := range ca.PlanningPackages {
		m.PlanningPackages[i] = PlanningPackageModel{
			ID:               pp.ID,
			ControlAccountID: ca.ID,
			Code:             pp.Code,
			Name:             pp.Name,
			Budget:           pp.Budget,
			CreatedAt:        pp.CreatedAt,
			UpdatedAt:        pp.UpdatedAt,
		}
	}
	for i, a := range ca.Assignments {
		m.Assignments[i] = AssignmentModel{
			ID:               a.ID,
			ControlAccountID: ca.ID,
			UserID:           a.UserID,
			Role:             a.Role,
			Active:           a.Active,
			AssignedAt:       a.AssignedAt,
			AssignedBy:       a.AssignedBy,
			UnassignedAt:     a.UnassignedAt,
		}
	}
	return m
}
