package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/budget"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BudgetModel is the persistence model for the Budget aggregate
type BudgetModel struct {
	TenantAggregateModel
	ProjectID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name            string               `gorm:"type:varchar(200);not null"`
	Description     string               `gorm:"type:text"`
	BudgetVersion   int                  `gorm:"not null"`
	Status          budget.Status        `gorm:"type:varchar(20);not null;index"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate    decimal.Decimal      `gorm:"type:decimal(18,6);not null"`
	TotalAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	BaselineAmount  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	BaselineDate    *time.Time           `gorm:"type:date"`
	SubmittedBy     *uuid.UUID           `gorm:"type:uuid"`
	SubmittedAt     *time.Time
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason string     `gorm:"type:text"`
	LockedBy        *uuid.UUID `gorm:"type:uuid"`
	LockedAt        *time.Time
	ClosedAt        *time.Time
	Items           []BudgetItemModel     `gorm:"foreignKey:BudgetID;references:ID"`
	Revisions       []BudgetRevisionModel `gorm:"foreignKey:BudgetID;references:ID"`
}

// TableName returns the table name for GORM
func (BudgetModel) TableName() string {
	return "budgets"
}

// BudgetItemModel is the persistence model for a budget line item
type BudgetItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	BudgetID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code             string          `gorm:"type:varchar(50);not null"`
	Description      string          `gorm:"type:varchar(500)"`
	ControlAccountID *uuid.UUID      `gorm:"type:uuid;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CommittedAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ActualAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BudgetItemModel) TableName() string {
	return "budget_items"
}

// BudgetRevisionModel is the persistence model for a budget item revision
type BudgetRevisionModel struct {
	ID              uuid.UUID             `gorm:"type:uuid;primary_key"`
	BudgetID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	BudgetItemID    uuid.UUID             `gorm:"type:uuid;not null"`
	RevisionNumber  int                   `gorm:"not null"`
	ChangeAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Reason          string                `gorm:"type:text;not null"`
	Status          budget.RevisionStatus `gorm:"type:varchar(20);not null"`
	RequestedBy     *uuid.UUID            `gorm:"type:uuid"`
	RequestedAt     time.Time             `gorm:"not null"`
	ApprovedBy      *uuid.UUID            `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason string          `gorm:"type:text"`
	PreviousAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NewAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BudgetRevisionModel) TableName() string {
	return "budget_revisions"
}

// ToDomain converts the model to a domain Budget
func (m *BudgetModel) ToDomain() *budget.Budget {
	b := &budget.Budget{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		ProjectID:           m.ProjectID,
		Name:                m.Name,
		Description:         m.Description,
		BudgetVersion:       m.BudgetVersion,
		Status:              m.Status,
		Currency:            m.Currency,
		ExchangeRate:        m.ExchangeRate,
		TotalAmount:         m.TotalAmount,
		BaselineAmount:      m.BaselineAmount,
		BaselineDate:        m.BaselineDate,
		SubmittedBy:         m.SubmittedBy,
		SubmittedAt:         m.SubmittedAt,
		ApprovedBy:          m.ApprovedBy,
		ApprovedAt:          m.ApprovedAt,
		RejectionReason:     m.RejectionReason,
		LockedBy:            m.LockedBy,
		LockedAt:            m.LockedAt,
		ClosedAt:            m.ClosedAt,
		Items:               make([]budget.BudgetItem, len(m.Items)),
		Revisions:           make([]budget.BudgetRevision, len(m.Revisions)),
	}
	for i, it := range m.Items {
		b.Items[i] = budget.BudgetItem{
			ID:               it.ID,
			BudgetID:         it.BudgetID,
			Code:             it.Code,
			Description:      it.Description,
			ControlAccountID: it.ControlAccountID,
			Amount:           it.Amount,
			CommittedAmount:  it.CommittedAmount,
			ActualAmount:     it.ActualAmount,
			CreatedAt:        it.CreatedAt,
			UpdatedAt:        it.UpdatedAt,
		}
	}
	for i, r := range m.Revisions {
		b.Revisions[i] = budget.BudgetRevision{
			ID:              r.ID,
			BudgetID:        r.BudgetID,
			BudgetItemID:    r.BudgetItemID,
			RevisionNumber:  r.RevisionNumber,
			ChangeAmount:    r.ChangeAmount,
			Reason:          r.Reason,
			Status:          r.Status,
			RequestedBy:     r.RequestedBy,
			RequestedAt:     r.RequestedAt,
			ApprovedBy:      r.ApprovedBy,
			ApprovedAt:      r.ApprovedAt,
			RejectionReason: r.RejectionReason,
			PreviousAmount:  r.PreviousAmount,
			NewAmount:       r.NewAmount,
		}
	}
	return b
}

// BudgetModelFromDomain converts a domain Budget to its model
func BudgetModelFromDomain(b *budget.Budget) *BudgetModel {
	m := &BudgetModel{
		ProjectID:       b.ProjectID,
		Name:            b.Name,
		Description:     b.Description,
		BudgetVersion:   b.BudgetVersion,
		Status:          b.Status,
		Currency:        b.Currency,
		ExchangeRate:    b.ExchangeRate,
		TotalAmount:     b.TotalAmount,
		BaselineAmount:  b.BaselineAmount,
		BaselineDate:    b.BaselineDate,
		SubmittedBy:     b.SubmittedBy,
		SubmittedAt:     b.SubmittedAt,
		ApprovedBy:      b.ApprovedBy,
		ApprovedAt:      b.ApprovedAt,
		RejectionReason: b.RejectionReason,
		LockedBy:        b.LockedBy,
		LockedAt:        b.LockedAt,
		ClosedAt:        b.ClosedAt,
		Items:           make([]BudgetItemModel, len(b.Items)),
		Revisions:       make([]BudgetRevisionModel, len(b.Revisions)),
	}
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)

	for i, it := range b.Items {
		m.Items[i] = BudgetItemModel{
			ID:               it.ID,
			BudgetID:         b.ID,
			Code:             it.Code,
			Description:      it.Description,
			ControlAccountID: it.ControlAccountID,
			Amount:           it.Amount,
			CommittedAmount:  it.CommittedAmount,
			ActualAmount:     it.ActualAmount,
			CreatedAt:        it.CreatedAt,
			UpdatedAt:        it.UpdatedAt,
		}
	}
	for i, r := range b.Revisions {
		m.Revisions[i] = BudgetRevisionModel{
			ID:              r.ID,
			BudgetID:        b.ID,
			BudgetItemID:    r.BudgetItemID,
			RevisionNumber:  r.RevisionNumber,
			ChangeAmount:    r.ChangeAmount,
			Reason:          r.Reason,
			Status:          r.Status,
			RequestedBy:     r.RequestedBy,
			RequestedAt:     r.RequestedAt,
			ApprovedBy:      r.ApprovedBy,
			ApprovedAt:      r.ApprovedAt,
			RejectionReason: r.RejectionReason,
			PreviousAmount:  r.PreviousAmount,
			NewAmount:       r.NewAmount,
		}
	}
	return m
}
