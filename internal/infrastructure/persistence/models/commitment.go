package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/commitment"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CommitmentModel is the persistence model for the Commitment aggregate
type CommitmentModel struct {
	TenantAggregateModel
	CommitmentNumber    string               `gorm:"type:varchar(50);not null;index"`
	Type                commitment.Type      `gorm:"column:commitment_type;type:varchar(30);not null"`
	Status              commitment.Status    `gorm:"type:varchar(20);not null;index"`
	Description         string               `gorm:"type:text"`
	ProjectID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	ControlAccountID    *uuid.UUID           `gorm:"type:uuid;index"`
	BudgetItemID        *uuid.UUID           `gorm:"type:uuid;index"`
	VendorID            *uuid.UUID           `gorm:"type:uuid"`
	VendorName          string               `gorm:"type:varchar(200)"`
	Currency            valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate        decimal.Decimal      `gorm:"type:decimal(18,6);not null"`
	ContractDate        time.Time            `gorm:"type:date;not null"`
	EndDate             *time.Time           `gorm:"type:date"`
	RetentionPercentage decimal.Decimal      `gorm:"type:decimal(7,4);not null;default:0"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RevisedAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InvoicedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RetainedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	SubmittedBy     *uuid.UUID `gorm:"type:uuid"`
	SubmittedAt     *time.Time
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:text"`
	ClosedAt        *time.Time

	Items        []CommitmentItemModel        `gorm:"foreignKey:CommitmentID;references:ID"`
	WorkPackages []CommitmentWorkPackageModel `gorm:"foreignKey:CommitmentID;references:ID"`
	Revisions    []CommitmentRevisionModel    `gorm:"foreignKey:CommitmentID;references:ID"`
	Invoices     []CommitmentInvoiceModel     `gorm:"foreignKey:CommitmentID;references:ID"`
}

// TableName returns the table name for GORM
func (CommitmentModel) TableName() string {
	return "commitments"
}

// CommitmentItemModel is the persistence model for a commitment line item
type CommitmentItemModel struct {
	ID                 uuid.UUID             `gorm:"type:uuid;primary_key"`
	CommitmentID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	LineNumber         int                   `gorm:"not null"`
	Description        string                `gorm:"type:varchar(500);not null"`
	Unit               string                `gorm:"type:varchar(20)"`
	Quantity           decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	UnitPrice          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	DiscountPercentage decimal.Decimal       `gorm:"type:decimal(7,4);not null;default:0"`
	DiscountAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate            decimal.Decimal       `gorm:"type:decimal(7,4);not null;default:0"`
	TotalPrice         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	NetAmount          decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount          decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal          decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	DeliveredQuantity  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	InvoicedQuantity   decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	InvoicedAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Status             commitment.ItemStatus `gorm:"type:varchar(20);not null"`
	CreatedAt          time.Time             `gorm:"not null"`
	UpdatedAt          time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommitmentItemModel) TableName() string {
	return "commitment_items"
}

// CommitmentWorkPackageModel is the persistence model for a commitment allocation
type CommitmentWorkPackageModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	CommitmentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ControlAccountID  *uuid.UUID      `gorm:"type:uuid"`
	WorkPackageID     *uuid.UUID      `gorm:"type:uuid"`
	BudgetItemID      *uuid.UUID      `gorm:"type:uuid"`
	Description       string          `gorm:"type:varchar(500)"`
	AllocatedAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InvoicedAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RetainedAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RetentionReleased decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommitmentWorkPackageModel) TableName() string {
	return "commitment_work_packages"
}

// CommitmentRevisionModel is the persistence model for a commitment change order
type CommitmentRevisionModel struct {
	ID              uuid.UUID                 `gorm:"type:uuid;primary_key"`
	CommitmentID    uuid.UUID                 `gorm:"type:uuid;not null;index"`
	RevisionNumber  int                       `gorm:"not null"`
	ChangeAmount    decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Reason          string                    `gorm:"type:text;not null"`
	Status          commitment.RevisionStatus `gorm:"type:varchar(20);not null"`
	RequestedBy     *uuid.UUID                `gorm:"type:uuid"`
	RequestedAt     time.Time                 `gorm:"not null"`
	ApprovedBy      *uuid.UUID                `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason string          `gorm:"type:text"`
	PreviousAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NewAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (CommitmentRevisionModel) TableName() string {
	return "commitment_revisions"
}

// CommitmentInvoiceModel is the persistence model for an invoice recorded against a commitment
type CommitmentInvoiceModel struct {
	ID              uuid.UUID                `gorm:"type:uuid;primary_key"`
	CommitmentID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	AllocationID    uuid.UUID                `gorm:"type:uuid;not null"`
	InvoiceNumber   string                   `gorm:"type:varchar(50);not null"`
	InvoiceDate     time.Time                `gorm:"type:date;not null"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	RetentionAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount      decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Status          commitment.InvoiceStatus `gorm:"type:varchar(20);not null"`
	RecordedBy      *uuid.UUID               `gorm:"type:uuid"`
	CreatedAt       time.Time                `gorm:"not null"`
	UpdatedAt       time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommitmentInvoiceModel) TableName() string {
	return "commitment_invoices"
}

// ToDomain converts the model to a domain Commitment
func (m *CommitmentModel) ToDomain() *commitment.Commitment {
	c := &commitment.Commitment{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		CommitmentNumber:    m.CommitmentNumber,
		Type:                m.Type,
		Status:              m.Status,
		Description:         m.Description,
		ProjectID:           m.ProjectID,
		ControlAccountID:    m.ControlAccountID,
		BudgetItemID:        m.BudgetItemID,
		VendorID:            m.VendorID,
		VendorName:          m.VendorName,
		Currency:            m.Currency,
		ExchangeRate:        m.ExchangeRate,
		ContractDate:        m.ContractDate,
		EndDate:             m.EndDate,
		RetentionPercentage: m.RetentionPercentage,
		Subtotal:            m.Subtotal,
		DiscountAmount:      m.DiscountAmount,
		NetAmount:           m.NetAmount,
		TaxAmount:           m.TaxAmount,
		TotalAmount:         m.TotalAmount,
		RevisedAmount:       m.RevisedAmount,
		InvoicedAmount:      m.InvoicedAmount,
		RetainedAmount:      m.RetainedAmount,
		PaidAmount:          m.PaidAmount,
		SubmittedBy:         m.SubmittedBy,
		SubmittedAt:         m.SubmittedAt,
		ApprovedBy:          m.ApprovedBy,
		ApprovedAt:          m.ApprovedAt,
		RejectionReason:     m.RejectionReason,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		ClosedAt:            m.ClosedAt,
		Items:               make([]commitment.CommitmentItem, len(m.Items)),
		WorkPackages:        make([]commitment.CommitmentWorkPackage, len(m.WorkPackages)),
		Revisions:           make([]commitment.CommitmentRevision, len(m.Revisions)),
		Invoices:            make([]commitment.Invoice, len(m.Invoices)),
	}
	for i, it := range m.Items {
		c.Items[i] = commitment.CommitmentItem{
			ID:                 it.ID,
			CommitmentID:       it.CommitmentID,
			LineNumber:         it.LineNumber,
			Description:        it.Description,
			Unit:               it.Unit,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountPercentage: it.DiscountPercentage,
			DiscountAmount:     it.DiscountAmount,
			TaxRate:            it.TaxRate,
			TotalPrice:         it.TotalPrice,
			NetAmount:          it.NetAmount,
			TaxAmount:          it.TaxAmount,
			LineTotal:          it.LineTotal,
			DeliveredQuantity:  it.DeliveredQuantity,
			InvoicedQuantity:   it.InvoicedQuantity,
			InvoicedAmount:     it.InvoicedAmount,
			PaidAmount:         it.PaidAmount,
			Status:             it.Status,
			CreatedAt:          it.CreatedAt,
			UpdatedAt:          it.UpdatedAt,
		}
	}
	for i, wp := range m.WorkPackages {
		c.WorkPackages[i] = commitment.CommitmentWorkPackage{
			ID:                wp.ID,
			CommitmentID:      wp.CommitmentID,
			ControlAccountID:  wp.ControlAccountID,
			WorkPackageID:     wp.WorkPackageID,
			BudgetItemID:      wp.BudgetItemID,
			Description:       wp.Description,
			AllocatedAmount:   wp.AllocatedAmount,
			InvoicedAmount:    wp.InvoicedAmount,
			RetainedAmount:    wp.RetainedAmount,
			RetentionReleased: wp.RetentionReleased,
			PaidAmount:        wp.PaidAmount,
			CreatedAt:         wp.CreatedAt,
			UpdatedAt:         wp.UpdatedAt,
		}
	}
	for i, r := range m.Revisions {
		c.Revisions[i] = commitment.CommitmentRevision{
			ID:              r.ID,
			CommitmentID:    r.CommitmentID,
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
	for i, inv := range m.Invoices {
		c.Invoices[i] = commitment.Invoice{
			ID:              inv.ID,
			CommitmentID:    inv.CommitmentID,
			AllocationID:    inv.AllocationID,
			InvoiceNumber:   inv.InvoiceNumber,
			InvoiceDate:     inv.InvoiceDate,
			Amount:          inv.Amount,
			RetentionAmount: inv.RetentionAmount,
			PaidAmount:      inv.PaidAmount,
			Status:          inv.Status,
			RecordedBy:      inv.RecordedBy,
			CreatedAt:       inv.CreatedAt,
			UpdatedAt:       inv.UpdatedAt,
		}
	}
	return c
}

// CommitmentModelFromDomain converts a domain Commitment to its model
func CommitmentModelFromDomain(c *commitment.Commitment) *CommitmentModel {
	m := &CommitmentModel{
		CommitmentNumber:    c.CommitmentNumber,
		Type:                c.Type,
		Status:              c.Status,
		Description:         c.Description,
		ProjectID:           c.ProjectID,
		ControlAccountID:    c.ControlAccountID,
		BudgetItemID:        c.BudgetItemID,
		VendorID:            c.VendorID,
		VendorName:          c.VendorName,
		Currency:            c.Currency,
		ExchangeRate:        c.ExchangeRate,
		ContractDate:        c.ContractDate,
		EndDate:             c.EndDate,
		RetentionPercentage: c.RetentionPercentage,
		Subtotal:            c.Subtotal,
		DiscountAmount:      c.DiscountAmount,
		NetAmount:           c.NetAmount,
		TaxAmount:           c.TaxAmount,
		TotalAmount:         c.TotalAmount,
		RevisedAmount:       c.RevisedAmount,
		InvoicedAmount:      c.InvoicedAmount,
		RetainedAmount:      c.RetainedAmount,
		PaidAmount:          c.PaidAmount,
		SubmittedBy:         c.SubmittedBy,
		SubmittedAt:         c.SubmittedAt,
		ApprovedBy:          c.ApprovedBy,
		ApprovedAt:          c.ApprovedAt,
		RejectionReason:     c.RejectionReason,
		CancelledAt:         c.CancelledAt,
		CancelReason:        c.CancelReason,
		ClosedAt:            c.ClosedAt,
		Items:               make([]CommitmentItemModel, len(c.Items)),
		WorkPackages:        make([]CommitmentWorkPackageModel, len(c.WorkPackages)),
		Revisions:           make([]CommitmentRevisionModel, len(c.Revisions)),
		Invoices:            make([]CommitmentInvoiceModel, len(c.Invoices)),
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)

	for i, it := range c.Items {
		m.Items[i] = CommitmentItemModel{
			ID:                 it.ID,
			CommitmentID:       c.ID,
			LineNumber:         it.LineNumber,
			Description:        it.Description,
			Unit:               it.Unit,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountPercentage: it.DiscountPercentage,
			DiscountAmount:     it.DiscountAmount,
			TaxRate:            it.TaxRate,
			TotalPrice:         it.TotalPrice,
			NetAmount:          it.NetAmount,
			TaxAmount:          it.TaxAmount,
			LineTotal:          it.LineTotal,
			DeliveredQuantity:  it.DeliveredQuantity,
			InvoicedQuantity:   it.InvoicedQuantity,
			InvoicedAmount:     it.InvoicedAmount,
			PaidAmount:         it.PaidAmount,
			Status:             it.Status,
			CreatedAt:          it.CreatedAt,
			UpdatedAt:          it.UpdatedAt,
		}
	}
	for i, wp := range c.WorkPackages {
		m.WorkPackages[i] = CommitmentWorkPackageModel{
			ID:                wp.ID,
			CommitmentID:      c.ID,
			ControlAccountID:  wp.ControlAccountID,
			WorkPackageID:     wp.WorkPackageID,
			BudgetItemID:      wp.BudgetItemID,
			Description:       wp.Description,
			AllocatedAmount:   wp.AllocatedAmount,
			InvoicedAmount:    wp.InvoicedAmount,
			RetainedAmount:    wp.RetainedAmount,
			RetentionReleased: wp.RetentionReleased,
			PaidAmount:        wp.PaidAmount,
			CreatedAt:         wp.CreatedAt,
			UpdatedAt:         wp.UpdatedAt,
		}
	}
	for i, r := range c.Revisions {
		m.Revisions[i] = CommitmentRevisionModel{
			ID:              r.ID,
			CommitmentID:    c.ID,
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
	for i, inv := range c.Invoices {
		m.Invoices[i] = CommitmentInvoiceModel{
			ID:              inv.ID,
			CommitmentID:    c.ID,
			AllocationID:    inv.AllocationID,
			InvoiceNumber:   inv.InvoiceNumber,
			InvoiceDate:     inv.InvoiceDate,
			Amount:          inv.Amount,
			RetentionAmount: inv.RetentionAmount,
			PaidAmount:      inv.PaidAmount,
			Status:          inv.Status,
			RecordedBy:      inv.RecordedBy,
			CreatedAt:       inv.CreatedAt,
			UpdatedAt:       inv.UpdatedAt,
		}
	}
	return m
}
