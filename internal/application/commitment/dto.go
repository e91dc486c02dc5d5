package commitment

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/application/common"
	"github.com/projectcontrols/backend/internal/domain/commitment"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreateCommitmentRequest represents a request to create a commitment
type CreateCommitmentRequest struct {
	CommitmentNumber    string               `json:"commitment_number" validate:"required,max=50"`
	Type                commitment.Type      `json:"type" validate:"required"`
	Description         string               `json:"description" validate:"max=2000"`
	ProjectID           uuid.UUID            `json:"project_id" validate:"required"`
	ControlAccountID    *uuid.UUID           `json:"control_account_id"`
	BudgetItemID        *uuid.UUID           `json:"budget_item_id"`
	VendorID            *uuid.UUID           `json:"vendor_id"`
	VendorName          string               `json:"vendor_name" validate:"required,max=200"`
	Currency            valueobject.Currency `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate        decimal.Decimal      `json:"exchange_rate" validate:"gte=0"`
	ContractDate        time.Time            `json:"contract_date"`
	EndDate             *time.Time           `json:"end_date"`
	RetentionPercentage decimal.Decimal      `json:"retention_percentage" validate:"gte=0,lte=100"`
	Items               []AddItemRequest     `json:"items" validate:"dive"`
}

// AddItemRequest adds a priced line to a draft commitment
type AddItemRequest struct {
	Description        string          `json:"description" validate:"required,max=500"`
	Unit               string          `json:"unit" validate:"required,max=20"`
	Quantity           decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice          decimal.Decimal `json:"unit_price" validate:"gte=0"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" validate:"gte=0,lte=100"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	TaxRate            decimal.Decimal `json:"tax_rate" validate:"gte=0,lte=100"`
}

// UpdateItemRequest replaces the quantity and unit price of an item
type UpdateItemRequest struct {
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

// SetItemDiscountRequest sets a percentage or fixed discount; both zero removes it
type SetItemDiscountRequest struct {
	DiscountPercentage decimal.Decimal `json:"discount_percentage" validate:"gte=0,lte=100"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" validate:"gte=0"`
}

// SetItemTaxRequest sets the tax rate of an item
type SetItemTaxRequest struct {
	TaxRate decimal.Decimal `json:"tax_rate" validate:"gte=0,lte=100"`
}

// RecordItemProgressRequest records a delivery, invoice or payment on an item.
// Quantity is ignored for payments; Amount is ignored for deliveries.
type RecordItemProgressRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gte=0"`
	Amount   decimal.Decimal `json:"amount" validate:"gte=0"`
}

// ReasonRequest carries the reason of a rejection or cancellation
type ReasonRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// AllocateRequest distributes part of the commitment value
type AllocateRequest struct {
	ControlAccountID *uuid.UUID      `json:"control_account_id"`
	WorkPackageID    *uuid.UUID      `json:"work_package_id"`
	BudgetItemID     *uuid.UUID      `json:"budget_item_id"`
	Description      string          `json:"description" validate:"max=500"`
	Amount           decimal.Decimal `json:"amount" validate:"gte=0"`
}

// UpdateAllocationRequest replaces an allocated amount
type UpdateAllocationRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

// RecordInvoiceRequest posts a vendor invoice against an allocation.
// A nil RetentionAmount withholds the commitment retention percentage.
type RecordInvoiceRequest struct {
	AllocationID    uuid.UUID        `json:"allocation_id" validate:"required"`
	InvoiceNumber   string           `json:"invoice_number" validate:"required,max=50"`
	InvoiceDate     time.Time        `json:"invoice_date"`
	Amount          decimal.Decimal  `json:"amount" validate:"gt=0"`
	RetentionAmount *decimal.Decimal `json:"retention_amount" validate:"omitempty,gte=0"`
}

// AmountRequest carries a payment or retention release amount
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

// RequestRevisionRequest requests a signed change to the commitment value
type RequestRevisionRequest struct {
	ChangeAmount decimal.Decimal `json:"change_amount"`
	Reason       string          `json:"reason" validate:"required,max=1000"`
}

// CommitmentListFilter filters commitments
type CommitmentListFilter struct {
	common.ListFilter
	ProjectID        *uuid.UUID         `json:"project_id"`
	ControlAccountID *uuid.UUID         `json:"control_account_id"`
	Status           *commitment.Status `json:"status"`
	Type             *commitment.Type   `json:"type"`
}

// ItemResponse represents a commitment item in API responses
type ItemResponse struct {
	ID                 uuid.UUID             `json:"id"`
	LineNumber         int                   `json:"line_number"`
	Description        string                `json:"description"`
	Unit               string                `json:"unit"`
	Quantity           decimal.Decimal       `json:"quantity"`
	UnitPrice          decimal.Decimal       `json:"unit_price"`
	DiscountPercentage decimal.Decimal       `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal       `json:"discount_amount"`
	TaxRate            decimal.Decimal       `json:"tax_rate"`
	TotalPrice         decimal.Decimal       `json:"total_price"`
	NetAmount          decimal.Decimal       `json:"net_amount"`
	TaxAmount          decimal.Decimal       `json:"tax_amount"`
	LineTotal          decimal.Decimal       `json:"line_total"`
	DeliveredQuantity  decimal.Decimal       `json:"delivered_quantity"`
	InvoicedQuantity   decimal.Decimal       `json:"invoiced_quantity"`
	InvoicedAmount     decimal.Decimal       `json:"invoiced_amount"`
	PaidAmount         decimal.Decimal       `json:"paid_amount"`
	Status             commitment.ItemStatus `json:"status"`
}

// AllocationResponse represents an allocation in API responses
type AllocationResponse struct {
	ID                uuid.UUID       `json:"id"`
	ControlAccountID  *uuid.UUID      `json:"control_account_id,omitempty"`
	WorkPackageID     *uuid.UUID      `json:"work_package_id,omitempty"`
	BudgetItemID      *uuid.UUID      `json:"budget_item_id,omitempty"`
	Description       string          `json:"description,omitempty"`
	AllocatedAmount   decimal.Decimal `json:"allocated_amount"`
	InvoicedAmount    decimal.Decimal `json:"invoiced_amount"`
	RetainedAmount    decimal.Decimal `json:"retained_amount"`
	RetentionReleased decimal.Decimal `json:"retention_released"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
}

// RevisionResponse represents a revision in API responses
type RevisionResponse struct {
	ID              uuid.UUID                 `json:"id"`
	RevisionNumber  int                       `json:"revision_number"`
	ChangeAmount    decimal.Decimal           `json:"change_amount"`
	Reason          string                    `json:"reason"`
	Status          commitment.RevisionStatus `json:"status"`
	RequestedAt     time.Time                 `json:"requested_at"`
	ApprovedAt      *time.Time                `json:"approved_at,omitempty"`
	RejectionReason string                    `json:"rejection_reason,omitempty"`
	PreviousAmount  decimal.Decimal           `json:"previous_amount"`
	NewAmount       decimal.Decimal           `json:"new_amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID              uuid.UUID                `json:"id"`
	AllocationID    uuid.UUID                `json:"allocation_id"`
	InvoiceNumber   string                   `json:"invoice_number"`
	InvoiceDate     time.Time                `json:"invoice_date"`
	Amount          decimal.Decimal          `json:"amount"`
	RetentionAmount decimal.Decimal          `json:"retention_amount"`
	PaidAmount      decimal.Decimal          `json:"paid_amount"`
	BalanceToPay    decimal.Decimal          `json:"balance_to_pay"`
	Status          commitment.InvoiceStatus `json:"status"`
}

// CommitmentResponse represents a commitment in API responses
type CommitmentResponse struct {
	ID                  uuid.UUID            `json:"id"`
	TenantID            uuid.UUID            `json:"tenant_id"`
	CommitmentNumber    string               `json:"commitment_number"`
	Type                commitment.Type      `json:"type"`
	Status              commitment.Status    `json:"status"`
	Description         string               `json:"description,omitempty"`
	ProjectID           uuid.UUID            `json:"project_id"`
	ControlAccountID    *uuid.UUID           `json:"control_account_id,omitempty"`
	BudgetItemID        *uuid.UUID           `json:"budget_item_id,omitempty"`
	VendorID            *uuid.UUID           `json:"vendor_id,omitempty"`
	VendorName          string               `json:"vendor_name"`
	Currency            valueobject.Currency `json:"currency"`
	ExchangeRate        decimal.Decimal      `json:"exchange_rate"`
	ContractDate        time.Time            `json:"contract_date"`
	EndDate             *time.Time           `json:"end_date,omitempty"`
	RetentionPercentage decimal.Decimal      `json:"retention_percentage"`
	Subtotal            decimal.Decimal      `json:"subtotal"`
	DiscountAmount      decimal.Decimal      `json:"discount_amount"`
	NetAmount           decimal.Decimal      `json:"net_amount"`
	TaxAmount           decimal.Decimal      `json:"tax_amount"`
	TotalAmount         decimal.Decimal      `json:"total_amount"`
	RevisedAmount       decimal.Decimal      `json:"revised_amount"`
	InvoicedAmount      decimal.Decimal      `json:"invoiced_amount"`
	RetainedAmount      decimal.Decimal      `json:"retained_amount"`
	PaidAmount          decimal.Decimal      `json:"paid_amount"`
	BalanceToPay        decimal.Decimal      `json:"balance_to_pay"`
	SubmittedAt         *time.Time           `json:"submitted_at,omitempty"`
	ApprovedBy          *uuid.UUID           `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time           `json:"approved_at,omitempty"`
	RejectionReason     string               `json:"rejection_reason,omitempty"`
	CancelledAt         *time.Time           `json:"cancelled_at,omitempty"`
	CancelReason        string               `json:"cancel_reason,omitempty"`
	ClosedAt            *time.Time           `json:"closed_at,omitempty"`
	Items               []ItemResponse       `json:"items"`
	Allocations         []AllocationResponse `json:"allocations"`
	Revisions           []RevisionResponse   `json:"revisions"`
	Invoices            []InvoiceResponse    `json:"invoices"`
	Version             int                  `json:"version"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// ToCommitmentResponse converts a domain Commitment to CommitmentResponse
func ToCommitmentResponse(c *commitment.Commitment) CommitmentResponse {
	items := make([]ItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = ItemResponse{
			ID:                 it.ID,
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
		}
	}
	allocations := make([]AllocationResponse, len(c.WorkPackages))
	for i, a := range c.WorkPackages {
		allocations[i] = AllocationResponse{
			ID:                a.ID,
			ControlAccountID:  a.ControlAccountID,
			WorkPackageID:     a.WorkPackageID,
			BudgetItemID:      a.BudgetItemID,
			Description:       a.Description,
			AllocatedAmount:   a.AllocatedAmount,
			InvoicedAmount:    a.InvoicedAmount,
			RetainedAmount:    a.RetainedAmount,
			RetentionReleased: a.RetentionReleased,
			PaidAmount:        a.PaidAmount,
		}
	}
	revisions := make([]RevisionResponse, len(c.Revisions))
	for i, r := range c.Revisions {
		revisions[i] = RevisionResponse{
			ID:              r.ID,
			RevisionNumber:  r.RevisionNumber,
			ChangeAmount:    r.ChangeAmount,
			Reason:          r.Reason,
			Status:          r.Status,
			RequestedAt:     r.RequestedAt,
			ApprovedAt:      r.ApprovedAt,
			RejectionReason: r.RejectionReason,
			PreviousAmount:  r.PreviousAmount,
			NewAmount:       r.NewAmount,
		}
	}
	invoices := make([]InvoiceResponse, len(c.Invoices))
	for i := range c.Invoices {
		inv := &c.Invoices[i]
		invoices[i] = InvoiceResponse{
			ID:              inv.ID,
			AllocationID:    inv.AllocationID,
			InvoiceNumber:   inv.InvoiceNumber,
			InvoiceDate:     inv.InvoiceDate,
			Amount:          inv.Amount,
			RetentionAmount: inv.RetentionAmount,
			PaidAmount:      inv.PaidAmount,
			BalanceToPay:    inv.BalanceToPay(),
			Status:          inv.Status,
		}
	}

	return CommitmentResponse{
		ID:                  c.ID,
		TenantID:            c.TenantID,
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
		BalanceToPay:        c.GetBalanceToPay(),
		SubmittedAt:         c.SubmittedAt,
		ApprovedBy:          c.ApprovedBy,
		ApprovedAt:          c.ApprovedAt,
		RejectionReason:     c.RejectionReason,
		CancelledAt:         c.CancelledAt,
		CancelReason:        c.CancelReason,
		ClosedAt:            c.ClosedAt,
		Items:               items,
		Allocations:         allocations,
		Revisions:           revisions,
		Invoices:            invoices,
		Version:             c.Version,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// ToCommitmentResponses converts a slice of commitments to responses
func ToCommitmentResponses(commitments []commitment.Commitment) []CommitmentResponse {
	out := make([]CommitmentResponse, len(commitments))
	for i := range commitments {
		out[i] = ToCommitmentResponse(&commitments[i])
	}
	return out
}
