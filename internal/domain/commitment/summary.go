package commitment

import (
	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FinancialSummary is a read-only projection of the commitment ledgers
type FinancialSummary struct {
	CommitmentID       uuid.UUID            `json:"commitment_id"`
	CommitmentNumber   string               `json:"commitment_number"`
	Status             Status               `json:"status"`
	Currency           valueobject.Currency `json:"currency"`
	OriginalAmount     decimal.Decimal      `json:"original_amount"`
	ApprovedRevisions  decimal.Decimal      `json:"approved_revisions"`
	RevisedAmount      decimal.Decimal      `json:"revised_amount"`
	AllocatedAmount    decimal.Decimal      `json:"allocated_amount"`
	UnallocatedAmount  decimal.Decimal      `json:"unallocated_amount"`
	InvoicedAmount     decimal.Decimal      `json:"invoiced_amount"`
	RemainingToInvoice decimal.Decimal      `json:"remaining_to_invoice"`
	RetainedAmount     decimal.Decimal      `json:"retained_amount"`
	PaidAmount         decimal.Decimal      `json:"paid_amount"`
	BalanceToPay       decimal.Decimal      `json:"balance_to_pay"`
	InvoicedPercent    decimal.Decimal      `json:"invoiced_percent"`
	PaidPercent        decimal.Decimal      `json:"paid_percent"`
	ItemCount          int                  `json:"item_count"`
	InvoiceCount       int                  `json:"invoice_count"`
	PendingRevisions   int                  `json:"pending_revisions"`
}

// FinancialSummary returns the current financial projection of the commitment
func (c *Commitment) FinancialSummary() FinancialSummary {
	allocated := c.AllocatedAmount()
	pending := 0
	for _, r := range c.Revisions {
		if r.IsPending() {
			pending++
		}
	}
	return FinancialSummary{
		CommitmentID:       c.ID,
		CommitmentNumber:   c.CommitmentNumber,
		Status:             c.Status,
		Currency:           c.Currency,
		OriginalAmount:     c.TotalAmount,
		ApprovedRevisions:  c.approvedRevisionTotal(),
		RevisedAmount:      c.RevisedAmount,
		AllocatedAmount:    allocated,
		UnallocatedAmount:  valueobject.NonNegative(c.RevisedAmount.Sub(allocated)),
		InvoicedAmount:     c.InvoicedAmount,
		RemainingToInvoice: valueobject.NonNegative(c.RevisedAmount.Sub(c.InvoicedAmount)),
		RetainedAmount:     c.RetainedAmount,
		PaidAmount:         c.PaidAmount,
		BalanceToPay:       c.GetBalanceToPay(),
		InvoicedPercent:    valueobject.SafeDiv(c.InvoicedAmount.Mul(valueobject.Hundred), c.RevisedAmount, valueobject.PercentPrecision),
		PaidPercent:        valueobject.SafeDiv(c.PaidAmount.Mul(valueobject.Hundred), c.RevisedAmount, valueobject.PercentPrecision),
		ItemCount:          c.ActiveItemCount(),
		InvoiceCount:       len(c.Invoices),
		PendingRevisions:   pending,
	}
}
