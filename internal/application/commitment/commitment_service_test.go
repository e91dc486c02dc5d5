package commitment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/commitment"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

var testActor = shared.NewPrincipal(uuid.New(), "COST_ENGINEER")

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type serviceFixture struct {
	service     *CommitmentService
	commitments *MockCommitmentRepository
	accounts    *MockControlAccountRepository
	publisher   *MockEventPublisher
	tenantID    uuid.UUID
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		commitments: new(MockCommitmentRepository),
		accounts:    new(MockControlAccountRepository),
		publisher:   new(MockEventPublisher),
		tenantID:    uuid.New(),
	}
	f.service = NewCommitmentService(f.commitments, f.accounts)
	f.service.SetEventPublisher(f.publisher)

	metrics, err := telemetry.NewProjectControlMetrics(telemetry.ProjectControlMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)
	f.service.SetMetrics(metrics)
	return f
}

// draft builds a DRAFT commitment of 10 x 1000 with 10% retention
func (f *serviceFixture) draft(t *testing.T) *commitment.Commitment {
	t.Helper()
	c, err := commitment.NewCommitment(f.tenantID, commitment.NewCommitmentParams{
		CommitmentNumber:    "PO-2026-001",
		Type:                commitment.TypePurchaseOrder,
		ProjectID:           uuid.New(),
		VendorName:          "Acme Steel",
		RetentionPercentage: d("10"),
	}, testActor)
	require.NoError(t, err)
	_, err = c.AddItem("Rebar", "t", d("10"), d("1000"), testActor)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

// active builds an ACTIVE commitment fully allocated to one budget item
func (f *serviceFixture) active(t *testing.T) (*commitment.Commitment, uuid.UUID) {
	t.Helper()
	c := f.draft(t)
	require.NoError(t, c.Submit(testActor))
	require.NoError(t, c.Approve(testActor))
	require.NoError(t, c.Activate(testActor))
	budgetItemID := uuid.New()
	alloc, err := c.Allocate(commitment.AllocationTarget{BudgetItemID: &budgetItemID}, d("10000"), testActor)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c, alloc.ID
}

func (f *serviceFixture) expectStored(c *commitment.Commitment) {
	f.commitments.On("FindByIDForTenant", mock.Anything, f.tenantID, c.ID).Return(c, nil)
	f.commitments.On("SaveWithLock", mock.Anything, c).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func TestCommitmentService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.commitments.On("ExistsByNumber", mock.Anything, f.tenantID, "PO-2026-001").Return(false, nil)
	f.commitments.On("Save", mock.Anything, mock.AnythingOfType("*commitment.Commitment")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Create(ctx, f.tenantID, CreateCommitmentRequest{
		CommitmentNumber: " PO-2026-001 ",
		Type:             commitment.TypePurchaseOrder,
		ProjectID:        uuid.New(),
		VendorName:       "Acme Steel",
		Items: []AddItemRequest{
			{Description: "Rebar", Unit: "t", Quantity: d("10"), UnitPrice: d("1000")},
			{Description: "Anchors", Unit: "box", Quantity: d("2"), UnitPrice: d("500"), DiscountPercentage: d("10"), TaxRate: d("19")},
		},
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, "PO-2026-001", resp.CommitmentNumber)
	assert.Equal(t, commitment.StatusDraft, resp.Status)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Items[1].LineNumber)
	assert.True(t, resp.Subtotal.Equal(d("11000")))
	assert.True(t, resp.DiscountAmount.Equal(d("100")))
	assert.True(t, resp.NetAmount.Equal(d("10900")))
	assert.True(t, resp.TaxAmount.Equal(d("171")))
	assert.True(t, resp.TotalAmount.Equal(d("11071")))
	assert.True(t, resp.RevisedAmount.Equal(d("11071")))
	f.commitments.AssertExpectations(t)
}

func TestCommitmentService_Create_Rejections(t *testing.T) {
	t.Run("duplicate number", func(t *testing.T) {
		f := newFixture(t)
		f.commitments.On("ExistsByNumber", mock.Anything, f.tenantID, "PO-1").Return(true, nil)

		_, err := f.service.Create(context.Background(), f.tenantID, CreateCommitmentRequest{
			CommitmentNumber: "PO-1",
			Type:             commitment.TypeContract,
			ProjectID:        uuid.New(),
			VendorName:       "Acme",
		}, testActor)
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "DUPLICATE_NUMBER", de.Code)
	})

	t.Run("unknown control account", func(t *testing.T) {
		f := newFixture(t)
		caID := uuid.New()
		f.commitments.On("ExistsByNumber", mock.Anything, f.tenantID, "PO-1").Return(false, nil)
		f.accounts.On("FindByIDForTenant", mock.Anything, f.tenantID, caID).Return(nil, shared.NewNotFoundError("ControlAccount", caID))

		_, err := f.service.Create(context.Background(), f.tenantID, CreateCommitmentRequest{
			CommitmentNumber: "PO-1",
			Type:             commitment.TypeContract,
			ProjectID:        uuid.New(),
			ControlAccountID: &caID,
			VendorName:       "Acme",
		}, testActor)
		assert.True(t, shared.IsNotFoundError(err))
		f.commitments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalid item", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(context.Background(), f.tenantID, CreateCommitmentRequest{
			CommitmentNumber: "PO-1",
			Type:             commitment.TypeContract,
			ProjectID:        uuid.New(),
			VendorName:       "Acme",
			Items:            []AddItemRequest{{Description: "Rebar", Unit: "t", Quantity: d("0"), UnitPrice: d("1")}},
		}, testActor)
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Contains(t, de.Fields, "quantity")
	})
}

func TestCommitmentService_ApprovalLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.draft(t)
	f.expectStored(c)

	resp, err := f.service.Submit(ctx, f.tenantID, c.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, commitment.StatusPendingApproval, resp.Status)
	assert.NotNil(t, resp.SubmittedAt)

	resp, err = f.service.Reject(ctx, f.tenantID, c.ID, ReasonRequest{Reason: "Price too high"}, testActor)
	require.NoError(t, err)
	assert.Equal(t, commitment.StatusDraft, resp.Status)
	assert.Equal(t, "Price too high", resp.RejectionReason)

	_, err = f.service.Submit(ctx, f.tenantID, c.ID, testActor)
	require.NoError(t, err)
	resp, err = f.service.Approve(ctx, f.tenantID, c.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, commitment.StatusApproved, resp.Status)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, testActor.UserID, *resp.ApprovedBy)

	resp, err = f.service.Activate(ctx, f.tenantID, c.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, commitment.StatusActive, resp.Status)

	_, err = f.service.AddItem(ctx, f.tenantID, c.ID, AddItemRequest{
		Description: "Late item", Unit: "ea", Quantity: d("1"), UnitPrice: d("1"),
	}, testActor)
	assert.True(t, shared.IsStateTransitionError(err), "items are frozen after approval")
}

func TestCommitmentService_Reject_RequiresReason(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Reject(context.Background(), f.tenantID, uuid.New(), ReasonRequest{}, testActor)
	require.Error(t, err)
	assert.True(t, shared.IsValidationError(err))
	f.commitments.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommitmentService_InvoiceAndPay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, allocID := f.active(t)
	f.expectStored(c)

	resp, err := f.service.RecordInvoice(ctx, f.tenantID, c.ID, RecordInvoiceRequest{
		AllocationID:  allocID,
		InvoiceNumber: "INV-001",
		InvoiceDate:   time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		Amount:        d("4000"),
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, commitment.StatusPartiallyInvoiced, resp.Status)
	require.Len(t, resp.Invoices, 1)
	inv := resp.Invoices[0]
	assert.True(t, inv.RetentionAmount.Equal(d("400")))
	assert.True(t, inv.BalanceToPay.Equal(d("3600")))

	_, err = f.service.RecordPayment(ctx, f.tenantID, c.ID, inv.ID, AmountRequest{Amount: d("3700")}, testActor)
	require.Error(t, err)
	assert.True(t, shared.IsInvariantViolationError(err))

	resp, err = f.service.RecordPayment(ctx, f.tenantID, c.ID, inv.ID, AmountRequest{Amount: d("3600")}, testActor)
	require.NoError(t, err)
	assert.Equal(t, commitment.InvoiceStatusPaid, resp.Invoices[0].Status)
	assert.True(t, resp.BalanceToPay.IsZero())

	resp, err = f.service.ReleaseRetention(ctx, f.tenantID, c.ID, inv.ID, AmountRequest{Amount: d("400")}, testActor)
	require.NoError(t, err)
	assert.True(t, resp.RetainedAmount.IsZero())
	assert.True(t, resp.BalanceToPay.Equal(d("400")))
	assert.Equal(t, commitment.InvoiceStatusPartiallyPaid, resp.Invoices[0].Status)

	_, err = f.service.RecordInvoice(ctx, f.tenantID, c.ID, RecordInvoiceRequest{
		AllocationID:  allocID,
		InvoiceNumber: "inv-001",
		Amount:        d("100"),
	}, testActor)
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "DUPLICATE_INVOICE", de.Code)

	_, err = f.service.Cancel(ctx, f.tenantID, c.ID, ReasonRequest{Reason: "Vendor default"}, testActor)
	require.Error(t, err)

	summary, err := f.service.FinancialSummary(ctx, f.tenantID, c.ID)
	require.NoError(t, err)
	assert.True(t, summary.InvoicedAmount.Equal(d("4000")))
	assert.True(t, summary.PaidAmount.Equal(d("3600")))
	assert.True(t, summary.RemainingToInvoice.Equal(d("6000")))
	assert.True(t, summary.InvoicedPercent.Equal(d("40")))
	assert.Equal(t, 1, summary.InvoiceCount)
}

func TestCommitmentService_Revisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, _ := f.active(t)
	f.expectStored(c)

	resp, err := f.service.RequestRevision(ctx, f.tenantID, c.ID, RequestRevisionRequest{
		ChangeAmount: d("2500"), Reason: "Additional scope",
	}, testActor)
	require.NoError(t, err)
	require.Len(t, resp.Revisions, 1)
	revisionID := resp.Revisions[0].ID
	assert.True(t, resp.RevisedAmount.Equal(d("10000")), "pending revisions do not move the value")

	_, err = f.service.RequestRevision(ctx, f.tenantID, c.ID, RequestRevisionRequest{
		ChangeAmount: d("100"), Reason: "More scope",
	}, testActor)
	assert.True(t, shared.IsInvariantViolationError(err), "only one pending revision at a time")

	resp, err = f.service.ApproveRevision(ctx, f.tenantID, c.ID, revisionID, testActor)
	require.NoError(t, err)
	assert.True(t, resp.RevisedAmount.Equal(d("12500")))
	assert.True(t, resp.Revisions[0].PreviousAmount.Equal(d("10000")))
	assert.True(t, resp.Revisions[0].NewAmount.Equal(d("12500")))

	resp, err = f.service.RequestRevision(ctx, f.tenantID, c.ID, RequestRevisionRequest{
		ChangeAmount: d("-5000"), Reason: "Descope",
	}, testActor)
	require.NoError(t, err)
	_, err = f.service.ApproveRevision(ctx, f.tenantID, c.ID, resp.Revisions[1].ID, testActor)
	assert.True(t, shared.IsInvariantViolationError(err), "revised value cannot drop below allocations")

	resp, err = f.service.RejectRevision(ctx, f.tenantID, c.ID, resp.Revisions[1].ID, ReasonRequest{Reason: "Allocated"}, testActor)
	require.NoError(t, err)
	assert.Equal(t, commitment.RevisionStatusRejected, resp.Revisions[1].Status)
	assert.True(t, resp.RevisedAmount.Equal(d("12500")))
}

func TestCommitmentService_Delete(t *testing.T) {
	t.Run("draft", func(t *testing.T) {
		f := newFixture(t)
		c := f.draft(t)
		f.commitments.On("FindByIDForTenant", mock.Anything, f.tenantID, c.ID).Return(c, nil)
		f.commitments.On("DeleteForTenant", mock.Anything, f.tenantID, c.ID).Return(nil)

		require.NoError(t, f.service.Delete(context.Background(), f.tenantID, c.ID))
		f.commitments.AssertExpectations(t)
	})

	t.Run("active", func(t *testing.T) {
		f := newFixture(t)
		c, _ := f.active(t)
		f.commitments.On("FindByIDForTenant", mock.Anything, f.tenantID, c.ID).Return(c, nil)

		err := f.service.Delete(context.Background(), f.tenantID, c.ID)
		assert.True(t, shared.IsStateTransitionError(err))
		f.commitments.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCommitmentService_ConflictExhausted(t *testing.T) {
	f := newFixture(t)
	f.service.SetMaxRetries(2)
	c := f.draft(t)

	f.commitments.On("FindByIDForTenant", mock.Anything, f.tenantID, c.ID).Return(c, nil)
	f.commitments.On("SaveWithLock", mock.Anything, c).Return(shared.ErrConcurrencyConflict)

	_, err := f.service.SetItemTax(context.Background(), f.tenantID, c.ID, c.Items[0].ID, SetItemTaxRequest{TaxRate: d("19")}, testActor)
	require.Error(t, err)
	assert.True(t, shared.IsConcurrencyConflictError(err))
	f.commitments.AssertNumberOfCalls(t, "SaveWithLock", 2)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
