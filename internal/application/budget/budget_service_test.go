package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/budget"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

var testActor = shared.NewPrincipal(uuid.New(), "PROJECT_CONTROLLER")

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	return de.Code
}

type serviceFixture struct {
	service   *BudgetService
	budgets   *MockBudgetRepository
	accounts  *MockControlAccountRepository
	publisher *MockEventPublisher
	tenantID  uuid.UUID
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		budgets:   new(MockBudgetRepository),
		accounts:  new(MockControlAccountRepository),
		publisher: new(MockEventPublisher),
		tenantID:  uuid.New(),
	}
	f.service = NewBudgetService(f.budgets, f.accounts)
	f.service.SetEventPublisher(f.publisher)

	metrics, err := telemetry.NewProjectControlMetrics(telemetry.ProjectControlMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)
	f.service.SetMetrics(metrics)
	return f
}

// draft builds a DRAFT budget with a 100000 civil line and a 50000 electrical line
func (f *serviceFixture) draft(t *testing.T) *budget.Budget {
	t.Helper()
	b, err := budget.NewBudget(f.tenantID, uuid.New(), "Construction baseline", 1, "", testActor)
	require.NoError(t, err)
	_, err = b.AddItem("civ-01", "Civil works", nil, d("100000"), testActor)
	require.NoError(t, err)
	_, err = b.AddItem("ele-01", "Electrical", nil, d("50000"), testActor)
	require.NoError(t, err)
	b.ClearDomainEvents()
	return b
}

// active builds an approved and ACTIVE version of draft
func (f *serviceFixture) active(t *testing.T) *budget.Budget {
	t.Helper()
	b := f.draft(t)
	require.NoError(t, b.Submit(testActor))
	require.NoError(t, b.Approve(testActor))
	require.NoError(t, b.Activate(testActor))
	b.ClearDomainEvents()
	return b
}

func (f *serviceFixture) expectStored(b *budget.Budget) {
	f.budgets.On("FindByIDForTenant", mock.Anything, f.tenantID, b.ID).Return(b, nil)
	f.budgets.On("SaveWithLock", mock.Anything, b).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func TestBudgetService_Create(t *testing.T) {
	t.Run("assigns the next version and totals items", func(t *testing.T) {
		f := newFixture(t)
		projectID := uuid.New()
		accountID := uuid.New()
		f.budgets.On("NextBudgetVersion", mock.Anything, f.tenantID, projectID).Return(3, nil)
		f.accounts.On("FindByIDForTenant", mock.Anything, f.tenantID, accountID).Return(&controlaccount.ControlAccount{}, nil)
		f.budgets.On("Save", mock.Anything, mock.AnythingOfType("*budget.Budget")).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Create(context.Background(), f.tenantID, CreateBudgetRequest{
			ProjectID:   projectID,
			Name:        "Revision B",
			Description: "Post award",
			Items: []AddItemRequest{
				{Code: "civ-01", Amount: d("100000"), ControlAccountID: &accountID},
				{Code: "ele-01", Amount: d("50000")},
			},
		}, testActor)
		require.NoError(t, err)

		assert.Equal(t, 3, resp.BudgetVersion)
		assert.Equal(t, budget.StatusDraft, resp.Status)
		assert.Equal(t, valueobject.DefaultCurrency, resp.Currency)
		assert.Equal(t, "Post award", resp.Description)
		assert.True(t, d("150000").Equal(resp.TotalAmount))
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "CIV-01", resp.Items[0].Code)
		assert.True(t, d("100000").Equal(resp.Items[0].AvailableAmount))
		f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("unknown control account", func(t *testing.T) {
		f := newFixture(t)
		accountID := uuid.New()
		f.accounts.On("FindByIDForTenant", mock.Anything, f.tenantID, accountID).
			Return(nil, shared.NewNotFoundError(controlaccount.AggregateTypeControlAccount, accountID))

		_, err := f.service.Create(context.Background(), f.tenantID, CreateBudgetRequest{
			ProjectID: uuid.New(),
			Name:      "Baseline",
			Items:     []AddItemRequest{{Code: "A", Amount: d("10"), ControlAccountID: &accountID}},
		}, testActor)
		require.Error(t, err)
		assert.True(t, shared.IsNotFoundError(err))
		f.budgets.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate item codes", func(t *testing.T) {
		f := newFixture(t)
		projectID := uuid.New()
		f.budgets.On("NextBudgetVersion", mock.Anything, f.tenantID, projectID).Return(1, nil)

		_, err := f.service.Create(context.Background(), f.tenantID, CreateBudgetRequest{
			ProjectID: projectID,
			Name:      "Baseline",
			Items:     []AddItemRequest{{Code: "a", Amount: d("10")}, {Code: "A ", Amount: d("20")}},
		}, testActor)
		require.Error(t, err)
		assert.Equal(t, "DUPLICATE_CODE", domainCode(t, err))
	})

	t.Run("invalid request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(context.Background(), f.tenantID, CreateBudgetRequest{
			Name:  "Baseline",
			Items: []AddItemRequest{{Code: "A", Amount: d("-1")}},
		}, testActor)
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
	})
}

func TestBudgetService_Workflow(t *testing.T) {
	f := newFixture(t)
	b := f.draft(t)
	f.expectStored(b)
	ctx := context.Background()

	resp, err := f.service.Submit(ctx, f.tenantID, b.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusUnderReview, resp.Status)
	assert.Equal(t, &testActor.UserID, resp.SubmittedBy)

	_, err = f.service.Reject(ctx, f.tenantID, b.ID, ReasonRequest{}, testActor)
	require.Error(t, err)
	assert.True(t, shared.IsValidationError(err))

	resp, err = f.service.Reject(ctx, f.tenantID, b.ID, ReasonRequest{Reason: "Escalation missing"}, testActor)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusRejected, resp.Status)
	assert.Equal(t, "Escalation missing", resp.RejectionReason)

	resp, err = f.service.Reopen(ctx, f.tenantID, b.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusDraft, resp.Status)

	resp, err = f.service.UpdateItem(ctx, f.tenantID, b.ID, b.Items[1].ID, UpdateItemRequest{Description: "Electrical + ELV", Amount: d("60000")}, testActor)
	require.NoError(t, err)
	assert.True(t, d("160000").Equal(resp.TotalAmount))

	_, err = f.service.Submit(ctx, f.tenantID, b.ID, testActor)
	require.NoError(t, err)
	resp, err = f.service.Baseline(ctx, f.tenantID, b.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusBaseline, resp.Status)
	assert.True(t, d("160000").Equal(resp.BaselineAmount))
	require.NotNil(t, resp.BaselineDate)

	resp, err = f.service.Activate(ctx, f.tenantID, b.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusActive, resp.Status)

	resp, err = f.service.Lock(ctx, f.tenantID, b.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusLocked, resp.Status)
	assert.NotNil(t, resp.LockedAt)

	_, err = f.service.AddItem(ctx, f.tenantID, b.ID, AddItemRequest{Code: "MEC-01", Amount: d("1")}, testActor)
	require.Error(t, err)
	assert.Equal(t, "BUDGET_LOCKED", domainCode(t, err))

	resp, err = f.service.Close(ctx, f.tenantID, b.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusClosed, resp.Status)
	assert.NotNil(t, resp.ClosedAt)
}

func TestBudgetService_SubmitWithoutItems(t *testing.T) {
	f := newFixture(t)
	b, err := budget.NewBudget(f.tenantID, uuid.New(), "Empty", 1, "", testActor)
	require.NoError(t, err)
	b.ClearDomainEvents()
	f.expectStored(b)

	_, err = f.service.Submit(context.Background(), f.tenantID, b.ID, testActor)
	require.Error(t, err)
	assert.Equal(t, "NO_ITEMS", domainCode(t, err))
	f.budgets.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestBudgetService_Revisions(t *testing.T) {
	f := newFixture(t)
	b := f.active(t)
	f.expectStored(b)
	ctx := context.Background()
	civil := b.Items[0].ID

	require.NoError(t, b.RecordCommitment(civil, d("90000"), testActor))

	resp, err := f.service.RequestRevision(ctx, f.tenantID, b.ID, RequestRevisionRequest{
		BudgetItemID: civil,
		ChangeAmount: d("-20000"),
		Reason:       "Scope transfer",
	}, testActor)
	require.NoError(t, err)
	require.Len(t, resp.Revisions, 1)
	assert.Equal(t, budget.RevisionStatusPending, resp.Revisions[0].Status)
	assert.Equal(t, 1, resp.Revisions[0].RevisionNumber)
	belowCommitted := resp.Revisions[0].ID

	_, err = f.service.Close(ctx, f.tenantID, b.ID, testActor)
	require.Error(t, err)
	assert.Equal(t, "REVISIONS_PENDING", domainCode(t, err))

	_, err = f.service.ApproveRevision(ctx, f.tenantID, b.ID, belowCommitted, testActor)
	require.Error(t, err)
	assert.Equal(t, "AMOUNT_BELOW_COMMITTED", domainCode(t, err))

	_, err = f.service.RejectRevision(ctx, f.tenantID, b.ID, belowCommitted, ReasonRequest{Reason: "Already committed"}, testActor)
	require.NoError(t, err)

	resp, err = f.service.RequestRevision(ctx, f.tenantID, b.ID, RequestRevisionRequest{
		BudgetItemID: civil,
		ChangeAmount: d("15000"),
		Reason:       "Ground conditions",
	}, testActor)
	require.NoError(t, err)
	increase := resp.Revisions[1].ID

	resp, err = f.service.ApproveRevision(ctx, f.tenantID, b.ID, increase, testActor)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusRevised, resp.Status)
	assert.True(t, d("165000").Equal(resp.TotalAmount))
	assert.True(t, d("100000").Equal(resp.Revisions[1].PreviousAmount))
	assert.True(t, d("115000").Equal(resp.Revisions[1].NewAmount))

	_, err = f.service.ApproveRevision(ctx, f.tenantID, b.ID, increase, testActor)
	require.Error(t, err)
	assert.True(t, shared.IsStateTransitionError(err))

	summary, err := f.service.Summary(ctx, f.tenantID, b.ID)
	require.NoError(t, err)
	assert.True(t, d("150000").Equal(summary.BaselineAmount))
	assert.True(t, d("15000").Equal(summary.VarianceFromBaseline))
	assert.True(t, d("15000").Equal(summary.ApprovedRevisions))
	assert.True(t, d("75000").Equal(summary.AvailableAmount))
	assert.Equal(t, 0, summary.PendingRevisions)
}

func TestBudgetService_Delete(t *testing.T) {
	t.Run("draft", func(t *testing.T) {
		f := newFixture(t)
		b := f.draft(t)
		f.budgets.On("FindByIDForTenant", mock.Anything, f.tenantID, b.ID).Return(b, nil)
		f.budgets.On("DeleteForTenant", mock.Anything, f.tenantID, b.ID).Return(nil)

		require.NoError(t, f.service.Delete(context.Background(), f.tenantID, b.ID))
		f.budgets.AssertExpectations(t)
	})

	t.Run("active", func(t *testing.T) {
		f := newFixture(t)
		b := f.active(t)
		f.budgets.On("FindByIDForTenant", mock.Anything, f.tenantID, b.ID).Return(b, nil)

		err := f.service.Delete(context.Background(), f.tenantID, b.ID)
		require.Error(t, err)
		assert.True(t, shared.IsStateTransitionError(err))
		f.budgets.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBudgetService_List(t *testing.T) {
	f := newFixture(t)
	projectID := uuid.New()
	status := budget.StatusActive
	b := f.active(t)

	match := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["project_id"] == projectID && filter.Filters["status"] == "ACTIVE" && filter.PageSize == 20
	})
	f.budgets.On("FindAllForTenant", mock.Anything, f.tenantID, match).Return([]budget.Budget{*b}, nil)
	f.budgets.On("CountForTenant", mock.Anything, f.tenantID, match).Return(int64(1), nil)

	list, total, err := f.service.List(context.Background(), f.tenantID, BudgetListFilter{ProjectID: &projectID, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestBudgetService_RetriesOnConflict(t *testing.T) {
	f := newFixture(t)
	first := f.draft(t)
	second := *first
	second.Items = append([]budget.BudgetItem(nil), first.Items...)

	f.budgets.On("FindByIDForTenant", mock.Anything, f.tenantID, first.ID).Return(first, nil).Once()
	f.budgets.On("FindByIDForTenant", mock.Anything, f.tenantID, first.ID).Return(&second, nil).Once()
	f.budgets.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
	f.budgets.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := f.service.UpdateDetails(context.Background(), f.tenantID, first.ID, UpdateBudgetRequest{
		Name:         "Construction baseline rev 1",
		ExchangeRate: d("1.08"),
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "Construction baseline rev 1", resp.Name)
	assert.True(t, d("1.08").Equal(resp.ExchangeRate))
	f.budgets.AssertNumberOfCalls(t, "SaveWithLock", 2)
}
