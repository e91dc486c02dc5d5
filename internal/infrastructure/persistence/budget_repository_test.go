package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/budget"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/projectcontrols/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBudget(t *testing.T, tenantID, projectID uuid.UUID, version int) *budget.Budget {
	t.Helper()
	b, err := budget.NewBudget(tenantID, projectID, "Construction budget", version, valueobject.USD, testActor)
	require.NoError(t, err)
	caID := uuid.New()
	_, err = b.AddItem("B-100", "Earthworks", &caID, d("100000"), testActor)
	require.NoError(t, err)
	_, err = b.AddItem("B-200", "Concrete", nil, d("50000"), testActor)
	require.NoError(t, err)
	return b
}

func TestGormBudgetRepository_SaveAndFind(t *testing.T) {
	repo := NewGormBudgetRepository(setupTestDB(t))
	ctx := context.Background()
	tenantID, projectID := uuid.New(), uuid.New()

	b := newTestBudget(t, tenantID, projectID, 1)
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindByIDForTenant(ctx, tenantID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusDraft, found.Status)
	assert.Equal(t, valueobject.USD, found.Currency)
	assert.True(t, d("150000").Equal(found.TotalAmount))
	require.Len(t, found.Items, 2)
	assert.Equal(t, "B-100", found.Items[0].Code)
	require.NotNil(t, found.Items[0].ControlAccountID)
	assert.Nil(t, found.Items[1].ControlAccountID)

	t.Run("find by item", func(t *testing.T) {
		owner, err := repo.FindByItemID(ctx, tenantID, b.Items[1].ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, owner.ID)

		_, err = repo.FindByItemID(ctx, uuid.New(), b.Items[1].ID)
		assert.True(t, shared.IsNotFoundError(err))
		_, err = repo.FindByItemID(ctx, tenantID, uuid.New())
		assert.True(t, shared.IsNotFoundError(err))
	})

	t.Run("next version", func(t *testing.T) {
		next, err := repo.NextBudgetVersion(ctx, tenantID, projectID)
		require.NoError(t, err)
		assert.Equal(t, 2, next)

		next, err = repo.NextBudgetVersion(ctx, tenantID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 1, next)
	})
}

func TestGormBudgetRepository_RevisionWorkflow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBudgetRepository(db)
	ctx := context.Background()

	b := newTestBudget(t, uuid.New(), uuid.New(), 1)
	require.NoError(t, b.Submit(testActor))
	require.NoError(t, b.Approve(testActor))
	require.NoError(t, b.Activate(testActor))
	require.NoError(t, repo.Save(ctx, b))

	itemID := b.Items[0].ID
	require.NoError(t, b.RecordCommitment(itemID, d("40000"), testActor))
	rev, err := b.RequestRevision(itemID, d("-10000"), "scope reduction", testActor)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, b))

	require.NoError(t, b.ApproveRevision(rev.ID, testActor))
	require.NoError(t, repo.SaveWithLock(ctx, b))
	assert.Equal(t, 3, b.Version)

	found, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, budget.StatusRevised, found.Status)
	assert.True(t, d("140000").Equal(found.TotalAmount))
	assert.True(t, d("150000").Equal(found.BaselineAmount))
	item := found.GetItem(itemID)
	require.NotNil(t, item)
	assert.True(t, d("90000").Equal(item.Amount))
	assert.True(t, d("40000").Equal(item.CommittedAmount))
	require.Len(t, found.Revisions, 1)
	assert.Equal(t, budget.RevisionStatusApproved, found.Revisions[0].Status)
	assert.True(t, d("100000").Equal(found.Revisions[0].PreviousAmount))
	assert.Equal(t, int64(1), countRows(t, db, &models.BudgetRevisionModel{}))
}

func TestGormBudgetRepository_ConcurrentConsumption(t *testing.T) {
	repo := NewGormBudgetRepository(setupTestDB(t))
	ctx := context.Background()

	b := newTestBudget(t, uuid.New(), uuid.New(), 1)
	require.NoError(t, b.Submit(testActor))
	require.NoError(t, b.Baseline(testActor))
	require.NoError(t, b.Activate(testActor))
	require.NoError(t, repo.Save(ctx, b))
	itemID := b.Items[0].ID

	first, err := repo.FindByItemID(ctx, b.TenantID, itemID)
	require.NoError(t, err)
	second, err := repo.FindByItemID(ctx, b.TenantID, itemID)
	require.NoError(t, err)

	require.NoError(t, first.RecordCommitment(itemID, d("30000"), testActor))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	require.NoError(t, second.RecordActual(itemID, d("5000"), testActor))
	err = repo.SaveWithLock(ctx, second)
	assert.True(t, shared.IsConcurrencyConflictError(err))

	found, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, d("30000").Equal(found.GetItem(itemID).CommittedAmount))
	assert.True(t, found.GetItem(itemID).ActualAmount.IsZero())
}

func TestGormBudgetRepository_ListAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBudgetRepository(db)
	ctx := context.Background()
	tenantID, projectID := uuid.New(), uuid.New()

	v1 := newTestBudget(t, tenantID, projectID, 1)
	require.NoError(t, v1.Submit(testActor))
	require.NoError(t, repo.Save(ctx, v1))
	v2 := newTestBudget(t, tenantID, projectID, 2)
	require.NoError(t, repo.Save(ctx, v2))
	require.NoError(t, repo.Save(ctx, newTestBudget(t, tenantID, uuid.New(), 1)))

	byProject, err := repo.FindByProject(ctx, tenantID, projectID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, byProject, 2)
	assert.Equal(t, 2, byProject[0].BudgetVersion)
	assert.Equal(t, 1, byProject[1].BudgetVersion)

	review, err := repo.FindByStatus(ctx, tenantID, budget.StatusUnderReview, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, review, 1)
	assert.Equal(t, v1.ID, review[0].ID)

	all, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := repo.CountForTenant(ctx, tenantID, shared.Filter{Filters: map[string]any{"status": budget.StatusDraft}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.DeleteForTenant(ctx, tenantID, v2.ID))
	assert.Equal(t, int64(4), countRows(t, db, &models.BudgetItemModel{}))
	err = repo.DeleteForTenant(ctx, tenantID, v2.ID)
	assert.True(t, shared.IsNotFoundError(err))
}
