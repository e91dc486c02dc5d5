package common

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sampleRequest struct {
	Code     string           `json:"code" validate:"required,max=10"`
	Amount   decimal.Decimal  `json:"amount" validate:"gte=0"`
	Percent  *decimal.Decimal `json:"percent" validate:"omitempty,gte=0,lte=100"`
	Items    []string         `json:"items" validate:"min=1"`
	Internal string           `json:"-" validate:"omitempty,max=1"`
}

func TestValidate(t *testing.T) {
	hundredOne := decimal.NewFromInt(101)

	t.Run("valid request", func(t *testing.T) {
		req := sampleRequest{Code: "C1", Amount: decimal.NewFromInt(5), Items: []string{"a"}}
		assert.NoError(t, Validate(req))
	})

	t.Run("reports json field names", func(t *testing.T) {
		req := sampleRequest{Amount: decimal.NewFromInt(-1), Percent: &hundredOne}
		err := Validate(req)
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_REQUEST", de.Code)
		assert.ElementsMatch(t, []string{"code", "amount", "percent", "items"}, de.Fields)
		assert.Contains(t, de.Message, "code is required")
		assert.Contains(t, de.Message, "amount must be at least 0")
		assert.Contains(t, de.Message, "items must have at least 1 entries")
	})
}

func TestListFilter_ToDomain(t *testing.T) {
	f := ListFilter{}.ToDomain()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, "desc", f.OrderDir)
	assert.NotNil(t, f.Filters)

	f = ListFilter{Page: 3, PageSize: 500, OrderBy: "code", OrderDir: "asc"}.ToDomain()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 100, f.PageSize)
	assert.Equal(t, "code", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
}

type testAggregate struct {
	shared.BaseAggregateRoot
}

type stubPublisher struct {
	published []shared.DomainEvent
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.published = append(p.published, events...)
	return p.err
}

func newTestAggregate() *testAggregate {
	agg := &testAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	e := shared.NewBaseDomainEvent("TestHappened", "Test", agg.ID, uuid.New())
	agg.AddDomainEvent(&e)
	return agg
}

func TestPublishEvents(t *testing.T) {
	t.Run("publishes and clears", func(t *testing.T) {
		agg := newTestAggregate()
		pub := &stubPublisher{}

		PublishEvents(context.Background(), pub, zap.NewNop(), agg)

		assert.Len(t, pub.published, 1)
		assert.Empty(t, agg.GetDomainEvents())
	})

	t.Run("publish failure is swallowed", func(t *testing.T) {
		agg := newTestAggregate()
		pub := &stubPublisher{err: errors.New("bus down")}

		PublishEvents(context.Background(), pub, zap.NewNop(), agg)

		assert.Len(t, pub.published, 1)
		assert.Empty(t, agg.GetDomainEvents())
	})

	t.Run("nil publisher still clears", func(t *testing.T) {
		agg := newTestAggregate()

		PublishEvents(context.Background(), nil, zap.NewNop(), agg)

		assert.Empty(t, agg.GetDomainEvents())
	})
}
