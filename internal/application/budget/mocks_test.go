package budget

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/budget"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockBudgetRepository is a mock implementation of BudgetRepository
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*budget.Budget, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindByItemID(ctx context.Context, tenantID, itemID uuid.UUID) (*budget.Budget, error) {
	args := m.Called(ctx, tenantID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter shared.Filter) ([]budget.Budget, error) {
	args := m.Called(ctx, tenantID, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]budget.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status budget.Status, filter shared.Filter) ([]budget.Budget, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]budget.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]budget.Budget, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]budget.Budget), args.Error(1)
}

func (m *MockBudgetRepository) NextBudgetVersion(ctx context.Context, tenantID, projectID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, projectID)
	return args.Int(0), args.Error(1)
}

func (m *MockBudgetRepository) Save(ctx context.Context, b *budget.Budget) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBudgetRepository) SaveWithLock(ctx context.Context, b *budget.Budget) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBudgetRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockBudgetRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockControlAccountRepository is a mock implementation of ControlAccountRepository
type MockControlAccountRepository struct {
	mock.Mock
}

func (m *MockControlAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*controlaccount.ControlAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*controlaccount.ControlAccount), args.Error(1)
}

func (m *MockControlAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*controlaccount.ControlAccount, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*controlaccount.ControlAccount), args.Error(1)
}

func (m *MockControlAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*controlaccount.ControlAccount, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*controlaccount.ControlAccount), args.Error(1)
}

func (m *MockControlAccountRepository) FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter shared.Filter) ([]controlaccount.ControlAccount, error) {
	args := m.Called(ctx, tenantID, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]controlaccount.ControlAccount), args.Error(1)
}

func (m *MockControlAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]controlaccount.ControlAccount, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]controlaccount.ControlAccount), args.Error(1)
}

func (m *MockControlAccountRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status controlaccount.Status, filter shared.Filter) ([]controlaccount.ControlAccount, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]controlaccount.ControlAccount), args.Error(1)
}

func (m *MockControlAccountRepository) Save(ctx context.Context, account *controlaccount.ControlAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockControlAccountRepository) SaveWithLock(ctx context.Context, account *controlaccount.ControlAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockControlAccountRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockControlAccountRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockControlAccountRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
