package commitment

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/commitment"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockCommitmentRepository is a mock implementation of CommitmentRepository
type MockCommitmentRepository struct {
	mock.Mock
}

func (m *MockCommitmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*commitment.Commitment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commitment.Commitment), args.Error(1)
}

func (m *MockCommitmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*commitment.Commitment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commitment.Commitment), args.Error(1)
}

func (m *MockCommitmentRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*commitment.Commitment, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commitment.Commitment), args.Error(1)
}

func (m *MockCommitmentRepository) FindByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter shared.Filter) ([]commitment.Commitment, error) {
	args := m.Called(ctx, tenantID, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commitment.Commitment), args.Error(1)
}

func (m *MockCommitmentRepository) FindByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID, filter shared.Filter) ([]commitment.Commitment, error) {
	args := m.Called(ctx, tenantID, controlAccountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commitment.Commitment), args.Error(1)
}

func (m *MockCommitmentRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status commitment.Status, filter shared.Filter) ([]commitment.Commitment, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commitment.Commitment), args.Error(1)
}

func (m *MockCommitmentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]commitment.Commitment, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commitment.Commitment), args.Error(1)
}

func (m *MockCommitmentRepository) Save(ctx context.Context, c *commitment.Commitment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommitmentRepository) SaveWithLock(ctx context.Context, c *commitment.Commitment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommitmentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCommitmentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommitmentRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, tenantID, number)
	return args.Bool(0), args.Error(1)
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
