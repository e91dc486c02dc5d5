package controlaccount

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEVMRecordRepository is a mock implementation of EVMRecordRepository
type MockEVMRecordRepository struct {
	mock.Mock
}

func (m *MockEVMRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*evm.EVMRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*evm.EVMRecord), args.Error(1)
}

func (m *MockEVMRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*evm.EVMRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*evm.EVMRecord), args.Error(1)
}

func (m *MockEVMRecordRepository) FindByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID, filter shared.Filter) ([]evm.EVMRecord, error) {
	args := m.Called(ctx, tenantID, controlAccountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]evm.EVMRecord), args.Error(1)
}

func (m *MockEVMRecordRepository) FindLatestByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID) (*evm.EVMRecord, error) {
	args := m.Called(ctx, tenantID, controlAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*evm.EVMRecord), args.Error(1)
}

func (m *MockEVMRecordRepository) FindByPeriod(ctx context.Context, tenantID, controlAccountID uuid.UUID, period evm.PeriodKey) (*evm.EVMRecord, error) {
	args := m.Called(ctx, tenantID, controlAccountID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*evm.EVMRecord), args.Error(1)
}

func (m *MockEVMRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]evm.EVMRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]evm.EVMRecord), args.Error(1)
}

func (m *MockEVMRecordRepository) ExistsForPeriod(ctx context.Context, tenantID, controlAccountID uuid.UUID, period evm.PeriodKey) (bool, error) {
	args := m.Called(ctx, tenantID, controlAccountID, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockEVMRecordRepository) CountByControlAccount(ctx context.Context, tenantID, controlAccountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, controlAccountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEVMRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEVMRecordRepository) Save(ctx context.Context, record *evm.EVMRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockEVMRecordRepository) SaveWithLock(ctx context.Context, record *evm.EVMRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
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
