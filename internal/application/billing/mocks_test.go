package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindMonthly(ctx context.Context, clientID string, month, year int) (*billing.Invoice, error) {
	args := m.Called(ctx, clientID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByClient(ctx context.Context, clientID string, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, clientID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountByClient(ctx context.Context, clientID string, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, clientID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindFulfilledByClient(ctx context.Context, clientID string) ([]trade.Order, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindItems(ctx context.Context, orderID uuid.UUID) ([]trade.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) LinkToInvoice(ctx context.Context, orderIDs []uuid.UUID, invoiceID uuid.UUID, invoiceNumber string) error {
	args := m.Called(ctx, orderIDs, invoiceID, invoiceNumber)
	return args.Error(0)
}

// MockLockAuditRepository is a mock implementation of billing.LockAuditRepository
type MockLockAuditRepository struct {
	mock.Mock
}

func (m *MockLockAuditRepository) CreateBatch(ctx context.Context, audits []*billing.OrderLockAudit) error {
	args := m.Called(ctx, audits)
	return args.Error(0)
}

func (m *MockLockAuditRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]billing.OrderLockAudit, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OrderLockAudit), args.Error(1)
}

// MockGenerationLock is a mock implementation of billing.GenerationLock
type MockGenerationLock struct {
	mock.Mock
	released int
}

func (m *MockGenerationLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	args := m.Called(ctx, key, ttl)
	if !args.Bool(0) || args.Error(1) != nil {
		return nil, args.Bool(0), args.Error(1)
	}
	return func(context.Context) error {
		m.released++
		return nil
	}, true, nil
}
