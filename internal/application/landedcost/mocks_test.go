package landedcost

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/partner"
	"github.com/tradelog/backend/internal/domain/settlement"
	"github.com/tradelog/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories and Ports
// =============================================================================

type MockVoucherRepository struct {
	mock.Mock
}

func (m *MockVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*landedcost.Voucher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*landedcost.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]landedcost.Voucher, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]landedcost.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) FindAll(ctx context.Context, filter landedcost.VoucherFilter) ([]landedcost.Voucher, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]landedcost.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) Count(ctx context.Context, filter landedcost.VoucherFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVoucherRepository) FindPendingByCategory(ctx context.Context, category landedcost.PayableCategory) ([]landedcost.Voucher, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]landedcost.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) Save(ctx context.Context, voucher *landedcost.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockVoucherRepository) SaveWithLock(ctx context.Context, voucher *landedcost.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockVoucherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindAll(ctx context.Context, filter settlement.Filter) ([]settlement.Settlement, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) Count(ctx context.Context, filter settlement.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSettlementRepository) FindPendingByVoucher(ctx context.Context, voucherID uuid.UUID) ([]settlement.Settlement, error) {
	args := m.Called(ctx, voucherID)
	return args.Get(0).([]settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSettlementRepository) SaveWithLock(ctx context.Context, s *settlement.Settlement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSettlementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPurchaseOrderDirectory struct {
	mock.Mock
}

func (m *MockPurchaseOrderDirectory) ListLineItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]landedcost.PurchaseOrderLineItem, error) {
	args := m.Called(ctx, purchaseOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]landedcost.PurchaseOrderLineItem), args.Error(1)
}

func (m *MockPurchaseOrderDirectory) GetSupplierName(ctx context.Context, purchaseOrderID uuid.UUID) (string, error) {
	args := m.Called(ctx, purchaseOrderID)
	return args.String(0), args.Error(1)
}

type MockPartyDirectory struct {
	mock.Mock
}

func (m *MockPartyDirectory) GetParty(ctx context.Context, id uuid.UUID) (*partner.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) NextVoucherNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockNumberGenerator) NextSettlementNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockPaymentSink struct {
	mock.Mock
}

func (m *MockPaymentSink) RecordPayment(ctx context.Context, payment landedcost.PaymentRecord) (uuid.UUID, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// registerParties makes the directory answer for the given parties and
// shared.ErrNotFound for anything else
func registerParties(dir *MockPartyDirectory, parties ...*partner.Party) {
	for _, p := range parties {
		dir.On("GetParty", mock.Anything, p.ID).Return(p, nil)
	}
	dir.On("GetParty", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
}
