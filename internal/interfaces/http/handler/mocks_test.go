package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	applc "github.com/tradelog/backend/internal/application/landedcost"
	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/shared"
)

// MockVoucherService implements VoucherService for testing
type MockVoucherService struct {
	mock.Mock
}

func (m *MockVoucherService) PreviewAllocation(ctx context.Context, req applc.AllocationPreviewRequest) (*applc.AllocationPreviewResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applc.AllocationPreviewResponse), args.Error(1)
}

func (m *MockVoucherService) Create(ctx context.Context, req applc.VoucherRequest) (*applc.VoucherResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applc.VoucherResponse), args.Error(1)
}

func (m *MockVoucherService) Update(ctx context.Context, id uuid.UUID, req applc.VoucherRequest) (*applc.VoucherResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applc.VoucherResponse), args.Error(1)
}

func (m *MockVoucherService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockVoucherService) PayCategory(ctx context.Context, id uuid.UUID, category landedcost.PayableCategory, req applc.PayCategoryRequest) (*applc.VoucherResponse, error) {
	args := m.Called(ctx, id, category, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applc.VoucherResponse), args.Error(1)
}

func (m *MockVoucherService) GetByID(ctx context.Context, id uuid.UUID) (*applc.VoucherResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applc.VoucherResponse), args.Error(1)
}

func (m *MockVoucherService) List(ctx context.Context, filter applc.VoucherListFilter) (shared.Paginated[applc.VoucherResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[applc.VoucherResponse]), args.Error(1)
}

// MockSettlementService implements SettlementService for testing
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) PendingDues(ctx context.Context, partyType, category string) ([]applc.PartyDuesResponse, error) {
	args := m.Called(ctx, partyType, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]applc.PartyDuesResponse), args.Error(1)
}

func (m *MockSettlementService) Create(ctx context.Context, req applc.CreateSettlementRequest) (*applc.SettlementResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applc.SettlementResponse), args.Error(1)
}

func (m *MockSettlementService) Finalize(ctx context.Context, id uuid.UUID, req applc.FinalizeSettlementRequest) (*applc.FinalizeResult, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applc.FinalizeResult), args.Error(1)
}

func (m *MockSettlementService) GetByID(ctx context.Context, id uuid.UUID) (*applc.SettlementResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applc.SettlementResponse), args.Error(1)
}

func (m *MockSettlementService) List(ctx context.Context, filter applc.SettlementListFilter) (shared.Paginated[applc.SettlementResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[applc.SettlementResponse]), args.Error(1)
}
