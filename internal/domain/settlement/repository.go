package settlement

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradelog/backend/internal/domain/partner"
	"github.com/tradelog/backend/internal/domain/shared"
)

// Filter defines filtering options for settlement queries
type Filter struct {
	shared.Filter
	PartyType *partner.PartyType
	PartyID   *uuid.UUID
	Status    *Status
	Period    string
}

// Repository defines the interface for settlement persistence
type Repository interface {
	// FindByID finds a settlement with its lines; returns shared.ErrNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Settlement, error)

	// FindAll finds settlements with filtering and pagination
	FindAll(ctx context.Context, filter Filter) ([]Settlement, error)

	// Count counts settlements matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// FindPendingByVoucher finds pending settlements that captured the voucher
	FindPendingByVoucher(ctx context.Context, voucherID uuid.UUID) ([]Settlement, error)

	// Save inserts a new settlement with its lines
	Save(ctx context.Context, s *Settlement) error

	// SaveWithLock updates a settlement and replaces its lines if the stored
	// version is the previous one, returning shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, s *Settlement) error

	// Delete removes a pending settlement and its lines
	Delete(ctx context.Context, id uuid.UUID) error
}
