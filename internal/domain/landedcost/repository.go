package landedcost

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tradelog/backend/internal/domain/shared"
)

// VoucherFilter defines filtering options for voucher queries
type VoucherFilter struct {
	shared.Filter
	Category *PayableCategory // With Status or PartyID, restricts to that category's payable
	Status   *PayableStatus
	PartyID  *uuid.UUID
	FromDate *time.Time // Voucher date range start
	ToDate   *time.Time // Voucher date range end
}

// VoucherRepository defines the interface for voucher persistence
type VoucherRepository interface {
	// FindByID finds a voucher with its line items; returns shared.ErrNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Voucher, error)

	// FindByIDs finds several vouchers, silently omitting unknown ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Voucher, error)

	// FindAll finds vouchers with filtering and pagination, line items not loaded
	FindAll(ctx context.Context, filter VoucherFilter) ([]Voucher, error)

	// Count counts vouchers matching the filter
	Count(ctx context.Context, filter VoucherFilter) (int64, error)

	// FindPendingByCategory returns every voucher whose category payable is
	// pending with a party and an amount to collect
	FindPendingByCategory(ctx context.Context, category PayableCategory) ([]Voucher, error)

	// Save inserts a new voucher with its line items
	Save(ctx context.Context, voucher *Voucher) error

	// SaveWithLock updates a voucher if its stored version is the previous one,
	// returning shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, voucher *Voucher) error

	// Delete removes a voucher and its line items
	Delete(ctx context.Context, id uuid.UUID) error
}
