package landedcost

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/shared"
)

// Event type names
const (
	EventTypeVoucherCreated     = "LandedCostVoucherCreated"
	EventTypeVoucherRevised     = "LandedCostVoucherRevised"
	EventTypeVoucherPayablePaid = "LandedCostVoucherPayablePaid"
	EventTypeVoucherDeleted     = "LandedCostVoucherDeleted"
)

// VoucherCreatedEvent is raised when a new voucher is created
type VoucherCreatedEvent struct {
	shared.BaseDomainEvent
	VoucherID     uuid.UUID       `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	GrandTotalKwd decimal.Decimal `json:"grand_total_kwd"`
	TotalQuantity int64           `json:"total_quantity"`
}

// NewVoucherCreatedEvent creates a new VoucherCreatedEvent
func NewVoucherCreatedEvent(v *Voucher) *VoucherCreatedEvent {
	return &VoucherCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVoucherCreated, AggregateTypeVoucher, v.ID),
		VoucherID:       v.ID,
		VoucherNumber:   v.VoucherNumber,
		GrandTotalKwd:   v.GrandTotalKwd,
		TotalQuantity:   v.TotalQuantity(),
	}
}

// VoucherRevisedEvent is raised when a voucher's inputs are replaced
type VoucherRevisedEvent struct {
	shared.BaseDomainEvent
	VoucherID     uuid.UUID       `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	GrandTotalKwd decimal.Decimal `json:"grand_total_kwd"`
}

// NewVoucherRevisedEvent creates a new VoucherRevisedEvent
func NewVoucherRevisedEvent(v *Voucher) *VoucherRevisedEvent {
	return &VoucherRevisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVoucherRevised, AggregateTypeVoucher, v.ID),
		VoucherID:       v.ID,
		VoucherNumber:   v.VoucherNumber,
		GrandTotalKwd:   v.GrandTotalKwd,
	}
}

// VoucherPayablePaidEvent is raised when one category of a voucher is paid
type VoucherPayablePaidEvent struct {
	shared.BaseDomainEvent
	VoucherID     uuid.UUID       `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	Category      PayableCategory `json:"category"`
	PartyID       uuid.UUID       `json:"party_id"`
	AmountKwd     decimal.Decimal `json:"amount_kwd"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaidAt        time.Time       `json:"paid_at"`
}

// NewVoucherPayablePaidEvent creates a new VoucherPayablePaidEvent
func NewVoucherPayablePaidEvent(v *Voucher, c PayableCategory) *VoucherPayablePaidEvent {
	p := v.Payable(c)
	e := &VoucherPayablePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVoucherPayablePaid, AggregateTypeVoucher, v.ID),
		VoucherID:       v.ID,
		VoucherNumber:   v.VoucherNumber,
		Category:        c,
		AmountKwd:       v.AmountFor(c),
	}
	if p.PartyID != nil {
		e.PartyID = *p.PartyID
	}
	if p.PaymentID != nil {
		e.PaymentID = *p.PaymentID
	}
	if p.PaidAt != nil {
		e.PaidAt = *p.PaidAt
	}
	return e
}

// VoucherDeletedEvent is raised when a voucher is removed
type VoucherDeletedEvent struct {
	shared.BaseDomainEvent
	VoucherID     uuid.UUID `json:"voucher_id"`
	VoucherNumber string    `json:"voucher_number"`
}

// NewVoucherDeletedEvent creates a new VoucherDeletedEvent
func NewVoucherDeletedEvent(v *Voucher) *VoucherDeletedEvent {
	return &VoucherDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVoucherDeleted, AggregateTypeVoucher, v.ID),
		VoucherID:       v.ID,
		VoucherNumber:   v.VoucherNumber,
	}
}
