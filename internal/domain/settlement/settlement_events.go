package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/shared"
)

// Event type names
const (
	EventTypeSettlementCreated   = "SettlementCreated"
	EventTypeSettlementFinalized = "SettlementFinalized"
)

// SettlementCreatedEvent is raised when a settlement captures its vouchers
type SettlementCreatedEvent struct {
	shared.BaseDomainEvent
	SettlementID     uuid.UUID                  `json:"settlement_id"`
	SettlementNumber string                     `json:"settlement_number"`
	PartyID          uuid.UUID                  `json:"party_id"`
	Category         landedcost.PayableCategory `json:"category"`
	TotalAmountKwd   decimal.Decimal            `json:"total_amount_kwd"`
	VoucherCount     int                        `json:"voucher_count"`
}

// NewSettlementCreatedEvent creates a new SettlementCreatedEvent
func NewSettlementCreatedEvent(s *Settlement) *SettlementCreatedEvent {
	return &SettlementCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSettlementCreated, AggregateTypeSettlement, s.ID),
		SettlementID:     s.ID,
		SettlementNumber: s.SettlementNumber,
		PartyID:          s.PartyID,
		Category:         s.Category,
		TotalAmountKwd:   s.TotalAmountKwd,
		VoucherCount:     len(s.Lines),
	}
}

// SettlementFinalizedEvent is raised when a settlement is finalized
type SettlementFinalizedEvent struct {
	shared.BaseDomainEvent
	SettlementID      uuid.UUID       `json:"settlement_id"`
	SettlementNumber  string          `json:"settlement_number"`
	PartyID           uuid.UUID       `json:"party_id"`
	TotalAmountKwd    decimal.Decimal `json:"total_amount_kwd"`
	AccountReference  string          `json:"account_reference"`
	SkippedVoucherIDs []uuid.UUID     `json:"skipped_voucher_ids"`
	FinalizedAt       time.Time       `json:"finalized_at"`
}

// NewSettlementFinalizedEvent creates a new SettlementFinalizedEvent
func NewSettlementFinalizedEvent(s *Settlement) *SettlementFinalizedEvent {
	skipped := make([]uuid.UUID, 0, len(s.SkippedVouchers))
	for _, sv := range s.SkippedVouchers {
		skipped = append(skipped, sv.VoucherID)
	}
	e := &SettlementFinalizedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeSettlementFinalized, AggregateTypeSettlement, s.ID),
		SettlementID:      s.ID,
		SettlementNumber:  s.SettlementNumber,
		PartyID:           s.PartyID,
		TotalAmountKwd:    s.TotalAmountKwd,
		AccountReference:  s.AccountReference,
		SkippedVoucherIDs: skipped,
	}
	if s.FinalizedAt != nil {
		e.FinalizedAt = *s.FinalizedAt
	}
	return e
}
