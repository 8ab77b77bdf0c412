package settlement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/partner"
	"github.com/tradelog/backend/internal/domain/shared"
)

// AggregateTypeSettlement is the aggregate type name used in domain events
const AggregateTypeSettlement = "Settlement"

// PeriodLayout is the layout of a settlement period (YYYY-MM)
const PeriodLayout = "2006-01"

// Status represents the status of a settlement
type Status string

const (
	StatusPending   Status = "pending"
	StatusFinalized Status = "finalized"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusFinalized
}

// Line is the snapshot of one voucher's due taken when the settlement is created
type Line struct {
	VoucherID     uuid.UUID
	VoucherNumber string
	AmountKwd     decimal.Decimal
}

// SkippedVoucher is a captured voucher that could not be paid at finalize time
type SkippedVoucher struct {
	VoucherID     uuid.UUID `json:"voucher_id"`
	VoucherNumber string    `json:"voucher_number"`
	Reason        string    `json:"reason"`
}

// Settlement batches one party's dues for one category across many vouchers.
// The voucher set and amounts are fixed when it is created.
type Settlement struct {
	shared.BaseAggregateRoot
	SettlementNumber string
	PartyType        partner.PartyType
	PartyID          uuid.UUID
	PartyName        string
	Category         landedcost.PayableCategory
	SettlementPeriod string
	SettlementDate   time.Time
	TotalAmountKwd   decimal.Decimal
	Lines            []Line
	Status           Status
	AccountReference string
	Notes            string
	FinalizedAt      *time.Time
	SkippedVouchers  []SkippedVoucher
}

// ValidatePeriod checks the YYYY-MM format
func ValidatePeriod(period string) error {
	if len(period) != len(PeriodLayout) {
		return shared.NewValidationError("settlement period %q must be YYYY-MM", period)
	}
	if _, err := time.Parse(PeriodLayout, period); err != nil {
		return shared.NewValidationError("settlement period %q must be YYYY-MM", period)
	}
	return nil
}

// NewSettlement captures the given lines for a payee
func NewSettlement(number string, payee partner.Party, period string, date time.Time, lines []Line) (*Settlement, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("settlement number cannot be empty")
	}
	category, err := landedcost.CategoryForPartyType(payee.Type)
	if err != nil {
		return nil, err
	}
	if payee.ID == uuid.Nil {
		return nil, shared.NewValidationError("party is required")
	}
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("at least one voucher is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.VoucherID]; dup {
			return nil, shared.NewValidationError("voucher %s listed twice", l.VoucherNumber)
		}
		seen[l.VoucherID] = struct{}{}
		if !l.AmountKwd.IsPositive() {
			return nil, shared.NewValidationError("voucher %s has nothing to settle", l.VoucherNumber)
		}
	}
	if date.IsZero() {
		date = time.Now()
	}

	s := &Settlement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SettlementNumber:  number,
		PartyType:         payee.Type,
		PartyID:           payee.ID,
		PartyName:         payee.Name,
		Category:          category,
		SettlementPeriod:  period,
		SettlementDate:    date,
		Lines:             append([]Line(nil), lines...),
		Status:            StatusPending,
	}
	s.recalculateTotal()

	s.AddDomainEvent(NewSettlementCreatedEvent(s))
	return s, nil
}

func (s *Settlement) recalculateTotal() {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.AmountKwd)
	}
	s.TotalAmountKwd = total
}

// VoucherIDs returns the captured voucher ids in capture order
func (s *Settlement) VoucherIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Lines))
	for _, l := range s.Lines {
		ids = append(ids, l.VoucherID)
	}
	return ids
}

// Includes returns true if the voucher was captured
func (s *Settlement) Includes(voucherID uuid.UUID) bool {
	for _, l := range s.Lines {
		if l.VoucherID == voucherID {
			return true
		}
	}
	return false
}

// IsEmpty returns true once every captured voucher was excluded
func (s *Settlement) IsEmpty() bool {
	return len(s.Lines) == 0
}

// IsPending returns true if the settlement can still be finalized
func (s *Settlement) IsPending() bool {
	return s.Status == StatusPending
}

// Finalize closes the settlement after its vouchers were paid.
// skipped lists the captured vouchers whose payment failed.
func (s *Settlement) Finalize(accountReference, notes string, skipped []SkippedVoucher) error {
	if !s.IsPending() {
		return shared.NewInvalidStateError("settlement %s is already %s", s.SettlementNumber, s.Status)
	}
	if strings.TrimSpace(accountReference) == "" {
		return shared.NewValidationError("account reference is required to finalize a settlement")
	}
	if s.IsEmpty() {
		return shared.NewInvalidStateError("settlement %s has no vouchers left to settle", s.SettlementNumber)
	}

	now := time.Now()
	s.Status = StatusFinalized
	s.AccountReference = accountReference
	if notes != "" {
		s.Notes = notes
	}
	s.SkippedVouchers = append([]SkippedVoucher(nil), skipped...)
	s.FinalizedAt = &now
	s.Touch(now)

	s.AddDomainEvent(NewSettlementFinalizedEvent(s))
	return nil
}

// ExcludeVoucher drops a deleted voucher from a pending settlement.
// Returns false when the voucher was not captured. Excluding the last voucher
// leaves an empty settlement that the caller must remove.
func (s *Settlement) ExcludeVoucher(voucherID uuid.UUID) (bool, error) {
	if !s.Includes(voucherID) {
		return false, nil
	}
	if !s.IsPending() {
		return false, shared.NewConflictError("voucher is part of finalized settlement %s", s.SettlementNumber)
	}
	kept := s.Lines[:0]
	for _, l := range s.Lines {
		if l.VoucherID != voucherID {
			kept = append(kept, l)
		}
	}
	s.Lines = kept
	s.recalculateTotal()
	s.Touch(time.Now())
	return true, nil
}
