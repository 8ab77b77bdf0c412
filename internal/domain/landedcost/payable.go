package landedcost

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/partner"
	"github.com/tradelog/backend/internal/domain/shared"
)

// PayableCategory names one of the independently payable charges of a voucher
type PayableCategory string

const (
	CategoryFreight PayableCategory = "freight"
	CategoryPartner PayableCategory = "partner"
	CategoryPacking PayableCategory = "packing"
)

// Categories lists every payable category in storage order
var Categories = [...]PayableCategory{CategoryFreight, CategoryPartner, CategoryPacking}

// ParsePayableCategory validates a category name
func ParsePayableCategory(s string) (PayableCategory, error) {
	c := PayableCategory(s)
	if !c.IsValid() {
		return "", shared.NewValidationError("unknown payable category %q", s)
	}
	return c, nil
}

// IsValid returns true if the category is known
func (c PayableCategory) IsValid() bool {
	return c.index() >= 0
}

func (c PayableCategory) index() int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return -1
}

// PartyType returns the directory party type eligible to be paid for this category
func (c PayableCategory) PartyType() partner.PartyType {
	switch c {
	case CategoryFreight:
		return partner.PartyTypeLogistic
	case CategoryPacking:
		return partner.PartyTypePacking
	default:
		return partner.PartyTypePartner
	}
}

// CategoryForPartyType maps a payee party type to the category it collects
func CategoryForPartyType(t partner.PartyType) (PayableCategory, error) {
	switch t {
	case partner.PartyTypeLogistic:
		return CategoryFreight, nil
	case partner.PartyTypePartner:
		return CategoryPartner, nil
	case partner.PartyTypePacking:
		return CategoryPacking, nil
	}
	return "", shared.NewValidationError("party type %q does not collect landed-cost charges", t)
}

// PayableStatus is the state of a single payable
type PayableStatus string

const (
	PayableStatusPending PayableStatus = "pending"
	PayableStatusPaid    PayableStatus = "paid"
)

// Payable tracks who is owed one category of a voucher and whether it has been paid.
// The amount lives on the voucher; a payable only carries the state machine.
type Payable struct {
	Category  PayableCategory
	PartyID   *uuid.UUID
	Status    PayableStatus
	PaymentID *uuid.UUID
	PaidAt    *time.Time
}

// newPayable derives the initial status: pending only when there is a party
// and something to collect, paid otherwise.
func newPayable(category PayableCategory, partyID *uuid.UUID, amount decimal.Decimal) Payable {
	p := Payable{Category: category, PartyID: partyID}
	p.Status = derivedStatus(partyID, amount)
	return p
}

func derivedStatus(partyID *uuid.UUID, amount decimal.Decimal) PayableStatus {
	if partyID != nil && amount.IsPositive() {
		return PayableStatusPending
	}
	return PayableStatusPaid
}

// IsPending returns true if the payable still has something to collect
func (p Payable) IsPending() bool {
	return p.Status == PayableStatusPending
}

// IsSettled returns true if a real payment was recorded, as opposed to a
// payable that was never collectible.
func (p Payable) IsSettled() bool {
	return p.Status == PayableStatusPaid && p.PaymentID != nil
}

// canPay checks the pending→paid preconditions for the given amount
func (p Payable) canPay(amount decimal.Decimal) error {
	if p.PartyID == nil {
		return shared.NewInvalidStateError("%s payable has no responsible party", p.Category)
	}
	if !amount.IsPositive() {
		return shared.NewInvalidStateError("%s payable has nothing to collect", p.Category)
	}
	if p.Status != PayableStatusPending {
		return shared.NewInvalidStateError("%s payable is already paid", p.Category)
	}
	return nil
}

// markPaid is the terminal transition
func (p *Payable) markPaid(paymentID uuid.UUID, paidAt time.Time) {
	p.Status = PayableStatusPaid
	p.PaymentID = &paymentID
	p.PaidAt = &paidAt
}

// samePartyID compares optional ids
func samePartyID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
