package landedcost

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/domain/shared/valueobject"
)

// AggregateTypeVoucher is the aggregate type name used in domain events
const AggregateTypeVoucher = "LandedCostVoucher"

// VoucherInput carries everything a user supplies when creating or revising a voucher
type VoucherInput struct {
	PurchaseOrderIDs  []uuid.UUID
	VoucherDate       time.Time
	HKToDXBKwd        decimal.Decimal
	DXBToKWIKwd       decimal.Decimal
	PartnerProfitKwd  decimal.Decimal
	PackingChargesKwd decimal.Decimal
	FreightPartyID    *uuid.UUID
	PartnerPartyID    *uuid.UUID
	PackingPartyID    *uuid.UUID
	Notes             string
}

// Charges returns the totals handed to the allocation calculator
func (in VoucherInput) Charges() ChargeTotals {
	return ChargeTotals{
		Freight:       valueobject.Round3(in.HKToDXBKwd).Add(valueobject.Round3(in.DXBToKWIKwd)),
		PartnerProfit: valueobject.Round3(in.PartnerProfitKwd),
		Packing:       valueobject.Round3(in.PackingChargesKwd),
	}
}

// PartyFor returns the party assigned to a category
func (in VoucherInput) PartyFor(c PayableCategory) *uuid.UUID {
	switch c {
	case CategoryFreight:
		return in.FreightPartyID
	case CategoryPartner:
		return in.PartnerPartyID
	default:
		return in.PackingPartyID
	}
}

// SetPartyFor assigns the party of a category
func (in *VoucherInput) SetPartyFor(c PayableCategory, partyID *uuid.UUID) {
	switch c {
	case CategoryFreight:
		in.FreightPartyID = partyID
	case CategoryPartner:
		in.PartnerPartyID = partyID
	default:
		in.PackingPartyID = partyID
	}
}

// Validate checks the input before anything is looked up or persisted.
// Freight is the only payable whose party is mandatory: a positive freight
// charge without a freight party is rejected, while partner and packing
// amounts may be recorded before their party is known.
func (in VoucherInput) Validate() error {
	if len(in.PurchaseOrderIDs) == 0 {
		return shared.NewValidationError("no purchase order selected")
	}
	seen := make(map[uuid.UUID]struct{}, len(in.PurchaseOrderIDs))
	for _, id := range in.PurchaseOrderIDs {
		if id == uuid.Nil {
			return shared.NewValidationError("purchase order id cannot be empty")
		}
		if _, dup := seen[id]; dup {
			return shared.NewValidationError("purchase order %s selected twice", id)
		}
		seen[id] = struct{}{}
	}
	if in.VoucherDate.IsZero() {
		return shared.NewValidationError("voucher date is required")
	}
	if in.HKToDXBKwd.IsNegative() {
		return shared.NewValidationError("HK to DXB freight cannot be negative")
	}
	if in.DXBToKWIKwd.IsNegative() {
		return shared.NewValidationError("DXB to KWI freight cannot be negative")
	}
	charges := in.Charges()
	if err := charges.Validate(); err != nil {
		return err
	}
	if charges.Freight.IsPositive() && in.FreightPartyID == nil {
		return shared.NewValidationError("freight party is required when freight is charged")
	}
	return nil
}

func validateLines(lines []PurchaseOrderLineItem) error {
	for _, line := range lines {
		if line.Quantity < 0 {
			return shared.NewValidationError("line item %q has negative quantity", line.ItemName)
		}
		if line.UnitPriceKwd.IsNegative() {
			return shared.NewValidationError("line item %q has negative unit price", line.ItemName)
		}
	}
	return nil
}

// Voucher is the aggregate root combining landed-cost charges, the per-item
// allocation and the three payables for one or more purchase orders.
type Voucher struct {
	shared.BaseAggregateRoot
	VoucherNumber         string
	VoucherDate           time.Time
	PurchaseOrderIDs      []uuid.UUID // first one is the primary order
	HKToDXBKwd            decimal.Decimal
	DXBToKWIKwd           decimal.Decimal
	TotalFreightKwd       decimal.Decimal
	TotalPartnerProfitKwd decimal.Decimal
	PackingChargesKwd     decimal.Decimal
	GrandTotalKwd         decimal.Decimal
	LineItems             []AllocatedLineItem
	Payables              [len(Categories)]Payable
	Notes                 string
}

// NewVoucher allocates the pooled lines and derives the initial payable statuses
func NewVoucher(voucherNumber string, in VoucherInput, lines []PurchaseOrderLineItem) (*Voucher, error) {
	if voucherNumber == "" {
		return nil, shared.NewValidationError("voucher number cannot be empty")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	v := &Voucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VoucherNumber:     voucherNumber,
	}
	v.apply(in, lines)
	for _, c := range Categories {
		v.Payables[c.index()] = newPayable(c, in.PartyFor(c), v.AmountFor(c))
	}

	v.AddDomainEvent(NewVoucherCreatedEvent(v))
	return v, nil
}

// Revise replaces the inputs of an existing voucher and re-runs the allocation.
// Categories that were settled by a real payment keep their state and may not
// change party or amount; every other category is re-derived.
func (v *Voucher) Revise(in VoucherInput, lines []PurchaseOrderLineItem) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := validateLines(lines); err != nil {
		return err
	}

	charges := in.Charges()
	newAmounts := map[PayableCategory]decimal.Decimal{
		CategoryFreight: charges.Freight,
		CategoryPartner: charges.PartnerProfit,
		CategoryPacking: charges.Packing,
	}
	for _, c := range Categories {
		p := v.Payable(c)
		if !p.IsSettled() {
			continue
		}
		if !samePartyID(p.PartyID, in.PartyFor(c)) {
			return shared.NewInvalidStateError("%s payable is already paid, its party cannot change", c)
		}
		if !newAmounts[c].Equal(v.AmountFor(c)) {
			return shared.NewInvalidStateError("%s payable is already paid, its amount cannot change", c)
		}
	}

	v.apply(in, lines)
	for _, c := range Categories {
		if v.Payable(c).IsSettled() {
			continue
		}
		v.Payables[c.index()] = newPayable(c, in.PartyFor(c), v.AmountFor(c))
	}

	v.Touch(time.Now())
	v.AddDomainEvent(NewVoucherRevisedEvent(v))
	return nil
}

func (v *Voucher) apply(in VoucherInput, lines []PurchaseOrderLineItem) {
	charges := in.Charges()
	v.VoucherDate = in.VoucherDate
	v.PurchaseOrderIDs = append([]uuid.UUID(nil), in.PurchaseOrderIDs...)
	v.HKToDXBKwd = valueobject.Round3(in.HKToDXBKwd)
	v.DXBToKWIKwd = valueobject.Round3(in.DXBToKWIKwd)
	v.TotalPartnerProfitKwd = charges.PartnerProfit
	v.PackingChargesKwd = charges.Packing
	v.Notes = in.Notes
	v.LineItems = Allocate(lines, charges).Items
	v.recalculateTotals()
}

// recalculateTotals keeps the derived totals in step with their components
func (v *Voucher) recalculateTotals() {
	v.TotalFreightKwd = v.HKToDXBKwd.Add(v.DXBToKWIKwd)
	v.GrandTotalKwd = v.TotalFreightKwd.Add(v.TotalPartnerProfitKwd).Add(v.PackingChargesKwd)
}

// AmountFor returns the stored total of a category
func (v *Voucher) AmountFor(c PayableCategory) decimal.Decimal {
	switch c {
	case CategoryFreight:
		return v.TotalFreightKwd
	case CategoryPartner:
		return v.TotalPartnerProfitKwd
	default:
		return v.PackingChargesKwd
	}
}

// Payable returns the payable of a category
func (v *Voucher) Payable(c PayableCategory) Payable {
	return v.Payables[c.index()]
}

// PartyFor returns the party responsible for a category
func (v *Voucher) PartyFor(c PayableCategory) *uuid.UUID {
	return v.Payable(c).PartyID
}

// PrimaryPurchaseOrderID returns the first selected purchase order
func (v *Voucher) PrimaryPurchaseOrderID() uuid.UUID {
	if len(v.PurchaseOrderIDs) == 0 {
		return uuid.Nil
	}
	return v.PurchaseOrderIDs[0]
}

// TotalQuantity returns the pooled unit count
func (v *Voucher) TotalQuantity() int64 {
	var q int64
	for _, item := range v.LineItems {
		q += item.Quantity
	}
	return q
}

// PersistedLines rebuilds the source lines from the stored allocation
func (v *Voucher) PersistedLines() []PurchaseOrderLineItem {
	lines := make([]PurchaseOrderLineItem, 0, len(v.LineItems))
	for _, item := range v.LineItems {
		lines = append(lines, item.SourceLine())
	}
	return lines
}

// HasSamePurchaseOrders reports whether ids select the same orders as the voucher
func (v *Voucher) HasSamePurchaseOrders(ids []uuid.UUID) bool {
	if len(ids) != len(v.PurchaseOrderIDs) {
		return false
	}
	current := make(map[uuid.UUID]struct{}, len(v.PurchaseOrderIDs))
	for _, id := range v.PurchaseOrderIDs {
		current[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := current[id]; !ok {
			return false
		}
	}
	return true
}

// CanPay checks whether a category can move to paid
func (v *Voucher) CanPay(c PayableCategory) error {
	if !c.IsValid() {
		return shared.NewValidationError("unknown payable category %q", c)
	}
	return v.Payable(c).canPay(v.AmountFor(c))
}

// Pay marks a category as paid by the given payment record
func (v *Voucher) Pay(c PayableCategory, paymentID uuid.UUID, paidAt time.Time) error {
	if err := v.CanPay(c); err != nil {
		return err
	}
	if paymentID == uuid.Nil {
		return shared.NewValidationError("payment id is required")
	}

	v.Payables[c.index()].markPaid(paymentID, paidAt)
	v.Touch(time.Now())
	v.AddDomainEvent(NewVoucherPayablePaidEvent(v, c))
	return nil
}

// HasSettledPayables returns true if any category was settled by a real payment
func (v *Voucher) HasSettledPayables() bool {
	for _, p := range v.Payables {
		if p.IsSettled() {
			return true
		}
	}
	return false
}

// MarkDeleted guards deletion and records the event.
// A voucher with settled payables cannot be removed without desynchronizing the ledger.
func (v *Voucher) MarkDeleted() error {
	if v.HasSettledPayables() {
		return shared.NewConflictError("voucher %s has paid payables and cannot be deleted", v.VoucherNumber)
	}
	v.AddDomainEvent(NewVoucherDeletedEvent(v))
	return nil
}
