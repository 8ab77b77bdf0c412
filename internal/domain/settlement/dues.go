package settlement

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/landedcost"
)

// VoucherDue is one voucher's contribution to a party's pending dues
type VoucherDue struct {
	VoucherID     uuid.UUID
	VoucherNumber string
	VoucherDate   time.Time
	AmountKwd     decimal.Decimal
}

// PartyDues is the read-only projection of what a party is owed for one category
type PartyDues struct {
	PartyID        uuid.UUID
	PartyName      string
	Category       landedcost.PayableCategory
	VoucherCount   int
	TotalAmountKwd decimal.Decimal
	Vouchers       []VoucherDue
}

// GroupPendingDues groups the collectible vouchers of a category by party.
// Vouchers that are not pending, have no party or nothing to collect are ignored.
// Groups are ordered by party name, then party id; vouchers keep input order.
func GroupPendingDues(category landedcost.PayableCategory, vouchers []landedcost.Voucher, partyNames map[uuid.UUID]string) []PartyDues {
	groups := make(map[uuid.UUID]*PartyDues)
	order := make([]uuid.UUID, 0)

	for i := range vouchers {
		v := &vouchers[i]
		if v.CanPay(category) != nil {
			continue
		}
		partyID := *v.PartyFor(category)
		g, ok := groups[partyID]
		if !ok {
			g = &PartyDues{
				PartyID:        partyID,
				PartyName:      partyNames[partyID],
				Category:       category,
				TotalAmountKwd: decimal.Zero,
			}
			groups[partyID] = g
			order = append(order, partyID)
		}
		amount := v.AmountFor(category)
		g.Vouchers = append(g.Vouchers, VoucherDue{
			VoucherID:     v.ID,
			VoucherNumber: v.VoucherNumber,
			VoucherDate:   v.VoucherDate,
			AmountKwd:     amount,
		})
		g.VoucherCount++
		g.TotalAmountKwd = g.TotalAmountKwd.Add(amount)
	}

	result := make([]PartyDues, 0, len(order))
	for _, id := range order {
		result = append(result, *groups[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].PartyName != result[j].PartyName {
			return result[i].PartyName < result[j].PartyName
		}
		return result[i].PartyID.String() < result[j].PartyID.String()
	})
	return result
}
