package landedcost

import (
	"github.com/google/uuid"

	"github.com/tradelog/backend/internal/domain/landedcost"
)

// PartyDefaults maps a payable category to the party pre-assigned when a
// voucher charges that category without naming a party.
type PartyDefaults map[landedcost.PayableCategory]uuid.UUID

// Apply fills unassigned parties of charged categories
func (d PartyDefaults) Apply(in *landedcost.VoucherInput) {
	charges := in.Charges()
	amounts := map[landedcost.PayableCategory]bool{
		landedcost.CategoryFreight: charges.Freight.IsPositive(),
		landedcost.CategoryPartner: charges.PartnerProfit.IsPositive(),
		landedcost.CategoryPacking: charges.Packing.IsPositive(),
	}
	for category, partyID := range d {
		if partyID == uuid.Nil || !amounts[category] || in.PartyFor(category) != nil {
			continue
		}
		id := partyID
		in.SetPartyFor(category, &id)
	}
}
