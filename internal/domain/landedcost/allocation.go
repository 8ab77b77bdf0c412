package landedcost

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/domain/shared/valueobject"
)

// PurchaseOrderLineItem is a purchased line as served by the purchase order directory.
// It is the source of truth for quantity and base unit price.
type PurchaseOrderLineItem struct {
	ID              uuid.UUID
	PurchaseOrderID uuid.UUID
	ItemName        string
	ItemCategory    string
	Quantity        int64
	UnitPriceKwd    decimal.Decimal
}

// ChargeTotals are the voucher-level amounts spread across pooled units
type ChargeTotals struct {
	Freight       decimal.Decimal
	PartnerProfit decimal.Decimal
	Packing       decimal.Decimal
}

// Validate rejects negative totals; zero is allowed for every charge.
func (c ChargeTotals) Validate() error {
	for _, charge := range []struct {
		name   string
		amount decimal.Decimal
	}{
		{"freight", c.Freight},
		{"partner profit", c.PartnerProfit},
		{"packing charges", c.Packing},
	} {
		if charge.amount.IsNegative() {
			return shared.NewValidationError("%s cannot be negative", charge.name)
		}
	}
	return nil
}

// AllocatedLineItem is a pooled line with its share of every charge
type AllocatedLineItem struct {
	SourceLineItemID        uuid.UUID       `json:"source_line_item_id"`
	PurchaseOrderID         uuid.UUID       `json:"po_id"`
	ItemName                string          `json:"item_name"`
	ItemCategory            string          `json:"item_category"`
	Quantity                int64           `json:"quantity"`
	UnitPriceKwd            decimal.Decimal `json:"unit_price_kwd"`
	LineTotalKwd            decimal.Decimal `json:"line_total_kwd"`
	FreightPerUnitKwd       decimal.Decimal `json:"freight_per_unit_kwd"`
	PartnerProfitPerUnitKwd decimal.Decimal `json:"partner_profit_per_unit_kwd"`
	PackingPerUnitKwd       decimal.Decimal `json:"packing_per_unit_kwd"`
	LandedCostPerUnitKwd    decimal.Decimal `json:"landed_cost_per_unit_kwd"`
	TotalLandedCostKwd      decimal.Decimal `json:"total_landed_cost_kwd"`
}

// SourceLine rebuilds the directory view of an allocated line, used when the
// directory can no longer serve the original purchase orders.
func (a AllocatedLineItem) SourceLine() PurchaseOrderLineItem {
	return PurchaseOrderLineItem{
		ID:              a.SourceLineItemID,
		PurchaseOrderID: a.PurchaseOrderID,
		ItemName:        a.ItemName,
		ItemCategory:    a.ItemCategory,
		Quantity:        a.Quantity,
		UnitPriceKwd:    a.UnitPriceKwd,
	}
}

// AllocationResult holds the allocated lines and the uniform per-unit rates
type AllocationResult struct {
	Items          []AllocatedLineItem
	TotalQuantity  int64
	FreightPerUnit decimal.Decimal
	PartnerPerUnit decimal.Decimal
	PackingPerUnit decimal.Decimal
}

// Allocate spreads the charge totals over the pooled units.
//
// Allocation is strictly quantity weighted: every unit carries the same
// share regardless of its purchase order, category or price. With no units
// every share is zero and the landed cost equals the unit price.
// Charges must already be validated as non-negative.
func Allocate(items []PurchaseOrderLineItem, charges ChargeTotals) AllocationResult {
	var totalQty int64
	for _, item := range items {
		totalQty += item.Quantity
	}

	result := AllocationResult{
		Items:          make([]AllocatedLineItem, 0, len(items)),
		TotalQuantity:  totalQty,
		FreightPerUnit: decimal.Zero,
		PartnerPerUnit: decimal.Zero,
		PackingPerUnit: decimal.Zero,
	}
	if totalQty > 0 {
		result.FreightPerUnit = perUnit(charges.Freight, totalQty)
		result.PartnerPerUnit = perUnit(charges.PartnerProfit, totalQty)
		result.PackingPerUnit = perUnit(charges.Packing, totalQty)
	}

	for _, item := range items {
		qty := decimal.NewFromInt(item.Quantity)
		unitPrice := valueobject.Round3(item.UnitPriceKwd)
		landed := unitPrice.
			Add(result.FreightPerUnit).
			Add(result.PartnerPerUnit).
			Add(result.PackingPerUnit)

		result.Items = append(result.Items, AllocatedLineItem{
			SourceLineItemID:        item.ID,
			PurchaseOrderID:         item.PurchaseOrderID,
			ItemName:                item.ItemName,
			ItemCategory:            item.ItemCategory,
			Quantity:                item.Quantity,
			UnitPriceKwd:            unitPrice,
			LineTotalKwd:            valueobject.Round3(unitPrice.Mul(qty)),
			FreightPerUnitKwd:       result.FreightPerUnit,
			PartnerProfitPerUnitKwd: result.PartnerPerUnit,
			PackingPerUnitKwd:       result.PackingPerUnit,
			LandedCostPerUnitKwd:    landed,
			TotalLandedCostKwd:      valueobject.Round3(landed.Mul(qty)),
		})
	}
	return result
}

func perUnit(total decimal.Decimal, qty int64) decimal.Decimal {
	share, _ := valueobject.NewMoneyKWD(total).DivideRound(qty)
	return share.Amount()
}
