package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// ValidateSortOrder normalizes a direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// sortWhitelist is the set of orderable columns of one list endpoint.
// tieBreak is appended ascending so equal sort keys page deterministically.
type sortWhitelist struct {
	columns  map[string]bool
	fallback string
	tieBreak string
}

// orderBy builds the ORDER BY clause for a requested field and direction.
// Unknown fields fall back silently rather than failing the list.
func (w sortWhitelist) orderBy(field, dir string) clause.OrderBy {
	column := ValidateSortField(field, w.columns, w.fallback)
	cols := []clause.OrderByColumn{{
		Column: clause.Column{Name: column},
		Desc:   ValidateSortOrder(dir) == "DESC",
	}}
	if w.tieBreak != "" && w.tieBreak != column {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: w.tieBreak}})
	}
	return clause.OrderBy{Columns: cols}
}

// VoucherSortFields contains allowed sort fields for landed cost vouchers
var VoucherSortFields = map[string]bool{
	"id":                       true,
	"created_at":               true,
	"updated_at":               true,
	"voucher_number":           true,
	"voucher_date":             true,
	"total_freight_kwd":        true,
	"total_partner_profit_kwd": true,
	"packing_charges_kwd":      true,
	"grand_total_kwd":          true,
}

// SettlementSortFields contains allowed sort fields for settlements
var SettlementSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"settlement_number": true,
	"settlement_date":   true,
	"settlement_period": true,
	"party_name":        true,
	"status":            true,
	"total_amount_kwd":  true,
	"finalized_at":      true,
}

var (
	voucherSort    = sortWhitelist{columns: VoucherSortFields, fallback: "created_at", tieBreak: "voucher_number"}
	settlementSort = sortWhitelist{columns: SettlementSortFields, fallback: "created_at", tieBreak: "settlement_number"}
)
