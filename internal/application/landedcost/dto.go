package landedcost

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/settlement"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/domain/shared/valueobject"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// ==================== Voucher DTOs ====================

// VoucherRequest is the input of both create and update
type VoucherRequest struct {
	PurchaseOrderIDs  []uuid.UUID       `json:"purchase_order_ids" binding:"required,min=1"`
	VoucherDate       string            `json:"voucher_date" binding:"required,datetime=2006-01-02"`
	HKToDXBKwd        valueobject.Money `json:"hk_to_dxb_kwd" binding:"money"`
	DXBToKWIKwd       valueobject.Money `json:"dxb_to_kwi_kwd" binding:"money"`
	PartnerProfitKwd  valueobject.Money `json:"total_partner_profit_kwd" binding:"money"`
	PackingChargesKwd valueobject.Money `json:"packing_charges_kwd" binding:"money"`
	FreightPartyID    *uuid.UUID        `json:"freight_party_id"`
	PartnerPartyID    *uuid.UUID        `json:"partner_party_id"`
	PackingPartyID    *uuid.UUID        `json:"packing_party_id"`
	Notes             string            `json:"notes" binding:"max=2000"`
}

// ToInput converts the request into the domain input
func (r VoucherRequest) ToInput() (landedcost.VoucherInput, error) {
	date, err := time.Parse(DateLayout, r.VoucherDate)
	if err != nil {
		return landedcost.VoucherInput{}, shared.NewValidationError("voucher date %q must be YYYY-MM-DD", r.VoucherDate)
	}
	return landedcost.VoucherInput{
		PurchaseOrderIDs:  r.PurchaseOrderIDs,
		VoucherDate:       date,
		HKToDXBKwd:        r.HKToDXBKwd.Amount(),
		DXBToKWIKwd:       r.DXBToKWIKwd.Amount(),
		PartnerProfitKwd:  r.PartnerProfitKwd.Amount(),
		PackingChargesKwd: r.PackingChargesKwd.Amount(),
		FreightPartyID:    r.FreightPartyID,
		PartnerPartyID:    r.PartnerPartyID,
		PackingPartyID:    r.PackingPartyID,
		Notes:             r.Notes,
	}, nil
}

// AllocationPreviewRequest asks for an allocation without persisting anything
type AllocationPreviewRequest struct {
	PurchaseOrderIDs  []uuid.UUID       `json:"purchase_order_ids"`
	HKToDXBKwd        valueobject.Money `json:"hk_to_dxb_kwd" binding:"money"`
	DXBToKWIKwd       valueobject.Money `json:"dxb_to_kwi_kwd" binding:"money"`
	PartnerProfitKwd  valueobject.Money `json:"total_partner_profit_kwd" binding:"money"`
	PackingChargesKwd valueobject.Money `json:"packing_charges_kwd" binding:"money"`
}

// PayCategoryRequest carries the payment details of a single payable
type PayCategoryRequest struct {
	PaymentDate      string `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	AccountReference string `json:"account_reference" binding:"max=100"`
	Notes            string `json:"notes" binding:"max=2000"`
}

// VoucherListFilter is the query of the voucher list
type VoucherListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=voucher_number voucher_date grand_total_kwd created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"max=100"`
	Category string `form:"category" binding:"omitempty,oneof=freight partner packing"`
	Status   string `form:"status" binding:"omitempty,oneof=pending paid"`
	PartyID  string `form:"party_id" binding:"omitempty,uuid"`
}

// AllocatedLineResponse is one allocated line item
type AllocatedLineResponse struct {
	SourceLineItemID        uuid.UUID         `json:"source_line_item_id"`
	PurchaseOrderID         uuid.UUID         `json:"po_id"`
	ItemName                string            `json:"item_name"`
	ItemCategory            string            `json:"item_category"`
	Quantity                int64             `json:"quantity"`
	UnitPriceKwd            valueobject.Money `json:"unit_price_kwd"`
	LineTotalKwd            valueobject.Money `json:"line_total_kwd"`
	FreightPerUnitKwd       valueobject.Money `json:"freight_per_unit_kwd"`
	PartnerProfitPerUnitKwd valueobject.Money `json:"partner_profit_per_unit_kwd"`
	PackingPerUnitKwd       valueobject.Money `json:"packing_per_unit_kwd"`
	LandedCostPerUnitKwd    valueobject.Money `json:"landed_cost_per_unit_kwd"`
	TotalLandedCostKwd      valueobject.Money `json:"total_landed_cost_kwd"`
}

// PayableResponse is the state of one payable
type PayableResponse struct {
	Category  landedcost.PayableCategory `json:"category"`
	PartyID   *uuid.UUID                 `json:"party_id"`
	AmountKwd valueobject.Money          `json:"amount_kwd"`
	Status    landedcost.PayableStatus   `json:"status"`
	PaymentID *uuid.UUID                 `json:"payment_id,omitempty"`
	PaidAt    *time.Time                 `json:"paid_at,omitempty"`
}

// VoucherResponse is the full voucher view
type VoucherResponse struct {
	ID                    uuid.UUID                `json:"id"`
	VoucherNumber         string                   `json:"voucher_number"`
	VoucherDate           string                   `json:"voucher_date"`
	PurchaseOrderIDs      []uuid.UUID              `json:"purchase_order_ids"`
	HKToDXBKwd            valueobject.Money        `json:"hk_to_dxb_kwd"`
	DXBToKWIKwd           valueobject.Money        `json:"dxb_to_kwi_kwd"`
	TotalFreightKwd       valueobject.Money        `json:"total_freight_kwd"`
	TotalPartnerProfitKwd valueobject.Money        `json:"total_partner_profit_kwd"`
	PackingChargesKwd     valueobject.Money        `json:"packing_charges_kwd"`
	GrandTotalKwd         valueobject.Money        `json:"grand_total_kwd"`
	FreightPartyID        *uuid.UUID               `json:"freight_party_id"`
	PartnerPartyID        *uuid.UUID               `json:"partner_party_id"`
	PackingPartyID        *uuid.UUID               `json:"packing_party_id"`
	PayableStatus         landedcost.PayableStatus `json:"payable_status"`
	PartnerPayableStatus  landedcost.PayableStatus `json:"partner_payable_status"`
	PackingPayableStatus  landedcost.PayableStatus `json:"packing_payable_status"`
	Payables              []PayableResponse        `json:"payables"`
	LineItems             []AllocatedLineResponse  `json:"line_items"`
	Notes                 string                   `json:"notes,omitempty"`
	Version               int                      `json:"version"`
	CreatedAt             time.Time                `json:"created_at"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

// AllocationPreviewResponse is the result of a preview allocation
type AllocationPreviewResponse struct {
	TotalQuantity  int64                   `json:"total_quantity"`
	FreightPerUnit valueobject.Money       `json:"freight_per_unit_kwd"`
	PartnerPerUnit valueobject.Money       `json:"partner_profit_per_unit_kwd"`
	PackingPerUnit valueobject.Money       `json:"packing_per_unit_kwd"`
	LineItems      []AllocatedLineResponse `json:"line_items"`
}

func toLineResponses(items []landedcost.AllocatedLineItem) []AllocatedLineResponse {
	out := make([]AllocatedLineResponse, 0, len(items))
	for _, item := range items {
		out = append(out, AllocatedLineResponse{
			SourceLineItemID:        item.SourceLineItemID,
			PurchaseOrderID:         item.PurchaseOrderID,
			ItemName:                item.ItemName,
			ItemCategory:            item.ItemCategory,
			Quantity:                item.Quantity,
			UnitPriceKwd:            valueobject.NewMoneyKWD(item.UnitPriceKwd),
			LineTotalKwd:            valueobject.NewMoneyKWD(item.LineTotalKwd),
			FreightPerUnitKwd:       valueobject.NewMoneyKWD(item.FreightPerUnitKwd),
			PartnerProfitPerUnitKwd: valueobject.NewMoneyKWD(item.PartnerProfitPerUnitKwd),
			PackingPerUnitKwd:       valueobject.NewMoneyKWD(item.PackingPerUnitKwd),
			LandedCostPerUnitKwd:    valueobject.NewMoneyKWD(item.LandedCostPerUnitKwd),
			TotalLandedCostKwd:      valueobject.NewMoneyKWD(item.TotalLandedCostKwd),
		})
	}
	return out
}

// ToVoucherResponse converts a voucher to its response view
func ToVoucherResponse(v *landedcost.Voucher) VoucherResponse {
	payables := make([]PayableResponse, 0, len(landedcost.Categories))
	for _, c := range landedcost.Categories {
		p := v.Payable(c)
		payables = append(payables, PayableResponse{
			Category:  c,
			PartyID:   p.PartyID,
			AmountKwd: valueobject.NewMoneyKWD(v.AmountFor(c)),
			Status:    p.Status,
			PaymentID: p.PaymentID,
			PaidAt:    p.PaidAt,
		})
	}
	return VoucherResponse{
		ID:                    v.ID,
		VoucherNumber:         v.VoucherNumber,
		VoucherDate:           v.VoucherDate.Format(DateLayout),
		PurchaseOrderIDs:      v.PurchaseOrderIDs,
		HKToDXBKwd:            valueobject.NewMoneyKWD(v.HKToDXBKwd),
		DXBToKWIKwd:           valueobject.NewMoneyKWD(v.DXBToKWIKwd),
		TotalFreightKwd:       valueobject.NewMoneyKWD(v.TotalFreightKwd),
		TotalPartnerProfitKwd: valueobject.NewMoneyKWD(v.TotalPartnerProfitKwd),
		PackingChargesKwd:     valueobject.NewMoneyKWD(v.PackingChargesKwd),
		GrandTotalKwd:         valueobject.NewMoneyKWD(v.GrandTotalKwd),
		FreightPartyID:        v.PartyFor(landedcost.CategoryFreight),
		PartnerPartyID:        v.PartyFor(landedcost.CategoryPartner),
		PackingPartyID:        v.PartyFor(landedcost.CategoryPacking),
		PayableStatus:         v.Payable(landedcost.CategoryFreight).Status,
		PartnerPayableStatus:  v.Payable(landedcost.CategoryPartner).Status,
		PackingPayableStatus:  v.Payable(landedcost.CategoryPacking).Status,
		Payables:              payables,
		LineItems:             toLineResponses(v.LineItems),
		Notes:                 v.Notes,
		Version:               v.GetVersion(),
		CreatedAt:             v.CreatedAt,
		UpdatedAt:             v.UpdatedAt,
	}
}

// ToAllocationPreviewResponse converts an allocation result
func ToAllocationPreviewResponse(r landedcost.AllocationResult) AllocationPreviewResponse {
	return AllocationPreviewResponse{
		TotalQuantity:  r.TotalQuantity,
		FreightPerUnit: valueobject.NewMoneyKWD(r.FreightPerUnit),
		PartnerPerUnit: valueobject.NewMoneyKWD(r.PartnerPerUnit),
		PackingPerUnit: valueobject.NewMoneyKWD(r.PackingPerUnit),
		LineItems:      toLineResponses(r.Items),
	}
}

// ==================== Settlement DTOs ====================

// CreateSettlementRequest captures pending dues of one party
type CreateSettlementRequest struct {
	PartyType        string      `json:"party_type" binding:"required,oneof=partner packing logistic"`
	PartyID          uuid.UUID   `json:"party_id" binding:"required"`
	VoucherIDs       []uuid.UUID `json:"voucher_ids" binding:"required,min=1"`
	SettlementPeriod string      `json:"settlement_period" binding:"required,yyyymm"`
	SettlementDate   string      `json:"settlement_date" binding:"omitempty,datetime=2006-01-02"`
	Notes            string      `json:"notes" binding:"max=2000"`
}

// FinalizeSettlementRequest commits a pending settlement
type FinalizeSettlementRequest struct {
	AccountReference string `json:"account_reference" binding:"required,max=100"`
	Notes            string `json:"notes" binding:"max=2000"`
}

// SettlementListFilter is the query of the settlement list
type SettlementListFilter struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	PartyType string `form:"party_type" binding:"omitempty,oneof=partner packing logistic"`
	PartyID   string `form:"party_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=pending finalized"`
	Period    string `form:"period" binding:"omitempty,yyyymm"`
}

// SettlementLineResponse is one captured voucher
type SettlementLineResponse struct {
	VoucherID     uuid.UUID         `json:"voucher_id"`
	VoucherNumber string            `json:"voucher_number"`
	AmountKwd     valueobject.Money `json:"amount_kwd"`
}

// SettlementResponse is the full settlement view
type SettlementResponse struct {
	ID               uuid.UUID                   `json:"id"`
	SettlementNumber string                      `json:"settlement_number"`
	PartyType        string                      `json:"party_type"`
	PartyID          uuid.UUID                   `json:"party_id"`
	PartyName        string                      `json:"party_name"`
	Category         landedcost.PayableCategory  `json:"category"`
	SettlementPeriod string                      `json:"settlement_period"`
	SettlementDate   string                      `json:"settlement_date"`
	TotalAmountKwd   valueobject.Money           `json:"total_amount_kwd"`
	VoucherIDs       []uuid.UUID                 `json:"voucher_ids"`
	Lines            []SettlementLineResponse    `json:"lines"`
	Status           settlement.Status           `json:"status"`
	AccountReference string                      `json:"account_reference,omitempty"`
	Notes            string                      `json:"notes,omitempty"`
	FinalizedAt      *time.Time                  `json:"finalized_at,omitempty"`
	SkippedVouchers  []settlement.SkippedVoucher `json:"skipped_vouchers,omitempty"`
	CreatedAt        time.Time                   `json:"created_at"`
}

// FinalizeResult is the outcome of a finalize: the committed settlement plus
// the captured vouchers that could not be paid
type FinalizeResult struct {
	Settlement        SettlementResponse `json:"settlement"`
	SkippedVoucherIDs []uuid.UUID        `json:"skipped_voucher_ids"`
}

// VoucherDueResponse is one voucher inside a party's dues
type VoucherDueResponse struct {
	VoucherID     uuid.UUID         `json:"voucher_id"`
	VoucherNumber string            `json:"voucher_number"`
	VoucherDate   string            `json:"voucher_date"`
	AmountKwd     valueobject.Money `json:"amount_kwd"`
}

// PartyDuesResponse is what one party is owed for a category
type PartyDuesResponse struct {
	PartyID        uuid.UUID                  `json:"party_id"`
	PartyName      string                     `json:"party_name"`
	Category       landedcost.PayableCategory `json:"category"`
	VoucherCount   int                        `json:"voucher_count"`
	TotalAmountKwd valueobject.Money          `json:"total_amount_kwd"`
	Vouchers       []VoucherDueResponse       `json:"vouchers"`
}

// ToSettlementResponse converts a settlement to its response view
func ToSettlementResponse(s *settlement.Settlement) SettlementResponse {
	lines := make([]SettlementLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, SettlementLineResponse{
			VoucherID:     l.VoucherID,
			VoucherNumber: l.VoucherNumber,
			AmountKwd:     valueobject.NewMoneyKWD(l.AmountKwd),
		})
	}
	return SettlementResponse{
		ID:               s.ID,
		SettlementNumber: s.SettlementNumber,
		PartyType:        string(s.PartyType),
		PartyID:          s.PartyID,
		PartyName:        s.PartyName,
		Category:         s.Category,
		SettlementPeriod: s.SettlementPeriod,
		SettlementDate:   s.SettlementDate.Format(DateLayout),
		TotalAmountKwd:   valueobject.NewMoneyKWD(s.TotalAmountKwd),
		VoucherIDs:       s.VoucherIDs(),
		Lines:            lines,
		Status:           s.Status,
		AccountReference: s.AccountReference,
		Notes:            s.Notes,
		FinalizedAt:      s.FinalizedAt,
		SkippedVouchers:  s.SkippedVouchers,
		CreatedAt:        s.CreatedAt,
	}
}

// ToPartyDuesResponse converts the dues projection
func ToPartyDuesResponse(dues []settlement.PartyDues) []PartyDuesResponse {
	out := make([]PartyDuesResponse, 0, len(dues))
	for _, g := range dues {
		vouchers := make([]VoucherDueResponse, 0, len(g.Vouchers))
		for _, v := range g.Vouchers {
			vouchers = append(vouchers, VoucherDueResponse{
				VoucherID:     v.VoucherID,
				VoucherNumber: v.VoucherNumber,
				VoucherDate:   v.VoucherDate.Format(DateLayout),
				AmountKwd:     valueobject.NewMoneyKWD(v.AmountKwd),
			})
		}
		out = append(out, PartyDuesResponse{
			PartyID:        g.PartyID,
			PartyName:      g.PartyName,
			Category:       g.Category,
			VoucherCount:   g.VoucherCount,
			TotalAmountKwd: valueobject.NewMoneyKWD(g.TotalAmountKwd),
			Vouchers:       vouchers,
		})
	}
	return out
}
