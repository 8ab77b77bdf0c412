package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/shared"
)

// VoucherModel is the persistence model for the landed cost Voucher aggregate root.
// The three payables are flattened into prefixed columns.
type VoucherModel struct {
	AggregateModel
	VoucherNumber          string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	VoucherDate            time.Time                `gorm:"type:date;not null;index"`
	PrimaryPurchaseOrderID uuid.UUID                `gorm:"type:uuid;not null;index"`
	PurchaseOrderIDs       []uuid.UUID              `gorm:"type:jsonb;serializer:json;not null"`
	HKToDXBKwd             decimal.Decimal          `gorm:"column:hk_to_dxb_kwd;type:decimal(18,3);not null;default:0"`
	DXBToKWIKwd            decimal.Decimal          `gorm:"column:dxb_to_kwi_kwd;type:decimal(18,3);not null;default:0"`
	TotalFreightKwd        decimal.Decimal          `gorm:"type:decimal(18,3);not null;default:0"`
	TotalPartnerProfitKwd  decimal.Decimal          `gorm:"type:decimal(18,3);not null;default:0"`
	PackingChargesKwd      decimal.Decimal          `gorm:"type:decimal(18,3);not null;default:0"`
	GrandTotalKwd          decimal.Decimal          `gorm:"type:decimal(18,3);not null;default:0"`
	FreightPartyID         *uuid.UUID               `gorm:"type:uuid;index"`
	PayableStatus          landedcost.PayableStatus `gorm:"type:varchar(20);not null;default:'paid';index"`
	FreightPaymentID       *uuid.UUID               `gorm:"type:uuid"`
	FreightPaidAt          *time.Time
	PartnerPartyID         *uuid.UUID               `gorm:"type:uuid;index"`
	PartnerPayableStatus   landedcost.PayableStatus `gorm:"type:varchar(20);not null;default:'paid';index"`
	PartnerPaymentID       *uuid.UUID               `gorm:"type:uuid"`
	PartnerPaidAt          *time.Time
	PackingPartyID         *uuid.UUID               `gorm:"type:uuid;index"`
	PackingPayableStatus   landedcost.PayableStatus `gorm:"type:varchar(20);not null;default:'paid';index"`
	PackingPaymentID       *uuid.UUID               `gorm:"type:uuid"`
	PackingPaidAt          *time.Time
	Notes                  string                   `gorm:"type:text"`
	LineItems              []VoucherLineItemModel   `gorm:"foreignKey:VoucherID;references:ID"`
}

// TableName returns the table name for GORM
func (VoucherModel) TableName() string {
	return "landed_cost_vouchers"
}

// PayableColumns returns the party, status and payment columns of a category
func PayableColumns(c landedcost.PayableCategory) (party, status, payment, paidAt string) {
	switch c {
	case landedcost.CategoryFreight:
		return "freight_party_id", "payable_status", "freight_payment_id", "freight_paid_at"
	case landedcost.CategoryPartner:
		return "partner_party_id", "partner_payable_status", "partner_payment_id", "partner_paid_at"
	default:
		return "packing_party_id", "packing_payable_status", "packing_payment_id", "packing_paid_at"
	}
}

// AmountColumn returns the column holding the amount owed for a category
func AmountColumn(c landedcost.PayableCategory) string {
	switch c {
	case landedcost.CategoryFreight:
		return "total_freight_kwd"
	case landedcost.CategoryPartner:
		return "total_partner_profit_kwd"
	default:
		return "packing_charges_kwd"
	}
}

func (m *VoucherModel) payable(c landedcost.PayableCategory) landedcost.Payable {
	p := landedcost.Payable{Category: c}
	switch c {
	case landedcost.CategoryFreight:
		p.PartyID, p.Status, p.PaymentID, p.PaidAt = m.FreightPartyID, m.PayableStatus, m.FreightPaymentID, m.FreightPaidAt
	case landedcost.CategoryPartner:
		p.PartyID, p.Status, p.PaymentID, p.PaidAt = m.PartnerPartyID, m.PartnerPayableStatus, m.PartnerPaymentID, m.PartnerPaidAt
	default:
		p.PartyID, p.Status, p.PaymentID, p.PaidAt = m.PackingPartyID, m.PackingPayableStatus, m.PackingPaymentID, m.PackingPaidAt
	}
	return p
}

func (m *VoucherModel) setPayable(p landedcost.Payable) {
	switch p.Category {
	case landedcost.CategoryFreight:
		m.FreightPartyID, m.PayableStatus, m.FreightPaymentID, m.FreightPaidAt = p.PartyID, p.Status, p.PaymentID, p.PaidAt
	case landedcost.CategoryPartner:
		m.PartnerPartyID, m.PartnerPayableStatus, m.PartnerPaymentID, m.PartnerPaidAt = p.PartyID, p.Status, p.PaymentID, p.PaidAt
	default:
		m.PackingPartyID, m.PackingPayableStatus, m.PackingPaymentID, m.PackingPaidAt = p.PartyID, p.Status, p.PaymentID, p.PaidAt
	}
}

// ToDomain converts the persistence model to a domain Voucher.
// Line items are mapped only when they were preloaded.
func (m *VoucherModel) ToDomain() *landedcost.Voucher {
	v := &landedcost.Voucher{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		VoucherNumber:         m.VoucherNumber,
		VoucherDate:           m.VoucherDate,
		PurchaseOrderIDs:      m.PurchaseOrderIDs,
		HKToDXBKwd:            m.HKToDXBKwd,
		DXBToKWIKwd:           m.DXBToKWIKwd,
		TotalFreightKwd:       m.TotalFreightKwd,
		TotalPartnerProfitKwd: m.TotalPartnerProfitKwd,
		PackingChargesKwd:     m.PackingChargesKwd,
		GrandTotalKwd:         m.GrandTotalKwd,
		Notes:                 m.Notes,
		LineItems:             make([]landedcost.AllocatedLineItem, len(m.LineItems)),
	}
	if len(v.PurchaseOrderIDs) == 0 {
		v.PurchaseOrderIDs = []uuid.UUID{m.PrimaryPurchaseOrderID}
	}
	for i, c := range landedcost.Categories {
		v.Payables[i] = m.payable(c)
	}
	for i := range m.LineItems {
		v.LineItems[i] = m.LineItems[i].ToDomain()
	}
	return v
}

// FromDomain populates the persistence model from a domain Voucher
func (m *VoucherModel) FromDomain(v *landedcost.Voucher) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.VoucherNumber = v.VoucherNumber
	m.VoucherDate = v.VoucherDate
	m.PrimaryPurchaseOrderID = v.PrimaryPurchaseOrderID()
	m.PurchaseOrderIDs = append([]uuid.UUID(nil), v.PurchaseOrderIDs...)
	m.HKToDXBKwd = v.HKToDXBKwd
	m.DXBToKWIKwd = v.DXBToKWIKwd
	m.TotalFreightKwd = v.TotalFreightKwd
	m.TotalPartnerProfitKwd = v.TotalPartnerProfitKwd
	m.PackingChargesKwd = v.PackingChargesKwd
	m.GrandTotalKwd = v.GrandTotalKwd
	m.Notes = v.Notes
	for _, p := range v.Payables {
		m.setPayable(p)
	}
	m.LineItems = make([]VoucherLineItemModel, len(v.LineItems))
	for i, item := range v.LineItems {
		m.LineItems[i].FromDomain(v.ID, i, item)
	}
}

// VoucherFromDomain creates a new persistence model from a domain Voucher
func VoucherFromDomain(v *landedcost.Voucher) *VoucherModel {
	m := &VoucherModel{}
	m.FromDomain(v)
	return m
}

// VoucherLineItemModel is one allocated line of a voucher
type VoucherLineItemModel struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primary_key"`
	VoucherID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position                int             `gorm:"not null;default:0"`
	SourceLineItemID        uuid.UUID       `gorm:"type:uuid;not null"`
	PurchaseOrderID         uuid.UUID       `gorm:"column:po_id;type:uuid;not null;index"`
	ItemName                string          `gorm:"type:varchar(200);not null"`
	ItemCategory            string          `gorm:"type:varchar(100)"`
	Quantity                int64           `gorm:"not null"`
	UnitPriceKwd            decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	LineTotalKwd            decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	FreightPerUnitKwd       decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	PartnerProfitPerUnitKwd decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	PackingPerUnitKwd       decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	LandedCostPerUnitKwd    decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	TotalLandedCostKwd      decimal.Decimal `gorm:"type:decimal(18,3);not null"`
}

// TableName returns the table name for GORM
func (VoucherLineItemModel) TableName() string {
	return "landed_cost_voucher_items"
}

// ToDomain converts the persistence model to a domain AllocatedLineItem
func (m *VoucherLineItemModel) ToDomain() landedcost.AllocatedLineItem {
	return landedcost.AllocatedLineItem{
		SourceLineItemID:        m.SourceLineItemID,
		PurchaseOrderID:         m.PurchaseOrderID,
		ItemName:                m.ItemName,
		ItemCategory:            m.ItemCategory,
		Quantity:                m.Quantity,
		UnitPriceKwd:            m.UnitPriceKwd,
		LineTotalKwd:            m.LineTotalKwd,
		FreightPerUnitKwd:       m.FreightPerUnitKwd,
		PartnerProfitPerUnitKwd: m.PartnerProfitPerUnitKwd,
		PackingPerUnitKwd:       m.PackingPerUnitKwd,
		LandedCostPerUnitKwd:    m.LandedCostPerUnitKwd,
		TotalLandedCostKwd:      m.TotalLandedCostKwd,
	}
}

// FromDomain populates the persistence model from an allocated line
func (m *VoucherLineItemModel) FromDomain(voucherID uuid.UUID, position int, item landedcost.AllocatedLineItem) {
	m.ID = uuid.New()
	m.VoucherID = voucherID
	m.Position = position
	m.SourceLineItemID = item.SourceLineItemID
	m.PurchaseOrderID = item.PurchaseOrderID
	m.ItemName = item.ItemName
	m.ItemCategory = item.ItemCategory
	m.Quantity = item.Quantity
	m.UnitPriceKwd = item.UnitPriceKwd
	m.LineTotalKwd = item.LineTotalKwd
	m.FreightPerUnitKwd = item.FreightPerUnitKwd
	m.PartnerProfitPerUnitKwd = item.PartnerProfitPerUnitKwd
	m.PackingPerUnitKwd = item.PackingPerUnitKwd
	m.LandedCostPerUnitKwd = item.LandedCostPerUnitKwd
	m.TotalLandedCostKwd = item.TotalLandedCostKwd
}
