package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/partner"
)

// PartyModel is the directory record of a counter-party.
// Rows are owned by the directory; the engine only reads them.
type PartyModel struct {
	BaseModel
	Name      string            `gorm:"type:varchar(200);not null"`
	PartyType partner.PartyType `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the directory record to a domain Party
func (m *PartyModel) ToDomain() *partner.Party {
	return &partner.Party{ID: m.ID, Name: m.Name, Type: m.PartyType}
}

// PurchaseOrderModel is the read model of a purchase order header
type PurchaseOrderModel struct {
	BaseModel
	OrderNumber  string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID   *uuid.UUID               `gorm:"type:uuid;index"`
	SupplierName string                   `gorm:"type:varchar(200)"`
	Items        []PurchaseOrderItemModel `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItemModel is the read model of a purchase order line
type PurchaseOrderItemModel struct {
	BaseModel
	PurchaseOrderID uuid.UUID       `gorm:"column:po_id;type:uuid;not null;index"`
	Position        int             `gorm:"not null;default:0"`
	ItemName        string          `gorm:"type:varchar(200);not null"`
	ItemCategory    string          `gorm:"type:varchar(100)"`
	Quantity        int64           `gorm:"not null"`
	UnitPriceKwd    decimal.Decimal `gorm:"type:decimal(18,3);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the read model to the engine's line item view
func (m *PurchaseOrderItemModel) ToDomain() landedcost.PurchaseOrderLineItem {
	return landedcost.PurchaseOrderLineItem{
		ID:              m.ID,
		PurchaseOrderID: m.PurchaseOrderID,
		ItemName:        m.ItemName,
		ItemCategory:    m.ItemCategory,
		Quantity:        m.Quantity,
		UnitPriceKwd:    m.UnitPriceKwd,
	}
}
