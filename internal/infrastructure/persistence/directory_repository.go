package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/partner"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/persistence/models"
)

// GormPartyDirectory serves party lookups from the parties table
type GormPartyDirectory struct {
	db *gorm.DB
}

// NewGormPartyDirectory creates a new GormPartyDirectory
func NewGormPartyDirectory(db *gorm.DB) *GormPartyDirectory {
	return &GormPartyDirectory{db: db}
}

// GetParty finds a party by id
func (d *GormPartyDirectory) GetParty(ctx context.Context, id uuid.UUID) (*partner.Party, error) {
	var model models.PartyModel
	if err := d.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("party", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormPurchaseOrderDirectory serves purchase order lines from the trade tables
type GormPurchaseOrderDirectory struct {
	db *gorm.DB
}

// NewGormPurchaseOrderDirectory creates a new GormPurchaseOrderDirectory
func NewGormPurchaseOrderDirectory(db *gorm.DB) *GormPurchaseOrderDirectory {
	return &GormPurchaseOrderDirectory{db: db}
}

// ListLineItems returns the lines of a purchase order in entry order
func (d *GormPurchaseOrderDirectory) ListLineItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]landedcost.PurchaseOrderLineItem, error) {
	var order models.PurchaseOrderModel
	if err := d.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		First(&order, "id = ?", purchaseOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("purchase order", purchaseOrderID)
		}
		return nil, err
	}

	items := make([]landedcost.PurchaseOrderLineItem, len(order.Items))
	for i := range order.Items {
		items[i] = order.Items[i].ToDomain()
	}
	return items, nil
}

// GetSupplierName returns the supplier recorded on a purchase order
func (d *GormPurchaseOrderDirectory) GetSupplierName(ctx context.Context, purchaseOrderID uuid.UUID) (string, error) {
	var order models.PurchaseOrderModel
	if err := d.db.WithContext(ctx).
		Select("id", "supplier_name").
		First(&order, "id = ?", purchaseOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.NewNotFoundError("purchase order", purchaseOrderID)
		}
		return "", err
	}
	return order.SupplierName, nil
}

var (
	_ partner.PartyDirectory            = (*GormPartyDirectory)(nil)
	_ landedcost.PurchaseOrderDirectory = (*GormPurchaseOrderDirectory)(nil)
)
