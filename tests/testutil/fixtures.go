package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tradelog/backend/internal/domain/partner"
	"github.com/tradelog/backend/internal/infrastructure/persistence/models"
)

// POLine describes one purchase order line to seed
type POLine struct {
	Name      string
	Category  string
	Quantity  int64
	UnitPrice string // KWD, e.g. "12.500"
}

// SeededOrder is a purchase order written by SeedPurchaseOrder
type SeededOrder struct {
	ID      uuid.UUID
	LineIDs []uuid.UUID
}

func newBase() models.BaseModel {
	now := time.Now().UTC()
	return models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// SeedParty writes a directory party and returns its id
func SeedParty(t *testing.T, db *gorm.DB, name string, partyType partner.PartyType) uuid.UUID {
	t.Helper()

	m := models.PartyModel{BaseModel: newBase(), Name: name, PartyType: partyType}
	require.NoError(t, db.Create(&m).Error, "seed party %s", name)
	return m.ID
}

// SeedPurchaseOrder writes a purchase order with its lines in position order
func SeedPurchaseOrder(t *testing.T, db *gorm.DB, number string, lines ...POLine) SeededOrder {
	t.Helper()

	order := models.PurchaseOrderModel{BaseModel: newBase(), OrderNumber: number, SupplierName: "HK Supplier"}
	require.NoError(t, db.Create(&order).Error, "seed purchase order %s", number)

	seeded := SeededOrder{ID: order.ID}
	for i, l := range lines {
		item := models.PurchaseOrderItemModel{
			BaseModel:       newBase(),
			PurchaseOrderID: order.ID,
			Position:        i,
			ItemName:        l.Name,
			ItemCategory:    l.Category,
			Quantity:        l.Quantity,
			UnitPriceKwd:    decimal.RequireFromString(l.UnitPrice),
		}
		require.NoError(t, db.Create(&item).Error, "seed line %s", l.Name)
		seeded.LineIDs = append(seeded.LineIDs, item.ID)
	}
	return seeded
}
