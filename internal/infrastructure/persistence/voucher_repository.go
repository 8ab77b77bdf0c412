package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/persistence/models"
)

// GormVoucherRepository implements landedcost.VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

func orderedLineItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds a voucher with its line items
func (r *GormVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*landedcost.Voucher, error) {
	var model models.VoucherModel
	if err := r.db.WithContext(ctx).
		Preload("LineItems", orderedLineItems).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("voucher", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds several vouchers with their line items
func (r *GormVoucherRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]landedcost.Voucher, error) {
	if len(ids) == 0 {
		return []landedcost.Voucher{}, nil
	}
	var voucherModels []models.VoucherModel
	if err := r.db.WithContext(ctx).
		Preload("LineItems", orderedLineItems).
		Where("id IN ?", ids).
		Order("voucher_number ASC").
		Find(&voucherModels).Error; err != nil {
		return nil, err
	}
	return toDomainVouchers(voucherModels), nil
}

// FindAll finds vouchers with filtering and pagination
func (r *GormVoucherRepository) FindAll(ctx context.Context, filter landedcost.VoucherFilter) ([]landedcost.Voucher, error) {
	var voucherModels []models.VoucherModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.VoucherModel{}), filter)
	if err := query.Find(&voucherModels).Error; err != nil {
		return nil, err
	}
	return toDomainVouchers(voucherModels), nil
}

// Count counts vouchers matching the filter
func (r *GormVoucherRepository) Count(ctx context.Context, filter landedcost.VoucherFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.VoucherModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindPendingByCategory returns the vouchers whose category payable can still be collected
func (r *GormVoucherRepository) FindPendingByCategory(ctx context.Context, category landedcost.PayableCategory) ([]landedcost.Voucher, error) {
	if !category.IsValid() {
		return nil, shared.NewValidationError("unknown payable category %q", category)
	}
	partyCol, statusCol, _, _ := models.PayableColumns(category)
	amountCol := models.AmountColumn(category)

	var voucherModels []models.VoucherModel
	if err := r.db.WithContext(ctx).
		Where(statusCol+" = ?", landedcost.PayableStatusPending).
		Where(partyCol + " IS NOT NULL").
		Where(amountCol + " > 0").
		Order("voucher_date ASC, voucher_number ASC").
		Find(&voucherModels).Error; err != nil {
		return nil, err
	}
	return toDomainVouchers(voucherModels), nil
}

// Save inserts a new voucher with its line items
func (r *GormVoucherRepository) Save(ctx context.Context, voucher *landedcost.Voucher) error {
	model := models.VoucherFromDomain(voucher)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock updates a voucher loaded with FindByID and replaces its line items.
// The update only applies when the stored version is the one the voucher was loaded at.
func (r *GormVoucherRepository) SaveWithLock(ctx context.Context, voucher *landedcost.Voucher) error {
	model := models.VoucherFromDomain(voucher)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.VoucherModel{}).
		Where("id = ? AND version = ?", voucher.ID, voucher.Version-1).
		Updates(voucherColumns(model))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if err := db.Where("voucher_id = ?", voucher.ID).Delete(&models.VoucherLineItemModel{}).Error; err != nil {
		return err
	}
	if len(model.LineItems) == 0 {
		return nil
	}
	return db.Create(&model.LineItems).Error
}

// Delete removes a voucher and its line items
func (r *GormVoucherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("voucher_id = ?", id).Delete(&models.VoucherLineItemModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.VoucherModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("voucher", id)
	}
	return nil
}

func voucherColumns(m *models.VoucherModel) map[string]interface{} {
	return map[string]interface{}{
		"voucher_date":              m.VoucherDate,
		"primary_purchase_order_id": m.PrimaryPurchaseOrderID,
		"purchase_order_ids":        jsonColumn(m.PurchaseOrderIDs),
		"hk_to_dxb_kwd":             m.HKToDXBKwd,
		"dxb_to_kwi_kwd":            m.DXBToKWIKwd,
		"total_freight_kwd":         m.TotalFreightKwd,
		"total_partner_profit_kwd":  m.TotalPartnerProfitKwd,
		"packing_charges_kwd":       m.PackingChargesKwd,
		"grand_total_kwd":           m.GrandTotalKwd,
		"freight_party_id":          m.FreightPartyID,
		"payable_status":            m.PayableStatus,
		"freight_payment_id":        m.FreightPaymentID,
		"freight_paid_at":           m.FreightPaidAt,
		"partner_party_id":          m.PartnerPartyID,
		"partner_payable_status":    m.PartnerPayableStatus,
		"partner_payment_id":        m.PartnerPaymentID,
		"partner_paid_at":           m.PartnerPaidAt,
		"packing_party_id":          m.PackingPartyID,
		"packing_payable_status":    m.PackingPayableStatus,
		"packing_payment_id":        m.PackingPaymentID,
		"packing_paid_at":           m.PackingPaidAt,
		"notes":                     m.Notes,
		"version":                   m.Version,
		"updated_at":                m.UpdatedAt,
	}
}

// jsonColumn renders a slice the way the json serializer stores it, so map
// updates write the same representation as inserts
func jsonColumn(v interface{}) clause.Expr {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		data = []byte("[]")
	}
	return gorm.Expr("?", string(data))
}

func toDomainVouchers(voucherModels []models.VoucherModel) []landedcost.Voucher {
	vouchers := make([]landedcost.Voucher, len(voucherModels))
	for i := range voucherModels {
		vouchers[i] = *voucherModels[i].ToDomain()
	}
	return vouchers
}

// applyFilter applies filtering, ordering and pagination
func (r *GormVoucherRepository) applyFilter(query *gorm.DB, filter landedcost.VoucherFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	return query.Order(voucherSort.orderBy(filter.OrderBy, filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormVoucherRepository) applyFilterWithoutPagination(query *gorm.DB, filter landedcost.VoucherFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(voucher_number) LIKE ? OR LOWER(notes) LIKE ?", searchPattern, searchPattern)
	}

	if filter.Category != nil && filter.Category.IsValid() {
		partyCol, statusCol, _, _ := models.PayableColumns(*filter.Category)
		if filter.Status != nil {
			query = query.Where(statusCol+" = ?", *filter.Status)
		}
		if filter.PartyID != nil {
			query = query.Where(partyCol+" = ?", *filter.PartyID)
		}
	} else {
		if filter.Status != nil {
			query = query.Where("payable_status = ? OR partner_payable_status = ? OR packing_payable_status = ?",
				*filter.Status, *filter.Status, *filter.Status)
		}
		if filter.PartyID != nil {
			query = query.Where("freight_party_id = ? OR partner_party_id = ? OR packing_party_id = ?",
				*filter.PartyID, *filter.PartyID, *filter.PartyID)
		}
	}

	if filter.FromDate != nil {
		query = query.Where("voucher_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("voucher_date <= ?", *filter.ToDate)
	}
	return query
}

// Ensure GormVoucherRepository implements VoucherRepository
var _ landedcost.VoucherRepository = (*GormVoucherRepository)(nil)
