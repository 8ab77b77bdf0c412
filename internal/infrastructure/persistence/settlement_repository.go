package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelog/backend/internal/domain/settlement"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/persistence/models"
)

// GormSettlementRepository implements settlement.Repository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

func orderedSettlementLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds a settlement with its lines
func (r *GormSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	var model models.SettlementModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedSettlementLines).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("settlement", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds settlements with filtering and pagination
func (r *GormSettlementRepository) FindAll(ctx context.Context, filter settlement.Filter) ([]settlement.Settlement, error) {
	var settlementModels []models.SettlementModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.SettlementModel{}), filter)
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	query = query.Order(settlementSort.orderBy(filter.OrderBy, filter.OrderDir))

	if err := query.Preload("Lines", orderedSettlementLines).Find(&settlementModels).Error; err != nil {
		return nil, err
	}
	return toDomainSettlements(settlementModels), nil
}

// Count counts settlements matching the filter
func (r *GormSettlementRepository) Count(ctx context.Context, filter settlement.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.SettlementModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindPendingByVoucher finds pending settlements that captured the voucher
func (r *GormSettlementRepository) FindPendingByVoucher(ctx context.Context, voucherID uuid.UUID) ([]settlement.Settlement, error) {
	var settlementModels []models.SettlementModel
	captured := r.db.Model(&models.SettlementLineModel{}).
		Select("settlement_id").
		Where("voucher_id = ?", voucherID)
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedSettlementLines).
		Where("status = ?", settlement.StatusPending).
		Where("id IN (?)", captured).
		Order("settlement_number ASC").
		Find(&settlementModels).Error; err != nil {
		return nil, err
	}
	return toDomainSettlements(settlementModels), nil
}

// Save inserts a new settlement with its lines
func (r *GormSettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	return r.db.WithContext(ctx).Create(models.SettlementFromDomain(s)).Error
}

// SaveWithLock updates a settlement and replaces its lines when the stored
// version is the one the settlement was loaded at
func (r *GormSettlementRepository) SaveWithLock(ctx context.Context, s *settlement.Settlement) error {
	model := models.SettlementFromDomain(s)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.SettlementModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"total_amount_kwd":  model.TotalAmountKwd,
			"status":            model.Status,
			"account_reference": model.AccountReference,
			"notes":             model.Notes,
			"finalized_at":      model.FinalizedAt,
			"skipped_vouchers":  jsonColumn(model.SkippedVouchers),
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if err := db.Where("settlement_id = ?", s.ID).Delete(&models.SettlementLineModel{}).Error; err != nil {
		return err
	}
	if len(model.Lines) == 0 {
		return nil
	}
	return db.Create(&model.Lines).Error
}

// Delete removes a pending settlement and its lines. Finalized settlements are
// part of the ledger and are never removed.
func (r *GormSettlementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	result := db.Where("id = ? AND status = ?", id, string(settlement.StatusPending)).Delete(&models.SettlementModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("pending settlement", id)
	}
	return db.Where("settlement_id = ?", id).Delete(&models.SettlementLineModel{}).Error
}

func (r *GormSettlementRepository) applyFilterWithoutPagination(query *gorm.DB, filter settlement.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("settlement_number LIKE ? OR party_name LIKE ?", pattern, pattern)
	}
	if filter.PartyType != nil {
		query = query.Where("party_type = ?", *filter.PartyType)
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Period != "" {
		query = query.Where("settlement_period = ?", filter.Period)
	}
	return query
}

func toDomainSettlements(settlementModels []models.SettlementModel) []settlement.Settlement {
	settlements := make([]settlement.Settlement, len(settlementModels))
	for i := range settlementModels {
		settlements[i] = *settlementModels[i].ToDomain()
	}
	return settlements
}

// Ensure GormSettlementRepository implements settlement.Repository
var _ settlement.Repository = (*GormSettlementRepository)(nil)
