package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/infrastructure/persistence/models"
)

// Sequence names in number_sequences
const (
	SequenceVoucher    = "landed_cost_voucher"
	SequenceSettlement = "settlement"
)

// NumberFormat describes how a sequence value is rendered
type NumberFormat struct {
	VoucherPrefix    string
	SettlementPrefix string
	Padding          int
}

// DefaultNumberFormat returns LCV-0001 / STL-0001 numbering
func DefaultNumberFormat() NumberFormat {
	return NumberFormat{VoucherPrefix: "LCV-", SettlementPrefix: "STL-", Padding: 4}
}

// GormNumberGenerator hands out document numbers from the number_sequences table.
// The increment takes a row lock, so numbers stay unique and gap-free per
// committed transaction.
type GormNumberGenerator struct {
	db     *gorm.DB
	format NumberFormat
}

// NewGormNumberGenerator creates a new GormNumberGenerator
func NewGormNumberGenerator(db *gorm.DB, format NumberFormat) *GormNumberGenerator {
	if format.Padding <= 0 {
		format.Padding = DefaultNumberFormat().Padding
	}
	return &GormNumberGenerator{db: db, format: format}
}

// NextVoucherNumber returns the next voucher number
func (g *GormNumberGenerator) NextVoucherNumber(ctx context.Context) (string, error) {
	n, err := g.next(ctx, SequenceVoucher)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", g.format.VoucherPrefix, g.format.Padding, n), nil
}

// NextSettlementNumber returns the next settlement number
func (g *GormNumberGenerator) NextSettlementNumber(ctx context.Context) (string, error) {
	n, err := g.next(ctx, SequenceSettlement)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", g.format.SettlementPrefix, g.format.Padding, n), nil
}

func (g *GormNumberGenerator) next(ctx context.Context, name string) (int64, error) {
	db := g.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.NumberSequenceModel{Name: name, UpdatedAt: time.Now()}).Error; err != nil {
		return 0, fmt.Errorf("init sequence %s: %w", name, err)
	}

	result := db.Model(&models.NumberSequenceModel{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, result.Error)
	}

	var seq models.NumberSequenceModel
	if err := db.First(&seq, "name = ?", name).Error; err != nil {
		return 0, fmt.Errorf("read sequence %s: %w", name, err)
	}
	return seq.LastValue, nil
}

var _ landedcost.NumberGenerator = (*GormNumberGenerator)(nil)
