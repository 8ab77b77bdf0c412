package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/persistence/models"
)

// GormPaymentLedger records landed cost payments in the payments table.
// Used through the transaction scope so the payment commits with the payable.
type GormPaymentLedger struct {
	db *gorm.DB
}

// NewGormPaymentLedger creates a new GormPaymentLedger
func NewGormPaymentLedger(db *gorm.DB) *GormPaymentLedger {
	return &GormPaymentLedger{db: db}
}

// RecordPayment inserts the payment and returns its id
func (l *GormPaymentLedger) RecordPayment(ctx context.Context, payment landedcost.PaymentRecord) (uuid.UUID, error) {
	if payment.PayeeID == uuid.Nil {
		return uuid.Nil, shared.NewValidationError("payment payee is required")
	}
	if !payment.AmountKwd.IsPositive() {
		return uuid.Nil, shared.NewValidationError("payment amount must be positive")
	}
	model := models.PaymentFromRecord(payment)
	if err := l.db.WithContext(ctx).Create(model).Error; err != nil {
		return uuid.Nil, err
	}
	return model.ID, nil
}

var _ landedcost.PaymentSink = (*GormPaymentLedger)(nil)
