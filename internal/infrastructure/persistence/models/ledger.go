package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/landedcost"
)

// PaymentModel is an outgoing payment recorded for a landed cost payable
type PaymentModel struct {
	ID               uuid.UUID              `gorm:"type:uuid;primary_key"`
	PayeeID          uuid.UUID              `gorm:"type:uuid;not null;index"`
	AmountKwd        decimal.Decimal        `gorm:"type:decimal(18,3);not null"`
	PaymentDate      time.Time              `gorm:"type:date;not null"`
	PaymentType      landedcost.PaymentType `gorm:"type:varchar(40);not null;index"`
	Reference        string                 `gorm:"type:varchar(50);not null;index"`
	AccountReference string                 `gorm:"type:varchar(100)"`
	Notes            string                 `gorm:"type:text"`
	CreatedAt        time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// PaymentFromRecord creates a new payment row for a payment record
func PaymentFromRecord(p landedcost.PaymentRecord) *PaymentModel {
	return &PaymentModel{
		ID:               uuid.New(),
		PayeeID:          p.PayeeID,
		AmountKwd:        p.AmountKwd,
		PaymentDate:      p.Date,
		PaymentType:      p.Type,
		Reference:        p.Reference,
		AccountReference: p.Account,
		Notes:            p.Notes,
		CreatedAt:        time.Now(),
	}
}

// NumberSequenceModel holds the last issued value of a document number series
type NumberSequenceModel struct {
	Name      string    `gorm:"type:varchar(50);primary_key"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}
