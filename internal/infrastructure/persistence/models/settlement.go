package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/partner"
	"github.com/tradelog/backend/internal/domain/settlement"
	"github.com/tradelog/backend/internal/domain/shared"
)

// SettlementModel is the persistence model for the Settlement aggregate root.
type SettlementModel struct {
	AggregateModel
	SettlementNumber string                      `gorm:"type:varchar(50);not null;uniqueIndex"`
	PartyType        partner.PartyType           `gorm:"type:varchar(20);not null;index:idx_settlement_party,priority:1"`
	PartyID          uuid.UUID                   `gorm:"type:uuid;not null;index:idx_settlement_party,priority:2"`
	PartyName        string                      `gorm:"type:varchar(200);not null"`
	Category         landedcost.PayableCategory  `gorm:"type:varchar(20);not null"`
	SettlementPeriod string                      `gorm:"type:char(7);not null;index"`
	SettlementDate   time.Time                   `gorm:"type:date;not null"`
	TotalAmountKwd   decimal.Decimal             `gorm:"type:decimal(18,3);not null;default:0"`
	Status           settlement.Status           `gorm:"type:varchar(20);not null;default:'pending';index"`
	AccountReference string                      `gorm:"type:varchar(100)"`
	Notes            string                      `gorm:"type:text"`
	FinalizedAt      *time.Time
	SkippedVouchers  []settlement.SkippedVoucher `gorm:"type:jsonb;serializer:json"`
	Lines            []SettlementLineModel       `gorm:"foreignKey:SettlementID;references:ID"`
}

// TableName returns the table name for GORM
func (SettlementModel) TableName() string {
	return "settlements"
}

// ToDomain converts the persistence model to a domain Settlement
func (m *SettlementModel) ToDomain() *settlement.Settlement {
	s := &settlement.Settlement{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		SettlementNumber: m.SettlementNumber,
		PartyType:        m.PartyType,
		PartyID:          m.PartyID,
		PartyName:        m.PartyName,
		Category:         m.Category,
		SettlementPeriod: m.SettlementPeriod,
		SettlementDate:   m.SettlementDate,
		TotalAmountKwd:   m.TotalAmountKwd,
		Status:           m.Status,
		AccountReference: m.AccountReference,
		Notes:            m.Notes,
		FinalizedAt:      m.FinalizedAt,
		SkippedVouchers:  m.SkippedVouchers,
		Lines:            make([]settlement.Line, len(m.Lines)),
	}
	for i, l := range m.Lines {
		s.Lines[i] = settlement.Line{
			VoucherID:     l.VoucherID,
			VoucherNumber: l.VoucherNumber,
			AmountKwd:     l.AmountKwd,
		}
	}
	return s
}

// FromDomain populates the persistence model from a domain Settlement
func (m *SettlementModel) FromDomain(s *settlement.Settlement) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.SettlementNumber = s.SettlementNumber
	m.PartyType = s.PartyType
	m.PartyID = s.PartyID
	m.PartyName = s.PartyName
	m.Category = s.Category
	m.SettlementPeriod = s.SettlementPeriod
	m.SettlementDate = s.SettlementDate
	m.TotalAmountKwd = s.TotalAmountKwd
	m.Status = s.Status
	m.AccountReference = s.AccountReference
	m.Notes = s.Notes
	m.FinalizedAt = s.FinalizedAt
	m.SkippedVouchers = s.SkippedVouchers
	m.Lines = make([]SettlementLineModel, len(s.Lines))
	for i, l := range s.Lines {
		m.Lines[i] = SettlementLineModel{
			ID:            uuid.New(),
			SettlementID:  s.ID,
			Position:      i,
			VoucherID:     l.VoucherID,
			VoucherNumber: l.VoucherNumber,
			AmountKwd:     l.AmountKwd,
		}
	}
}

// SettlementFromDomain creates a new persistence model from a domain Settlement
func SettlementFromDomain(s *settlement.Settlement) *SettlementModel {
	m := &SettlementModel{}
	m.FromDomain(s)
	return m
}

// SettlementLineModel is one voucher captured by a settlement
type SettlementLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	SettlementID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position      int             `gorm:"not null;default:0"`
	VoucherID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	VoucherNumber string          `gorm:"type:varchar(50);not null"`
	AmountKwd     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
}

// TableName returns the table name for GORM
func (SettlementLineModel) TableName() string {
	return "settlement_lines"
}
