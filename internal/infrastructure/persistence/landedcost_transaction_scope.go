package persistence

import (
	"context"

	"gorm.io/gorm"

	applc "github.com/tradelog/backend/internal/application/landedcost"
	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/settlement"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of voucher, settlement, payment and numbering writes.
type GormTransactionScope struct {
	db      *gorm.DB
	numbers NumberFormat
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, numbers NumberFormat) *GormTransactionScope {
	return &GormTransactionScope{db: db, numbers: numbers}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos applc.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, numbers: s.numbers})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx      *gorm.DB
	numbers NumberFormat
}

// VoucherRepo returns the voucher repository scoped to the current transaction.
func (r *gormTransactionalRepositories) VoucherRepo() landedcost.VoucherRepository {
	return NewGormVoucherRepository(r.tx)
}

// SettlementRepo returns the settlement repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SettlementRepo() settlement.Repository {
	return NewGormSettlementRepository(r.tx)
}

// Payments returns the payment ledger scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() landedcost.PaymentSink {
	return NewGormPaymentLedger(r.tx)
}

// Numbers returns the number generator scoped to the current transaction.
func (r *gormTransactionalRepositories) Numbers() landedcost.NumberGenerator {
	return NewGormNumberGenerator(r.tx, r.numbers)
}

// Savepoint runs fn in a nested transaction; GORM issues SAVEPOINT / ROLLBACK TO.
func (r *gormTransactionalRepositories) Savepoint(ctx context.Context, fn func(repos applc.TransactionalRepositories) error) error {
	return r.tx.WithContext(ctx).Transaction(func(nested *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: nested, numbers: r.numbers})
	})
}

// Ensure GormTransactionScope implements TransactionScope
var _ applc.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ applc.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
