package landedcost

import (
	"context"

	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/settlement"
)

// TransactionScope provides transactional access to the landed-cost repositories.
// All repository operations run inside fn share one database transaction and are
// committed or rolled back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
type TransactionalRepositories interface {
	VoucherRepo() landedcost.VoucherRepository
	SettlementRepo() settlement.Repository
	Payments() landedcost.PaymentSink
	Numbers() landedcost.NumberGenerator

	// Savepoint runs fn in a nested transaction. When fn fails only its own
	// writes are rolled back and the outer transaction stays usable.
	Savepoint(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope runs functions without a real transaction.
// It is used with mock repositories in tests.
type NoOpTransactionScope struct {
	vouchers    landedcost.VoucherRepository
	settlements settlement.Repository
	payments    landedcost.PaymentSink
	numbers     landedcost.NumberGenerator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given collaborators.
func NewNoOpTransactionScope(
	vouchers landedcost.VoucherRepository,
	settlements settlement.Repository,
	payments landedcost.PaymentSink,
	numbers landedcost.NumberGenerator,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		vouchers:    vouchers,
		settlements: settlements,
		payments:    payments,
		numbers:     numbers,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Savepoint runs the function without a nested transaction.
func (s *NoOpTransactionScope) Savepoint(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) VoucherRepo() landedcost.VoucherRepository { return s.vouchers }
func (s *NoOpTransactionScope) SettlementRepo() settlement.Repository     { return s.settlements }
func (s *NoOpTransactionScope) Payments() landedcost.PaymentSink          { return s.payments }
func (s *NoOpTransactionScope) Numbers() landedcost.NumberGenerator       { return s.numbers }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
