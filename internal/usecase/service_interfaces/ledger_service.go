package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerService is the money-movement core. Every operation runs as one
// atomic unit of work: the balance mutation and its ledger records commit
// together or not at all.
type LedgerService interface {
	Credit(ctx context.Context, username string, amount decimal.Decimal, purpose domain.TransactionPurpose, summary string) (domain.LedgerResult, error)
	Debit(ctx context.Context, username string, amount decimal.Decimal, purpose domain.TransactionPurpose, summary string) (domain.LedgerResult, error)
	Transfer(ctx context.Context, fromUser, toUser string, amount decimal.Decimal, summary string) (domain.TransferResult, error)
	Reverse(ctx context.Context, reference, summary string) (domain.ReversalResult, error)
	History(ctx context.Context, username string) ([]domain.Transaction, error)
}
