package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

type TransactionPurpose string

const (
	PurposeDeposit    TransactionPurpose = "deposit"
	PurposeWithdrawal TransactionPurpose = "withdrawal"
	PurposeTransfer   TransactionPurpose = "transfer"
	PurposeReversal   TransactionPurpose = "reversal"
)

// Transaction is one append-only ledger record. Records are created exactly
// once inside a successful unit of work and never updated or deleted;
// corrections are posted as new records with purpose "reversal".
type Transaction struct {
	ID                 string
	TransactionType    TransactionType
	Purpose            TransactionPurpose
	Amount             decimal.Decimal
	Username           string
	Reference          string
	BalanceBefore      decimal.Decimal
	BalanceAfter       decimal.Decimal
	Summary            string
	TransactionSummary string
	CreatedAt          time.Time
}

// LedgerResult is the outcome of a single-account credit or debit.
type LedgerResult struct {
	Transaction Transaction
	Account     Account
}

// TransferResult carries both legs of a committed transfer. Exactly two
// records share the reference: the debit on the sender and the credit on
// the beneficiary.
type TransferResult struct {
	Reference string
	Debit     Transaction
	Credit    Transaction
}

// ReversalResult carries the compensating records posted for a reversed
// operation, all sharing one fresh reference.
type ReversalResult struct {
	Reference string
	Entries   []Transaction
}
