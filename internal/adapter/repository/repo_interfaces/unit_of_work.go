package repo_interfaces

import (
	"context"

	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountTx is the transaction-scoped view the ledger engine works against.
// Every call operates inside the unit of work that created it; nothing is
// durable or visible to other callers until the unit of work commits.
type AccountTx interface {
	// Get returns the locked snapshot of an enlisted account.
	Get(username string) (domain.Account, error)
	// Adjust applies balance += delta. The adjustment is rejected with an
	// InsufficientBalanceError when the result would be negative.
	Adjust(username string, delta decimal.Decimal) (domain.Account, error)
	// Append stages ledger records for the commit.
	Append(records ...domain.Transaction) error
	// ReferenceInUse reports whether any committed or staged record already
	// carries the given reference.
	ReferenceInUse(reference string) (bool, error)
}

// UnitOfWork executes fn as one all-or-nothing group of storage mutations.
// The named accounts are locked exclusively for the duration of fn, always
// acquired in lexical username order so that two concurrent units touching
// the same pair cannot deadlock. A nil return from fn commits both the
// balance adjustments and the appended records together; any error rolls
// everything back. Unknown usernames fail the unit of work with
// domain.ErrAccountNotFound before fn runs.
type UnitOfWork interface {
	Execute(ctx context.Context, usernames []string, fn func(tx AccountTx) error) error
}
