package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's current balance. The username is the immutable
// identity key; the balance is only mutated through the ledger engine's
// unit of work and never goes below zero.
type Account struct {
	ID        string
	Username  string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
