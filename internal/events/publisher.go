package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted after a unit of work commits. It is
// informational only; delivery failures never affect the committed result.
type TransactionCompleted struct {
	Reference   string          `json:"reference"`
	Purpose     string          `json:"purpose"`
	Amount      decimal.Decimal `json:"amount"`
	Accounts    []string        `json:"accounts"`
	CompletedAt time.Time       `json:"completedAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event TransactionCompleted) error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, TransactionCompleted) error { return nil }
