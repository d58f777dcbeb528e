package repo_interfaces

import (
	"context"

	"github.com/api-sage/ledger-account-service/internal/domain"
)

// TransactionRepository reads committed ledger records only; in-flight units
// of work are never visible through it.
type TransactionRepository interface {
	ListByUsername(ctx context.Context, username string) ([]domain.Transaction, error)
	ListByReference(ctx context.Context, reference string) ([]domain.Transaction, error)
}
