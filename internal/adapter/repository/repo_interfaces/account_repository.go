package repo_interfaces

import (
	"context"

	"github.com/api-sage/ledger-account-service/internal/domain"
)

type AccountRepository interface {
	// Create stores a new account with its bcrypt password hash. Returns
	// domain.ErrAccountAlreadyExists when the username is taken.
	Create(ctx context.Context, account domain.Account, passwordHash string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	// GetCredentials returns the account together with its stored password
	// hash for authentication.
	GetCredentials(ctx context.Context, username string) (domain.Account, string, error)
}
