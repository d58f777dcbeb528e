package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-account-service/internal/domain"
)

type UserService interface {
	Register(ctx context.Context, username, password string) (domain.Account, error)
	Authenticate(ctx context.Context, username, password string) (domain.Account, error)
}
