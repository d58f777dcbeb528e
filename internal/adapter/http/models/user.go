package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r CreateUserRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Username) == "" {
		errs = append(errs, "username is required")
	}
	if strings.TrimSpace(r.Password) == "" {
		errs = append(errs, "password is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return CreateUserRequest(r).Validate()
}

type UserResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewUserResponse(account domain.Account) UserResponse {
	return UserResponse{
		ID:        account.ID,
		Username:  account.Username,
		Balance:   account.Balance,
		CreatedAt: account.CreatedAt,
	}
}
