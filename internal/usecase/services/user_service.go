package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/ledger-account-service/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/api-sage/ledger-account-service/internal/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	accountRepo repo_interfaces.AccountRepository
}

func NewUserService(accountRepo repo_interfaces.AccountRepository) *UserService {
	return &UserService{accountRepo: accountRepo}
}

func (s *UserService) Register(ctx context.Context, username, password string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	logger.Info("user service register request", logger.Fields{
		"username": username,
	})

	if username == "" {
		return domain.Account{}, fmt.Errorf("username is required: %w", domain.ErrInvalidOperation)
	}
	if strings.TrimSpace(password) == "" {
		return domain.Account{}, fmt.Errorf("password is required: %w", domain.ErrInvalidOperation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("user service hash password failed", err, nil)
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		Username: username,
		Balance:  decimal.Zero,
	}

	created, err := s.accountRepo.Create(ctx, account, string(hashed))
	if err != nil {
		logger.Error("user service register failed", err, logger.Fields{
			"username": username,
		})
		return domain.Account{}, err
	}

	logger.Info("user service register success", logger.Fields{
		"accountId": created.ID,
		"username":  created.Username,
	})
	return created, nil
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	logger.Info("user service authenticate request", logger.Fields{
		"username": username,
	})

	account, passwordHash, err := s.accountRepo.GetCredentials(ctx, username)
	if err != nil {
		return domain.Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Info("user service invalid credentials", logger.Fields{
				"username": username,
			})
			return domain.Account{}, domain.ErrInvalidCredentials
		}
		return domain.Account{}, fmt.Errorf("compare password: %w", err)
	}

	return account, nil
}
