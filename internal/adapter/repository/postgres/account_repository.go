package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/api-sage/ledger-account-service/internal/logger"
	"github.com/lib/pq"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account, passwordHash string) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"username": account.Username,
	})

	const query = `
INSERT INTO accounts (
	username,
	password_hash,
	balance
) VALUES ($1, $2, $3)
RETURNING id, balance, created_at, updated_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.Username,
		passwordHash,
		account.Balance,
	).Scan(&account.ID, &account.Balance, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			logger.Info("account repository username already exists", logger.Fields{
				"username": account.Username,
			})
			return domain.Account{}, domain.ErrAccountAlreadyExists
		}
		logger.Error("account repository create failed", err, logger.Fields{
			"username": account.Username,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	logger.Info("account repository create success", logger.Fields{
		"accountId": account.ID,
		"username":  account.Username,
	})

	return account, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	const query = `
SELECT id, username, balance, created_at, updated_at
FROM accounts
WHERE username = $1`

	var account domain.Account
	if err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("account repository record not found", logger.Fields{
				"username": username,
			})
			return domain.Account{}, domain.ErrAccountNotFound
		}
		logger.Error("account repository get failed", err, logger.Fields{
			"username": username,
		})
		return domain.Account{}, fmt.Errorf("get account by username: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetCredentials(ctx context.Context, username string) (domain.Account, string, error) {
	const query = `
SELECT id, username, password_hash, balance, created_at, updated_at
FROM accounts
WHERE username = $1`

	var account domain.Account
	var passwordHash string
	if err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&passwordHash,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, "", domain.ErrAccountNotFound
		}
		logger.Error("account repository get credentials failed", err, logger.Fields{
			"username": username,
		})
		return domain.Account{}, "", fmt.Errorf("get account credentials: %w", err)
	}

	return account, passwordHash, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
