package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/api-sage/ledger-account-service/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/api-sage/ledger-account-service/internal/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// UnitOfWork runs balance adjustments and ledger appends inside a single
// database transaction. Row locks are taken with SELECT ... FOR UPDATE, one
// account at a time in lexical username order, so two concurrent units
// touching the same pair of accounts cannot deadlock.
type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Execute(ctx context.Context, usernames []string, fn func(tx repo_interfaces.AccountTx) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("unit of work begin tx failed", err, nil)
		return fmt.Errorf("begin unit of work: %w", translateConflict(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	accountTx := &sqlAccountTx{ctx: ctx, tx: tx, accounts: make(map[string]domain.Account)}

	for _, username := range sortedUnique(usernames) {
		if err = accountTx.lock(username); err != nil {
			return err
		}
	}

	if err = fn(accountTx); err != nil {
		return translateConflict(err)
	}

	if err = tx.Commit(); err != nil {
		logger.Error("unit of work commit failed", err, nil)
		return fmt.Errorf("commit unit of work: %w", translateConflict(err))
	}
	return nil
}

type sqlAccountTx struct {
	ctx      context.Context
	tx       *sql.Tx
	accounts map[string]domain.Account
}

func (t *sqlAccountTx) lock(username string) error {
	const query = `
SELECT id, username, balance, created_at, updated_at
FROM accounts
WHERE username = $1
FOR UPDATE`

	var account domain.Account
	if err := t.tx.QueryRowContext(t.ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %s: %w", username, domain.ErrAccountNotFound)
		}
		return fmt.Errorf("lock account %s: %w", username, translateConflict(err))
	}

	t.accounts[username] = account
	return nil
}

func (t *sqlAccountTx) Get(username string) (domain.Account, error) {
	account, ok := t.accounts[username]
	if !ok {
		return domain.Account{}, fmt.Errorf("user %s not enlisted in unit of work: %w", username, domain.ErrAccountNotFound)
	}
	return account, nil
}

func (t *sqlAccountTx) Adjust(username string, delta decimal.Decimal) (domain.Account, error) {
	account, err := t.Get(username)
	if err != nil {
		return domain.Account{}, err
	}

	updated := account.Balance.Add(delta)
	if updated.IsNegative() {
		return domain.Account{}, &domain.InsufficientBalanceError{
			Username:  username,
			Required:  delta.Neg(),
			Available: account.Balance,
		}
	}

	const query = `
UPDATE accounts
SET balance = $2,
    updated_at = NOW()
WHERE username = $1
  AND balance + $3::numeric >= 0
RETURNING updated_at`

	if err := t.tx.QueryRowContext(t.ctx, query, username, updated, delta).Scan(&account.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The row is locked, so a failed condition means the delta
			// itself would take the balance negative.
			return domain.Account{}, &domain.InsufficientBalanceError{
				Username:  username,
				Required:  delta.Neg(),
				Available: account.Balance,
			}
		}
		return domain.Account{}, fmt.Errorf("adjust balance for %s: %w", username, translateConflict(err))
	}

	account.Balance = updated
	t.accounts[username] = account
	return account, nil
}

func (t *sqlAccountTx) Append(records ...domain.Transaction) error {
	const query = `
INSERT INTO transactions (
	id,
	transaction_type,
	purpose,
	amount,
	username,
	reference,
	balance_before,
	balance_after,
	summary,
	transaction_summary,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, record := range records {
		if _, err := t.tx.ExecContext(
			t.ctx,
			query,
			record.ID,
			record.TransactionType,
			record.Purpose,
			record.Amount,
			record.Username,
			record.Reference,
			record.BalanceBefore,
			record.BalanceAfter,
			record.Summary,
			record.TransactionSummary,
			record.CreatedAt,
		); err != nil {
			return fmt.Errorf("append ledger record: %w", translateConflict(err))
		}
	}
	return nil
}

func (t *sqlAccountTx) ReferenceInUse(reference string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM transactions WHERE reference = $1)`

	var exists bool
	if err := t.tx.QueryRowContext(t.ctx, query, reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("check reference: %w", translateConflict(err))
	}
	return exists, nil
}

// translateConflict maps retryable postgres failures (serialization failure,
// deadlock detected) onto domain.ErrStoreConflict so the engine can retry the
// whole unit of work.
func translateConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "40001", "40P01":
			return fmt.Errorf("%v: %w", err, domain.ErrStoreConflict)
		}
	}
	return err
}

func sortedUnique(usernames []string) []string {
	seen := make(map[string]struct{}, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, name := range usernames {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var _ repo_interfaces.UnitOfWork = (*UnitOfWork)(nil)
