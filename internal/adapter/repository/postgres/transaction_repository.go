package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/api-sage/ledger-account-service/internal/logger"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
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
created_at`

func (r *TransactionRepository) ListByUsername(ctx context.Context, username string) ([]domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE username = $1
ORDER BY created_at ASC, id ASC`

	return r.list(ctx, query, username)
}

func (r *TransactionRepository) ListByReference(ctx context.Context, reference string) ([]domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE reference = $1
ORDER BY created_at ASC, id ASC`

	return r.list(ctx, query, reference)
}

func (r *TransactionRepository) list(ctx context.Context, query string, arg string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		logger.Error("transaction repository list failed", err, logger.Fields{
			"arg": arg,
		})
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var records []domain.Transaction
	for rows.Next() {
		record, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return records, nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var record domain.Transaction
	if err := rows.Scan(
		&record.ID,
		&record.TransactionType,
		&record.Purpose,
		&record.Amount,
		&record.Username,
		&record.Reference,
		&record.BalanceBefore,
		&record.BalanceAfter,
		&record.Summary,
		&record.TransactionSummary,
		&record.CreatedAt,
	); err != nil {
		return domain.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	return record, nil
}
