package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/shopspring/decimal"
)

type DepositRequest struct {
	Username string          `json:"username"`
	Amount   decimal.Decimal `json:"amount"`
	Summary  string          `json:"summary"`
}

func (r DepositRequest) Validate() error {
	return validateMovement(r.Username, r.Amount, r.Summary)
}

type WithdrawRequest struct {
	Username string          `json:"username"`
	Amount   decimal.Decimal `json:"amount"`
	Summary  string          `json:"summary"`
}

func (r WithdrawRequest) Validate() error {
	return validateMovement(r.Username, r.Amount, r.Summary)
}

type TransferRequest struct {
	FromUsername string          `json:"fromUsername"`
	ToUsername   string          `json:"toUsername"`
	Amount       decimal.Decimal `json:"amount"`
	Summary      string          `json:"summary"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.FromUsername) == "" {
		errs = append(errs, "fromUsername is required")
	}
	if strings.TrimSpace(r.ToUsername) == "" {
		errs = append(errs, "toUsername is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if strings.TrimSpace(r.Summary) == "" {
		errs = append(errs, "summary is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type ReverseRequest struct {
	Reference string `json:"reference"`
	Summary   string `json:"summary"`
}

func (r ReverseRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Reference) == "" {
		errs = append(errs, "reference is required")
	}
	if strings.TrimSpace(r.Summary) == "" {
		errs = append(errs, "summary is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type TransactionResponse struct {
	ID                 string          `json:"id"`
	TransactionType    string          `json:"transactionType"`
	Purpose            string          `json:"purpose"`
	Amount             decimal.Decimal `json:"amount"`
	Username           string          `json:"username"`
	Reference          string          `json:"reference"`
	BalanceBefore      decimal.Decimal `json:"balanceBefore"`
	BalanceAfter       decimal.Decimal `json:"balanceAfter"`
	Summary            string          `json:"summary"`
	TransactionSummary string          `json:"transactionSummary"`
	CreatedAt          time.Time       `json:"createdAt"`
}

type AccountResponse struct {
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

type MovementResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Account     AccountResponse     `json:"account"`
}

type TransferResponse struct {
	Reference         string              `json:"reference"`
	DebitTransaction  TransactionResponse `json:"debitTransaction"`
	CreditTransaction TransactionResponse `json:"creditTransaction"`
}

type ReversalResponse struct {
	Reference string                `json:"reference"`
	Entries   []TransactionResponse `json:"entries"`
}

func NewTransactionResponse(record domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                 record.ID,
		TransactionType:    string(record.TransactionType),
		Purpose:            string(record.Purpose),
		Amount:             record.Amount,
		Username:           record.Username,
		Reference:          record.Reference,
		BalanceBefore:      record.BalanceBefore,
		BalanceAfter:       record.BalanceAfter,
		Summary:            record.Summary,
		TransactionSummary: record.TransactionSummary,
		CreatedAt:          record.CreatedAt,
	}
}

func NewMovementResponse(result domain.LedgerResult) MovementResponse {
	return MovementResponse{
		Transaction: NewTransactionResponse(result.Transaction),
		Account: AccountResponse{
			Username: result.Account.Username,
			Balance:  result.Account.Balance,
		},
	}
}

func NewTransferResponse(result domain.TransferResult) TransferResponse {
	return TransferResponse{
		Reference:         result.Reference,
		DebitTransaction:  NewTransactionResponse(result.Debit),
		CreditTransaction: NewTransactionResponse(result.Credit),
	}
}

func NewReversalResponse(result domain.ReversalResult) ReversalResponse {
	entries := make([]TransactionResponse, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, NewTransactionResponse(entry))
	}
	return ReversalResponse{Reference: result.Reference, Entries: entries}
}

func validateMovement(username string, amount decimal.Decimal, summary string) error {
	var errs []string

	if strings.TrimSpace(username) == "" {
		errs = append(errs, "username is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if strings.TrimSpace(summary) == "" {
		errs = append(errs, "summary is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
