package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/ledger-account-service/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/api-sage/ledger-account-service/internal/events"
	"github.com/api-sage/ledger-account-service/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxCommitAttempts = 3
const maxReferenceAttempts = 5

// LedgerService orchestrates credit, debit, transfer and reversal operations.
// Each operation runs inside one unit of work: the engine reads the locked
// balances, validates, writes the updated balances and the matching ledger
// records, and commits them together. Store conflicts retry the whole unit of
// work since nothing partial is ever durable.
type LedgerService struct {
	uow             repo_interfaces.UnitOfWork
	transactionRepo repo_interfaces.TransactionRepository
	publisher       events.Publisher
	referencePolicy ReferencePolicy
	newReference    func() string
}

func NewLedgerService(
	uow repo_interfaces.UnitOfWork,
	transactionRepo repo_interfaces.TransactionRepository,
	publisher events.Publisher,
	referencePolicy ReferencePolicy,
) *LedgerService {
	if referencePolicy != ReferencePolicyEnforced {
		referencePolicy = ReferencePolicyAdvisory
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &LedgerService{
		uow:             uow,
		transactionRepo: transactionRepo,
		publisher:       publisher,
		referencePolicy: referencePolicy,
		newReference:    NewReference,
	}
}

// WithReferenceSource swaps the reference generator. Exists for tests that
// need to force collisions.
func (s *LedgerService) WithReferenceSource(fn func() string) *LedgerService {
	s.newReference = fn
	return s
}

func (s *LedgerService) Credit(ctx context.Context, username string, amount decimal.Decimal, purpose domain.TransactionPurpose, summary string) (domain.LedgerResult, error) {
	username = strings.TrimSpace(username)
	logger.Info("ledger service credit request", logger.Fields{
		"username": username,
		"amount":   amount,
		"purpose":  purpose,
	})

	if err := validateAmount(amount); err != nil {
		return domain.LedgerResult{}, err
	}
	if purpose == "" {
		purpose = domain.PurposeDeposit
	}

	var result domain.LedgerResult
	err := s.run(ctx, []string{username}, func(tx repo_interfaces.AccountTx, reference string) error {
		res, err := creditLeg(tx, username, amount, purpose, reference, summary,
			fmt.Sprintf("CREDIT OF: %s. TRANSACTION REF: %s", amount.StringFixed(2), reference))
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		logger.Error("ledger service credit failed", err, logger.Fields{
			"username": username,
		})
		return domain.LedgerResult{}, err
	}

	logger.Info("ledger service credit success", logger.Fields{
		"username":  username,
		"reference": result.Transaction.Reference,
		"balance":   result.Account.Balance,
	})
	s.publish(ctx, result.Transaction.Reference, purpose, amount, username)
	return result, nil
}

func (s *LedgerService) Debit(ctx context.Context, username string, amount decimal.Decimal, purpose domain.TransactionPurpose, summary string) (domain.LedgerResult, error) {
	username = strings.TrimSpace(username)
	logger.Info("ledger service debit request", logger.Fields{
		"username": username,
		"amount":   amount,
		"purpose":  purpose,
	})

	if err := validateAmount(amount); err != nil {
		return domain.LedgerResult{}, err
	}
	if purpose == "" {
		purpose = domain.PurposeWithdrawal
	}

	var result domain.LedgerResult
	err := s.run(ctx, []string{username}, func(tx repo_interfaces.AccountTx, reference string) error {
		res, err := debitLeg(tx, username, amount, purpose, reference, summary,
			fmt.Sprintf("DEBIT OF: %s. TRANSACTION REF: %s", amount.StringFixed(2), reference))
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		logger.Error("ledger service debit failed", err, logger.Fields{
			"username": username,
		})
		return domain.LedgerResult{}, err
	}

	logger.Info("ledger service debit success", logger.Fields{
		"username":  username,
		"reference": result.Transaction.Reference,
		"balance":   result.Account.Balance,
	})
	s.publish(ctx, result.Transaction.Reference, purpose, amount, username)
	return result, nil
}

func (s *LedgerService) Transfer(ctx context.Context, fromUser, toUser string, amount decimal.Decimal, summary string) (domain.TransferResult, error) {
	fromUser = strings.TrimSpace(fromUser)
	toUser = strings.TrimSpace(toUser)
	logger.Info("ledger service transfer request", logger.Fields{
		"fromUser": fromUser,
		"toUser":   toUser,
		"amount":   amount,
	})

	if err := validateAmount(amount); err != nil {
		return domain.TransferResult{}, err
	}
	if fromUser == toUser {
		return domain.TransferResult{}, fmt.Errorf("cannot transfer to the same account: %w", domain.ErrInvalidOperation)
	}

	var result domain.TransferResult
	err := s.run(ctx, []string{fromUser, toUser}, func(tx repo_interfaces.AccountTx, reference string) error {
		debit, err := debitLeg(tx, fromUser, amount, domain.PurposeTransfer, reference, summary,
			fmt.Sprintf("TRANSFER TO: %s. TRANSACTION REF: %s", toUser, reference))
		if err != nil {
			return err
		}

		credit, err := creditLeg(tx, toUser, amount, domain.PurposeTransfer, reference, summary,
			fmt.Sprintf("TRANSFER FROM: %s. TRANSACTION REF: %s", fromUser, reference))
		if err != nil {
			return err
		}

		result = domain.TransferResult{
			Reference: reference,
			Debit:     debit.Transaction,
			Credit:    credit.Transaction,
		}
		return nil
	})
	if err != nil {
		logger.Error("ledger service transfer failed", err, logger.Fields{
			"fromUser": fromUser,
			"toUser":   toUser,
		})
		return domain.TransferResult{}, err
	}

	logger.Info("ledger service transfer success", logger.Fields{
		"fromUser":  fromUser,
		"toUser":    toUser,
		"reference": result.Reference,
	})
	s.publish(ctx, result.Reference, domain.PurposeTransfer, amount, fromUser, toUser)
	return result, nil
}

// Reverse posts compensating records for a committed operation: every CREDIT
// becomes a DEBIT and vice versa, all under one fresh reference with purpose
// "reversal". Undoing a credit fails with InsufficientBalance when the
// account no longer holds the amount.
func (s *LedgerService) Reverse(ctx context.Context, reference, summary string) (domain.ReversalResult, error) {
	reference = strings.TrimSpace(reference)
	logger.Info("ledger service reverse request", logger.Fields{
		"reference": reference,
	})

	if reference == "" {
		return domain.ReversalResult{}, fmt.Errorf("reference is required: %w", domain.ErrRecordNotFound)
	}

	records, err := s.transactionRepo.ListByReference(ctx, reference)
	if err != nil {
		return domain.ReversalResult{}, err
	}
	if len(records) == 0 {
		return domain.ReversalResult{}, fmt.Errorf("reference %s: %w", reference, domain.ErrRecordNotFound)
	}
	for _, record := range records {
		if record.Purpose == domain.PurposeReversal {
			return domain.ReversalResult{}, fmt.Errorf("reference %s is already a reversal: %w", reference, domain.ErrInvalidOperation)
		}
	}

	usernames := make([]string, 0, len(records))
	for _, record := range records {
		usernames = append(usernames, record.Username)
	}

	var result domain.ReversalResult
	err = s.run(ctx, usernames, func(tx repo_interfaces.AccountTx, newReference string) error {
		entries := make([]domain.Transaction, 0, len(records))
		for _, record := range records {
			transactionSummary := fmt.Sprintf("REVERSAL OF: %s. TRANSACTION REF: %s", reference, newReference)

			var res domain.LedgerResult
			var legErr error
			switch record.TransactionType {
			case domain.TransactionTypeCredit:
				res, legErr = debitLeg(tx, record.Username, record.Amount, domain.PurposeReversal, newReference, summary, transactionSummary)
			case domain.TransactionTypeDebit:
				res, legErr = creditLeg(tx, record.Username, record.Amount, domain.PurposeReversal, newReference, summary, transactionSummary)
			default:
				legErr = fmt.Errorf("unknown transaction type %q: %w", record.TransactionType, domain.ErrInvalidOperation)
			}
			if legErr != nil {
				return legErr
			}
			entries = append(entries, res.Transaction)
		}

		result = domain.ReversalResult{Reference: newReference, Entries: entries}
		return nil
	})
	if err != nil {
		logger.Error("ledger service reverse failed", err, logger.Fields{
			"reference": reference,
		})
		return domain.ReversalResult{}, err
	}

	logger.Info("ledger service reverse success", logger.Fields{
		"reference":         reference,
		"reversalReference": result.Reference,
	})
	s.publish(ctx, result.Reference, domain.PurposeReversal, records[0].Amount, usernames...)
	return result, nil
}

func (s *LedgerService) History(ctx context.Context, username string) ([]domain.Transaction, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrAccountNotFound)
	}
	return s.transactionRepo.ListByUsername(ctx, username)
}

// run executes one operation attempt inside the unit of work and retries the
// whole unit on store conflicts. A fresh reference is generated per attempt;
// validation and business-rule failures are terminal immediately.
func (s *LedgerService) run(ctx context.Context, usernames []string, fn func(tx repo_interfaces.AccountTx, reference string) error) error {
	var err error
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		err = s.uow.Execute(ctx, usernames, func(tx repo_interfaces.AccountTx) error {
			reference, refErr := s.pickReference(tx)
			if refErr != nil {
				return refErr
			}
			return fn(tx, reference)
		})
		if err == nil || !errors.Is(err, domain.ErrStoreConflict) {
			return err
		}
		logger.Info("ledger service retrying after store conflict", logger.Fields{
			"attempt": attempt + 1,
		})
	}
	return err
}

func (s *LedgerService) pickReference(tx repo_interfaces.AccountTx) (string, error) {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		reference := s.newReference()

		inUse, err := tx.ReferenceInUse(reference)
		if err != nil {
			return "", err
		}
		if !inUse {
			return reference, nil
		}

		if s.referencePolicy == ReferencePolicyAdvisory {
			logger.Info("ledger service reference collision", logger.Fields{
				"reference": reference,
				"policy":    string(s.referencePolicy),
			})
			return reference, nil
		}
	}
	return "", fmt.Errorf("could not generate an unused reference: %w", domain.ErrStoreConflict)
}

func (s *LedgerService) publish(ctx context.Context, reference string, purpose domain.TransactionPurpose, amount decimal.Decimal, accounts ...string) {
	event := events.TransactionCompleted{
		Reference:   reference,
		Purpose:     string(purpose),
		Amount:      amount,
		Accounts:    accounts,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("ledger service publish transaction completed failed", err, logger.Fields{
			"reference": reference,
		})
	}
}

func creditLeg(tx repo_interfaces.AccountTx, username string, amount decimal.Decimal, purpose domain.TransactionPurpose, reference, summary, transactionSummary string) (domain.LedgerResult, error) {
	account, err := tx.Get(username)
	if err != nil {
		return domain.LedgerResult{}, err
	}

	updated, err := tx.Adjust(username, amount)
	if err != nil {
		return domain.LedgerResult{}, err
	}

	record := newRecord(domain.TransactionTypeCredit, username, amount, purpose, reference, summary, transactionSummary, account.Balance, updated.Balance)
	if err := tx.Append(record); err != nil {
		return domain.LedgerResult{}, err
	}

	return domain.LedgerResult{Transaction: record, Account: updated}, nil
}

func debitLeg(tx repo_interfaces.AccountTx, username string, amount decimal.Decimal, purpose domain.TransactionPurpose, reference, summary, transactionSummary string) (domain.LedgerResult, error) {
	account, err := tx.Get(username)
	if err != nil {
		return domain.LedgerResult{}, err
	}

	if account.Balance.LessThan(amount) {
		return domain.LedgerResult{}, &domain.InsufficientBalanceError{
			Username:  username,
			Required:  amount,
			Available: account.Balance,
		}
	}

	updated, err := tx.Adjust(username, amount.Neg())
	if err != nil {
		return domain.LedgerResult{}, err
	}

	record := newRecord(domain.TransactionTypeDebit, username, amount, purpose, reference, summary, transactionSummary, account.Balance, updated.Balance)
	if err := tx.Append(record); err != nil {
		return domain.LedgerResult{}, err
	}

	return domain.LedgerResult{Transaction: record, Account: updated}, nil
}

func newRecord(transactionType domain.TransactionType, username string, amount decimal.Decimal, purpose domain.TransactionPurpose, reference, summary, transactionSummary string, before, after decimal.Decimal) domain.Transaction {
	return domain.Transaction{
		ID:                 uuid.NewString(),
		TransactionType:    transactionType,
		Purpose:            purpose,
		Amount:             amount,
		Username:           username,
		Reference:          reference,
		BalanceBefore:      before,
		BalanceAfter:       after,
		Summary:            summary,
		TransactionSummary: transactionSummary,
		CreatedAt:          time.Now().UTC(),
	}
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount %s: %w", amount.String(), domain.ErrInvalidAmount)
	}
	return nil
}
