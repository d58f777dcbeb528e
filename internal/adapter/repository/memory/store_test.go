package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/api-sage/ledger-account-service/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/shopspring/decimal"
)

func seed(t *testing.T, store *Store, username string, balance int64) {
	t.Helper()
	_, err := store.Create(context.Background(), domain.Account{
		Username: username,
		Balance:  decimal.NewFromInt(balance),
	}, "hash")
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
}

func TestExecuteRollsBackStagedWrites(t *testing.T) {
	store := NewStore()
	seed(t, store, "test0", 100)

	boom := errors.New("boom")
	err := store.Execute(context.Background(), []string{"test0"}, func(tx repo_interfaces.AccountTx) error {
		if _, err := tx.Adjust("test0", decimal.NewFromInt(-40)); err != nil {
			return err
		}
		if err := tx.Append(domain.Transaction{ID: "t1", Username: "test0", Reference: "R1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	account, err := store.GetByUsername(context.Background(), "test0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("staged adjust leaked: balance %s", account.Balance)
	}
	records, _ := store.ListByUsername(context.Background(), "test0")
	if len(records) != 0 {
		t.Fatalf("staged append leaked: %d records", len(records))
	}
}

func TestExecuteUnknownAccountFailsBeforeFn(t *testing.T) {
	store := NewStore()

	called := false
	err := store.Execute(context.Background(), []string{"ghost"}, func(tx repo_interfaces.AccountTx) error {
		called = true
		return nil
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if called {
		t.Fatal("fn ran for an unknown account")
	}
}

func TestAdjustRejectsNegativeResult(t *testing.T) {
	store := NewStore()
	seed(t, store, "test0", 30)

	err := store.Execute(context.Background(), []string{"test0"}, func(tx repo_interfaces.AccountTx) error {
		_, err := tx.Adjust("test0", decimal.NewFromInt(-31))
		return err
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestReferenceInUseSeesCommittedAndStaged(t *testing.T) {
	store := NewStore()
	seed(t, store, "test0", 100)

	err := store.Execute(context.Background(), []string{"test0"}, func(tx repo_interfaces.AccountTx) error {
		return tx.Append(domain.Transaction{ID: "t1", Username: "test0", Reference: "R1"})
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	err = store.Execute(context.Background(), []string{"test0"}, func(tx repo_interfaces.AccountTx) error {
		inUse, err := tx.ReferenceInUse("R1")
		if err != nil {
			return err
		}
		if !inUse {
			t.Fatal("committed reference not visible")
		}

		if err := tx.Append(domain.Transaction{ID: "t2", Username: "test0", Reference: "R2"}); err != nil {
			return err
		}
		inUse, err = tx.ReferenceInUse("R2")
		if err != nil {
			return err
		}
		if !inUse {
			t.Fatal("staged reference not visible")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestExecuteAppliesStagedWritesOnCommit(t *testing.T) {
	store := NewStore()
	seed(t, store, "test0", 100)

	err := store.Execute(context.Background(), []string{"test0"}, func(tx repo_interfaces.AccountTx) error {
		if _, err := tx.Adjust("test0", decimal.NewFromInt(25)); err != nil {
			return err
		}
		return tx.Append(domain.Transaction{ID: "t1", Username: "test0", Reference: "R1"})
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	account, _ := store.GetByUsername(context.Background(), "test0")
	if !account.Balance.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("expected 125, got %s", account.Balance)
	}
	records, _ := store.ListByReference(context.Background(), "R1")
	if len(records) != 1 {
		t.Fatalf("expected one committed record, got %d", len(records))
	}
}
