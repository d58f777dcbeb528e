package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/api-sage/ledger-account-service/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/api-sage/ledger-account-service/internal/usecase/services"
)

func TestUserRegisterAndAuthenticate(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewUserService(store)

	created, err := svc.Register(context.Background(), "test0", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Username != "test0" || !created.Balance.IsZero() {
		t.Fatalf("unexpected account: %+v", created)
	}

	account, err := svc.Authenticate(context.Background(), "test0", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if account.Username != "test0" {
		t.Fatalf("expected test0, got %s", account.Username)
	}
}

func TestUserAuthenticateWrongPassword(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewUserService(store)

	if _, err := svc.Register(context.Background(), "test0", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Authenticate(context.Background(), "test0", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserAuthenticateUnknownUser(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewUserService(store)

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUserRegisterDuplicateUsername(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewUserService(store)

	if _, err := svc.Register(context.Background(), "test0", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(context.Background(), "test0", "another")
	if !errors.Is(err, domain.ErrAccountAlreadyExists) {
		t.Fatalf("expected ErrAccountAlreadyExists, got %v", err)
	}
}

func TestUserRegisterRequiresCredentials(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewUserService(store)

	if _, err := svc.Register(context.Background(), "", "s3cret"); err == nil {
		t.Fatal("expected error for empty username")
	}
	if _, err := svc.Register(context.Background(), "test0", "  "); err == nil {
		t.Fatal("expected error for empty password")
	}
}
