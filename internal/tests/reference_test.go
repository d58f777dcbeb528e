package services_test

import (
	"testing"

	"github.com/api-sage/ledger-account-service/internal/usecase/services"
)

func TestNewReferenceIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 10000; i++ {
		reference := services.NewReference()
		if _, dup := seen[reference]; dup {
			t.Fatalf("duplicate reference after %d generations: %s", i, reference)
		}
		seen[reference] = struct{}{}
	}
}

func TestNewReferenceShape(t *testing.T) {
	reference := services.NewReference()
	if len(reference) != 26 {
		t.Fatalf("expected 26 characters, got %d (%s)", len(reference), reference)
	}
	for _, ch := range reference[:14] {
		if ch < '0' || ch > '9' {
			t.Fatalf("timestamp prefix is not numeric: %s", reference)
		}
	}
}
