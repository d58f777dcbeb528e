package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReferencePolicy controls what happens when a freshly generated reference is
// already present in the ledger. References are unique with overwhelming
// probability either way; uniqueness is advisory, not a stored constraint.
type ReferencePolicy string

const (
	// ReferencePolicyAdvisory logs a collision and proceeds.
	ReferencePolicyAdvisory ReferencePolicy = "advisory"
	// ReferencePolicyEnforced regenerates on collision, failing the
	// operation after a bounded number of attempts.
	ReferencePolicyEnforced ReferencePolicy = "enforced"
)

// NewReference returns an opaque operation reference: a UTC timestamp prefix
// for coarse ordering plus a random suffix. One reference correlates all
// ledger records of a single top-level operation.
func NewReference() string {
	now := time.Now().UTC()
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return now.Format("20060102150405") + suffix
}
