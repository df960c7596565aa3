package payments

import (
	"strings"

	"github.com/google/uuid"
)

// ClaimPrefix marks a tx_hash value as an in-flight claim rather than a real
// transaction hash. Writing the sentinel with a conditional update is what
// guarantees at most one transfer per payroll item.
const ClaimPrefix = "CLAIM:"

// NewClaimToken mints a unique claim sentinel.
func NewClaimToken() string {
	return ClaimPrefix + uuid.NewString()
}

// IsClaimSentinel reports whether the stored hash is a claim token.
func IsClaimSentinel(hash string) bool {
	return strings.HasPrefix(hash, ClaimPrefix)
}
