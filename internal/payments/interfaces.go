package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
)

// Repository provides payroll item persistence, including the conditional
// updates the claim protocol relies on. Every claim mutation is a
// compare-and-set: it only applies when the row is still in the expected
// state, and reports whether it did.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindItemByID(ctx context.Context, id uuid.UUID) (*models.PayrollItem, error)
	FindItemsByBatch(ctx context.Context, batchID uuid.UUID) ([]models.PayrollItem, error)

	// ListSweepable returns items a confirmation pass should look at:
	// submitted items plus created items still holding a claim sentinel.
	ListSweepable(ctx context.Context) ([]models.PayrollItem, error)
	ListSweepableByBatch(ctx context.Context, batchID uuid.UUID) ([]models.PayrollItem, error)

	// ClaimItem writes the claim token into tx_hash iff the item is still
	// created with no hash. Returns false when another pay already claimed it.
	ClaimItem(ctx context.Context, id uuid.UUID, token string) (bool, error)

	// ReleaseClaim clears tx_hash iff it still holds this claim token.
	ReleaseClaim(ctx context.Context, id uuid.UUID, token string) error

	// RedeemClaim swaps the claim token for the real transaction hash and
	// moves the item to submitted. Returns false if the token no longer
	// matches.
	RedeemClaim(ctx context.Context, id uuid.UUID, token, txHash string) (bool, error)

	// MarkPaidFromSubmitted finalizes a mined transfer. Returns false when
	// the item already left the submitted state.
	MarkPaidFromSubmitted(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)

	// MarkFailedFromSubmitted records a reverted transfer.
	MarkFailedFromSubmitted(ctx context.Context, id uuid.UUID, reason string) (bool, error)
}
