package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	employees := `
CREATE TABLE IF NOT EXISTS employees (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  position TEXT,
  salary_usdc TEXT NOT NULL DEFAULT '0',
  wallet_address TEXT,
  invite_token TEXT,
  user_id TEXT,
  claimed_at DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS payroll_items (
  id TEXT PRIMARY KEY,
  batch_id TEXT NOT NULL,
  employee_id TEXT NOT NULL,
  amount_usdc TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'created',
  tx_hash TEXT,
  fail_reason TEXT,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(employees).Error)
	require.NoError(t, db.Exec(items).Error)

	t.Cleanup(func() {
		db.Exec("DROP TABLE IF EXISTS payroll_items")
		db.Exec("DROP TABLE IF EXISTS employees")
	})

	return db
}

func seedItem(t *testing.T, db *gorm.DB, status enums.PayrollItemStatus, txHash *string) *models.PayrollItem {
	t.Helper()

	employee := &models.Employee{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Name:      "Grace",
		Email:     "grace@example.com",
	}
	require.NoError(t, db.Create(employee).Error)

	item := &models.PayrollItem{
		ID:         uuid.New(),
		BatchID:    uuid.New(),
		EmployeeID: employee.ID,
		AmountUSDC: "100.000000",
		Status:     status,
		TxHash:     txHash,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestClaimItemIsExclusive(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, enums.PayrollItemStatusCreated, nil)

	first, err := repo.ClaimItem(ctx, item.ID, "CLAIM:one")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.ClaimItem(ctx, item.ID, "CLAIM:two")
	require.NoError(t, err)
	assert.False(t, second, "a claimed item must reject further claims")

	stored, err := repo.FindItemByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TxHash)
	assert.Equal(t, "CLAIM:one", *stored.TxHash)
}

func TestClaimItemRejectsWrongStatus(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, status := range []enums.PayrollItemStatus{
		enums.PayrollItemStatusSubmitted,
		enums.PayrollItemStatusPaid,
		enums.PayrollItemStatusFailed,
	} {
		item := seedItem(t, db, status, nil)
		claimed, err := repo.ClaimItem(ctx, item.ID, "CLAIM:x")
		require.NoError(t, err)
		assert.False(t, claimed, "status %s must not be claimable", status)
	}
}

func TestReleaseClaimRequiresMatchingToken(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, enums.PayrollItemStatusCreated, nil)
	_, err := repo.ClaimItem(ctx, item.ID, "CLAIM:mine")
	require.NoError(t, err)

	require.NoError(t, repo.ReleaseClaim(ctx, item.ID, "CLAIM:other"))
	stored, err := repo.FindItemByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TxHash, "mismatched token must not release the claim")

	require.NoError(t, repo.ReleaseClaim(ctx, item.ID, "CLAIM:mine"))
	stored, err = repo.FindItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.TxHash)
}

func TestRedeemClaimMovesToSubmitted(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, enums.PayrollItemStatusCreated, nil)
	_, err := repo.ClaimItem(ctx, item.ID, "CLAIM:mine")
	require.NoError(t, err)

	redeemed, err := repo.RedeemClaim(ctx, item.ID, "CLAIM:stale", "0xreal")
	require.NoError(t, err)
	assert.False(t, redeemed, "stale token must not redeem")

	redeemed, err = repo.RedeemClaim(ctx, item.ID, "CLAIM:mine", "0xreal")
	require.NoError(t, err)
	assert.True(t, redeemed)

	stored, err := repo.FindItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PayrollItemStatusSubmitted, stored.Status)
	require.NotNil(t, stored.TxHash)
	assert.Equal(t, "0xreal", *stored.TxHash)
}

func TestMarkPaidOnlyFromSubmitted(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	paidAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	hash := "0xmined"
	submitted := seedItem(t, db, enums.PayrollItemStatusSubmitted, &hash)
	updated, err := repo.MarkPaidFromSubmitted(ctx, submitted.ID, paidAt)
	require.NoError(t, err)
	assert.True(t, updated)

	stored, err := repo.FindItemByID(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PayrollItemStatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)

	// already paid: the conditional update must not apply twice
	updated, err = repo.MarkPaidFromSubmitted(ctx, submitted.ID, paidAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, updated)

	created := seedItem(t, db, enums.PayrollItemStatusCreated, nil)
	updated, err = repo.MarkPaidFromSubmitted(ctx, created.ID, paidAt)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestMarkFailedOnlyFromSubmitted(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	hash := "0xmined"
	submitted := seedItem(t, db, enums.PayrollItemStatusSubmitted, &hash)
	updated, err := repo.MarkFailedFromSubmitted(ctx, submitted.ID, "TRANSACTION_REVERTED")
	require.NoError(t, err)
	assert.True(t, updated)

	stored, err := repo.FindItemByID(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PayrollItemStatusFailed, stored.Status)

	updated, err = repo.MarkFailedFromSubmitted(ctx, submitted.ID, "AGAIN")
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestListSweepableIncludesClaimedCreatedItems(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	hash := "0xmined"
	sentinel := "CLAIM:in-flight"
	submitted := seedItem(t, db, enums.PayrollItemStatusSubmitted, &hash)
	claimed := seedItem(t, db, enums.PayrollItemStatusCreated, &sentinel)
	seedItem(t, db, enums.PayrollItemStatusCreated, nil)
	seedItem(t, db, enums.PayrollItemStatusPaid, &hash)

	items, err := repo.ListSweepable(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	ids := map[uuid.UUID]bool{}
	for _, item := range items {
		ids[item.ID] = true
	}
	assert.True(t, ids[submitted.ID])
	assert.True(t, ids[claimed.ID])
}
