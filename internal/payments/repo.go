package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.PayrollItem, error) {
	var item models.PayrollItem
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemsByBatch(ctx context.Context, batchID uuid.UUID) ([]models.PayrollItem, error) {
	var items []models.PayrollItem
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListSweepable(ctx context.Context) ([]models.PayrollItem, error) {
	return r.listSweepable(ctx, nil)
}

func (r *repository) ListSweepableByBatch(ctx context.Context, batchID uuid.UUID) ([]models.PayrollItem, error) {
	return r.listSweepable(ctx, &batchID)
}

func (r *repository) listSweepable(ctx context.Context, batchID *uuid.UUID) ([]models.PayrollItem, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND tx_hash IS NOT NULL)",
			enums.PayrollItemStatusSubmitted, enums.PayrollItemStatusCreated).
		Order("created_at ASC")
	if batchID != nil {
		query = query.Where("batch_id = ?", *batchID)
	}

	var items []models.PayrollItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ClaimItem(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PayrollItem{}).
		Where("id = ? AND status = ? AND tx_hash IS NULL", id, enums.PayrollItemStatusCreated).
		Update("tx_hash", token)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ReleaseClaim(ctx context.Context, id uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Model(&models.PayrollItem{}).
		Where("id = ? AND tx_hash = ?", id, token).
		Update("tx_hash", nil).Error
}

func (r *repository) RedeemClaim(ctx context.Context, id uuid.UUID, token, txHash string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PayrollItem{}).
		Where("id = ? AND tx_hash = ?", id, token).
		Updates(map[string]any{
			"tx_hash": txHash,
			"status":  enums.PayrollItemStatusSubmitted,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkPaidFromSubmitted(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PayrollItem{}).
		Where("id = ? AND status = ?", id, enums.PayrollItemStatusSubmitted).
		Updates(map[string]any{
			"status":  enums.PayrollItemStatusPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkFailedFromSubmitted(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PayrollItem{}).
		Where("id = ? AND status = ?", id, enums.PayrollItemStatusSubmitted).
		Updates(map[string]any{
			"status":      enums.PayrollItemStatusFailed,
			"fail_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
