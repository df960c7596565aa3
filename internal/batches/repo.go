package batches

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a batches repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, batch *models.PayrollBatch) (*models.PayrollBatch, error) {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PayrollBatch, error) {
	var batch models.PayrollBatch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.PayrollBatch, error) {
	var list []models.PayrollBatch
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("pay_date DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PayrollBatchStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.PayrollBatch{}).
		Where("id = ?", id).
		Update("status", status).Error
}
