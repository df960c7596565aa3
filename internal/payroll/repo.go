package payroll

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payroll repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.PayrollItem) (*models.PayrollItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
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

func (r *repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.PayrollItem, error) {
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

func (r *repository) ListByEmployee(ctx context.Context, employeeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.PayrollItem, error) {
	query := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var items []models.PayrollItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
