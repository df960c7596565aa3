package batches

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
)

// Repository provides payroll batch persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, batch *models.PayrollBatch) (*models.PayrollBatch, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PayrollBatch, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.PayrollBatch, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PayrollBatchStatus) error
}
