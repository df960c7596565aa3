package payroll

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/pagination"
)

// Repository provides payroll item reads and creation. The state-machine
// mutations live in internal/payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateItem(ctx context.Context, item *models.PayrollItem) (*models.PayrollItem, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.PayrollItem, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.PayrollItem, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.PayrollItem, error)
}
