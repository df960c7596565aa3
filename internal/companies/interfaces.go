package companies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
)

// Repository provides company persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	FindByIDWithEmployees(ctx context.Context, id uuid.UUID) (*models.Company, error)
	ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]models.Company, error)
}
