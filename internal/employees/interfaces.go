package employees

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
)

// Repository provides employee persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, employee *models.Employee) (*models.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	FindByInviteToken(ctx context.Context, token string) (*models.Employee, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Employee, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
}
