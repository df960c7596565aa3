package companies

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
)

// Service defines company operations available to admins.
type Service interface {
	Create(ctx context.Context, input CreateCompanyInput) (*models.Company, error)
	List(ctx context.Context, ownerUserID uuid.UUID) ([]models.Company, error)
	Get(ctx context.Context, id, ownerUserID uuid.UUID) (*models.Company, error)
}

type service struct {
	repo Repository
}

// NewService wires the companies service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCompanyInput) (*models.Company, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	company := &models.Company{
		Name:        name,
		OwnerUserID: input.OwnerUserID,
	}
	created, err := s.repo.Create(ctx, company)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating company")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, ownerUserID uuid.UUID) ([]models.Company, error) {
	companies, err := s.repo.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing companies")
	}
	return companies, nil
}

func (s *service) Get(ctx context.Context, id, ownerUserID uuid.UUID) (*models.Company, error) {
	company, err := s.repo.FindByIDWithEmployees(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading company")
	}
	if company.OwnerUserID != ownerUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "company belongs to another account")
	}
	return company, nil
}
