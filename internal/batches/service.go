package batches

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/internal/companies"
	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
)

// Service defines batch operations available to admins.
type Service interface {
	Create(ctx context.Context, ownerUserID uuid.UUID, input CreateBatchInput) (*models.PayrollBatch, error)
	List(ctx context.Context, ownerUserID, companyID uuid.UUID) ([]models.PayrollBatch, error)
	Get(ctx context.Context, ownerUserID, batchID uuid.UUID) (*models.PayrollBatch, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo      Repository
	Companies companies.Repository
}

type service struct {
	repo      Repository
	companies companies.Repository
}

// NewService wires the batches service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Companies == nil {
		return nil, fmt.Errorf("companies repo is required")
	}
	return &service{repo: params.Repo, companies: params.Companies}, nil
}

func (s *service) Create(ctx context.Context, ownerUserID uuid.UUID, input CreateBatchInput) (*models.PayrollBatch, error) {
	if err := s.authorizeCompany(ctx, input.CompanyID, ownerUserID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch title is required")
	}
	if input.PayDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pay date is required")
	}

	batch := &models.PayrollBatch{
		CompanyID: input.CompanyID,
		Title:     title,
		PayDate:   input.PayDate,
		Note:      input.Note,
		Status:    enums.PayrollBatchStatusDraft,
	}
	created, err := s.repo.Create(ctx, batch)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payroll batch")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, ownerUserID, companyID uuid.UUID) ([]models.PayrollBatch, error) {
	if err := s.authorizeCompany(ctx, companyID, ownerUserID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payroll batches")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, ownerUserID, batchID uuid.UUID) (*models.PayrollBatch, error) {
	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payroll batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll batch")
	}
	if err := s.authorizeCompany(ctx, batch.CompanyID, ownerUserID); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *service) authorizeCompany(ctx context.Context, companyID, ownerUserID uuid.UUID) error {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading company")
	}
	if company.OwnerUserID != ownerUserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "company belongs to another account")
	}
	return nil
}
