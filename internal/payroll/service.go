package payroll

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/internal/batches"
	"github.com/payrollz/payrollz-backend/internal/companies"
	"github.com/payrollz/payrollz-backend/internal/employees"
	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
	"github.com/payrollz/payrollz-backend/pkg/pagination"
)

// usdcScale caps fractional digits at the token's resolution.
const usdcScale = 6

// Service provides item creation, listing, the admin ownership walk, and the
// employee-facing payslip views.
type Service interface {
	CreateItem(ctx context.Context, ownerUserID uuid.UUID, input CreateItemInput) (*models.PayrollItem, error)
	ListByBatch(ctx context.Context, ownerUserID, batchID uuid.UUID) ([]models.PayrollItem, error)

	// AuthorizeItem walks item -> batch -> company -> owner and rejects with
	// FORBIDDEN when the chain does not end at ownerUserID.
	AuthorizeItem(ctx context.Context, ownerUserID, itemID uuid.UUID) error
	AuthorizeBatch(ctx context.Context, ownerUserID, batchID uuid.UUID) error

	MyPayroll(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PayrollItem, string, error)
	MyPayrollItem(ctx context.Context, userID, itemID uuid.UUID) (*models.PayrollItem, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo      Repository
	Batches   batches.Repository
	Companies companies.Repository
	Employees employees.Repository
}

type service struct {
	repo      Repository
	batches   batches.Repository
	companies companies.Repository
	employees employees.Repository
}

// NewService wires the payroll service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Batches == nil {
		return nil, fmt.Errorf("batches repo is required")
	}
	if params.Companies == nil {
		return nil, fmt.Errorf("companies repo is required")
	}
	if params.Employees == nil {
		return nil, fmt.Errorf("employees repo is required")
	}
	return &service{
		repo:      params.Repo,
		batches:   params.Batches,
		companies: params.Companies,
		employees: params.Employees,
	}, nil
}

func (s *service) CreateItem(ctx context.Context, ownerUserID uuid.UUID, input CreateItemInput) (*models.PayrollItem, error) {
	batch, err := s.authorizedBatch(ctx, ownerUserID, input.BatchID)
	if err != nil {
		return nil, err
	}
	if batch.Status == enums.PayrollBatchStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot add items to a closed batch")
	}

	employee, err := s.employees.FindByID(ctx, input.EmployeeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading employee")
	}
	if employee.CompanyID != batch.CompanyID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee belongs to a different company")
	}

	amount, err := decimal.NewFromString(input.AmountUSDC)
	if err != nil || amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive number")
	}
	if amount.Exponent() < -usdcScale {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount supports at most %d decimal places", usdcScale))
	}

	item := &models.PayrollItem{
		BatchID:    input.BatchID,
		EmployeeID: input.EmployeeID,
		AmountUSDC: amount.StringFixed(usdcScale),
		Status:     enums.PayrollItemStatusCreated,
	}
	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payroll item")
	}
	return created, nil
}

func (s *service) ListByBatch(ctx context.Context, ownerUserID, batchID uuid.UUID) ([]models.PayrollItem, error) {
	if _, err := s.authorizedBatch(ctx, ownerUserID, batchID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payroll items")
	}
	return items, nil
}

func (s *service) AuthorizeItem(ctx context.Context, ownerUserID, itemID uuid.UUID) error {
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payroll item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll item")
	}
	_, err = s.authorizedBatch(ctx, ownerUserID, item.BatchID)
	return err
}

func (s *service) AuthorizeBatch(ctx context.Context, ownerUserID, batchID uuid.UUID) error {
	_, err := s.authorizedBatch(ctx, ownerUserID, batchID)
	return err
}

func (s *service) MyPayroll(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PayrollItem, string, error) {
	employee, err := s.employees.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "no payroll profile linked to this account")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll profile")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	items, err := s.repo.ListByEmployee(ctx, employee.ID, cursor, limit+1)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payslips")
	}

	next := ""
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return items, next, nil
}

func (s *service) MyPayrollItem(ctx context.Context, userID, itemID uuid.UUID) (*models.PayrollItem, error) {
	employee, err := s.employees.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payroll profile linked to this account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll profile")
	}

	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payroll item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll item")
	}
	if item.EmployeeID != employee.ID {
		// Hide other people's payslips entirely.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payroll item not found")
	}
	return item, nil
}

func (s *service) authorizedBatch(ctx context.Context, ownerUserID, batchID uuid.UUID) (*models.PayrollBatch, error) {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payroll batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll batch")
	}
	company, err := s.companies.FindByID(ctx, batch.CompanyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading company")
	}
	if company.OwnerUserID != ownerUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payroll batch belongs to another account")
	}
	return batch, nil
}
