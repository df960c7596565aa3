package employees

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/internal/companies"
	"github.com/payrollz/payrollz-backend/pkg/db"
	"github.com/payrollz/payrollz-backend/pkg/db/models"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
	"github.com/payrollz/payrollz-backend/pkg/security"
)

// Service defines employee operations available to admins.
type Service interface {
	Create(ctx context.Context, ownerUserID uuid.UUID, input CreateEmployeeInput) (*models.Employee, error)
	List(ctx context.Context, ownerUserID, companyID uuid.UUID) ([]models.Employee, error)
	Update(ctx context.Context, ownerUserID, employeeID uuid.UUID, input UpdateEmployeeInput) (*models.Employee, error)
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

// NewService wires the employees service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Companies == nil {
		return nil, fmt.Errorf("companies repo is required")
	}
	return &service{repo: params.Repo, companies: params.Companies}, nil
}

func (s *service) Create(ctx context.Context, ownerUserID uuid.UUID, input CreateEmployeeInput) (*models.Employee, error) {
	if err := s.authorizeCompany(ctx, input.CompanyID, ownerUserID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee name and email are required")
	}
	salary := strings.TrimSpace(input.SalaryUSDC)
	if salary == "" {
		salary = "0"
	}
	if parsed, err := decimal.NewFromString(salary); err != nil || parsed.Sign() < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "salary must be a non-negative number")
	}

	token, err := security.GenerateInviteToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing invite token")
	}

	employee := &models.Employee{
		CompanyID:   input.CompanyID,
		Name:        name,
		Email:       email,
		Position:    input.Position,
		SalaryUSDC:  salary,
		InviteToken: &token,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, employee)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_employees_company_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an employee with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating employee")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, ownerUserID, companyID uuid.UUID) ([]models.Employee, error) {
	if err := s.authorizeCompany(ctx, companyID, ownerUserID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing employees")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, ownerUserID, employeeID uuid.UUID, input UpdateEmployeeInput) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading employee")
	}
	if err := s.authorizeCompany(ctx, employee.CompanyID, ownerUserID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee name cannot be empty")
		}
		employee.Name = name
	}
	if input.Position != nil {
		employee.Position = input.Position
	}
	if input.SalaryUSDC != nil {
		if parsed, err := decimal.NewFromString(*input.SalaryUSDC); err != nil || parsed.Sign() < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "salary must be a non-negative number")
		}
		employee.SalaryUSDC = *input.SalaryUSDC
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating employee")
	}
	return employee, nil
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
