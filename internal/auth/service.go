package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/internal/companies"
	"github.com/payrollz/payrollz-backend/internal/employees"
	pkgauth "github.com/payrollz/payrollz-backend/pkg/auth"
	"github.com/payrollz/payrollz-backend/pkg/auth/session"
	"github.com/payrollz/payrollz-backend/pkg/chain"
	"github.com/payrollz/payrollz-backend/pkg/config"
	"github.com/payrollz/payrollz-backend/pkg/db"
	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
	"github.com/payrollz/payrollz-backend/pkg/logger"
	"github.com/payrollz/payrollz-backend/pkg/security"
)

// Service handles account lifecycle and token issuance.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Logout(ctx context.Context, accessID string) error
	ClaimInvite(ctx context.Context, input ClaimInviteInput) (*AuthResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*UserView, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionManager interface {
	Open(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo      Repository
	Companies companies.Repository
	Employees employees.Repository
	Tx        txRunner
	Sessions  sessionManager
	JWT       config.JWTConfig
	Password  config.PasswordConfig
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	repo      Repository
	companies companies.Repository
	employees employees.Repository
	tx        txRunner
	sessions  sessionManager
	jwt       config.JWTConfig
	password  config.PasswordConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Companies == nil {
		return nil, fmt.Errorf("companies repo is required")
	}
	if params.Employees == nil {
		return nil, fmt.Errorf("employees repo is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		companies: params.Companies,
		employees: params.Employees,
		tx:        params.Tx,
		sessions:  params.Sessions,
		jwt:       params.JWT,
		password:  params.Password,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// Register creates an admin account and its company in a single transaction.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		created, err := repo.CreateUser(ctx, &models.User{
			Email:        email,
			PasswordHash: hash,
			Role:         enums.UserRoleAdmin,
			IsActive:     true,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "users_email_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
		}

		company, err := s.companies.WithTx(tx).Create(ctx, &models.Company{
			Name:        strings.TrimSpace(input.CompanyName),
			OwnerUserID: created.ID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating company")
		}

		if err := repo.SetCompany(ctx, created.ID, company.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "linking company")
		}
		created.CompanyID = &company.ID
		user = created
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "registering account")
	}

	return s.issue(ctx, user, nil)
}

// Login verifies credentials and opens a fresh session.
func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.repo.FindUserByEmail(ctx, input.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is disabled")
	}
	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	var employeeID *uuid.UUID
	if user.Role == enums.UserRoleEmployee {
		employee, err := s.employees.FindByUserID(ctx, user.ID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll profile")
		}
		if employee != nil {
			employeeID = &employee.ID
		}
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		// Login still succeeds; the timestamp is advisory.
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "updating last login failed")
	}

	return s.issue(ctx, user, employeeID)
}

// Logout revokes the session tied to the token's jti. Idempotent.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

// ClaimInvite turns an invited employee row into a login-capable account. The
// invite token is single use; the row's token is cleared in the same
// transaction that creates the user.
func (s *service) ClaimInvite(ctx context.Context, input ClaimInviteInput) (*AuthResult, error) {
	token := strings.TrimSpace(input.InviteToken)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite token is required")
	}
	if input.WalletAddress != nil && !chain.IsValidAddress(*input.WalletAddress) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet address is not a valid EVM address")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	var (
		user       *models.User
		employeeID uuid.UUID
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		empRepo := s.employees.WithTx(tx)

		employee, err := empRepo.FindByInviteToken(ctx, token)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invite token is invalid or already claimed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading invite")
		}
		if employee.UserID != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "invite already claimed")
		}

		created, err := s.repo.WithTx(tx).CreateUser(ctx, &models.User{
			Email:        normalizeEmail(employee.Email),
			PasswordHash: hash,
			Role:         enums.UserRoleEmployee,
			CompanyID:    &employee.CompanyID,
			IsActive:     true,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "users_email_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
		}

		claimedAt := s.now()
		employee.UserID = &created.ID
		employee.InviteToken = nil
		employee.ClaimedAt = &claimedAt
		if input.WalletAddress != nil {
			employee.WalletAddress = input.WalletAddress
		}
		if err := empRepo.Update(ctx, employee); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "linking employee")
		}

		user = created
		employeeID = employee.ID
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claiming invite")
	}

	return s.issue(ctx, user, &employeeID)
}

// Me returns the authenticated user's projection.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserView, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	view := s.view(user, nil)
	if user.Role == enums.UserRoleEmployee {
		employee, err := s.employees.FindByUserID(ctx, userID)
		if err == nil {
			view.EmployeeID = &employee.ID
		} else if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payroll profile")
		}
	}
	return &view, nil
}

func (s *service) issue(ctx context.Context, user *models.User, employeeID *uuid.UUID) (*AuthResult, error) {
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID:     user.ID,
		Role:       user.Role,
		CompanyID:  user.CompanyID,
		EmployeeID: employeeID,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	if err := s.sessions.Open(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening session")
	}

	return &AuthResult{
		Token: token,
		User:  s.view(user, employeeID),
	}, nil
}

func (s *service) view(user *models.User, employeeID *uuid.UUID) UserView {
	return UserView{
		ID:         user.ID,
		Email:      user.Email,
		Role:       user.Role,
		CompanyID:  user.CompanyID,
		EmployeeID: employeeID,
		CreatedAt:  user.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
