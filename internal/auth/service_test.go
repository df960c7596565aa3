package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/internal/companies"
	"github.com/payrollz/payrollz-backend/internal/employees"
	"github.com/payrollz/payrollz-backend/pkg/config"
	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
	"github.com/payrollz/payrollz-backend/pkg/logger"
	"github.com/payrollz/payrollz-backend/pkg/security"
)

type fakeAuthRepo struct {
	users     map[uuid.UUID]*models.User
	createErr error
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeAuthRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeAuthRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, fmt.Errorf(`duplicate key value violates unique constraint "users_email_key"`)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeAuthRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == strings.ToLower(strings.TrimSpace(email)) {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := f.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (f *fakeAuthRepo) SetCompany(ctx context.Context, id, companyID uuid.UUID) error {
	if user, ok := f.users[id]; ok {
		user.CompanyID = &companyID
	}
	return nil
}

type fakeCompanyStore struct {
	companies map[uuid.UUID]*models.Company
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{companies: map[uuid.UUID]*models.Company{}}
}

func (f *fakeCompanyStore) WithTx(tx *gorm.DB) companies.Repository { return f }

func (f *fakeCompanyStore) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	f.companies[company.ID] = company
	return company, nil
}

func (f *fakeCompanyStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if company, ok := f.companies[id]; ok {
		return company, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCompanyStore) FindByIDWithEmployees(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeCompanyStore) ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]models.Company, error) {
	var out []models.Company
	for _, company := range f.companies {
		if company.OwnerUserID == ownerUserID {
			out = append(out, *company)
		}
	}
	return out, nil
}

type fakeEmployeeStore struct {
	employees map[uuid.UUID]*models.Employee
}

func newFakeEmployeeStore() *fakeEmployeeStore {
	return &fakeEmployeeStore{employees: map[uuid.UUID]*models.Employee{}}
}

func (f *fakeEmployeeStore) WithTx(tx *gorm.DB) employees.Repository { return f }

func (f *fakeEmployeeStore) Create(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	f.employees[employee.ID] = employee
	return employee, nil
}

func (f *fakeEmployeeStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	if employee, ok := f.employees[id]; ok {
		return employee, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeStore) FindByInviteToken(ctx context.Context, token string) (*models.Employee, error) {
	for _, employee := range f.employees {
		if employee.InviteToken != nil && *employee.InviteToken == token {
			return employee, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeStore) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Employee, error) {
	for _, employee := range f.employees {
		if employee.UserID != nil && *employee.UserID == userID {
			return employee, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Employee, error) {
	var out []models.Employee
	for _, employee := range f.employees {
		if employee.CompanyID == companyID {
			out = append(out, *employee)
		}
	}
	return out, nil
}

func (f *fakeEmployeeStore) Update(ctx context.Context, employee *models.Employee) error {
	f.employees[employee.ID] = employee
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeSessionManager struct {
	opened  []string
	revoked []string
	openErr error
}

func (f *fakeSessionManager) Open(ctx context.Context, accessID string) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = append(f.opened, accessID)
	return nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

type authFixture struct {
	service   Service
	repo      *fakeAuthRepo
	companies *fakeCompanyStore
	employees *fakeEmployeeStore
	sessions  *fakeSessionManager
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	repo := newFakeAuthRepo()
	companyStore := newFakeCompanyStore()
	employeeStore := newFakeEmployeeStore()
	sessions := &fakeSessionManager{}

	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Companies: companyStore,
		Employees: employeeStore,
		Tx:        fakeTxRunner{},
		Sessions:  sessions,
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "payrollz-test",
			ExpirationMinutes: 60,
			SessionTTLMinutes: 43200,
		},
		Password: testPasswordConfig(),
		Logger:   logger.New(logger.Options{ServiceName: "auth-test"}),
		Now:      func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	return &authFixture{
		service:   svc,
		repo:      repo,
		companies: companyStore,
		employees: employeeStore,
		sessions:  sessions,
	}
}

func TestRegisterCreatesAdminAndCompany(t *testing.T) {
	fx := newAuthFixture(t)

	result, err := fx.service.Register(context.Background(), RegisterInput{
		Email:       "Owner@Example.com",
		Password:    "correct horse battery staple",
		CompanyName: "Acme Robotics",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a signed token")
	}
	if result.User.Role != enums.UserRoleAdmin {
		t.Fatalf("role = %s, want admin", result.User.Role)
	}
	if result.User.Email != "owner@example.com" {
		t.Fatalf("email not normalized: %s", result.User.Email)
	}
	if result.User.CompanyID == nil {
		t.Fatal("expected a linked company")
	}
	company, err := fx.companies.FindByID(context.Background(), *result.User.CompanyID)
	if err != nil {
		t.Fatalf("company not persisted: %v", err)
	}
	if company.OwnerUserID != result.User.ID {
		t.Fatal("company owner does not match registered user")
	}
	if len(fx.sessions.opened) != 1 {
		t.Fatalf("sessions opened = %d, want 1", len(fx.sessions.opened))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t)

	input := RegisterInput{Email: "dup@example.com", Password: "pw-one-two-three", CompanyName: "First Co"}
	if _, err := fx.service.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := fx.service.Register(context.Background(), input)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	fx := newAuthFixture(t)
	registered, err := fx.service.Register(context.Background(), RegisterInput{
		Email:       "login@example.com",
		Password:    "pw-one-two-three",
		CompanyName: "Login Co",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := fx.service.Login(context.Background(), LoginInput{
		Email:    "login@example.com",
		Password: "pw-one-two-three",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.User.ID != registered.User.ID {
		t.Fatal("login returned a different user")
	}
	if len(fx.sessions.opened) != 2 {
		t.Fatalf("sessions opened = %d, want 2", len(fx.sessions.opened))
	}
	user := fx.repo.users[registered.User.ID]
	if user.LastLoginAt == nil {
		t.Fatal("last login timestamp not recorded")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	fx := newAuthFixture(t)
	if _, err := fx.service.Register(context.Background(), RegisterInput{
		Email:       "login@example.com",
		Password:    "pw-one-two-three",
		CompanyName: "Login Co",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := fx.service.Login(context.Background(), LoginInput{
		Email:    "login@example.com",
		Password: "wrong",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	fx := newAuthFixture(t)
	registered, err := fx.service.Register(context.Background(), RegisterInput{
		Email:       "gone@example.com",
		Password:    "pw-one-two-three",
		CompanyName: "Gone Co",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	fx.repo.users[registered.User.ID].IsActive = false

	_, err = fx.service.Login(context.Background(), LoginInput{
		Email:    "gone@example.com",
		Password: "pw-one-two-three",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	fx := newAuthFixture(t)

	if err := fx.service.Logout(context.Background(), "jti-123"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(fx.sessions.revoked) != 1 || fx.sessions.revoked[0] != "jti-123" {
		t.Fatalf("revoked = %v, want [jti-123]", fx.sessions.revoked)
	}
}

func TestClaimInviteLinksEmployee(t *testing.T) {
	fx := newAuthFixture(t)

	invite := "inv-token-abc"
	wallet := "0x52908400098527886E0F7030069857D2E4169EE7"
	employee := &models.Employee{
		ID:          uuid.New(),
		CompanyID:   uuid.New(),
		Name:        "Jordan Doe",
		Email:       "jordan@example.com",
		SalaryUSDC:  "5000.000000",
		InviteToken: &invite,
		IsActive:    true,
	}
	fx.employees.employees[employee.ID] = employee

	result, err := fx.service.ClaimInvite(context.Background(), ClaimInviteInput{
		InviteToken:   invite,
		Password:      "pw-one-two-three",
		WalletAddress: &wallet,
	})
	if err != nil {
		t.Fatalf("ClaimInvite: %v", err)
	}
	if result.User.Role != enums.UserRoleEmployee {
		t.Fatalf("role = %s, want employee", result.User.Role)
	}
	if result.User.EmployeeID == nil || *result.User.EmployeeID != employee.ID {
		t.Fatal("result not linked to the invited employee")
	}

	stored := fx.employees.employees[employee.ID]
	if stored.InviteToken != nil {
		t.Fatal("invite token should be cleared after claim")
	}
	if stored.UserID == nil || *stored.UserID != result.User.ID {
		t.Fatal("employee row not linked to the new user")
	}
	if stored.ClaimedAt == nil {
		t.Fatal("claimed_at not set")
	}
	if stored.WalletAddress == nil || *stored.WalletAddress != wallet {
		t.Fatal("wallet address not stored")
	}

	// The same token must not work twice.
	_, err = fx.service.ClaimInvite(context.Background(), ClaimInviteInput{
		InviteToken: invite,
		Password:    "pw-one-two-three",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND on reuse, got %v", err)
	}
}

func TestClaimInviteRejectsBadWallet(t *testing.T) {
	fx := newAuthFixture(t)

	bad := "not-an-address"
	_, err := fx.service.ClaimInvite(context.Background(), ClaimInviteInput{
		InviteToken:   "whatever",
		Password:      "pw-one-two-three",
		WalletAddress: &bad,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestClaimInviteAlreadyLinked(t *testing.T) {
	fx := newAuthFixture(t)

	invite := "inv-token-linked"
	linkedUser := uuid.New()
	employee := &models.Employee{
		ID:          uuid.New(),
		CompanyID:   uuid.New(),
		Name:        "Taken",
		Email:       "taken@example.com",
		SalaryUSDC:  "1.000000",
		InviteToken: &invite,
		UserID:      &linkedUser,
	}
	fx.employees.employees[employee.ID] = employee

	_, err := fx.service.ClaimInvite(context.Background(), ClaimInviteInput{
		InviteToken: invite,
		Password:    "pw-one-two-three",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := security.HashPassword("s3cret-pass", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	ok, err := security.VerifyPassword("s3cret-pass", hash)
	if err != nil || !ok {
		t.Fatalf("expected hash to verify, ok=%v err=%v", ok, err)
	}
	ok, err = security.VerifyPassword("other", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}
