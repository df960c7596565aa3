package companies

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/pkg/db/models"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
)

type fakeRepo struct {
	companies map[uuid.UUID]*models.Company
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{companies: map[uuid.UUID]*models.Company{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	company.ID = uuid.New()
	f.companies[company.ID] = company
	return company, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, ok := f.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return company, nil
}

func (f *fakeRepo) FindByIDWithEmployees(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRepo) ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]models.Company, error) {
	var out []models.Company
	for _, company := range f.companies {
		if company.OwnerUserID == ownerUserID {
			out = append(out, *company)
		}
	}
	return out, nil
}

func TestCreateTrimsName(t *testing.T) {
	svc, err := NewService(newFakeRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	company, err := svc.Create(context.Background(), CreateCompanyInput{
		Name:        "  Acme Labs  ",
		OwnerUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	if company.Name != "Acme Labs" {
		t.Fatalf("expected trimmed name, got %q", company.Name)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc, err := NewService(newFakeRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateCompanyInput{Name: "   "})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestListScopedToOwner(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ownerID := uuid.New()
	if _, err := svc.Create(context.Background(), CreateCompanyInput{Name: "Mine", OwnerUserID: ownerID}); err != nil {
		t.Fatalf("create company: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateCompanyInput{Name: "Theirs", OwnerUserID: uuid.New()}); err != nil {
		t.Fatalf("create company: %v", err)
	}

	list, err := svc.List(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("list companies: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Mine" {
		t.Fatalf("expected only the owner's company, got %+v", list)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ownerID := uuid.New()
	company, err := svc.Create(context.Background(), CreateCompanyInput{Name: "Acme", OwnerUserID: ownerID})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}

	if _, err := svc.Get(context.Background(), company.ID, ownerID); err != nil {
		t.Fatalf("owner should read the company: %v", err)
	}

	_, err = svc.Get(context.Background(), company.ID, uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for stranger, got %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New(), ownerID)
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown company, got %v", err)
	}
}
