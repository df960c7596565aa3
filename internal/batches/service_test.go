package batches

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payrollz/payrollz-backend/internal/companies"
	"github.com/payrollz/payrollz-backend/pkg/db/models"
	"github.com/payrollz/payrollz-backend/pkg/enums"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
)

type fakeRepo struct {
	batches map[uuid.UUID]*models.PayrollBatch
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{batches: map[uuid.UUID]*models.PayrollBatch{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, batch *models.PayrollBatch) (*models.PayrollBatch, error) {
	batch.ID = uuid.New()
	f.batches[batch.ID] = batch
	return batch, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.PayrollBatch, error) {
	batch, ok := f.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return batch, nil
}

func (f *fakeRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.PayrollBatch, error) {
	var out []models.PayrollBatch
	for _, batch := range f.batches {
		if batch.CompanyID == companyID {
			out = append(out, *batch)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PayrollBatchStatus) error {
	batch, ok := f.batches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	batch.Status = status
	return nil
}

type fakeCompanies struct {
	companies map[uuid.UUID]*models.Company
}

func (f *fakeCompanies) WithTx(tx *gorm.DB) companies.Repository { return f }

func (f *fakeCompanies) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	f.companies[company.ID] = company
	return company, nil
}

func (f *fakeCompanies) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, ok := f.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return company, nil
}

func (f *fakeCompanies) FindByIDWithEmployees(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeCompanies) ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]models.Company, error) {
	return nil, nil
}

func newFixture(t *testing.T) (Service, uuid.UUID, uuid.UUID) {
	t.Helper()
	ownerID := uuid.New()
	companyID := uuid.New()
	svc, err := NewService(ServiceParams{
		Repo: newFakeRepo(),
		Companies: &fakeCompanies{companies: map[uuid.UUID]*models.Company{
			companyID: {ID: companyID, OwnerUserID: ownerID},
		}},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, ownerID, companyID
}

func TestCreateBatchStartsAsDraft(t *testing.T) {
	svc, ownerID, companyID := newFixture(t)

	batch, err := svc.Create(context.Background(), ownerID, CreateBatchInput{
		CompanyID: companyID,
		Title:     " June payroll ",
		PayDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if batch.Status != enums.PayrollBatchStatusDraft {
		t.Fatalf("expected draft status, got %s", batch.Status)
	}
	if batch.Title != "June payroll" {
		t.Fatalf("expected trimmed title, got %q", batch.Title)
	}
}

func TestCreateBatchRequiresPayDate(t *testing.T) {
	svc, ownerID, companyID := newFixture(t)

	_, err := svc.Create(context.Background(), ownerID, CreateBatchInput{
		CompanyID: companyID,
		Title:     "June payroll",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestCreateBatchRejectsForeignCompany(t *testing.T) {
	svc, _, companyID := newFixture(t)

	_, err := svc.Create(context.Background(), uuid.New(), CreateBatchInput{
		CompanyID: companyID,
		Title:     "June payroll",
		PayDate:   time.Now(),
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, ownerID, companyID := newFixture(t)
	batch, err := svc.Create(context.Background(), ownerID, CreateBatchInput{
		CompanyID: companyID,
		Title:     "June payroll",
		PayDate:   time.Now(),
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	if _, err := svc.Get(context.Background(), ownerID, batch.ID); err != nil {
		t.Fatalf("owner should read the batch: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New(), batch.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for stranger, got %v", err)
	}

	_, err = svc.Get(context.Background(), ownerID, uuid.New())
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown batch, got %v", err)
	}
}
