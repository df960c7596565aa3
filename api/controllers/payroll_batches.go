package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/payrollz/payrollz-backend/api/responses"
	"github.com/payrollz/payrollz-backend/api/validators"
	"github.com/payrollz/payrollz-backend/internal/batches"
	"github.com/payrollz/payrollz-backend/pkg/logger"
)

type createBatchRequest struct {
	CompanyID uuid.UUID `json:"company_id" validate:"required"`
	Title     string    `json:"title" validate:"required,min=1,max=160"`
	PayDate   time.Time `json:"pay_date" validate:"required"`
	Note      *string   `json:"note" validate:"omitempty,max=500"`
}

func BatchCreate(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createBatchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.Create(r.Context(), owner, batches.CreateBatchInput{
			CompanyID: body.CompanyID,
			Title:     validators.SanitizeString(body.Title, 160),
			PayDate:   body.PayDate,
			Note:      body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, batch)
	}
}

func BatchList(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		companyID, err := queryUUID(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), owner, companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func BatchDetail(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batchID, err := pathUUID(r, "batchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.Get(r.Context(), owner, batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}
