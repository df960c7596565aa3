package controllers

import (
	"net/http"

	"github.com/payrollz/payrollz-backend/api/responses"
	"github.com/payrollz/payrollz-backend/api/validators"
	"github.com/payrollz/payrollz-backend/internal/companies"
	"github.com/payrollz/payrollz-backend/pkg/logger"
)

type createCompanyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

func CompanyCreate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createCompanyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Create(r.Context(), companies.CreateCompanyInput{
			Name:        validators.SanitizeString(body.Name, 120),
			OwnerUserID: owner,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, company)
	}
}

func CompanyList(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CompanyDetail(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		companyID, err := pathUUID(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Get(r.Context(), companyID, owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, company)
	}
}
