package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/payrollz/payrollz-backend/api/responses"
	"github.com/payrollz/payrollz-backend/api/validators"
	"github.com/payrollz/payrollz-backend/internal/employees"
	"github.com/payrollz/payrollz-backend/pkg/logger"
)

type createEmployeeRequest struct {
	CompanyID  uuid.UUID `json:"company_id" validate:"required"`
	Name       string    `json:"name" validate:"required,min=1,max=120"`
	Email      string    `json:"email" validate:"required,email"`
	Position   *string   `json:"position" validate:"omitempty,max=120"`
	SalaryUSDC string    `json:"salary_usdc" validate:"omitempty,max=32"`
}

type updateEmployeeRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=120"`
	Position   *string `json:"position" validate:"omitempty,max=120"`
	SalaryUSDC *string `json:"salary_usdc" validate:"omitempty,max=32"`
	IsActive   *bool   `json:"is_active"`
}

// EmployeeCreate registers an employee and issues an invite token for account
// claiming. The token is only returned on this response.
func EmployeeCreate(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.Create(r.Context(), owner, employees.CreateEmployeeInput{
			CompanyID:  body.CompanyID,
			Name:       validators.SanitizeString(body.Name, 120),
			Email:      body.Email,
			Position:   body.Position,
			SalaryUSDC: body.SalaryUSDC,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, employee)
	}
}

func EmployeeList(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
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

func EmployeeUpdate(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employeeID, err := pathUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateEmployeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.Update(r.Context(), owner, employeeID, employees.UpdateEmployeeInput{
			Name:       body.Name,
			Position:   body.Position,
			SalaryUSDC: body.SalaryUSDC,
			IsActive:   body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}
