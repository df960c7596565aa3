package controllers

import (
	"net/http"

	"github.com/payrollz/payrollz-backend/api/responses"
	"github.com/payrollz/payrollz-backend/api/validators"
	"github.com/payrollz/payrollz-backend/internal/auth"
	"github.com/payrollz/payrollz-backend/internal/payroll"
	"github.com/payrollz/payrollz-backend/pkg/logger"
	"github.com/payrollz/payrollz-backend/pkg/pagination"
)

type claimInviteRequest struct {
	InviteToken   string  `json:"invite_token" validate:"required,min=8,max=64"`
	Password      string  `json:"password" validate:"required,min=10,max=128"`
	WalletAddress *string `json:"wallet_address" validate:"omitempty,max=64"`
}

type payslipPage struct {
	Items any    `json:"items"`
	Next  string `json:"next_cursor,omitempty"`
}

// MeClaim turns an invite token into a login-capable employee account. The
// route is public: the invitee has no credentials yet.
func MeClaim(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body claimInviteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ClaimInvite(r.Context(), auth.ClaimInviteInput{
			InviteToken:   body.InviteToken,
			Password:      body.Password,
			WalletAddress: body.WalletAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func Me(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Me(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func MePayroll(svc payroll.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		items, next, err := svc.MyPayroll(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payslipPage{Items: items, Next: next})
	}
}

func MePayrollItem(svc payroll.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.MyPayrollItem(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
