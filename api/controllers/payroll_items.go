package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/payrollz/payrollz-backend/api/responses"
	"github.com/payrollz/payrollz-backend/api/validators"
	"github.com/payrollz/payrollz-backend/internal/payments"
	"github.com/payrollz/payrollz-backend/internal/payroll"
	"github.com/payrollz/payrollz-backend/pkg/logger"
)

type createItemRequest struct {
	BatchID    uuid.UUID `json:"batch_id" validate:"required"`
	EmployeeID uuid.UUID `json:"employee_id" validate:"required"`
	AmountUSDC string    `json:"amount_usdc" validate:"required,max=32"`
}

func ItemCreate(svc payroll.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), owner, payroll.CreateItemInput{
			BatchID:    body.BatchID,
			EmployeeID: body.EmployeeID,
			AmountUSDC: body.AmountUSDC,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ItemList(svc payroll.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batchID, err := queryUUID(r, "batchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByBatch(r.Context(), owner, batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ItemPay triggers the payment attempt for one item. Business failures (no
// wallet, insufficient balance, lost claim race) come back as 200 with
// ok=false; only auth/validation/infrastructure faults use error statuses.
func ItemPay(authz payroll.Service, pay payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authz.AuthorizeItem(r.Context(), owner, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := pay.Pay(logg.WithItemID(r.Context(), itemID.String()), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

func ItemConfirm(authz payroll.Service, pay payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authz.AuthorizeItem(r.Context(), owner, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := pay.ConfirmItem(logg.WithItemID(r.Context(), itemID.String()), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

// ItemConfirmSubmitted sweeps every submitted item in a batch against mined
// receipts and returns the aggregate report.
func ItemConfirmSubmitted(authz payroll.Service, pay payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batchID, err := queryUUID(r, "batchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := authz.AuthorizeBatch(r.Context(), owner, batchID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := pay.ConfirmBatch(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
