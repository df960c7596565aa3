package controllers

import (
	"net/http"

	"github.com/payrollz/payrollz-backend/api/responses"
	"github.com/payrollz/payrollz-backend/internal/payments"
	"github.com/payrollz/payrollz-backend/pkg/logger"
)

// CronConfirmSubmitted sweeps all submitted items. The route sits behind the
// shared-secret middleware; scheduled platforms hit it instead of running a
// resident worker.
func CronConfirmSubmitted(pay payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := pay.SweepSubmitted(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
