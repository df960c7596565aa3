package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/payrollz/payrollz-backend/api/responses"
	pkgerrors "github.com/payrollz/payrollz-backend/pkg/errors"
	"github.com/payrollz/payrollz-backend/pkg/logger"
)

const cronSecretHeader = "X-Cron-Secret"

// CronSecret guards the ops-only sweep endpoint with a shared secret. When no
// secret is configured the endpoint is disabled outright.
func CronSecret(secret string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(secret) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cron endpoint disabled"))
				return
			}
			provided := strings.TrimSpace(r.Header.Get(cronSecretHeader))
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid cron secret"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
