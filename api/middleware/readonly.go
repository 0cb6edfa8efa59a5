package middleware

import (
	"net/http"

	"github.com/cargodesk/cargodesk-backend/api/responses"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
)

// ReadOnly short-circuits mutating requests when the read-only flag was set
// at boot. The guard runs before idempotency and any service code, so a
// rejected request leaves no trace in the store.
func ReadOnly(enabled bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeReadOnly, "service is in read-only mode"))
			}
		})
	}
}
