package controllers

import (
	"net/http"

	"github.com/cargodesk/cargodesk-backend/api/responses"
	"github.com/cargodesk/cargodesk-backend/api/validators"
	"github.com/cargodesk/cargodesk-backend/internal/extraction"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
)

type extractRequest struct {
	EmailText string `json:"email_text" validate:"required,min=1"`
}

// Extract turns pasted email text into a draft row the client can review
// before posting.
func Extract(svc extraction.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req extractRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Extract(r.Context(), req.EmailText)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}
