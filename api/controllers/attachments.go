package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cargodesk/cargodesk-backend/api/responses"
	"github.com/cargodesk/cargodesk-backend/api/validators"
	"github.com/cargodesk/cargodesk-backend/internal/attachments"
	"github.com/cargodesk/cargodesk-backend/pkg/enums"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
)

func attachmentKindParam(r *http.Request) (enums.AttachmentKind, error) {
	kind, err := enums.ParseAttachmentKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid attachment kind")
	}
	return kind, nil
}

type attachmentUploadRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	MimeType string `json:"type"`
	Size     int64  `json:"size"`
	Data     string `json:"data" validate:"required"`
}

func AttachmentUpload(svc attachments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := attachmentKindParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req attachmentUploadRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Upload(r.Context(), id, kind, attachments.UploadInput{
			Name:      req.Name,
			MimeType:  req.MimeType,
			SizeBytes: req.Size,
			Data:      req.Data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AttachmentDelete(svc attachments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := attachmentKindParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Delete(r.Context(), id, kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AttachmentPreview(svc attachments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := attachmentKindParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.Preview(r.Context(), id, kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}
