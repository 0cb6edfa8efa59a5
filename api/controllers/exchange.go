package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/cargodesk/cargodesk-backend/api/responses"
	"github.com/cargodesk/cargodesk-backend/internal/exchange"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
)

const maxImportBytes = 32 << 20

func ContainerExport(svc exchange.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Export(r.Context(), containerParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFile(w, result.Filename, result.ContentType, result.Data)
	}
}

// ContainerImport accepts the workbook as a multipart "file" field or as the
// raw request body.
func ContainerImport(svc exchange.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := exchange.ParseImportMode(r.URL.Query().Get("mode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		workbook, err := readWorkbook(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Import(r.Context(), containerParam(r), mode, workbook)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func readWorkbook(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "multipart field 'file' is required")
		}
		defer func() { _ = file.Close() }()
		payload, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file")
		}
		return payload, nil
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	if len(payload) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook payload is required")
	}
	return payload, nil
}
