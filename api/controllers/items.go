package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cargodesk/cargodesk-backend/api/responses"
	"github.com/cargodesk/cargodesk-backend/api/validators"
	"github.com/cargodesk/cargodesk-backend/internal/items"
	pkgerrors "github.com/cargodesk/cargodesk-backend/pkg/errors"
	"github.com/cargodesk/cargodesk-backend/pkg/logger"
)

func itemIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id")
	}
	return id, nil
}

func ItemList(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListByContainer(r.Context(), containerParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ItemAdd appends a defaulted row to the container; the response carries the
// store-assigned id the client keys further edits on.
func ItemAdd(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.Add(r.Context(), containerParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// itemPatchRequest mirrors the editable columns. Numeric fields are free
// text by contract; absent fields stay untouched.
type itemPatchRequest struct {
	ReferenceCode   *string   `json:"reference_code"`
	Supplier        *string   `json:"supplier"`
	CBM             *string   `json:"cbm"`
	Cartons         *string   `json:"cartons"`
	GrossWeight     *string   `json:"gross_weight"`
	ProductCost     *string   `json:"product_cost"`
	FreightCost     *string   `json:"freight_cost"`
	Status          *string   `json:"status"`
	Awaiting        *[]string `json:"awaiting"`
	ProductionDays  *string   `json:"production_days"`
	ProductionReady *string   `json:"production_ready"`
	Client          *string   `json:"client"`
}

func (req itemPatchRequest) toInput() items.UpdateItemInput {
	return items.UpdateItemInput{
		ReferenceCode:   req.ReferenceCode,
		Supplier:        req.Supplier,
		CBM:             req.CBM,
		Cartons:         req.Cartons,
		GrossWeight:     req.GrossWeight,
		ProductCost:     req.ProductCost,
		FreightCost:     req.FreightCost,
		Status:          req.Status,
		Awaiting:        req.Awaiting,
		ProductionDays:  req.ProductionDays,
		ProductionReady: req.ProductionReady,
		Client:          req.Client,
	}
}

func ItemPatch(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req itemPatchRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Patch(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ItemDelete(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
