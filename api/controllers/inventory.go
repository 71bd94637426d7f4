package controllers

import (
	"net/http"

	"github.com/sajidhasan/farmcart-backend/api/responses"
	"github.com/sajidhasan/farmcart-backend/api/validators"
	"github.com/sajidhasan/farmcart-backend/internal/inventory"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
	"github.com/sajidhasan/farmcart-backend/pkg/pagination"
)

type restockRequest struct {
	Units       int    `json:"units" validate:"required,gt=0"`
	Description string `json:"description"`
}

// ProductRestock records an inbound stock movement. Admin only.
func ProductRestock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req restockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.Restock(r.Context(), productID, req.Units, validators.SanitizeString(req.Description, 240))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, movement)
	}
}

// ProductMovements returns the stock ledger for a product. Admin only.
func ProductMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Movements(r.Context(), productID, pagination.NormalizeLimit(queryInt(r, "limit", 0)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// LowStockProducts lists products at or below their reorder level. Admin only.
func LowStockProducts(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
