package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sajidhasan/farmcart-backend/api/responses"
	"github.com/sajidhasan/farmcart-backend/api/validators"
	"github.com/sajidhasan/farmcart-backend/internal/catalog"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
	"github.com/sajidhasan/farmcart-backend/pkg/pagination"
)

type listEnvelope struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

// CatalogProducts lists the storefront products.
func CatalogProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := catalog.ListProductsParams{
			Search:           validators.SanitizeString(r.URL.Query().Get("search"), 120),
			SubscriptionOnly: queryBool(r, "subscription_only"),
			Limit:            pagination.NormalizeLimit(queryInt(r, "limit", 0)),
			Offset:           queryInt(r, "offset", 0),
		}
		if raw := r.URL.Query().Get("category_id"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				params.CategoryID = &id
			}
		}

		items, total, err := svc.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listEnvelope{Items: items, Total: total})
	}
}

// CatalogProduct returns one product.
func CatalogProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CatalogCategories lists product categories.
func CatalogCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CatalogPlans lists the active subscription plans.
func CatalogPlans(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := svc.ListPlans(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plans)
	}
}

// CatalogPlan returns one subscription plan.
func CatalogPlan(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "planID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.GetPlan(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}
