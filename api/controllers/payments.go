package controllers

import (
	"net/http"

	"github.com/sajidhasan/farmcart-backend/api/responses"
	"github.com/sajidhasan/farmcart-backend/internal/orders"
	"github.com/sajidhasan/farmcart-backend/internal/payments"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
)

// PaymentDispatch runs the payment flow for the order's chosen method.
func PaymentDispatch(ordersSvc orders.Service, paymentsSvc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Customers can only pay their own orders.
		if _, err := ordersSvc.GetForCustomer(r.Context(), orderID, customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := paymentsSvc.CreatePayment(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PaymentList returns the payment attempts recorded against an order.
func PaymentList(ordersSvc orders.Service, paymentsSvc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := ordersSvc.GetForCustomer(r.Context(), orderID, customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := paymentsSvc.ListForOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
