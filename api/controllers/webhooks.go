package controllers

import (
	"net/http"
	"strings"

	"github.com/sajidhasan/farmcart-backend/api/responses"
	"github.com/sajidhasan/farmcart-backend/internal/payments"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
)

// SSLCommerz posts callbacks as form-encoded bodies.
func callbackFromForm(r *http.Request) (payments.GatewayCallback, error) {
	if err := r.ParseForm(); err != nil {
		return payments.GatewayCallback{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid callback payload")
	}
	return payments.GatewayCallback{
		TransactionID: strings.TrimSpace(r.FormValue("tran_id")),
		ValID:         strings.TrimSpace(r.FormValue("val_id")),
		Amount:        strings.TrimSpace(r.FormValue("amount")),
		CardType:      strings.TrimSpace(r.FormValue("card_type")),
		FailedReason:  strings.TrimSpace(r.FormValue("error")),
	}, nil
}

// SSLCommerzSuccess handles the gateway success callback. Replays are safe;
// the handler validates with the gateway before settling.
func SSLCommerzSuccess(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callback, err := callbackFromForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payment, err := svc.HandleGatewaySuccess(r.Context(), callback)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// SSLCommerzFail handles the gateway failure and cancel callbacks.
func SSLCommerzFail(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callback, err := callbackFromForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payment, err := svc.HandleGatewayFailure(r.Context(), callback)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// SSLCommerzIPN handles the instant payment notification, routing on the
// reported transaction status.
func SSLCommerzIPN(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callback, err := callbackFromForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := strings.ToUpper(strings.TrimSpace(r.FormValue("status")))
		var payment any
		switch status {
		case "VALID", "VALIDATED":
			payment, err = svc.HandleGatewaySuccess(r.Context(), callback)
		default:
			payment, err = svc.HandleGatewayFailure(r.Context(), callback)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}
