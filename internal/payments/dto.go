package payments

import (
	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
)

// DispatchResult is the outcome of a payment attempt. RedirectURL is set only
// for gateway payments; the client must send the customer there to pay.
type DispatchResult struct {
	Payment     *models.Payment `json:"payment"`
	RedirectURL string          `json:"redirect_url,omitempty"`
}

// GatewayCallback is the form payload SSLCommerz posts to the success and
// failure endpoints.
type GatewayCallback struct {
	TransactionID string `json:"tran_id"`
	ValID         string `json:"val_id"`
	Amount        string `json:"amount"`
	CardType      string `json:"card_type"`
	FailedReason  string `json:"error"`
}
