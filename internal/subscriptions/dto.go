package subscriptions

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	"github.com/sajidhasan/farmcart-backend/pkg/types"
)

// CreateSubscriptionInput enrolls a customer in a plan.
type CreateSubscriptionInput struct {
	CustomerID      uuid.UUID           `json:"-"`
	PlanID          uuid.UUID           `json:"plan_id" validate:"required"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"required"`
	ShippingAddress *types.Address      `json:"shipping_address" validate:"required"`
	StartDate       *time.Time          `json:"start_date"`
}

// MaterializeResult reports one scheduler pass over due subscriptions.
type MaterializeResult struct {
	OrdersCreated int
	Paused        int
	Failed        int
}
