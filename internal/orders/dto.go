package orders

import (
	"github.com/google/uuid"

	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	"github.com/sajidhasan/farmcart-backend/pkg/types"
)

// CreateOrderItemInput is one requested product line at checkout.
type CreateOrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput is the checkout payload.
type CreateOrderInput struct {
	CustomerID      uuid.UUID              `json:"-"`
	PaymentMethod   enums.PaymentMethod    `json:"payment_method" validate:"required"`
	ShippingAddress *types.Address         `json:"shipping_address" validate:"required"`
	Items           []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateStatusInput moves an order through the state machine.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}
