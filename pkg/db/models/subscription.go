package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	"github.com/sajidhasan/farmcart-backend/pkg/types"
)

// SubscriptionPlan defines a recurring delivery offering for one product.
type SubscriptionPlan struct {
	ID        uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID                   `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string                      `gorm:"column:name;not null"`
	Price     decimal.Decimal             `gorm:"column:price;type:numeric(14,2);not null"`
	Frequency enums.SubscriptionFrequency `gorm:"column:frequency;type:text;not null"`
	IsActive  bool                        `gorm:"column:is_active;not null;default:true"`
	Product   *Product                    `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

// Subscription is a customer's enrollment in a plan. For wallet-paid
// subscriptions the plan price is held on the wallet until each delivery
// settles.
type Subscription struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID       uuid.UUID                `gorm:"column:customer_id;type:uuid;not null;index"`
	PlanID           uuid.UUID                `gorm:"column:plan_id;type:uuid;not null;index"`
	Status           enums.SubscriptionStatus `gorm:"column:status;type:text;not null;default:'active'"`
	PaymentMethod    enums.PaymentMethod      `gorm:"column:payment_method;type:text;not null"`
	ShippingAddress  *types.Address           `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	StartDate        time.Time                `gorm:"column:start_date;not null"`
	RenewalDate      time.Time                `gorm:"column:renewal_date;not null"`
	NextDeliveryDate *time.Time               `gorm:"column:next_delivery_date"`
	Plan             *SubscriptionPlan        `gorm:"foreignKey:PlanID"`
	Deliveries       []SubscriptionDelivery   `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// SubscriptionDelivery is one scheduled recurring order. Its status mirrors
// the underlying order's status.
type SubscriptionDelivery struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubscriptionID uuid.UUID            `gorm:"column:subscription_id;type:uuid;not null;index"`
	OrderID        *uuid.UUID           `gorm:"column:order_id;type:uuid;index"`
	DeliveryDate   time.Time            `gorm:"column:delivery_date;not null"`
	Status         enums.DeliveryStatus `gorm:"column:status;type:text;not null;default:'scheduled'"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
