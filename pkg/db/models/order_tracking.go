package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajidhasan/farmcart-backend/pkg/enums"
)

// OrderTracking is an audit-log row recording a status the order has passed
// through. At most one row exists per (order, status); rows ahead of the
// current status are purged when an order is moved backwards.
type OrderTracking struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Description string            `gorm:"column:description"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
