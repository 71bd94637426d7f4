package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted customer-facing message. Delivery over the
// realtime channel is fire-and-forget; the row is the durable copy.
type Notification struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID  `gorm:"column:customer_id;type:uuid;not null;index"`
	OrderID    *uuid.UUID `gorm:"column:order_id;type:uuid"`
	Title      string     `gorm:"column:title;not null"`
	Message    string     `gorm:"column:message;not null"`
	ReadAt     *time.Time `gorm:"column:read_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
