package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajidhasan/farmcart-backend/pkg/enums"
)

// StockTransaction is the immutable audit record paired with every stock
// movement. Settlement writes exactly one OUT row per order item.
type StockTransaction struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID                  `gorm:"column:product_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID                 `gorm:"column:order_id;type:uuid;index"`
	Quantity    int                        `gorm:"column:quantity;not null"`
	Type        enums.StockTransactionType `gorm:"column:type;type:text;not null"`
	Description string                     `gorm:"column:description"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
