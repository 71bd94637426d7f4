package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sajidhasan/farmcart-backend/pkg/enums"
)

// Payment tracks one payment attempt for an order. TransactionID doubles as
// the external correlation key; for gateway payments it encodes the order id.
type Payment struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	WalletTransactionID *uuid.UUID          `gorm:"column:wallet_transaction_id;type:uuid"`
	Amount              decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null"`
	Method              enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status              enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TransactionID       string              `gorm:"column:transaction_id;not null;index"`
	FailureReason       *string             `gorm:"column:failure_reason"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
