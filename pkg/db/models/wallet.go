package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet carries a customer's spendable balance plus the portion reserved
// against future recurring charges. LockedBalance never exceeds Balance.
type Wallet struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;unique"`
	Balance       decimal.Decimal `gorm:"column:balance;type:numeric(14,2);not null;default:0"`
	LockedBalance decimal.Decimal `gorm:"column:locked_balance;type:numeric(14,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Available returns the spendable portion of the balance.
func (w Wallet) Available() decimal.Decimal {
	return w.Balance.Sub(w.LockedBalance)
}
