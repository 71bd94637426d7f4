package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sajidhasan/farmcart-backend/pkg/enums"
)

// WalletTransaction is a single ledger line against a wallet. Lines are
// created pending and resolved to completed/failed as settlement happens.
type WalletTransaction struct {
	ID          uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID    uuid.UUID                     `gorm:"column:wallet_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID                    `gorm:"column:order_id;type:uuid;index"`
	Amount      decimal.Decimal               `gorm:"column:amount;type:numeric(14,2);not null"`
	Type        enums.WalletTransactionType   `gorm:"column:type;type:text;not null"`
	Status      enums.WalletTransactionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Description string                        `gorm:"column:description"`
	CreatedAt   time.Time                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                     `gorm:"column:updated_at;autoUpdateTime"`
}
