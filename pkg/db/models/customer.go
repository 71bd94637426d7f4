package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajidhasan/farmcart-backend/pkg/enums"
)

// Customer is an account that places orders and owns at most one wallet.
type Customer struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string             `gorm:"column:email;not null;unique"`
	Phone        string             `gorm:"column:phone;not null"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	FirstName    string             `gorm:"column:first_name;not null"`
	LastName     string             `gorm:"column:last_name"`
	Role         enums.CustomerRole `gorm:"column:role;type:text;not null;default:'customer'"`
	Locale       string             `gorm:"column:locale;not null;default:'bn'"`
	IsActive     bool               `gorm:"column:is_active;not null;default:true"`
	Wallet       *Wallet            `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
