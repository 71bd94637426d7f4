package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. StockQuantity counts base units;
// PackageSize is the number of base units shipped per ordered package.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID     *uuid.UUID      `gorm:"column:category_id;type:uuid;index"`
	Name           string          `gorm:"column:name;not null"`
	SKU            string          `gorm:"column:sku;not null;unique"`
	Description    string          `gorm:"column:description"`
	Tags           pq.StringArray  `gorm:"column:tags;type:text[]"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	PackageSize    int             `gorm:"column:package_size;not null;default:1"`
	StockQuantity  int             `gorm:"column:stock_quantity;not null;default:0"`
	ReorderLevel   int             `gorm:"column:reorder_level;not null;default:0"`
	IsSubscription bool            `gorm:"column:is_subscription;not null;default:false"`
	IsPreorder     bool            `gorm:"column:is_preorder;not null;default:false"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
