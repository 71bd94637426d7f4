package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
)

// Repository persists stock levels and the stock movement audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, units int) (int64, error)
	IncrementStock(ctx context.Context, productID uuid.UUID, units int) error
	CreateStockTransaction(ctx context.Context, txn *models.StockTransaction) error
	ListMovementsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockTransaction, error)
	ListBelowReorderLevel(ctx context.Context) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock subtracts units conditionally so stock never goes negative.
// The returned count is zero when the product lacked sufficient stock.
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, units int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, units).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", units))
	return result.RowsAffected, result.Error
}

func (r *repository) IncrementStock(ctx context.Context, productID uuid.UUID, units int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", units)).Error
}

func (r *repository) CreateStockTransaction(ctx context.Context, txn *models.StockTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListMovementsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var txns []models.StockTransaction
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) ListBelowReorderLevel(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = TRUE AND stock_quantity <= reorder_level").
		Order("stock_quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
