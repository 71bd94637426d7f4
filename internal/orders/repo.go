package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
)

// Repository exposes order and order-tracking persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	HasTracking(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (bool, error)
	CreateTracking(ctx context.Context, tracking *models.OrderTracking) error
	DeleteTrackings(ctx context.Context, orderID uuid.UUID, statuses []enums.OrderStatus) error
	ListTracking(ctx context.Context, orderID uuid.UUID) ([]models.OrderTracking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("customer_id = ?", customerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var orders []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) HasTracking(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderTracking{}).
		Where("order_id = ? AND status = ?", orderID, status).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateTracking(ctx context.Context, tracking *models.OrderTracking) error {
	return r.db.WithContext(ctx).Create(tracking).Error
}

func (r *repository) DeleteTrackings(ctx context.Context, orderID uuid.UUID, statuses []enums.OrderStatus) error {
	if len(statuses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("order_id = ? AND status IN ?", orderID, statuses).
		Delete(&models.OrderTracking{}).Error
}

func (r *repository) ListTracking(ctx context.Context, orderID uuid.UUID) ([]models.OrderTracking, error) {
	var trackings []models.OrderTracking
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&trackings).Error
	if err != nil {
		return nil, err
	}
	return trackings, nil
}
