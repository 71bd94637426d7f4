package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
)

// Service owns stock movement. Every decrement is conditional on sufficient
// stock and leaves an OUT audit row per order item.
type Service interface {
	DecrementForOrderWithTx(ctx context.Context, tx *gorm.DB, order *models.Order) error
	Restock(ctx context.Context, productID uuid.UUID, units int, description string) (*models.StockTransaction, error)
	Movements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockTransaction, error)
	LowStock(ctx context.Context) ([]models.Product, error)
}

type service struct {
	repo Repository
}

// NewService builds the inventory service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

// DecrementForOrderWithTx consumes stock for every line on the order. Each
// line takes quantity multiplied by its package size in base units. The
// caller's transaction rolls the whole order back if any line is short.
func (s *service) DecrementForOrderWithTx(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if len(order.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	repo := s.repo.WithTx(tx)

	for _, item := range order.Items {
		units := item.StockUnits()
		if units <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order item quantity must be positive")
		}
		affected, err := repo.DecrementStock(ctx, item.ProductID, units)
		if err != nil {
			return err
		}
		if affected == 0 {
			if _, err := repo.FindProduct(ctx, item.ProductID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
						WithDetails(map[string]string{"product_id": item.ProductID.String()})
				}
				return err
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]string{"product_id": item.ProductID.String()})
		}

		orderID := order.ID
		movement := &models.StockTransaction{
			ProductID:   item.ProductID,
			OrderID:     &orderID,
			Quantity:    units,
			Type:        enums.StockTransactionTypeOut,
			Description: fmt.Sprintf("Stock out for order %s", order.ID),
		}
		if err := repo.CreateStockTransaction(ctx, movement); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Restock(ctx context.Context, productID uuid.UUID, units int, description string) (*models.StockTransaction, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if units <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock units must be positive")
	}
	if _, err := s.repo.FindProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	if err := s.repo.IncrementStock(ctx, productID, units); err != nil {
		return nil, err
	}
	if description == "" {
		description = "Manual restock"
	}
	movement := &models.StockTransaction{
		ProductID:   productID,
		Quantity:    units,
		Type:        enums.StockTransactionTypeIn,
		Description: description,
	}
	if err := s.repo.CreateStockTransaction(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *service) Movements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockTransaction, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.repo.ListMovementsByProduct(ctx, productID, limit)
}

func (s *service) LowStock(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListBelowReorderLevel(ctx)
}
