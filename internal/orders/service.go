package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type stockConsumer interface {
	DecrementForOrderWithTx(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type walletSettler interface {
	SettleHoldWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error)
}

type paymentFinisher interface {
	CompleteLatestForOrderWithTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, method enums.PaymentMethod) error
}

type deliveryMirror interface {
	MirrorOrderStatusWithTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus) error
}

type notifier interface {
	NotifyOrderStatus(ctx context.Context, customerID, orderID uuid.UUID, status enums.OrderStatus)
}

// Service owns order creation and the order status state machine.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus enums.OrderStatus) (*models.Order, error)
	GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, int64, error)
	Tracking(ctx context.Context, orderID uuid.UUID) ([]models.OrderTracking, error)
}

type service struct {
	tx            txRunner
	repo          Repository
	products      productLoader
	inventory     stockConsumer
	wallet        walletSettler
	payments      paymentFinisher
	subscriptions deliveryMirror
	notify        notifier
	now           func() time.Time
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	TxRunner      txRunner
	Repo          Repository
	Products      productLoader
	Inventory     stockConsumer
	Wallet        walletSettler
	Payments      paymentFinisher
	Subscriptions deliveryMirror
	Notifier      notifier
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment finisher required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("delivery mirror required")
	}
	return &service{
		tx:            params.TxRunner,
		repo:          params.Repo,
		products:      params.Products,
		inventory:     params.Inventory,
		wallet:        params.Wallet,
		payments:      params.Payments,
		subscriptions: params.Subscriptions,
		notify:        params.Notifier,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// trackingDescriptions are the customer-facing tracking log lines.
var trackingDescriptions = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "Order placed",
	enums.OrderStatusConfirmed:  "Order confirmed",
	enums.OrderStatusProcessing: "Order is being prepared",
	enums.OrderStatusShipped:    "Order handed to courier",
	enums.OrderStatusDelivered:  "Order delivered",
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if input.ShippingAddress == nil || input.ShippingAddress.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order := &models.Order{
			CustomerID:      input.CustomerID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   input.PaymentMethod,
			ShippingAddress: input.ShippingAddress,
		}

		total := decimal.Zero
		for _, line := range input.Items {
			if line.Quantity <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
			}
			product, err := s.products.FindProductByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
						WithDetails(map[string]string{"product_id": line.ProductID.String()})
				}
				return err
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %s is not available", product.Name))
			}
			if product.IsPreorder {
				order.IsPreorder = true
			}

			subtotal := product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   product.ID,
				Quantity:    line.Quantity,
				UnitPrice:   product.UnitPrice,
				PackageSize: product.PackageSize,
				Subtotal:    subtotal,
			})
			total = total.Add(subtotal)
		}
		order.TotalAmount = total

		if err := repo.Create(ctx, order); err != nil {
			return err
		}
		if err := repo.CreateTracking(ctx, &models.OrderTracking{
			OrderID:     order.ID,
			Status:      enums.OrderStatusPending,
			Description: trackingDescriptions[enums.OrderStatusPending],
		}); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.NotifyOrderStatus(ctx, created.CustomerID, created.ID, created.Status)
	}
	return created, nil
}

// UpdateStatus moves an order to the requested status. Forward moves advance
// one step at a time; backward moves are allowed and rewrite the tracking log.
// Delivery is final and triggers settlement side effects for COD and
// wallet-held funds.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus enums.OrderStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !newStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", newStatus))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}

		if order.Status == newStatus {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("Order is already %s", newStatus))
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Delivered orders cannot change status")
		}
		if newStatus.Compare(order.Status) > 1 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("Order cannot skip from %s to %s", order.Status, newStatus))
		}

		// Moving backward rewrites history: tracking rows ahead of the new
		// status are purged so the log matches the visible state.
		if newStatus.Compare(order.Status) < 0 {
			var ahead []enums.OrderStatus
			for _, status := range enums.OrderStatuses() {
				if status.Compare(newStatus) > 0 {
					ahead = append(ahead, status)
				}
			}
			if err := repo.DeleteTrackings(ctx, order.ID, ahead); err != nil {
				return err
			}
		}

		exists, err := repo.HasTracking(ctx, order.ID, newStatus)
		if err != nil {
			return err
		}
		if !exists {
			if err := repo.CreateTracking(ctx, &models.OrderTracking{
				OrderID:     order.ID,
				Status:      newStatus,
				Description: trackingDescriptions[newStatus],
			}); err != nil {
				return err
			}
		}

		fields := map[string]any{"status": newStatus}

		if newStatus == enums.OrderStatusDelivered {
			now := s.now()
			fields["delivered_at"] = now
			order.DeliveredAt = &now

			// COD settles at the doorstep: money collected, stock consumed.
			if order.PaymentMethod == enums.PaymentMethodCOD && order.PaymentStatus != enums.PaymentStatusCompleted {
				if err := s.inventory.DecrementForOrderWithTx(ctx, tx, order); err != nil {
					return err
				}
				if err := s.payments.CompleteLatestForOrderWithTx(ctx, tx, order.ID, enums.PaymentMethodCOD); err != nil {
					return err
				}
				fields["payment_status"] = enums.PaymentStatusCompleted
				order.PaymentStatus = enums.PaymentStatusCompleted
			}
		}

		if order.IsSubscription {
			// Wallet-paid recurring orders settle their fund hold on delivery.
			if order.PaymentMethod == enums.PaymentMethodWallet &&
				newStatus == enums.OrderStatusDelivered &&
				order.PaymentStatus != enums.PaymentStatusCompleted {
				if _, err := s.wallet.SettleHoldWithTx(ctx, tx, order.CustomerID, order.ID, order.TotalAmount); err != nil {
					return err
				}
				if err := s.inventory.DecrementForOrderWithTx(ctx, tx, order); err != nil {
					return err
				}
				if err := s.payments.CompleteLatestForOrderWithTx(ctx, tx, order.ID, enums.PaymentMethodWallet); err != nil {
					return err
				}
				fields["payment_status"] = enums.PaymentStatusCompleted
				order.PaymentStatus = enums.PaymentStatusCompleted
			}
			if err := s.subscriptions.MirrorOrderStatusWithTx(ctx, tx, order.ID, newStatus); err != nil {
				return err
			}
		}

		if err := repo.UpdateFields(ctx, order.ID, fields); err != nil {
			return err
		}
		order.Status = newStatus
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.NotifyOrderStatus(ctx, updated.CustomerID, updated.ID, updated.Status)
	}
	return updated, nil
}

func (s *service) GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil || customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and customer id required")
	}
	order, err := s.repo.FindByIDForCustomer(ctx, orderID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	if customerID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	return s.repo.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *service) Tracking(ctx context.Context, orderID uuid.UUID) ([]models.OrderTracking, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.repo.ListTracking(ctx, orderID)
}
