package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sajidhasan/farmcart-backend/internal/orders"
	"github.com/sajidhasan/farmcart-backend/internal/payments"
	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type planLoader interface {
	FindPlanByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error)
}

type walletHolder interface {
	HoldFundsWithTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error)
	AttachHoldToOrderWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal) error
	ReleaseHoldWithTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal) error
}

type notifier interface {
	NotifySubscriptionEvent(ctx context.Context, customerID, subscriptionID uuid.UUID, message string)
}

// Service owns subscription enrollment, the wallet fund-hold lifecycle, and
// the recurring delivery engine.
type Service interface {
	Create(ctx context.Context, input CreateSubscriptionInput) (*models.Subscription, error)
	Cancel(ctx context.Context, subscriptionID, customerID uuid.UUID) (*models.Subscription, error)
	Pause(ctx context.Context, subscriptionID, customerID uuid.UUID) error
	Resume(ctx context.Context, subscriptionID, customerID uuid.UUID) error
	GetForCustomer(ctx context.Context, subscriptionID, customerID uuid.UUID) (*models.Subscription, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Subscription, error)
	MirrorOrderStatusWithTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus) error
	MaterializeDue(ctx context.Context, now time.Time) (*MaterializeResult, error)
}

type service struct {
	tx           txRunner
	repo         Repository
	plans        planLoader
	wallet       walletHolder
	ordersRepo   orders.Repository
	paymentsRepo payments.Repository
	notify       notifier
	logg         *logger.Logger
	now          func() time.Time
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	TxRunner     txRunner
	Repo         Repository
	Plans        planLoader
	Wallet       walletHolder
	OrdersRepo   orders.Repository
	PaymentsRepo payments.Repository
	Notifier     notifier
	Logger       *logger.Logger
}

// NewService builds the subscriptions service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	if params.Plans == nil {
		return nil, fmt.Errorf("plan loader required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.PaymentsRepo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	return &service{
		tx:           params.TxRunner,
		repo:         params.Repo,
		plans:        params.Plans,
		wallet:       params.Wallet,
		ordersRepo:   params.OrdersRepo,
		paymentsRepo: params.PaymentsRepo,
		notify:       params.Notifier,
		logg:         params.Logger,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// nextDate advances a date by one billing interval.
func nextDate(from time.Time, frequency enums.SubscriptionFrequency) (time.Time, error) {
	switch frequency {
	case enums.SubscriptionFrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case enums.SubscriptionFrequencyMonthly:
		return from.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "Invalid frequency")
	}
}

// Create enrolls the customer. Wallet subscriptions reserve the plan price up
// front so the first delivery can always settle.
func (s *service) Create(ctx context.Context, input CreateSubscriptionInput) (*models.Subscription, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.PlanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id required")
	}
	if input.PaymentMethod != enums.PaymentMethodWallet && input.PaymentMethod != enums.PaymentMethodCOD {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscriptions support wallet or cash on delivery only")
	}
	if input.ShippingAddress == nil || input.ShippingAddress.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}

	plan, err := s.plans.FindPlanByID(ctx, input.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription plan not found")
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "subscription plan is not available")
	}
	product := plan.Product
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription plan product missing")
	}
	if !product.IsActive || !product.IsSubscription {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not available for subscription")
	}
	units := product.PackageSize
	if units <= 0 {
		units = 1
	}
	if product.StockQuantity < units {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for subscription")
	}

	frequency, err := enums.ParseSubscriptionFrequency(plan.Frequency.String())
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid frequency")
	}

	start := s.now()
	if input.StartDate != nil && input.StartDate.After(start) {
		start = *input.StartDate
	}
	renewal, err := nextDate(start, frequency)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		CustomerID:       input.CustomerID,
		PlanID:           plan.ID,
		Status:           enums.SubscriptionStatusActive,
		PaymentMethod:    input.PaymentMethod,
		ShippingAddress:  input.ShippingAddress,
		StartDate:        start,
		RenewalDate:      renewal,
		NextDeliveryDate: &renewal,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if input.PaymentMethod == enums.PaymentMethodWallet {
			if _, err := s.wallet.HoldFundsWithTx(ctx, tx, input.CustomerID, plan.Price,
				fmt.Sprintf("Subscription hold: %s", plan.Name)); err != nil {
				return err
			}
		}
		return s.repo.WithTx(tx).Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	sub.Plan = plan

	if s.notify != nil {
		s.notify.NotifySubscriptionEvent(ctx, sub.CustomerID, sub.ID,
			fmt.Sprintf("Subscribed to %s", plan.Name))
	}
	return sub, nil
}

// Cancel stops the subscription and releases any unsettled wallet hold.
func (s *service) Cancel(ctx context.Context, subscriptionID, customerID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.GetForCustomer(ctx, subscriptionID, customerID)
	if err != nil {
		return nil, err
	}
	if sub.Status == enums.SubscriptionStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "subscription is already cancelled")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if sub.PaymentMethod == enums.PaymentMethodWallet && sub.Plan != nil {
			if err := s.wallet.ReleaseHoldWithTx(ctx, tx, customerID, sub.Plan.Price); err != nil {
				return err
			}
		}
		return s.repo.WithTx(tx).UpdateFields(ctx, sub.ID, map[string]any{
			"status":             enums.SubscriptionStatusCancelled,
			"next_delivery_date": nil,
		})
	})
	if err != nil {
		return nil, err
	}
	sub.Status = enums.SubscriptionStatusCancelled
	sub.NextDeliveryDate = nil

	if s.notify != nil {
		s.notify.NotifySubscriptionEvent(ctx, customerID, sub.ID, "Subscription cancelled")
	}
	return sub, nil
}

func (s *service) Pause(ctx context.Context, subscriptionID, customerID uuid.UUID) error {
	sub, err := s.GetForCustomer(ctx, subscriptionID, customerID)
	if err != nil {
		return err
	}
	if sub.Status != enums.SubscriptionStatusActive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only active subscriptions can be paused")
	}
	return s.repo.UpdateFields(ctx, sub.ID, map[string]any{
		"status": enums.SubscriptionStatusPaused,
	})
}

// Resume reactivates a paused subscription. Wallet subscriptions must be able
// to re-reserve the plan price.
func (s *service) Resume(ctx context.Context, subscriptionID, customerID uuid.UUID) error {
	sub, err := s.GetForCustomer(ctx, subscriptionID, customerID)
	if err != nil {
		return err
	}
	if sub.Status != enums.SubscriptionStatusPaused {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only paused subscriptions can be resumed")
	}
	if sub.Plan == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "subscription plan missing")
	}

	renewal, err := nextDate(s.now(), sub.Plan.Frequency)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if sub.PaymentMethod == enums.PaymentMethodWallet {
			if _, err := s.wallet.HoldFundsWithTx(ctx, tx, customerID, sub.Plan.Price,
				fmt.Sprintf("Subscription hold: %s", sub.Plan.Name)); err != nil {
				return err
			}
		}
		return s.repo.WithTx(tx).UpdateFields(ctx, sub.ID, map[string]any{
			"status":             enums.SubscriptionStatusActive,
			"renewal_date":       renewal,
			"next_delivery_date": renewal,
		})
	})
}

func (s *service) GetForCustomer(ctx context.Context, subscriptionID, customerID uuid.UUID) (*models.Subscription, error) {
	if subscriptionID == uuid.Nil || customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id and customer id required")
	}
	sub, err := s.repo.FindByIDForCustomer(ctx, subscriptionID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, err
	}
	return sub, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Subscription, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

// MirrorOrderStatusWithTx keeps the scheduled delivery in step with its
// order. Delivery completion advances the subscription to the next cycle and
// re-reserves wallet funds; a wallet that cannot cover the next cycle pauses
// the subscription instead of failing the delivery.
func (s *service) MirrorOrderStatusWithTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus) error {
	repo := s.repo.WithTx(tx)

	delivery, err := repo.FindDeliveryByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := repo.UpdateDeliveryFields(ctx, delivery.ID, map[string]any{
		"status": enums.DeliveryStatusForOrder(status),
	}); err != nil {
		return err
	}
	if status != enums.OrderStatusDelivered {
		return nil
	}

	sub, err := repo.FindByID(ctx, delivery.SubscriptionID)
	if err != nil {
		return err
	}
	if sub.Status != enums.SubscriptionStatusActive || sub.Plan == nil {
		return nil
	}

	renewal, err := nextDate(sub.RenewalDate, sub.Plan.Frequency)
	if err != nil {
		return err
	}
	fields := map[string]any{
		"renewal_date":       renewal,
		"next_delivery_date": renewal,
	}

	if sub.PaymentMethod == enums.PaymentMethodWallet {
		_, err := s.wallet.HoldFundsWithTx(ctx, tx, sub.CustomerID, sub.Plan.Price,
			fmt.Sprintf("Subscription hold: %s", sub.Plan.Name))
		if err != nil {
			if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
				return err
			}
			fields = map[string]any{
				"status":             enums.SubscriptionStatusPaused,
				"next_delivery_date": nil,
			}
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("subscription %s paused: wallet cannot cover next cycle", sub.ID))
			}
		}
	}
	return repo.UpdateFields(ctx, sub.ID, fields)
}

// MaterializeDue turns every due subscription into a concrete recurring order
// with its delivery record and pending payment. The subscription's next
// delivery date is cleared until the order completes its cycle.
func (s *service) MaterializeDue(ctx context.Context, now time.Time) (*MaterializeResult, error) {
	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &MaterializeResult{}
	for i := range due {
		sub := &due[i]
		if err := s.materializeOne(ctx, sub); err != nil {
			if pkgerrors.As(err).Code() == pkgerrors.CodeConflict {
				// Insufficient wallet funds: pause rather than retry forever.
				if pauseErr := s.repo.UpdateFields(ctx, sub.ID, map[string]any{
					"status":             enums.SubscriptionStatusPaused,
					"next_delivery_date": nil,
				}); pauseErr != nil {
					return result, pauseErr
				}
				result.Paused++
				if s.notify != nil {
					s.notify.NotifySubscriptionEvent(ctx, sub.CustomerID, sub.ID,
						"Subscription paused: insufficient wallet balance")
				}
				continue
			}
			result.Failed++
			if s.logg != nil {
				s.logg.Error(ctx, fmt.Sprintf("materialize subscription %s", sub.ID), err)
			}
			continue
		}
		result.OrdersCreated++
	}
	return result, nil
}

func (s *service) materializeOne(ctx context.Context, sub *models.Subscription) error {
	if sub.Plan == nil || sub.Plan.Product == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "subscription plan or product missing")
	}
	if sub.NextDeliveryDate == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "subscription has no scheduled delivery")
	}
	plan := sub.Plan
	product := plan.Product
	deliveryDate := *sub.NextDeliveryDate

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		subsRepo := s.repo.WithTx(tx)

		order := &models.Order{
			CustomerID:      sub.CustomerID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   sub.PaymentMethod,
			TotalAmount:     plan.Price,
			ShippingAddress: sub.ShippingAddress,
			IsSubscription:  true,
			Items: []models.OrderItem{{
				ProductID:   product.ID,
				Quantity:    1,
				UnitPrice:   plan.Price,
				PackageSize: product.PackageSize,
				Subtotal:    plan.Price,
			}},
		}
		if err := ordersRepo.Create(ctx, order); err != nil {
			return err
		}
		if err := ordersRepo.CreateTracking(ctx, &models.OrderTracking{
			OrderID:     order.ID,
			Status:      enums.OrderStatusPending,
			Description: "Order placed",
		}); err != nil {
			return err
		}

		orderID := order.ID
		if err := subsRepo.CreateDelivery(ctx, &models.SubscriptionDelivery{
			SubscriptionID: sub.ID,
			OrderID:        &orderID,
			DeliveryDate:   deliveryDate,
			Status:         enums.DeliveryStatusPending,
		}); err != nil {
			return err
		}

		if err := s.paymentsRepo.WithTx(tx).Create(ctx, &models.Payment{
			OrderID:       order.ID,
			Amount:        plan.Price,
			Method:        sub.PaymentMethod,
			Status:        enums.PaymentStatusPending,
			TransactionID: fmt.Sprintf("SUB_%s_%d", order.ID, s.now().UnixMilli()),
		}); err != nil {
			return err
		}

		if sub.PaymentMethod == enums.PaymentMethodWallet {
			err := s.wallet.AttachHoldToOrderWithTx(ctx, tx, sub.CustomerID, order.ID, plan.Price)
			if err != nil {
				if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
					return err
				}
				// The previous cycle settled its hold and no new one exists
				// yet. Reserve now so delivery can settle.
				if _, err := s.wallet.HoldFundsWithTx(ctx, tx, sub.CustomerID, plan.Price,
					fmt.Sprintf("Subscription hold: %s", plan.Name)); err != nil {
					return err
				}
				if err := s.wallet.AttachHoldToOrderWithTx(ctx, tx, sub.CustomerID, order.ID, plan.Price); err != nil {
					return err
				}
			}
		}

		// Cleared until the delivery completes; MirrorOrderStatusWithTx sets
		// the next cycle on delivery.
		return subsRepo.UpdateFields(ctx, sub.ID, map[string]any{
			"next_delivery_date": nil,
		})
	})
}
