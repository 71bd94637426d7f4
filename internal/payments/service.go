package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	ordersrepo "github.com/sajidhasan/farmcart-backend/internal/orders"
	"github.com/sajidhasan/farmcart-backend/pkg/config"
	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
	"github.com/sajidhasan/farmcart-backend/pkg/metrics"
	"github.com/sajidhasan/farmcart-backend/pkg/sslcommerz"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}


type customerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type walletPurchaser interface {
	PurchaseWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error)
}

type stockConsumer interface {
	DecrementForOrderWithTx(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type gateway interface {
	InitSession(ctx context.Context, req sslcommerz.SessionRequest) (*sslcommerz.SessionResponse, error)
	ValidateTransaction(ctx context.Context, valID string) (*sslcommerz.ValidationResponse, error)
}

type notifier interface {
	NotifyPaymentResult(ctx context.Context, customerID, orderID uuid.UUID, status enums.PaymentStatus)
}

// Service dispatches payments across the wallet, COD, and gateway paths and
// absorbs the gateway's callbacks.
type Service interface {
	CreatePayment(ctx context.Context, orderID uuid.UUID) (*DispatchResult, error)
	HandleGatewaySuccess(ctx context.Context, callback GatewayCallback) (*models.Payment, error)
	HandleGatewayFailure(ctx context.Context, callback GatewayCallback) (*models.Payment, error)
	CompleteLatestForOrderWithTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, method enums.PaymentMethod) error
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	orders    ordersrepo.Repository
	customers customerLoader
	wallet    walletPurchaser
	inventory stockConsumer
	gateway   gateway
	notify    notifier
	metrics   *metrics.PaymentMetrics
	baseURL   string
	gwCfg     config.SSLCommerzConfig
	now       func() time.Time
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	TxRunner   txRunner
	Repo       Repository
	Orders     ordersrepo.Repository
	Customers  customerLoader
	Wallet     walletPurchaser
	Inventory  stockConsumer
	Gateway    gateway
	Notifier   notifier
	Metrics    *metrics.PaymentMetrics
	AppBaseURL string
	GatewayConfig config.SSLCommerzConfig
}

// NewService builds the payments service. Gateway may be nil when the store
// credentials are not configured; gateway payments then fail fast.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &service{
		tx:        params.TxRunner,
		repo:      params.Repo,
		orders:    params.Orders,
		customers: params.Customers,
		wallet:    params.Wallet,
		inventory: params.Inventory,
		gateway:   params.Gateway,
		notify:    params.Notifier,
		metrics:   params.Metrics,
		baseURL:   strings.TrimRight(params.AppBaseURL, "/"),
		gwCfg:     params.GatewayConfig,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreatePayment dispatches one payment attempt for the order based on its
// payment method.
func (s *service) CreatePayment(ctx context.Context, orderID uuid.UUID) (*DispatchResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if !order.PaymentStatus.IsPayable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Order is not payable")
	}

	var result *DispatchResult
	switch order.PaymentMethod {
	case enums.PaymentMethodWallet:
		result, err = s.dispatchWallet(ctx, order)
	case enums.PaymentMethodCOD:
		result, err = s.dispatchCOD(ctx, order)
	case enums.PaymentMethodSSLCommerz:
		result, err = s.dispatchGateway(ctx, order)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment method %q", order.PaymentMethod))
	}
	if err != nil {
		s.metrics.IncDispatched(order.PaymentMethod.String(), "failure")
		return nil, err
	}
	s.metrics.IncDispatched(order.PaymentMethod.String(), "success")

	if s.notify != nil {
		s.notify.NotifyPaymentResult(ctx, order.CustomerID, order.ID, result.Payment.Status)
	}
	return result, nil
}

// confirmOrderWithTracking flips a paid order to CONFIRMED and appends the
// confirmed tracking row unless one already exists.
func (s *service) confirmOrderWithTracking(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	repo := s.orders.WithTx(tx)
	if err := s.appendTracking(ctx, tx, orderID, enums.OrderStatusConfirmed, "Order confirmed"); err != nil {
		return err
	}
	return repo.UpdateFields(ctx, orderID, map[string]any{
		"status":         enums.OrderStatusConfirmed,
		"payment_status": enums.PaymentStatusCompleted,
	})
}

// appendTracking inserts a tracking row for the status unless the order
// already has one.
func (s *service) appendTracking(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus, description string) error {
	repo := s.orders.WithTx(tx)
	exists, err := repo.HasTracking(ctx, orderID, status)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return repo.CreateTracking(ctx, &models.OrderTracking{
		OrderID:     orderID,
		Status:      status,
		Description: description,
	})
}

// dispatchWallet debits the wallet and consumes stock immediately; the order
// is fully paid and confirmed when this returns.
func (s *service) dispatchWallet(ctx context.Context, order *models.Order) (*DispatchResult, error) {
	var payment *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		walletTxn, err := s.wallet.PurchaseWithTx(ctx, tx, order.CustomerID, order.ID, order.TotalAmount,
			fmt.Sprintf("Payment for order %s", order.ID))
		if err != nil {
			return err
		}
		if err := s.inventory.DecrementForOrderWithTx(ctx, tx, order); err != nil {
			return err
		}

		walletTxnID := walletTxn.ID
		payment = &models.Payment{
			OrderID:             order.ID,
			WalletTransactionID: &walletTxnID,
			Amount:              order.TotalAmount,
			Method:              enums.PaymentMethodWallet,
			Status:              enums.PaymentStatusCompleted,
			TransactionID:       walletTxn.ID.String(),
		}
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}
		return s.confirmOrderWithTracking(ctx, tx, order.ID)
	})
	if err != nil {
		return nil, err
	}
	return &DispatchResult{Payment: payment}, nil
}

// dispatchCOD records a pending payment; collection and stock settlement
// happen at delivery. A second attempt for the same order is rejected.
func (s *service) dispatchCOD(ctx context.Context, order *models.Order) (*DispatchResult, error) {
	existing, err := s.repo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Payment record already exists")
	}

	payment := &models.Payment{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		Method:        enums.PaymentMethodCOD,
		Status:        enums.PaymentStatusPending,
		TransactionID: sslcommerz.FormatTransactionID(order.ID, s.now()),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}
		// The order itself stays PENDING until fulfillment moves it; the
		// timeline records that payment is due at the doorstep.
		return s.appendTracking(ctx, tx, order.ID, enums.OrderStatusConfirmed, "Order confirmed, payment pending")
	})
	if err != nil {
		return nil, err
	}
	return &DispatchResult{Payment: payment}, nil
}

// dispatchGateway opens an SSLCommerz session and records a pending payment
// keyed by the self-describing transaction id. An open PENDING or FAILED
// attempt is reused with a fresh transaction id instead of piling up rows.
func (s *service) dispatchGateway(ctx context.Context, order *models.Order) (*DispatchResult, error) {
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway is not configured")
	}

	var attempt *models.Payment
	existing, err := s.repo.FindLatestByOrderAndMethod(ctx, order.ID, enums.PaymentMethodSSLCommerz)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		switch existing.Status {
		case enums.PaymentStatusPending, enums.PaymentStatusFailed:
			attempt = existing
		default:
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order already has a %s gateway payment", existing.Status))
		}
	}

	customer, err := s.customers.FindByID(ctx, order.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}

	tranID := sslcommerz.FormatTransactionID(order.ID, s.now())

	addressLine := ""
	city := ""
	if order.ShippingAddress != nil {
		addressLine = order.ShippingAddress.Line1
		city = order.ShippingAddress.City
	}

	session, err := s.gateway.InitSession(ctx, sslcommerz.SessionRequest{
		TransactionID: tranID,
		Amount:        order.TotalAmount.StringFixed(2),
		Currency:      "BDT",
		SuccessURL:    s.baseURL + s.gwCfg.SuccessPath,
		FailURL:       s.baseURL + s.gwCfg.FailPath,
		CancelURL:     s.baseURL + s.gwCfg.CancelPath,
		IPNURL:        s.baseURL + s.gwCfg.IPNPath,
		CustomerName:  strings.TrimSpace(customer.FirstName + " " + customer.LastName),
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		AddressLine:   addressLine,
		City:          city,
		ProductName:   "Farmcart order",
		ProductCategory: "groceries",
		ItemCount:     len(order.Items),
	})
	if err != nil {
		return nil, err
	}

	if attempt != nil {
		if err := s.repo.UpdateFields(ctx, attempt.ID, map[string]any{
			"transaction_id": tranID,
			"status":         enums.PaymentStatusPending,
		}); err != nil {
			return nil, err
		}
		attempt.TransactionID = tranID
		attempt.Status = enums.PaymentStatusPending
		return &DispatchResult{Payment: attempt, RedirectURL: session.GatewayPageURL}, nil
	}

	payment := &models.Payment{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		Method:        enums.PaymentMethodSSLCommerz,
		Status:        enums.PaymentStatusPending,
		TransactionID: tranID,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return &DispatchResult{Payment: payment, RedirectURL: session.GatewayPageURL}, nil
}

// HandleGatewaySuccess settles a gateway payment after validating the
// callback with SSLCommerz. Replayed callbacks are no-ops.
func (s *service) HandleGatewaySuccess(ctx context.Context, callback GatewayCallback) (*models.Payment, error) {
	orderID, err := sslcommerz.OrderIDFromTransactionID(callback.TransactionID)
	if err != nil {
		s.metrics.IncCallback("success", "malformed")
		return nil, err
	}

	payment, err := s.repo.FindByTransactionID(ctx, callback.TransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncCallback("success", "unknown")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, err
	}
	if payment.Status == enums.PaymentStatusCompleted {
		s.metrics.IncCallback("success", "replay")
		return payment, nil
	}
	if payment.Status != enums.PaymentStatusPending {
		s.metrics.IncCallback("success", "not_pending")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot complete payment with status %s", payment.Status))
	}

	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway is not configured")
	}
	validation, err := s.gateway.ValidateTransaction(ctx, callback.ValID)
	if err != nil {
		s.metrics.IncCallback("success", "validation_error")
		return nil, err
	}
	if !validation.Verified() {
		s.metrics.IncCallback("success", "rejected")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "gateway did not verify the transaction")
	}
	if amount, err := decimal.NewFromString(validation.Amount); err != nil || !amount.Equal(payment.Amount) {
		s.metrics.IncCallback("success", "amount_mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "paid amount does not match the order")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.WithTx(tx).FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		if err := s.inventory.DecrementForOrderWithTx(ctx, tx, order); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).UpdateFields(ctx, payment.ID, map[string]any{
			"status": enums.PaymentStatusCompleted,
		}); err != nil {
			return err
		}
		return s.confirmOrderWithTracking(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}

	payment.Status = enums.PaymentStatusCompleted
	s.metrics.IncCallback("success", "completed")

	if s.notify != nil {
		if order, err := s.orders.FindByID(ctx, orderID); err == nil {
			s.notify.NotifyPaymentResult(ctx, order.CustomerID, orderID, enums.PaymentStatusCompleted)
		}
	}
	return payment, nil
}

// HandleGatewayFailure marks a gateway payment failed. A failure callback for
// an already completed payment is ignored.
func (s *service) HandleGatewayFailure(ctx context.Context, callback GatewayCallback) (*models.Payment, error) {
	orderID, err := sslcommerz.OrderIDFromTransactionID(callback.TransactionID)
	if err != nil {
		s.metrics.IncCallback("failure", "malformed")
		return nil, err
	}

	payment, err := s.repo.FindByTransactionID(ctx, callback.TransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncCallback("failure", "unknown")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, err
	}
	if payment.Status == enums.PaymentStatusCompleted {
		s.metrics.IncCallback("failure", "ignored_after_success")
		return payment, nil
	}
	if payment.Status == enums.PaymentStatusFailed {
		s.metrics.IncCallback("failure", "replay")
		return payment, nil
	}

	reason := strings.TrimSpace(callback.FailedReason)
	if reason == "" {
		reason = "payment failed at gateway"
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateFields(ctx, payment.ID, map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
		}); err != nil {
			return err
		}
		order, err := s.orders.WithTx(tx).FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		// An order that already settled through another attempt keeps its
		// payment status.
		if order.PaymentStatus != enums.PaymentStatusPending {
			return nil
		}
		return s.orders.WithTx(tx).UpdateFields(ctx, orderID, map[string]any{
			"payment_status": enums.PaymentStatusFailed,
		})
	})
	if err != nil {
		return nil, err
	}

	payment.Status = enums.PaymentStatusFailed
	payment.FailureReason = &reason
	s.metrics.IncCallback("failure", "recorded")

	if s.notify != nil {
		if order, err := s.orders.FindByID(ctx, orderID); err == nil {
			s.notify.NotifyPaymentResult(ctx, order.CustomerID, orderID, enums.PaymentStatusFailed)
		}
	}
	return payment, nil
}

// CompleteLatestForOrderWithTx marks the most recent payment attempt for the
// order and method completed. The orders state machine calls this at
// settlement time.
func (s *service) CompleteLatestForOrderWithTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, method enums.PaymentMethod) error {
	repo := s.repo.WithTx(tx)
	payment, err := repo.FindLatestByOrderAndMethod(ctx, orderID, method)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orders can deliver without a recorded attempt. There is nothing
			// to complete in that case.
			return nil
		}
		return err
	}
	if payment.Status == enums.PaymentStatusCompleted {
		return nil
	}
	return repo.UpdateFields(ctx, payment.ID, map[string]any{
		"status": enums.PaymentStatusCompleted,
	})
}

func (s *service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.repo.ListByOrder(ctx, orderID)
}
