package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
	"github.com/sajidhasan/farmcart-backend/pkg/logger"
	"github.com/sajidhasan/farmcart-backend/pkg/pagination"
)

// publisher is the realtime fan-out surface. Each customer has their own
// channel so delivery stays keyed rather than walking a global online map.
type publisher interface {
	Publish(ctx context.Context, channel string, message any) error
	NotificationChannel(customerID string) string
}

// Service persists notifications and fans them out to online customers.
// Every Notify method is fire-and-forget: failures are logged, never
// propagated, so a notification problem can not roll back a financial
// transaction.
type Service interface {
	NotifyOrderStatus(ctx context.Context, customerID, orderID uuid.UUID, status enums.OrderStatus)
	NotifyPaymentResult(ctx context.Context, customerID, orderID uuid.UUID, status enums.PaymentStatus)
	NotifySubscriptionEvent(ctx context.Context, customerID, subscriptionID uuid.UUID, message string)
	List(ctx context.Context, customerID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, notificationID, customerID uuid.UUID) error
	MarkAllRead(ctx context.Context, customerID uuid.UUID) error
	UnreadCount(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	pub  publisher
	logg *logger.Logger
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo      Repository
	Publisher publisher
	Logger    *logger.Logger
}

// NewService builds the notifications service. The publisher is optional;
// without it notifications are persisted only.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{
		repo: params.Repo,
		pub:  params.Publisher,
		logg: params.Logger,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

var orderStatusMessages = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "Your order has been placed",
	enums.OrderStatusConfirmed:  "Your order has been confirmed",
	enums.OrderStatusProcessing: "Your order is being prepared",
	enums.OrderStatusShipped:    "Your order is on the way",
	enums.OrderStatusDelivered:  "Your order has been delivered",
}

func (s *service) NotifyOrderStatus(ctx context.Context, customerID, orderID uuid.UUID, status enums.OrderStatus) {
	message, ok := orderStatusMessages[status]
	if !ok {
		message = fmt.Sprintf("Your order is now %s", status)
	}
	s.deliver(ctx, &models.Notification{
		CustomerID: customerID,
		OrderID:    &orderID,
		Title:      "Order update",
		Message:    message,
	})
}

func (s *service) NotifyPaymentResult(ctx context.Context, customerID, orderID uuid.UUID, status enums.PaymentStatus) {
	var message string
	switch status {
	case enums.PaymentStatusCompleted:
		message = "Your payment has been received"
	case enums.PaymentStatusFailed:
		message = "Your payment could not be completed"
	default:
		message = "Your payment is being processed"
	}
	s.deliver(ctx, &models.Notification{
		CustomerID: customerID,
		OrderID:    &orderID,
		Title:      "Payment update",
		Message:    message,
	})
}

func (s *service) NotifySubscriptionEvent(ctx context.Context, customerID, subscriptionID uuid.UUID, message string) {
	s.deliver(ctx, &models.Notification{
		CustomerID: customerID,
		Title:      "Subscription update",
		Message:    message,
	})
}

func (s *service) deliver(ctx context.Context, notification *models.Notification) {
	if err := s.repo.Create(ctx, notification); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "persist notification", err)
		}
		return
	}
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "encode notification", err)
		}
		return
	}
	channel := s.pub.NotificationChannel(notification.CustomerID.String())
	if err := s.pub.Publish(ctx, channel, payload); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "publish notification", err)
		}
	}
}

func (s *service) List(ctx context.Context, customerID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	if customerID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	return s.repo.ListByCustomer(ctx, customerID, unreadOnly, pagination.NormalizeLimit(limit), pagination.NormalizeOffset(offset))
}

func (s *service) MarkRead(ctx context.Context, notificationID, customerID uuid.UUID) error {
	if notificationID == uuid.Nil || customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id and customer id required")
	}
	affected, err := s.repo.MarkRead(ctx, notificationID, customerID, s.now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found or already read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	return s.repo.MarkAllRead(ctx, customerID, s.now())
}

func (s *service) UnreadCount(ctx context.Context, customerID uuid.UUID) (int64, error) {
	if customerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	return s.repo.CountUnread(ctx, customerID)
}
