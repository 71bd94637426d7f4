package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sajidhasan/farmcart-backend/internal/orders"
	"github.com/sajidhasan/farmcart-backend/internal/payments"
	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
	"github.com/sajidhasan/farmcart-backend/pkg/types"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeSubsRepo struct {
	subs       map[uuid.UUID]*models.Subscription
	deliveries []*models.SubscriptionDelivery
	updates    map[uuid.UUID]map[string]any
}

func newFakeSubsRepo() *fakeSubsRepo {
	return &fakeSubsRepo{
		subs:    make(map[uuid.UUID]*models.Subscription),
		updates: make(map[uuid.UUID]map[string]any),
	}
}

func (f *fakeSubsRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeSubsRepo) Create(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeSubsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (f *fakeSubsRepo) FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok || sub.CustomerID != customerID {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (f *fakeSubsRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range f.subs {
		if sub.CustomerID == customerID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubsRepo) ListDue(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range f.subs {
		if sub.Status == enums.SubscriptionStatusActive &&
			sub.NextDeliveryDate != nil && !sub.NextDeliveryDate.After(now) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubsRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	merged, ok := f.updates[id]
	if !ok {
		merged = make(map[string]any)
		f.updates[id] = merged
	}
	for k, v := range fields {
		merged[k] = v
	}
	if sub, ok := f.subs[id]; ok {
		if status, ok := fields["status"].(enums.SubscriptionStatus); ok {
			sub.Status = status
		}
	}
	return nil
}

func (f *fakeSubsRepo) CreateDelivery(ctx context.Context, delivery *models.SubscriptionDelivery) error {
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	f.deliveries = append(f.deliveries, delivery)
	return nil
}

func (f *fakeSubsRepo) FindDeliveryByOrder(ctx context.Context, orderID uuid.UUID) (*models.SubscriptionDelivery, error) {
	for _, d := range f.deliveries {
		if d.OrderID != nil && *d.OrderID == orderID {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubsRepo) UpdateDeliveryFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	for _, d := range f.deliveries {
		if d.ID == id {
			if status, ok := fields["status"].(enums.DeliveryStatus); ok {
				d.Status = status
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakePlans struct {
	plans map[uuid.UUID]*models.SubscriptionPlan
}

func (f *fakePlans) FindPlanByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

type fakeWallet struct {
	holds     []decimal.Decimal
	attached  []uuid.UUID
	released  []decimal.Decimal
	holdErr   error
	attachErr error
}

func (f *fakeWallet) HoldFundsWithTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	if f.holdErr != nil {
		return nil, f.holdErr
	}
	f.holds = append(f.holds, amount)
	return &models.WalletTransaction{ID: uuid.New(), Amount: amount}, nil
}

func (f *fakeWallet) AttachHoldToOrderWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal) error {
	if f.attachErr != nil {
		err := f.attachErr
		f.attachErr = nil
		return err
	}
	f.attached = append(f.attached, orderID)
	return nil
}

func (f *fakeWallet) ReleaseHoldWithTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal) error {
	f.released = append(f.released, amount)
	return nil
}

type ordersStub struct {
	created   []*models.Order
	trackings []*models.OrderTracking
}

func (f *ordersStub) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *ordersStub) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.created = append(f.created, order)
	return nil
}

func (f *ordersStub) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *ordersStub) FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *ordersStub) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *ordersStub) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return nil
}

func (f *ordersStub) HasTracking(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (bool, error) {
	return false, nil
}

func (f *ordersStub) CreateTracking(ctx context.Context, tracking *models.OrderTracking) error {
	f.trackings = append(f.trackings, tracking)
	return nil
}

func (f *ordersStub) DeleteTrackings(ctx context.Context, orderID uuid.UUID, statuses []enums.OrderStatus) error {
	return nil
}

func (f *ordersStub) ListTracking(ctx context.Context, orderID uuid.UUID) ([]models.OrderTracking, error) {
	return nil, nil
}

type paymentsStub struct {
	created []*models.Payment
}

func (f *paymentsStub) WithTx(tx *gorm.DB) payments.Repository { return f }

func (f *paymentsStub) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	f.created = append(f.created, payment)
	return nil
}

func (f *paymentsStub) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *paymentsStub) FindLatestByOrderAndMethod(ctx context.Context, orderID uuid.UUID, method enums.PaymentMethod) (*models.Payment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *paymentsStub) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	return nil, nil
}

func (f *paymentsStub) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) NotifySubscriptionEvent(ctx context.Context, customerID, subscriptionID uuid.UUID, message string) {
	f.messages = append(f.messages, message)
}

type fixture struct {
	repo         *fakeSubsRepo
	plans        *fakePlans
	wallet       *fakeWallet
	ordersRepo   *ordersStub
	paymentsRepo *paymentsStub
	notifier     *fakeNotifier
	svc          Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:         newFakeSubsRepo(),
		plans:        &fakePlans{plans: make(map[uuid.UUID]*models.SubscriptionPlan)},
		wallet:       &fakeWallet{},
		ordersRepo:   &ordersStub{},
		paymentsRepo: &paymentsStub{},
		notifier:     &fakeNotifier{},
	}
	svc, err := NewService(ServiceParams{
		TxRunner:     fakeTxRunner{},
		Repo:         f.repo,
		Plans:        f.plans,
		Wallet:       f.wallet,
		OrdersRepo:   f.ordersRepo,
		PaymentsRepo: f.paymentsRepo,
		Notifier:     f.notifier,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) seedPlan(price string, frequency enums.SubscriptionFrequency) *models.SubscriptionPlan {
	plan := &models.SubscriptionPlan{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Name:      "Weekly Veg Box",
		Price:     decimal.RequireFromString(price),
		Frequency: frequency,
		IsActive:  true,
		Product: &models.Product{
			ID:             uuid.New(),
			Name:           "Veg Box",
			PackageSize:    1,
			StockQuantity:  25,
			IsSubscription: true,
			IsActive:       true,
		},
	}
	f.plans.plans[plan.ID] = plan
	return plan
}

func testAddress() *types.Address {
	return &types.Address{
		Line1: "House 12, Road 5",
		City:  "Dhaka",
		Phone: "+8801712345678",
	}
}

func TestService_CreateWalletSubscriptionHoldsFunds(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	customerID := uuid.New()

	sub, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      customerID,
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(f.wallet.holds) != 1 || !f.wallet.holds[0].Equal(plan.Price) {
		t.Fatalf("expected a hold of %s, got %v", plan.Price, f.wallet.holds)
	}
	if sub.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active subscription, got %s", sub.Status)
	}
	if sub.NextDeliveryDate == nil || !sub.NextDeliveryDate.Equal(sub.RenewalDate) {
		t.Fatal("expected first delivery on the renewal date")
	}
	want := sub.StartDate.AddDate(0, 0, 7)
	if !sub.RenewalDate.Equal(want) {
		t.Fatalf("expected renewal %s, got %s", want, sub.RenewalDate)
	}
}

func TestService_CreateCODSubscriptionSkipsHold(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("300.00", enums.SubscriptionFrequencyMonthly)

	sub, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      uuid.New(),
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(f.wallet.holds) != 0 {
		t.Fatalf("expected no wallet hold for COD, got %v", f.wallet.holds)
	}
	want := sub.StartDate.AddDate(0, 1, 0)
	if !sub.RenewalDate.Equal(want) {
		t.Fatalf("expected monthly renewal %s, got %s", want, sub.RenewalDate)
	}
}

func TestService_CreateRejectsGatewayMethod(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)

	_, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      uuid.New(),
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodSSLCommerz,
		ShippingAddress: testAddress(),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_CreateRejectsInactivePlan(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	plan.IsActive = false

	_, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      uuid.New(),
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: testAddress(),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_CreateInsufficientBalanceFails(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	f.wallet.holdErr = pkgerrors.New(pkgerrors.CodeConflict, "Insufficient wallet balance to lock funds")

	_, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      uuid.New(),
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: testAddress(),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if pkgerrors.As(err).Message() != "Insufficient wallet balance to lock funds" {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}
	if len(f.repo.subs) != 0 {
		t.Fatal("expected no subscription to be created")
	}
}

func TestService_CreateRejectsNonSubscriptionProduct(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	plan.Product.IsSubscription = false

	_, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      uuid.New(),
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: testAddress(),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.wallet.holds) != 0 {
		t.Fatal("expected no hold for an ineligible product")
	}
}

func TestService_CreateRejectsOutOfStockProduct(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	plan.Product.PackageSize = 5
	plan.Product.StockQuantity = 4

	_, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      uuid.New(),
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: testAddress(),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.repo.subs) != 0 {
		t.Fatal("expected no subscription to be created")
	}
}

func TestService_CreateRejectsInvalidFrequency(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequency("yearly"))

	_, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      uuid.New(),
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: testAddress(),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if pkgerrors.As(err).Message() != "Invalid frequency" {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}
	if len(f.repo.subs) != 0 {
		t.Fatal("expected no subscription to be created")
	}
}

func TestService_CreateNormalizesFrequencyCase(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequency(" Weekly "))

	sub, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      uuid.New(),
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := sub.StartDate.AddDate(0, 0, 7)
	if !sub.RenewalDate.Equal(want) {
		t.Fatalf("expected weekly renewal %s, got %s", want, sub.RenewalDate)
	}
}

func TestService_CancelReleasesHold(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	customerID := uuid.New()
	sub, err := f.svc.Create(context.Background(), CreateSubscriptionInput{
		CustomerID:      customerID,
		PlanID:          plan.ID,
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), sub.ID, customerID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if len(f.wallet.released) != 1 || !f.wallet.released[0].Equal(plan.Price) {
		t.Fatalf("expected hold release of %s, got %v", plan.Price, f.wallet.released)
	}

	if _, err := f.svc.Cancel(context.Background(), sub.ID, customerID); pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on double cancel, got %v", err)
	}
}

func TestService_MaterializeDueCreatesRecurringOrder(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	due := time.Now().UTC().Add(-time.Hour)
	sub := &models.Subscription{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		PlanID:           plan.ID,
		Status:           enums.SubscriptionStatusActive,
		PaymentMethod:    enums.PaymentMethodWallet,
		ShippingAddress:  testAddress(),
		StartDate:        due.AddDate(0, 0, -7),
		RenewalDate:      due,
		NextDeliveryDate: &due,
		Plan:             plan,
	}
	f.repo.subs[sub.ID] = sub

	result, err := f.svc.MaterializeDue(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if result.OrdersCreated != 1 || result.Paused != 0 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	if len(f.ordersRepo.created) != 1 {
		t.Fatalf("expected one order, got %d", len(f.ordersRepo.created))
	}
	order := f.ordersRepo.created[0]
	if !order.IsSubscription {
		t.Fatal("expected a subscription order")
	}
	if !order.TotalAmount.Equal(plan.Price) {
		t.Fatalf("expected total %s, got %s", plan.Price, order.TotalAmount)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != plan.Product.ID {
		t.Fatalf("expected one plan product line, got %+v", order.Items)
	}
	if len(f.ordersRepo.trackings) != 1 || f.ordersRepo.trackings[0].Status != enums.OrderStatusPending {
		t.Fatal("expected a pending tracking entry")
	}
	if len(f.repo.deliveries) != 1 || *f.repo.deliveries[0].OrderID != order.ID {
		t.Fatal("expected a delivery row linked to the order")
	}
	if len(f.paymentsRepo.created) != 1 || f.paymentsRepo.created[0].Status != enums.PaymentStatusPending {
		t.Fatal("expected a pending payment row")
	}
	if len(f.wallet.attached) != 1 || f.wallet.attached[0] != order.ID {
		t.Fatal("expected the wallet hold attached to the order")
	}
	if f.repo.updates[sub.ID]["next_delivery_date"] != nil {
		t.Fatal("expected next delivery date cleared until the order completes")
	}
}

func TestService_MaterializeDuePlacesHoldWhenNoneExists(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	due := time.Now().UTC().Add(-time.Hour)
	sub := &models.Subscription{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		PlanID:           plan.ID,
		Status:           enums.SubscriptionStatusActive,
		PaymentMethod:    enums.PaymentMethodWallet,
		ShippingAddress:  testAddress(),
		StartDate:        due.AddDate(0, 0, -7),
		RenewalDate:      due,
		NextDeliveryDate: &due,
		Plan:             plan,
	}
	f.repo.subs[sub.ID] = sub
	f.wallet.attachErr = pkgerrors.New(pkgerrors.CodeStateConflict, "no pending wallet hold to attach")

	result, err := f.svc.MaterializeDue(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if result.OrdersCreated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(f.wallet.holds) != 1 {
		t.Fatalf("expected a fresh hold, got %v", f.wallet.holds)
	}
	if len(f.wallet.attached) != 1 {
		t.Fatal("expected the fresh hold attached to the order")
	}
}

func TestService_MaterializeDuePausesOnInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	due := time.Now().UTC().Add(-time.Hour)
	sub := &models.Subscription{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		PlanID:           plan.ID,
		Status:           enums.SubscriptionStatusActive,
		PaymentMethod:    enums.PaymentMethodWallet,
		ShippingAddress:  testAddress(),
		StartDate:        due.AddDate(0, 0, -7),
		RenewalDate:      due,
		NextDeliveryDate: &due,
		Plan:             plan,
	}
	f.repo.subs[sub.ID] = sub
	f.wallet.attachErr = pkgerrors.New(pkgerrors.CodeStateConflict, "no pending wallet hold to attach")
	f.wallet.holdErr = pkgerrors.New(pkgerrors.CodeConflict, "Insufficient wallet balance to lock funds")

	result, err := f.svc.MaterializeDue(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if result.Paused != 1 || result.OrdersCreated != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if f.repo.subs[sub.ID].Status != enums.SubscriptionStatusPaused {
		t.Fatalf("expected paused subscription, got %s", f.repo.subs[sub.ID].Status)
	}
}

func TestService_MirrorOrderStatusUpdatesDelivery(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	sub := &models.Subscription{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		PlanID:        plan.ID,
		Status:        enums.SubscriptionStatusActive,
		PaymentMethod: enums.PaymentMethodWallet,
		RenewalDate:   time.Now().UTC(),
		Plan:          plan,
	}
	f.repo.subs[sub.ID] = sub
	orderID := uuid.New()
	f.repo.deliveries = append(f.repo.deliveries, &models.SubscriptionDelivery{
		ID:             uuid.New(),
		SubscriptionID: sub.ID,
		OrderID:        &orderID,
		Status:         enums.DeliveryStatusPending,
	})

	if err := f.svc.MirrorOrderStatusWithTx(context.Background(), nil, orderID, enums.OrderStatusShipped); err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if f.repo.deliveries[0].Status != enums.DeliveryStatusShipped {
		t.Fatalf("expected shipped delivery, got %s", f.repo.deliveries[0].Status)
	}
	if len(f.wallet.holds) != 0 {
		t.Fatal("expected no new hold before delivery")
	}
}

func TestService_MirrorDeliveredAdvancesCycleAndReholds(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	renewal := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		PlanID:        plan.ID,
		Status:        enums.SubscriptionStatusActive,
		PaymentMethod: enums.PaymentMethodWallet,
		RenewalDate:   renewal,
		Plan:          plan,
	}
	f.repo.subs[sub.ID] = sub
	orderID := uuid.New()
	f.repo.deliveries = append(f.repo.deliveries, &models.SubscriptionDelivery{
		ID:             uuid.New(),
		SubscriptionID: sub.ID,
		OrderID:        &orderID,
		Status:         enums.DeliveryStatusShipped,
	})

	if err := f.svc.MirrorOrderStatusWithTx(context.Background(), nil, orderID, enums.OrderStatusDelivered); err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if f.repo.deliveries[0].Status != enums.DeliveryStatusDelivered {
		t.Fatalf("expected delivered, got %s", f.repo.deliveries[0].Status)
	}
	if len(f.wallet.holds) != 1 {
		t.Fatalf("expected a hold for the next cycle, got %v", f.wallet.holds)
	}
	want := renewal.AddDate(0, 0, 7)
	got, ok := f.repo.updates[sub.ID]["renewal_date"].(time.Time)
	if !ok || !got.Equal(want) {
		t.Fatalf("expected renewal %s, got %v", want, f.repo.updates[sub.ID]["renewal_date"])
	}
}

func TestService_MirrorDeliveredPausesWhenWalletCannotCover(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan("450.00", enums.SubscriptionFrequencyWeekly)
	sub := &models.Subscription{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		PlanID:        plan.ID,
		Status:        enums.SubscriptionStatusActive,
		PaymentMethod: enums.PaymentMethodWallet,
		RenewalDate:   time.Now().UTC(),
		Plan:          plan,
	}
	f.repo.subs[sub.ID] = sub
	orderID := uuid.New()
	f.repo.deliveries = append(f.repo.deliveries, &models.SubscriptionDelivery{
		ID:             uuid.New(),
		SubscriptionID: sub.ID,
		OrderID:        &orderID,
		Status:         enums.DeliveryStatusShipped,
	})
	f.wallet.holdErr = pkgerrors.New(pkgerrors.CodeConflict, "Insufficient wallet balance to lock funds")

	if err := f.svc.MirrorOrderStatusWithTx(context.Background(), nil, orderID, enums.OrderStatusDelivered); err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if f.repo.subs[sub.ID].Status != enums.SubscriptionStatusPaused {
		t.Fatalf("expected paused, got %s", f.repo.subs[sub.ID].Status)
	}
}

func TestService_MirrorIgnoresNonSubscriptionOrder(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.MirrorOrderStatusWithTx(context.Background(), nil, uuid.New(), enums.OrderStatusDelivered); err != nil {
		t.Fatalf("mirror: %v", err)
	}
}
