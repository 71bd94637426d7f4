package orders

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
	"github.com/sajidhasan/farmcart-backend/pkg/types"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOrdersRepo struct {
	orders    map[uuid.UUID]*models.Order
	trackings []*models.OrderTracking
	updates   map[uuid.UUID]map[string]any
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{
		orders:  make(map[uuid.UUID]*models.Order),
		updates: make(map[uuid.UUID]map[string]any),
	}
}

func (f *fakeOrdersRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = uuid.New()
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrdersRepo) FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok || order.CustomerID != customerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrdersRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, order := range f.orders {
		if order.CustomerID == customerID {
			out = append(out, *order)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrdersRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	order, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.updates[id] = fields
	if status, ok := fields["status"].(enums.OrderStatus); ok {
		order.Status = status
	}
	if paymentStatus, ok := fields["payment_status"].(enums.PaymentStatus); ok {
		order.PaymentStatus = paymentStatus
	}
	return nil
}

func (f *fakeOrdersRepo) HasTracking(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (bool, error) {
	for _, tracking := range f.trackings {
		if tracking.OrderID == orderID && tracking.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrdersRepo) CreateTracking(ctx context.Context, tracking *models.OrderTracking) error {
	tracking.ID = uuid.New()
	f.trackings = append(f.trackings, tracking)
	return nil
}

func (f *fakeOrdersRepo) DeleteTrackings(ctx context.Context, orderID uuid.UUID, statuses []enums.OrderStatus) error {
	doomed := make(map[enums.OrderStatus]bool, len(statuses))
	for _, status := range statuses {
		doomed[status] = true
	}
	var kept []*models.OrderTracking
	for _, tracking := range f.trackings {
		if tracking.OrderID == orderID && doomed[tracking.Status] {
			continue
		}
		kept = append(kept, tracking)
	}
	f.trackings = kept
	return nil
}

func (f *fakeOrdersRepo) ListTracking(ctx context.Context, orderID uuid.UUID) ([]models.OrderTracking, error) {
	var out []models.OrderTracking
	for _, tracking := range f.trackings {
		if tracking.OrderID == orderID {
			out = append(out, *tracking)
		}
	}
	return out, nil
}

func (f *fakeOrdersRepo) trackedStatuses(orderID uuid.UUID) []enums.OrderStatus {
	var out []enums.OrderStatus
	for _, tracking := range f.trackings {
		if tracking.OrderID == orderID {
			out = append(out, tracking.Status)
		}
	}
	return out
}

type fakeProducts struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeProducts) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type fakeInventory struct {
	decremented []uuid.UUID
	err         error
}

func (f *fakeInventory) DecrementForOrderWithTx(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.decremented = append(f.decremented, order.ID)
	return nil
}

type fakeWalletSettler struct {
	settled []uuid.UUID
	err     error
}

func (f *fakeWalletSettler) SettleHoldWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.settled = append(f.settled, orderID)
	return &models.WalletTransaction{ID: uuid.New(), OrderID: &orderID, Amount: amount}, nil
}

type fakePaymentFinisher struct {
	completed []enums.PaymentMethod
}

func (f *fakePaymentFinisher) CompleteLatestForOrderWithTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, method enums.PaymentMethod) error {
	f.completed = append(f.completed, method)
	return nil
}

type fakeMirror struct {
	mirrored []enums.OrderStatus
}

func (f *fakeMirror) MirrorOrderStatusWithTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus) error {
	f.mirrored = append(f.mirrored, status)
	return nil
}

type fakeNotifier struct {
	notified []enums.OrderStatus
}

func (f *fakeNotifier) NotifyOrderStatus(ctx context.Context, customerID, orderID uuid.UUID, status enums.OrderStatus) {
	f.notified = append(f.notified, status)
}

type serviceFixture struct {
	repo      *fakeOrdersRepo
	products  *fakeProducts
	inventory *fakeInventory
	wallet    *fakeWalletSettler
	payments  *fakePaymentFinisher
	mirror    *fakeMirror
	notifier  *fakeNotifier
	svc       Service
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		repo:      newFakeOrdersRepo(),
		products:  &fakeProducts{products: make(map[uuid.UUID]*models.Product)},
		inventory: &fakeInventory{},
		wallet:    &fakeWalletSettler{},
		payments:  &fakePaymentFinisher{},
		mirror:    &fakeMirror{},
		notifier:  &fakeNotifier{},
	}
	svc, err := NewService(ServiceParams{
		TxRunner:      fakeTxRunner{},
		Repo:          f.repo,
		Products:      f.products,
		Inventory:     f.inventory,
		Wallet:        f.wallet,
		Payments:      f.payments,
		Subscriptions: f.mirror,
		Notifier:      f.notifier,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *serviceFixture) seedOrder(order *models.Order) *models.Order {
	order.ID = uuid.New()
	if order.CustomerID == uuid.Nil {
		order.CustomerID = uuid.New()
	}
	f.repo.orders[order.ID] = order
	for _, status := range enums.OrderStatuses() {
		if status.Compare(order.Status) <= 0 {
			f.repo.trackings = append(f.repo.trackings, &models.OrderTracking{
				ID:      uuid.New(),
				OrderID: order.ID,
				Status:  status,
			})
		}
	}
	return order
}

func testAddress() *types.Address {
	return &types.Address{Line1: "12 Green Road", Area: "Dhanmondi", City: "Dhaka", Phone: "01711000000"}
}

func TestService_CreateComputesTotals(t *testing.T) {
	f := newFixture(t)
	eggs := &models.Product{
		ID:          uuid.New(),
		Name:        "Farm Eggs",
		UnitPrice:   decimal.RequireFromString("120.00"),
		PackageSize: 12,
		IsActive:    true,
	}
	milk := &models.Product{
		ID:          uuid.New(),
		Name:        "Fresh Milk 1L",
		UnitPrice:   decimal.RequireFromString("85.50"),
		PackageSize: 1,
		IsActive:    true,
	}
	f.products.products[eggs.ID] = eggs
	f.products.products[milk.ID] = milk

	order, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress(),
		Items: []CreateOrderItemInput{
			{ProductID: eggs.ID, Quantity: 2},
			{ProductID: milk.ID, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected payment pending, got %s", order.PaymentStatus)
	}
	// 2*120 + 3*85.50 = 496.50
	if !order.TotalAmount.Equal(decimal.RequireFromString("496.50")) {
		t.Fatalf("expected total 496.50, got %s", order.TotalAmount)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if order.Items[0].PackageSize != 12 {
		t.Fatalf("expected snapshot package size 12, got %d", order.Items[0].PackageSize)
	}

	statuses := f.repo.trackedStatuses(order.ID)
	if len(statuses) != 1 || statuses[0] != enums.OrderStatusPending {
		t.Fatalf("expected single pending tracking row, got %v", statuses)
	}
	if len(f.notifier.notified) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.notified))
	}
}

func TestService_CreateFlagsPreorder(t *testing.T) {
	f := newFixture(t)
	mango := &models.Product{
		ID:         uuid.New(),
		Name:       "Himsagar Mango (advance booking)",
		UnitPrice:  decimal.RequireFromString("1500.00"),
		IsActive:   true,
		IsPreorder: true,
	}
	f.products.products[mango.ID] = mango

	order, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingAddress: testAddress(),
		Items:           []CreateOrderItemInput{{ProductID: mango.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !order.IsPreorder {
		t.Fatal("expected preorder flag")
	}
}

func TestService_CreateRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t)
	product := &models.Product{ID: uuid.New(), Name: "Off-season Tomato", UnitPrice: decimal.RequireFromString("40.00")}
	f.products.products[product.ID] = product

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress(),
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error for inactive product")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %s", pkgerrors.As(err).Code())
	}
}

func TestService_UpdateStatusSameStatus(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(&models.Order{Status: enums.OrderStatusConfirmed, PaymentMethod: enums.PaymentMethodCOD})

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed)
	if err == nil {
		t.Fatal("expected error for same status")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %s", pkgerrors.As(err).Code())
	}
	if !strings.Contains(pkgerrors.As(err).Message(), "already") {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}
}

func TestService_UpdateStatusDeliveredIsTerminal(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(&models.Order{Status: enums.OrderStatusDelivered, PaymentMethod: enums.PaymentMethodCOD})

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	if err == nil {
		t.Fatal("expected error for terminal order")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %s", pkgerrors.As(err).Code())
	}
}

func TestService_UpdateStatusForwardStepAllowed(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(&models.Order{Status: enums.OrderStatusPending, PaymentMethod: enums.PaymentMethodCOD})

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}

	statuses := f.repo.trackedStatuses(order.ID)
	if len(statuses) != 2 {
		t.Fatalf("expected pending+confirmed tracking, got %v", statuses)
	}
}

func TestService_UpdateStatusForwardSkipRejected(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		from enums.OrderStatus
		to   enums.OrderStatus
	}{
		{enums.OrderStatusPending, enums.OrderStatusProcessing},
		{enums.OrderStatusConfirmed, enums.OrderStatusShipped},
		{enums.OrderStatusPending, enums.OrderStatusDelivered},
	}
	for _, tc := range cases {
		order := f.seedOrder(&models.Order{Status: tc.from, PaymentMethod: enums.PaymentMethodCOD})

		_, err := f.svc.UpdateStatus(context.Background(), order.ID, tc.to)
		if err == nil {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
		if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict for %s -> %s, got %v", tc.from, tc.to, err)
		}
		if f.repo.orders[order.ID].Status != tc.from {
			t.Fatalf("order must stay %s, got %s", tc.from, f.repo.orders[order.ID].Status)
		}
	}
	if len(f.notifier.notified) != 0 {
		t.Fatal("no notification for a rejected transition")
	}
}

func TestService_UpdateStatusBackwardPurgesTracking(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(&models.Order{Status: enums.OrderStatusShipped, PaymentMethod: enums.PaymentMethodCOD})

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}

	statuses := f.repo.trackedStatuses(order.ID)
	for _, status := range statuses {
		if status.Compare(enums.OrderStatusConfirmed) > 0 {
			t.Fatalf("tracking row ahead of confirmed survived: %v", statuses)
		}
	}
	if len(statuses) != 2 {
		t.Fatalf("expected pending+confirmed, got %v", statuses)
	}
}

func TestService_UpdateStatusNoDuplicateTracking(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(&models.Order{Status: enums.OrderStatusProcessing, PaymentMethod: enums.PaymentMethodCOD})

	// Back to confirmed purges processing, forward again recreates it once.
	if _, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed); err != nil {
		t.Fatalf("backward: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing); err != nil {
		t.Fatalf("forward: %v", err)
	}

	count := 0
	for _, status := range f.repo.trackedStatuses(order.ID) {
		if status == enums.OrderStatusProcessing {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one processing row, got %d", count)
	}
}

func TestService_CODDeliverySettles(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(&models.Order{
		Status:        enums.OrderStatusShipped,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusPending,
		TotalAmount:   decimal.RequireFromString("450.00"),
		Items:         []models.OrderItem{{ProductID: uuid.New(), Quantity: 2, PackageSize: 6}},
	})

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if updated.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("expected completed payment, got %s", updated.PaymentStatus)
	}
	if updated.DeliveredAt == nil {
		t.Fatal("expected delivered_at to be set")
	}
	if len(f.inventory.decremented) != 1 || f.inventory.decremented[0] != order.ID {
		t.Fatal("expected stock decrement for the order")
	}
	if len(f.payments.completed) != 1 || f.payments.completed[0] != enums.PaymentMethodCOD {
		t.Fatalf("expected COD payment completion, got %v", f.payments.completed)
	}
	if len(f.wallet.settled) != 0 {
		t.Fatal("wallet must not settle a COD order")
	}
}

func TestService_CODDeliveryInsufficientStockFails(t *testing.T) {
	f := newFixture(t)
	f.inventory.err = pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
	order := f.seedOrder(&models.Order{
		Status:        enums.OrderStatusShipped,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusPending,
		Items:         []models.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %s", pkgerrors.As(err).Code())
	}
	if len(f.payments.completed) != 0 {
		t.Fatal("payment must not complete when stock settlement fails")
	}
}

func TestService_CODDeliveryAlreadyPaidSkipsSettlement(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(&models.Order{
		Status:        enums.OrderStatusShipped,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusCompleted,
		Items:         []models.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	if _, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(f.inventory.decremented) != 0 {
		t.Fatal("stock must not decrement twice")
	}
	if len(f.payments.completed) != 0 {
		t.Fatal("payment must not complete twice")
	}
}

func TestService_SubscriptionWalletDeliverySettlesHold(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(&models.Order{
		Status:         enums.OrderStatusShipped,
		PaymentMethod:  enums.PaymentMethodWallet,
		PaymentStatus:  enums.PaymentStatusPending,
		IsSubscription: true,
		TotalAmount:    decimal.RequireFromString("99.00"),
		Items:          []models.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(f.wallet.settled) != 1 || f.wallet.settled[0] != order.ID {
		t.Fatal("expected wallet hold settlement")
	}
	if len(f.inventory.decremented) != 1 {
		t.Fatalf("expected stock decrement on delivery, got %d", len(f.inventory.decremented))
	}
	if len(f.payments.completed) != 1 || f.payments.completed[0] != enums.PaymentMethodWallet {
		t.Fatalf("expected wallet payment completion, got %v", f.payments.completed)
	}
	if updated.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("expected completed payment, got %s", updated.PaymentStatus)
	}
	if len(f.mirror.mirrored) != 1 || f.mirror.mirrored[0] != enums.OrderStatusDelivered {
		t.Fatalf("expected delivery mirror, got %v", f.mirror.mirrored)
	}
}

func TestService_SubscriptionWalletDeliveryInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	f.wallet.err = pkgerrors.New(pkgerrors.CodeConflict, "Insufficient wallet balance")
	order := f.seedOrder(&models.Order{
		Status:         enums.OrderStatusShipped,
		PaymentMethod:  enums.PaymentMethodWallet,
		PaymentStatus:  enums.PaymentStatusPending,
		IsSubscription: true,
		TotalAmount:    decimal.RequireFromString("99.00"),
		Items:          []models.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if err == nil {
		t.Fatal("expected insufficient balance error")
	}
	if len(f.payments.completed) != 0 {
		t.Fatal("payment must not complete when settlement fails")
	}
}

func TestService_SubscriptionMirrorsIntermediateStatus(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(&models.Order{
		Status:         enums.OrderStatusProcessing,
		PaymentMethod:  enums.PaymentMethodCOD,
		IsSubscription: true,
		Items:          []models.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	if _, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(f.mirror.mirrored) != 1 || f.mirror.mirrored[0] != enums.OrderStatusShipped {
		t.Fatalf("expected shipped mirror, got %v", f.mirror.mirrored)
	}
	if len(f.wallet.settled) != 0 {
		t.Fatal("no wallet settlement before delivery")
	}
}

func TestService_NonSubscriptionWalletDeliveryNoResettle(t *testing.T) {
	f := newFixture(t)
	// Wallet checkout orders are debited at payment time, not delivery.
	order := f.seedOrder(&models.Order{
		Status:        enums.OrderStatusShipped,
		PaymentMethod: enums.PaymentMethodWallet,
		PaymentStatus: enums.PaymentStatusCompleted,
		Items:         []models.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	if _, err := f.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(f.wallet.settled) != 0 {
		t.Fatal("wallet must not settle twice")
	}
	if len(f.mirror.mirrored) != 0 {
		t.Fatal("no mirror for non-subscription order")
	}
}

func TestService_UpdateStatusUnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatusConfirmed)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_UpdateStatusInvalidStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatus("returned"))
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
