package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
)

type fakeRepository struct {
	stock     map[uuid.UUID]int
	movements []*models.StockTransaction
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{stock: make(map[uuid.UUID]int)}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	qty, ok := f.stock[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Product{ID: productID, StockQuantity: qty}, nil
}

func (f *fakeRepository) DecrementStock(ctx context.Context, productID uuid.UUID, units int) (int64, error) {
	qty, ok := f.stock[productID]
	if !ok || qty < units {
		return 0, nil
	}
	f.stock[productID] = qty - units
	return 1, nil
}

func (f *fakeRepository) IncrementStock(ctx context.Context, productID uuid.UUID, units int) error {
	f.stock[productID] += units
	return nil
}

func (f *fakeRepository) CreateStockTransaction(ctx context.Context, txn *models.StockTransaction) error {
	txn.ID = uuid.New()
	f.movements = append(f.movements, txn)
	return nil
}

func (f *fakeRepository) ListMovementsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockTransaction, error) {
	var out []models.StockTransaction
	for _, txn := range f.movements {
		if txn.ProductID == productID {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListBelowReorderLevel(ctx context.Context) ([]models.Product, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestService_DecrementForOrderUsesPackageSize(t *testing.T) {
	repo := newFakeRepository()
	productID := uuid.New()
	repo.stock[productID] = 100

	order := &models.Order{
		ID: uuid.New(),
		Items: []models.OrderItem{
			// 3 packages of 6 eggs each consumes 18 base units.
			{ProductID: productID, Quantity: 3, PackageSize: 6},
		},
	}

	svc := newTestService(t, repo)
	if err := svc.DecrementForOrderWithTx(context.Background(), nil, order); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if repo.stock[productID] != 82 {
		t.Fatalf("expected stock 82, got %d", repo.stock[productID])
	}
	if len(repo.movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(repo.movements))
	}
	movement := repo.movements[0]
	if movement.Type != enums.StockTransactionTypeOut {
		t.Fatalf("expected OUT movement, got %s", movement.Type)
	}
	if movement.Quantity != 18 {
		t.Fatalf("expected 18 units, got %d", movement.Quantity)
	}
	if movement.OrderID == nil || *movement.OrderID != order.ID {
		t.Fatal("movement must reference the order")
	}
}

func TestService_DecrementForOrderDefaultsPackageSize(t *testing.T) {
	repo := newFakeRepository()
	productID := uuid.New()
	repo.stock[productID] = 10

	order := &models.Order{
		ID:    uuid.New(),
		Items: []models.OrderItem{{ProductID: productID, Quantity: 4}},
	}

	svc := newTestService(t, repo)
	if err := svc.DecrementForOrderWithTx(context.Background(), nil, order); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if repo.stock[productID] != 6 {
		t.Fatalf("expected stock 6, got %d", repo.stock[productID])
	}
}

func TestService_DecrementForOrderInsufficientStock(t *testing.T) {
	repo := newFakeRepository()
	productID := uuid.New()
	repo.stock[productID] = 5

	order := &models.Order{
		ID:    uuid.New(),
		Items: []models.OrderItem{{ProductID: productID, Quantity: 2, PackageSize: 6}},
	}

	svc := newTestService(t, repo)
	err := svc.DecrementForOrderWithTx(context.Background(), nil, order)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %s", pkgerrors.As(err).Code())
	}
	if repo.stock[productID] != 5 {
		t.Fatalf("stock must be untouched, got %d", repo.stock[productID])
	}
	if len(repo.movements) != 0 {
		t.Fatalf("no movement should be written, got %d", len(repo.movements))
	}
}

func TestService_DecrementForOrderUnknownProduct(t *testing.T) {
	repo := newFakeRepository()
	order := &models.Order{
		ID:    uuid.New(),
		Items: []models.OrderItem{{ProductID: uuid.New(), Quantity: 1}},
	}

	svc := newTestService(t, repo)
	err := svc.DecrementForOrderWithTx(context.Background(), nil, order)
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", pkgerrors.As(err).Code())
	}
}

func TestService_Restock(t *testing.T) {
	repo := newFakeRepository()
	productID := uuid.New()
	repo.stock[productID] = 2

	svc := newTestService(t, repo)
	movement, err := svc.Restock(context.Background(), productID, 48, "")
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if movement.Type != enums.StockTransactionTypeIn {
		t.Fatalf("expected IN movement, got %s", movement.Type)
	}
	if repo.stock[productID] != 50 {
		t.Fatalf("expected stock 50, got %d", repo.stock[productID])
	}
}

func TestService_RestockRejectsNonPositive(t *testing.T) {
	svc := newTestService(t, newFakeRepository())
	_, err := svc.Restock(context.Background(), uuid.New(), 0, "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation, got %s", pkgerrors.As(err).Code())
	}
}
