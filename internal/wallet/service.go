package wallet

import (
	"context"
	"errors"
	"fmt"

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

// Service exposes the wallet ledger. Balance never goes negative and
// LockedBalance never exceeds Balance; every mutation writes a ledger line.
type Service interface {
	CreateForCustomer(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error)
	GetByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error)
	Deposit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error)
	Transactions(ctx context.Context, customerID uuid.UUID, limit int) ([]models.WalletTransaction, error)

	PurchaseWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error)
	HoldFundsWithTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error)
	AttachHoldToOrderWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal) error
	SettleHoldWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error)
	ReleaseHoldWithTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal) error
	RefundWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error)
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService builds the wallet service.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) CreateForCustomer(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	wallet := &models.Wallet{
		CustomerID:    customerID,
		Balance:       decimal.Zero,
		LockedBalance: decimal.Zero,
	}
	if err := s.repo.Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *service) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	wallet, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
		}
		return nil, err
	}
	return wallet, nil
}

func (s *service) Deposit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit amount must be positive")
	}
	if description == "" {
		description = "Wallet top-up"
	}

	var created *models.WalletTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		wallet, err := repo.FindByCustomer(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
			}
			return err
		}
		if err := repo.UpdateBalances(ctx, wallet.ID, wallet.Balance.Add(amount), wallet.LockedBalance); err != nil {
			return err
		}
		txn := &models.WalletTransaction{
			WalletID:    wallet.ID,
			Amount:      amount,
			Type:        enums.WalletTransactionTypeDeposit,
			Status:      enums.WalletTransactionStatusCompleted,
			Description: description,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		created = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Transactions(ctx context.Context, customerID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	wallet, err := s.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, wallet.ID, limit)
}

// PurchaseWithTx debits the spendable balance immediately and records a
// completed purchase line tied to the order.
func (s *service) PurchaseWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	repo := s.repo.WithTx(tx)
	wallet, err := s.loadWallet(ctx, repo, customerID)
	if err != nil {
		return nil, err
	}
	if wallet.Available().LessThan(amount) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Insufficient wallet balance")
	}
	if err := repo.UpdateBalances(ctx, wallet.ID, wallet.Balance.Sub(amount), wallet.LockedBalance); err != nil {
		return nil, err
	}
	txn := &models.WalletTransaction{
		WalletID:    wallet.ID,
		OrderID:     &orderID,
		Amount:      amount,
		Type:        enums.WalletTransactionTypePurchase,
		Status:      enums.WalletTransactionStatusCompleted,
		Description: description,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// HoldFundsWithTx reserves funds against a future recurring charge. The
// spendable balance shrinks but nothing leaves the wallet yet.
func (s *service) HoldFundsWithTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	repo := s.repo.WithTx(tx)
	wallet, err := s.loadWallet(ctx, repo, customerID)
	if err != nil {
		return nil, err
	}
	if wallet.Available().LessThan(amount) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Insufficient wallet balance to lock funds")
	}
	if err := repo.UpdateBalances(ctx, wallet.ID, wallet.Balance, wallet.LockedBalance.Add(amount)); err != nil {
		return nil, err
	}
	txn := &models.WalletTransaction{
		WalletID:    wallet.ID,
		Amount:      amount,
		Type:        enums.WalletTransactionTypePurchase,
		Status:      enums.WalletTransactionStatusPending,
		Description: description,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// AttachHoldToOrderWithTx ties the oldest unattached pending hold of the given
// amount to a materialized recurring order so settlement can find it later.
func (s *service) AttachHoldToOrderWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal) error {
	repo := s.repo.WithTx(tx)
	wallet, err := s.loadWallet(ctx, repo, customerID)
	if err != nil {
		return err
	}
	txn, err := repo.FindPendingPurchaseByAmount(ctx, wallet.ID, amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no pending wallet hold to attach")
		}
		return err
	}
	return repo.SetTransactionOrder(ctx, txn.ID, orderID)
}

// SettleHoldWithTx converts a hold into a real debit once the order delivers.
func (s *service) SettleHoldWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error) {
	repo := s.repo.WithTx(tx)
	wallet, err := s.loadWallet(ctx, repo, customerID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(amount) || wallet.LockedBalance.LessThan(amount) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Insufficient wallet balance")
	}

	txn, err := repo.FindPendingPurchaseByOrder(ctx, wallet.ID, orderID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Holds placed before the recurring order existed carry no order id.
		txn, err = repo.FindPendingPurchaseByAmount(ctx, wallet.ID, amount)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no pending wallet hold to settle")
			}
			return nil, err
		}
		if err := repo.SetTransactionOrder(ctx, txn.ID, orderID); err != nil {
			return nil, err
		}
	}

	if err := repo.UpdateBalances(ctx, wallet.ID, wallet.Balance.Sub(amount), wallet.LockedBalance.Sub(amount)); err != nil {
		return nil, err
	}
	if err := repo.UpdateTransactionStatus(ctx, txn.ID, enums.WalletTransactionStatusCompleted); err != nil {
		return nil, err
	}
	txn.Status = enums.WalletTransactionStatusCompleted
	txn.OrderID = &orderID
	return txn, nil
}

// ReleaseHoldWithTx undoes a hold, marking its ledger line failed. Releasing
// when nothing is held is a no-op so cancellation stays idempotent.
func (s *service) ReleaseHoldWithTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal) error {
	repo := s.repo.WithTx(tx)
	wallet, err := s.loadWallet(ctx, repo, customerID)
	if err != nil {
		return err
	}
	txn, err := repo.FindPendingPurchaseByAmount(ctx, wallet.ID, amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if wallet.LockedBalance.LessThan(amount) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "locked balance below hold amount")
	}
	if err := repo.UpdateBalances(ctx, wallet.ID, wallet.Balance, wallet.LockedBalance.Sub(amount)); err != nil {
		return err
	}
	return repo.UpdateTransactionStatus(ctx, txn.ID, enums.WalletTransactionStatusFailed)
}

// RefundWithTx credits funds back after a cancelled or reversed payment.
func (s *service) RefundWithTx(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	repo := s.repo.WithTx(tx)
	wallet, err := s.loadWallet(ctx, repo, customerID)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateBalances(ctx, wallet.ID, wallet.Balance.Add(amount), wallet.LockedBalance); err != nil {
		return nil, err
	}
	txn := &models.WalletTransaction{
		WalletID:    wallet.ID,
		OrderID:     &orderID,
		Amount:      amount,
		Type:        enums.WalletTransactionTypeRefund,
		Status:      enums.WalletTransactionStatusCompleted,
		Description: description,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) loadWallet(ctx context.Context, repo Repository, customerID uuid.UUID) (*models.Wallet, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	wallet, err := repo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
		}
		return nil, err
	}
	return wallet, nil
}
