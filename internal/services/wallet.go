// ===============================
// internal/services/wallet.go
// ===============================

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"

	"github.com/google/uuid"
)

type WalletService struct {
	store    rtdb.Store
	ledger   Ledger
	notifier Notifier
	now      func() time.Time
}

func NewWalletService(store rtdb.Store, ledger Ledger, notifier Notifier) *WalletService {
	if ledger == nil {
		ledger = NoopLedger{}
	}
	return &WalletService{
		store:    store,
		ledger:   ledger,
		notifier: notifierOrNoop(notifier),
		now:      time.Now,
	}
}

func (s *WalletService) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.store.Get(ctx, walletPath(userID), &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *WalletService) GetCoins(ctx context.Context, userID string) (int64, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return 0, err
	}
	return wallet.Coins, nil
}

// Credit adds coins and returns the new balance
func (s *WalletService) Credit(ctx context.Context, userID string, amount int64, txType, description, referenceID string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: credit amount must be positive", ErrInvalidInput)
	}
	return s.apply(ctx, userID, amount, txType, description, referenceID)
}

// Debit removes coins, failing with ErrInsufficientCoins instead of going negative
func (s *WalletService) Debit(ctx context.Context, userID string, amount int64, txType, description, referenceID string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: debit amount must be positive", ErrInvalidInput)
	}
	return s.apply(ctx, userID, -amount, txType, description, referenceID)
}

func (s *WalletService) apply(ctx context.Context, userID string, delta int64, txType, description, referenceID string) (int64, error) {
	var before, after int64
	now := s.now()

	err := s.store.Transaction(ctx, walletPath(userID), func(cur rtdb.Node) (interface{}, error) {
		var wallet models.Wallet
		if err := cur.Unmarshal(&wallet); err != nil {
			return nil, err
		}
		if wallet.Coins+delta < 0 {
			return nil, ErrInsufficientCoins
		}
		before = wallet.Coins
		wallet.Coins += delta
		wallet.UpdatedAtUnix = now.Unix()
		after = wallet.Coins
		return wallet, nil
	})
	if err != nil {
		return 0, err
	}

	tx := &models.WalletTransaction{
		TransactionID: uuid.New().String(),
		UserID:        userID,
		Type:          txType,
		CoinAmount:    delta,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   description,
		Metadata:      models.MetadataMap{},
		CreatedAt:     now,
	}
	if referenceID != "" {
		tx.ReferenceID = &referenceID
	}
	if err := s.ledger.Record(ctx, tx); err != nil {
		log.Printf("⚠️  Failed to record wallet transaction for %s: %v", userID, err)
	}

	s.notifier.NotifyUser(userID, EventWalletUpdated, map[string]interface{}{
		"coins": after,
		"delta": delta,
		"type":  txType,
	})

	return after, nil
}

func (s *WalletService) GetTransactions(ctx context.Context, userID string, limit int) ([]models.WalletTransaction, error) {
	return s.ledger.List(ctx, userID, limit)
}
