// ===============================
// internal/services/purchase.go - Coin purchase requests
// ===============================

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PurchaseService stores coin purchase requests in Postgres until an admin
// verifies the payment. Approval credits the Realtime Database wallet.
type PurchaseService struct {
	db     *sqlx.DB
	wallet *WalletService
}

func NewPurchaseService(db *sqlx.DB, wallet *WalletService) *PurchaseService {
	return &PurchaseService{db: db, wallet: wallet}
}

func (s *PurchaseService) Enabled() bool {
	return s != nil && s.db != nil
}

func (s *PurchaseService) CreatePurchaseRequest(ctx context.Context, userID, packageID, paymentReference, paymentMethod string) (*models.CoinPurchaseRequest, error) {
	if !s.Enabled() {
		return nil, ErrLedgerDisabled
	}

	pkg, ok := models.CoinPackages[packageID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown package %q", ErrInvalidInput, packageID)
	}

	request := &models.CoinPurchaseRequest{
		ID:               uuid.New().String(),
		UserID:           userID,
		PackageID:        packageID,
		CoinAmount:       pkg.Coins,
		PaidAmount:       pkg.Price,
		PaymentReference: paymentReference,
		PaymentMethod:    paymentMethod,
		Status:           models.PurchasePending,
		RequestedAt:      time.Now(),
	}

	query := `
		INSERT INTO coin_purchase_requests (
			id, user_id, package_id, coin_amount, paid_amount,
			payment_reference, payment_method, status, requested_at
		) VALUES (
			:id, :user_id, :package_id, :coin_amount, :paid_amount,
			:payment_reference, :payment_method, :status, :requested_at
		)`

	if _, err := s.db.NamedExecContext(ctx, query, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *PurchaseService) GetPendingPurchases(ctx context.Context, limit int) ([]models.CoinPurchaseRequest, error) {
	if !s.Enabled() {
		return nil, ErrLedgerDisabled
	}

	query := `
		SELECT * FROM coin_purchase_requests
		WHERE status = $1
		ORDER BY requested_at DESC
		LIMIT $2`

	var requests []models.CoinPurchaseRequest
	err := s.db.SelectContext(ctx, &requests, query, models.PurchasePending, limit)
	return requests, err
}

// ProcessPurchaseRequest approves or rejects a pending request
func (s *PurchaseService) ProcessPurchaseRequest(ctx context.Context, requestID string, approve bool, adminNote string) error {
	if !s.Enabled() {
		return ErrLedgerDisabled
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var request models.CoinPurchaseRequest
	err = tx.GetContext(ctx, &request,
		"SELECT * FROM coin_purchase_requests WHERE id = $1 FOR UPDATE", requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if request.Status != models.PurchasePending {
		return ErrAlreadyDone
	}

	status := models.PurchaseRejected
	if approve {
		status = models.PurchaseApproved
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE coin_purchase_requests
		SET status = $1, processed_at = $2, admin_note = $3
		WHERE id = $4`, status, time.Now(), adminNote, requestID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if approve {
		_, err = s.wallet.Credit(ctx, request.UserID, request.CoinAmount, models.TxCoinPurchase,
			"Coin purchase approved", request.ID)
		return err
	}
	return nil
}
