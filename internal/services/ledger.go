// ===============================
// internal/services/ledger.go - Coin ledger
// ===============================

package services

import (
	"context"

	"github.com/Randomizando3/DramaBoxV2/internal/models"

	"github.com/jmoiron/sqlx"
)

// Ledger keeps an audit trail of wallet movements. The balance itself lives
// in the Realtime Database.
type Ledger interface {
	Record(ctx context.Context, tx *models.WalletTransaction) error
	List(ctx context.Context, userID string, limit int) ([]models.WalletTransaction, error)
}

// PostgresLedger writes to the wallet_transactions table
type PostgresLedger struct {
	db *sqlx.DB
}

func NewPostgresLedger(db *sqlx.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Record(ctx context.Context, tx *models.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions (
			transaction_id, user_id, type, coin_amount,
			balance_before, balance_after, description, reference_id, metadata, created_at
		) VALUES (
			:transaction_id, :user_id, :type, :coin_amount,
			:balance_before, :balance_after, :description, :reference_id, :metadata, :created_at
		)`

	_, err := l.db.NamedExecContext(ctx, query, tx)
	return err
}

func (l *PostgresLedger) List(ctx context.Context, userID string, limit int) ([]models.WalletTransaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var transactions []models.WalletTransaction
	err := l.db.SelectContext(ctx, &transactions, query, userID, limit)
	return transactions, err
}

// NoopLedger is used when no DATABASE_URL is configured
type NoopLedger struct{}

func (NoopLedger) Record(context.Context, *models.WalletTransaction) error { return nil }

func (NoopLedger) List(context.Context, string, int) ([]models.WalletTransaction, error) {
	return nil, ErrLedgerDisabled
}
