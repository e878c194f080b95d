// ===============================
// internal/database/migrations.go - Ledger and purchase request tables
// ===============================

package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

type Migration struct {
	Version string
	Query   string
}

var migrations = []Migration{
	{
		Version: "001_wallet_ledger",
		Query: `
			-- One row per coin movement, the balance itself lives in the Realtime Database
			CREATE TABLE IF NOT EXISTS wallet_transactions (
				transaction_id UUID PRIMARY KEY,
				user_id VARCHAR(255) NOT NULL,
				type VARCHAR(50) NOT NULL,
				coin_amount BIGINT NOT NULL,
				balance_before BIGINT NOT NULL,
				balance_after BIGINT NOT NULL,
				description TEXT DEFAULT '',
				reference_id VARCHAR(255),
				metadata JSONB DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_wallet_transactions_user_created
				ON wallet_transactions(user_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_wallet_transactions_reference
				ON wallet_transactions(reference_id) WHERE reference_id IS NOT NULL;
		`,
	},
	{
		Version: "002_coin_purchase_requests",
		Query: `
			CREATE TABLE IF NOT EXISTS coin_purchase_requests (
				id UUID PRIMARY KEY,
				user_id VARCHAR(255) NOT NULL,
				package_id VARCHAR(50) NOT NULL,
				coin_amount BIGINT NOT NULL,
				paid_amount DECIMAL(10,2) NOT NULL,
				payment_reference VARCHAR(255) NOT NULL,
				payment_method VARCHAR(50) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT 'pending_admin_verification',
				requested_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				processed_at TIMESTAMP WITH TIME ZONE,
				admin_note TEXT,
				CONSTRAINT coin_purchase_status_check
					CHECK (status IN ('pending_admin_verification', 'approved', 'rejected'))
			);

			CREATE INDEX IF NOT EXISTS idx_coin_purchase_requests_status
				ON coin_purchase_requests(status, requested_at DESC);
			CREATE INDEX IF NOT EXISTS idx_coin_purchase_requests_user
				ON coin_purchase_requests(user_id, requested_at DESC);
		`,
	},
}

func RunMigrations(db *sqlx.DB) error {
	log.Println("📄 Running ledger migrations...")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			version VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, migration := range migrations {
		if err := applyMigration(db, migration); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
	}

	log.Println("✅ Ledger migrations completed successfully")
	return nil
}

func applyMigration(db *sqlx.DB, migration Migration) error {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE version = $1", migration.Version).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}

	if count > 0 {
		log.Printf("⏭️  Migration %s already applied, skipping", migration.Version)
		return nil
	}

	log.Printf("🔧 Applying migration: %s", migration.Version)

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec(migration.Query); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
	}

	if _, err = tx.Exec("INSERT INTO migrations (version) VALUES ($1)", migration.Version); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", migration.Version, err)
	}

	log.Printf("✅ Migration %s applied successfully", migration.Version)
	return nil
}
