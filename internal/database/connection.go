// ===============================
// internal/database/connection.go - Optional PostgreSQL for the coin ledger
// ===============================

package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Pool sizes: the ledger sees one small insert per wallet movement
const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 10 * time.Minute
	connMaxIdleTime = 5 * time.Minute
)

// Connect opens the pool and pings it
func Connect(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Successfully connected to PostgreSQL database")
	log.Printf("📊 Pool: %d open / %d idle, lifetime %s", maxOpenConns, maxIdleConns, connMaxLifetime)
	return db, nil
}

// HealthCheck reports the pool state for /health. A nil db means the
// ledger is disabled.
func HealthCheck(db *sqlx.DB) map[string]interface{} {
	if db == nil {
		return map[string]interface{}{"status": "disabled"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return map[string]interface{}{
			"status":  "error",
			"message": fmt.Sprintf("ping failed: %v", err),
		}
	}

	stats := db.Stats()
	return map[string]interface{}{
		"status": "healthy",
		"connections": map[string]interface{}{
			"open":     stats.OpenConnections,
			"in_use":   stats.InUse,
			"idle":     stats.Idle,
			"max_open": maxOpenConns,
		},
		"wait_count":    stats.WaitCount,
		"wait_duration": stats.WaitDuration.String(),
	}
}
