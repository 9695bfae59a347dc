// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS pool_records (
			pool_id TEXT PRIMARY KEY,
			source_kind VARCHAR(32) NOT NULL,
			asset_a TEXT NOT NULL,
			asset_b TEXT NOT NULL,
			fee_bps INTEGER NOT NULL,
			reserve_a DECIMAL(30, 7) NOT NULL,
			reserve_b DECIMAL(30, 7) NOT NULL,
			total_shares DECIMAL(30, 7) NOT NULL,
			tvl DECIMAL(30, 7) NOT NULL,
			price DECIMAL(30, 7) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_pool_records_pair ON pool_records(asset_a, asset_b);
		CREATE INDEX IF NOT EXISTS idx_pool_records_updated ON pool_records(updated_at DESC);

		CREATE TABLE IF NOT EXISTS positions (
			wallet_address TEXT NOT NULL,
			pool_id TEXT NOT NULL,
			shares DECIMAL(30, 7) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (wallet_address, pool_id)
		);
		CREATE INDEX IF NOT EXISTS idx_positions_pool_id ON positions(pool_id);

		CREATE TABLE IF NOT EXISTS bootstrap_receipts (
			receipt_id SERIAL PRIMARY KEY,
			plan_id TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			target_liquidity_usd DECIMAL(20, 8) NOT NULL,
			amount_a DECIMAL(30, 7) NOT NULL,
			amount_b DECIMAL(30, 7) NOT NULL,
			sources_used TEXT[],
			message TEXT,
			tx_hash TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_bootstrap_receipts_created ON bootstrap_receipts(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_bootstrap_receipts_plan_id ON bootstrap_receipts(plan_id);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
