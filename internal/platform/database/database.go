package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(30)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// schema is applied at startup. The uniqueness and referential constraints
// here back up the engine's own checks: a duplicate product name, a reused
// barcode or a negative stock level is rejected by the store even if a code
// path slips past service-level validation.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'cashier',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		barcode     TEXT UNIQUE,
		price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category    TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS products_name_lower_idx ON products (LOWER(name))`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id              UUID PRIMARY KEY,
		cashier_id      UUID NOT NULL REFERENCES users(id),
		total           NUMERIC(12,2) NOT NULL,
		discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_method  TEXT NOT NULL,
		customer_email  TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transaction_items (
		id             UUID PRIMARY KEY,
		transaction_id UUID NOT NULL REFERENCES transactions(id),
		product_id     UUID NOT NULL REFERENCES products(id),
		quantity       INTEGER NOT NULL CHECK (quantity > 0),
		unit_price     NUMERIC(12,2) NOT NULL,
		subtotal       NUMERIC(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL UNIQUE,
		phone      TEXT NOT NULL DEFAULT '',
		points     INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
