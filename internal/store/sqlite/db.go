// Package sqlite implements the client and portfolio repositories on top
// of an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	cpf        TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolios (
	id                   TEXT PRIMARY KEY,
	client_id            TEXT NOT NULL REFERENCES clients(id),
	cash_balance         TEXT NOT NULL,
	invested_value       TEXT NOT NULL,
	realized_profit_loss TEXT NOT NULL,
	total_value          TEXT NOT NULL,
	created_at           INTEGER NOT NULL,
	updated_at           INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	portfolio_id         TEXT NOT NULL REFERENCES portfolios(id),
	ticker               TEXT NOT NULL,
	asset_class          TEXT NOT NULL,
	quantity             INTEGER NOT NULL,
	average_cost         TEXT NOT NULL,
	total_invested       TEXT NOT NULL,
	-- last known valuation
	current_price        TEXT NOT NULL,
	daily_price_change   TEXT NOT NULL,
	daily_percent_change TEXT NOT NULL,
	current_value        TEXT NOT NULL,
	total_gain_loss      TEXT NOT NULL,
	gain_loss_percent    TEXT NOT NULL,
	daily_gain_loss      TEXT NOT NULL,
	opened_at            INTEGER NOT NULL,
	updated_at           INTEGER NOT NULL,
	PRIMARY KEY (portfolio_id, ticker)
);

CREATE TABLE IF NOT EXISTS purchases (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	portfolio_id TEXT NOT NULL REFERENCES portfolios(id),
	ticker       TEXT NOT NULL,
	asset_class  TEXT NOT NULL,
	quantity     INTEGER NOT NULL,
	unit_price   TEXT NOT NULL,
	total_amount TEXT NOT NULL,
	executed_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
	seq                  INTEGER PRIMARY KEY AUTOINCREMENT,
	id                   TEXT NOT NULL UNIQUE,
	portfolio_id         TEXT NOT NULL REFERENCES portfolios(id),
	ticker               TEXT NOT NULL,
	asset_class          TEXT NOT NULL,
	quantity             INTEGER NOT NULL,
	unit_price           TEXT NOT NULL,
	total_amount         TEXT NOT NULL,
	cost_basis_at_sale   TEXT NOT NULL,
	total_cost_basis     TEXT NOT NULL,
	realized_profit_loss TEXT NOT NULL,
	executed_at          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_purchases_portfolio ON purchases(portfolio_id);
CREATE INDEX IF NOT EXISTS idx_sales_portfolio ON sales(portfolio_id);
`

// DB wraps the database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite has a single writer.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) migrate() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", p)
		} else if err != nil {
			_ = tx.Rollback()
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(tx)
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
