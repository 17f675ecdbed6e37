// Package database opens pooled SQL connections and applies the schema migrations.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

const (
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnMaxLifetime = 30 * time.Minute
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 25
)

type Option func(*sqlx.DB)

func WithConnMaxIdleTime(d time.Duration) Option {
	return func(db *sqlx.DB) {
		db.SetConnMaxIdleTime(d)
	}
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(db *sqlx.DB) {
		db.SetConnMaxLifetime(d)
	}
}

func WithMaxIdleConns(n int) Option {
	return func(db *sqlx.DB) {
		db.SetMaxIdleConns(n)
	}
}

func WithMaxOpenConns(n int) Option {
	return func(db *sqlx.DB) {
		db.SetMaxOpenConns(n)
	}
}

func New(ctx context.Context, driverName, dsn string, opts ...Option) (*sqlx.DB, error) {
	const op = "database.New"

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetMaxOpenConns(defaultMaxOpenConns)

	for _, opt := range opts {
		opt(db)
	}

	// SQLite serializes writers anyway; a single connection also keeps
	// in-memory databases visible to every query.
	if driverName == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxIdleTime(0)
		db.SetConnMaxLifetime(0)
	}

	return db, nil
}

// SQLiteDSN builds a DSN for the database file at path with WAL journaling
// and a busy timeout, so concurrent requests wait for the lock instead of failing.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
}
