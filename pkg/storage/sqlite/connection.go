package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver, built with the fts5 tag
	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/storage"
)

// Store is the SQLite-backed implementation of storage.Store.
type Store struct {
	db  *sql.DB
	cfg storage.Config
}

// Open opens (or creates) the catalog database at cfg.SQLitePath, applies
// pragmas and pending migrations, and returns a ready Store.
func Open(cfg storage.Config) (*Store, error) {
	dsn := buildDSN(cfg)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// churn under concurrent handlers while WAL keeps readers unblocked.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{db: db, cfg: cfg}, nil
}

// NewWithDB wraps an existing database handle. The schema must already be in
// place; used by tests and by callers that manage the connection themselves.
func NewWithDB(db *sql.DB, cfg storage.Config) *Store {
	return &Store{db: db, cfg: cfg}
}

func buildDSN(cfg storage.Config) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", fmt.Sprintf("%d", cfg.BusyTimeout.Milliseconds()))
	q.Set("_synchronous", "NORMAL")
	return fmt.Sprintf("file:%s?%s", cfg.SQLitePath, q.Encode())
}

// DB exposes the underlying handle for the search and analytics services,
// which issue their own SQL against the same schema.
func (s *Store) DB() *sql.DB {
	return s.db
}

// HealthCheck verifies the database answers a trivial query.
func (s *Store) HealthCheck(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("%w: health check: %v", catalog.ErrStorageUnavailable, err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// storageErr wraps a database failure so callers can match it with
// errors.Is(err, catalog.ErrStorageUnavailable) while keeping the cause.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", catalog.ErrStorageUnavailable, op, err)
}
