// Package sqlite owns the destination database handle. It opens a
// modernc.org/sqlite connection with the run's pragmas, exposes the catalog
// queries the DDL layer needs, and hands the *sql.DB to the importer.
//
// The handle is limited to a single connection: one run is one writer, and
// an in-memory database only exists on the connection that created it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sqliteddl "csvimport/internal/storage/sqlite/ddl"

	// SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// pingTimeout bounds the initial connectivity check.
const pingTimeout = 5 * time.Second

// Repository wraps the destination database.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens the database described by cfg and returns a Repository
// plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, nil, fmt.Errorf("sqlite: path must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Ping with a deadline to fail fast on unusable paths.
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping %s: %w", cfg.Path, err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// DB returns the underlying handle. Callers must not change its pool limits.
func (r *Repository) DB() *sql.DB { return r.db }

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// TableExists reports whether a table named name exists in the main schema.
func (r *Repository) TableExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("sqlite: lookup table %s: %w", name, err)
	}
	return true, nil
}

// Schema returns the CREATE statement SQLite stored for table.
func (r *Repository) Schema(ctx context.Context, table string) (string, error) {
	var ddl string
	err := r.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&ddl)
	if err != nil {
		return "", fmt.Errorf("sqlite: schema %s: %w", table, err)
	}
	return ddl, nil
}

// Pragma reads a single pragma value, e.g. Pragma(ctx, "journal_mode").
func (r *Repository) Pragma(ctx context.Context, name string) (string, error) {
	var v string
	if err := r.db.QueryRowContext(ctx, "PRAGMA "+name).Scan(&v); err != nil {
		return "", fmt.Errorf("sqlite: pragma %s: %w", name, err)
	}
	return v, nil
}

// Count returns the number of rows in table.
func (r *Repository) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+sqliteddl.QuoteIdent(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count %s: %w", table, err)
	}
	return n, nil
}
