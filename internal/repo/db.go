// Package repo contains the persistence layer of the Tripboard client: a
// small sqlite file standing in for browser local storage.
// No business logic lives here, only SQL and the sentinel-value rules of
// the token store.
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver for database/sql

	"github.com/tripboard/tripboard/migrations"
)

// db is the minimal interface satisfied by *sql.DB, *sql.Conn and *sql.Tx.
// Accepting it instead of *sql.DB lets tests run a repo inside a
// transaction when they need to.
type db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the sqlite file at path and applies every
// pending migration. The parent directory is created with mode 0700 since
// the file holds a bearer token.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("repo.Open: store path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("repo.Open: create directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repo.Open: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and avoids
	// SQLITE_BUSY between our own goroutines.
	conn.SetMaxOpenConns(1)

	if err := Migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate applies all pending migrations from the embedded migrations.FS.
func Migrate(ctx context.Context, conn *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, migrations.FS)
	if err != nil {
		return fmt.Errorf("repo.Migrate: create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("repo.Migrate: %w", err)
	}
	return nil
}
