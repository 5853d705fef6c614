// Package testutil provides shared helpers for tests: a throwaway local
// store and an in-process instance of the development API.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/tripboard/tripboard/internal/repo"
)

// NewSQLDB opens a migrated sqlite database in a per-test temporary
// directory. The connection is closed automatically when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "local.db")
	db, err := repo.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// NewTokenStore returns a TokenStore over a fresh NewSQLDB.
func NewTokenStore(t *testing.T) *repo.TokenStore {
	t.Helper()
	return repo.NewTokenStore(repo.NewLocalRepo(NewSQLDB(t)))
}
