package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tripboard/tripboard/internal/domain"
)

// LocalRepo is a string key/value store with the semantics of browser
// local storage: last write wins, values are opaque strings.
type LocalRepo interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// sqliteLocalRepo is the sqlite implementation of LocalRepo.
type sqliteLocalRepo struct {
	db db
}

// NewLocalRepo constructs a LocalRepo backed by the provided connection.
// Pass the *sql.DB returned by Open.
func NewLocalRepo(db db) LocalRepo {
	return &sqliteLocalRepo{db: db}
}

func (r *sqliteLocalRepo) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM local_storage WHERE key = ?`

	var value string
	err := r.db.QueryRowContext(ctx, q, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("repo.LocalRepo.Get: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("repo.LocalRepo.Get: %w", err)
	}
	return value, nil
}

func (r *sqliteLocalRepo) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
		    value      = excluded.value,
		    updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("repo.LocalRepo.Set: %w", err)
	}
	return nil
}

func (r *sqliteLocalRepo) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM local_storage WHERE key = ?`

	if _, err := r.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("repo.LocalRepo.Delete: %w", err)
	}
	return nil
}
