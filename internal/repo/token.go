package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tripboard/tripboard/internal/domain"
)

// Fixed local storage keys.
const (
	KeyAuthToken     = "authToken"
	KeyPendingInvite = "pendingInvite"
	KeyActiveTrip    = "activeTrip"
)

// TokenStore persists the bearer token, a pending invite token and the
// last selected trip. Values that are empty, whitespace, or the literal
// strings "null" / "undefined" are treated as absent and deleted on read.
type TokenStore struct {
	local LocalRepo
}

// NewTokenStore wraps a LocalRepo.
func NewTokenStore(local LocalRepo) *TokenStore {
	return &TokenStore{local: local}
}

// Token returns the stored bearer token, or "" when none is stored.
// It satisfies api.TokenSource.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	v, err := s.read(ctx, KeyAuthToken)
	if err != nil {
		return "", fmt.Errorf("repo.TokenStore.Token: %w", err)
	}
	return v, nil
}

// SetToken stores the bearer token. Setting a sentinel value removes it.
func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	if err := s.write(ctx, KeyAuthToken, token); err != nil {
		return fmt.Errorf("repo.TokenStore.SetToken: %w", err)
	}
	return nil
}

// RemoveToken deletes the bearer token.
func (s *TokenStore) RemoveToken(ctx context.Context) error {
	if err := s.local.Delete(ctx, KeyAuthToken); err != nil {
		return fmt.Errorf("repo.TokenStore.RemoveToken: %w", err)
	}
	return nil
}

// PendingInvite returns the invite token captured from a share link and not
// yet consumed by login or registration, or "".
func (s *TokenStore) PendingInvite(ctx context.Context) (string, error) {
	v, err := s.read(ctx, KeyPendingInvite)
	if err != nil {
		return "", fmt.Errorf("repo.TokenStore.PendingInvite: %w", err)
	}
	return v, nil
}

// SetPendingInvite stores an invite token for later consumption.
func (s *TokenStore) SetPendingInvite(ctx context.Context, token string) error {
	if err := s.write(ctx, KeyPendingInvite, token); err != nil {
		return fmt.Errorf("repo.TokenStore.SetPendingInvite: %w", err)
	}
	return nil
}

// ClearPendingInvite deletes the pending invite token.
func (s *TokenStore) ClearPendingInvite(ctx context.Context) error {
	if err := s.local.Delete(ctx, KeyPendingInvite); err != nil {
		return fmt.Errorf("repo.TokenStore.ClearPendingInvite: %w", err)
	}
	return nil
}

// ActiveTrip returns the remembered trip id, or 0.
// A value that does not parse as a positive id is deleted.
func (s *TokenStore) ActiveTrip(ctx context.Context) (int64, error) {
	v, err := s.read(ctx, KeyActiveTrip)
	if err != nil || v == "" {
		return 0, err
	}
	id, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil || id <= 0 {
		if err := s.local.Delete(ctx, KeyActiveTrip); err != nil {
			return 0, fmt.Errorf("repo.TokenStore.ActiveTrip: %w", err)
		}
		return 0, nil
	}
	return id, nil
}

// SetActiveTrip remembers the selected trip.
func (s *TokenStore) SetActiveTrip(ctx context.Context, tripID int64) error {
	if err := s.local.Set(ctx, KeyActiveTrip, strconv.FormatInt(tripID, 10)); err != nil {
		return fmt.Errorf("repo.TokenStore.SetActiveTrip: %w", err)
	}
	return nil
}

// ClearActiveTrip forgets the selected trip.
func (s *TokenStore) ClearActiveTrip(ctx context.Context) error {
	if err := s.local.Delete(ctx, KeyActiveTrip); err != nil {
		return fmt.Errorf("repo.TokenStore.ClearActiveTrip: %w", err)
	}
	return nil
}

// IsSentinel reports whether v should be treated as "no value".
func IsSentinel(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "null", "undefined":
		return true
	}
	return false
}

func (s *TokenStore) read(ctx context.Context, key string) (string, error) {
	v, err := s.local.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if IsSentinel(v) {
		return "", s.local.Delete(ctx, key)
	}
	return v, nil
}

func (s *TokenStore) write(ctx context.Context, key, value string) error {
	if IsSentinel(value) {
		return s.local.Delete(ctx, key)
	}
	return s.local.Set(ctx, key, value)
}
