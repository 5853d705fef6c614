// Package session owns the login state: the bearer token in the persistent
// token store and the user it was confirmed for.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/tripboard/tripboard/internal/api"
	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/internal/repo"
)

// AuthAPI is the subset of the remote API the controller calls.
type AuthAPI interface {
	Register(ctx context.Context, in domain.RegisterInput, inviteToken string) (api.AuthResult, error)
	Login(ctx context.Context, in domain.LoginInput, inviteToken string) (api.AuthResult, error)
	CurrentUser(ctx context.Context) (domain.User, error)
}

// TokenStore persists the bearer token and the pending invite.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	RemoveToken(ctx context.Context) error
	PendingInvite(ctx context.Context) (string, error)
	SetPendingInvite(ctx context.Context, token string) error
	ClearPendingInvite(ctx context.Context) error
}

// ErrNoToken is returned when login succeeds without the server issuing a token.
var ErrNoToken = errors.New("no token in auth response")

// State is a snapshot of the session.
type State struct {
	LoggedIn bool
	User     *domain.User
}

// Controller is the session state machine. Safe for concurrent use.
type Controller struct {
	auth   AuthAPI
	tokens TokenStore
	log    *slog.Logger

	mu   sync.Mutex
	user *domain.User
}

// New returns a logged-out Controller.
func New(auth AuthAPI, tokens TokenStore, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{auth: auth, tokens: tokens, log: log}
}

// Start restores the session from the token store.
//
// pageURL is the address the user opened (may be empty). An invite query
// parameter is persisted as the pending invite and the URL is returned with
// the parameter stripped. A stored token is confirmed once with the API; if
// that fails the token is removed and the session stays logged out.
func (c *Controller) Start(ctx context.Context, pageURL string) (string, error) {
	cleaned, err := c.captureInvite(ctx, pageURL)
	if err != nil {
		return pageURL, fmt.Errorf("session.Controller.Start: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return cleaned, fmt.Errorf("session.Controller.Start: %w", err)
	}
	if token == "" {
		c.setUser(nil)
		return cleaned, nil
	}

	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "stored token rejected, logging out", "error", err)
		c.setUser(nil)
		if rmErr := c.tokens.RemoveToken(ctx); rmErr != nil {
			return cleaned, fmt.Errorf("session.Controller.Start: %w", rmErr)
		}
		return cleaned, nil
	}
	c.setUser(&user)
	return cleaned, nil
}

// captureInvite stores the invite parameter from pageURL and strips it.
// Without one, reading the pending invite discards a stored sentinel value.
func (c *Controller) captureInvite(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		_, err := c.tokens.PendingInvite(ctx)
		return "", err
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL, fmt.Errorf("%w: invalid url %q", domain.ErrValidation, pageURL)
	}
	q := u.Query()
	invite := q.Get(domain.InviteParam)
	if invite == "" || repo.IsSentinel(invite) {
		_, err := c.tokens.PendingInvite(ctx)
		if q.Has(domain.InviteParam) {
			q.Del(domain.InviteParam)
			u.RawQuery = q.Encode()
		}
		return u.String(), err
	}
	if err := c.tokens.SetPendingInvite(ctx, invite); err != nil {
		return pageURL, err
	}
	c.log.InfoContext(ctx, "captured invite token from url")
	q.Del(domain.InviteParam)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Login validates credentials locally, then authenticates. A pending invite
// is sent along and cleared once the login succeeds.
func (c *Controller) Login(ctx context.Context, in domain.LoginInput) (domain.User, error) {
	if err := in.Validate(); err != nil {
		return domain.User{}, fmt.Errorf("session.Controller.Login: %w", err)
	}
	user, err := c.login(ctx, in)
	if err != nil {
		c.log.ErrorContext(ctx, "login failed", "error", err)
		return domain.User{}, fmt.Errorf("session.Controller.Login: %w", err)
	}
	return user, nil
}

func (c *Controller) login(ctx context.Context, in domain.LoginInput) (domain.User, error) {
	invite, err := c.tokens.PendingInvite(ctx)
	if err != nil {
		return domain.User{}, err
	}
	res, err := c.auth.Login(ctx, in, invite)
	if err != nil {
		return domain.User{}, err
	}
	if res.Token == "" {
		return domain.User{}, ErrNoToken
	}
	if err := c.tokens.SetToken(ctx, res.Token); err != nil {
		return domain.User{}, err
	}
	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		if rmErr := c.tokens.RemoveToken(ctx); rmErr != nil {
			c.log.ErrorContext(ctx, "remove rejected token", "error", rmErr)
		}
		return domain.User{}, err
	}
	if invite != "" {
		if err := c.tokens.ClearPendingInvite(ctx); err != nil {
			return domain.User{}, err
		}
	}
	c.setUser(&user)
	return user, nil
}

// Register validates the form locally, creates the account (sending a
// pending invite along), then logs in with the same credentials.
func (c *Controller) Register(ctx context.Context, in domain.RegisterInput) (domain.User, error) {
	if err := in.Validate(); err != nil {
		return domain.User{}, fmt.Errorf("session.Controller.Register: %w", err)
	}
	invite, err := c.tokens.PendingInvite(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("session.Controller.Register: %w", err)
	}
	res, err := c.auth.Register(ctx, in, invite)
	if err != nil {
		c.log.ErrorContext(ctx, "registration failed", "error", err)
		return domain.User{}, fmt.Errorf("session.Controller.Register: %w", err)
	}
	if res.Token != "" {
		if err := c.tokens.SetToken(ctx, res.Token); err != nil {
			return domain.User{}, fmt.Errorf("session.Controller.Register: %w", err)
		}
	}
	// The invite was consumed by registration.
	if invite != "" {
		if err := c.tokens.ClearPendingInvite(ctx); err != nil {
			return domain.User{}, fmt.Errorf("session.Controller.Register: %w", err)
		}
	}
	user, err := c.login(ctx, domain.LoginInput{Email: in.Email, Password: in.Password})
	if err != nil {
		c.log.ErrorContext(ctx, "login after registration failed", "error", err)
		return domain.User{}, fmt.Errorf("session.Controller.Register: %w", err)
	}
	return user, nil
}

// Logout removes the stored token and clears the session.
func (c *Controller) Logout(ctx context.Context) error {
	c.setUser(nil)
	if err := c.tokens.RemoveToken(ctx); err != nil {
		return fmt.Errorf("session.Controller.Logout: %w", err)
	}
	return nil
}

// State returns the current session snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return State{}
	}
	u := *c.user
	return State{LoggedIn: true, User: &u}
}

func (c *Controller) setUser(u *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
}
