package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tripboard/tripboard/internal/domain"
)

// Auth is the client for /auth.
type Auth struct {
	c *Client
}

// AuthResult is the outcome of login or registration. Token may be empty
// when the server does not log the user in on registration.
type AuthResult struct {
	Token string
	User  *domain.User
}

// Register creates an account. inviteToken is sent only when non-empty.
func (a *Auth) Register(ctx context.Context, in domain.RegisterInput, inviteToken string) (AuthResult, error) {
	req := registerRequest{
		Email:       in.Email,
		Password:    in.Password,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		InviteToken: inviteToken,
	}
	var resp authResponse
	if err := a.c.Do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return AuthResult{}, fmt.Errorf("api.Auth.Register: %w", err)
	}
	return AuthResult{Token: resp.Token, User: resp.User.toDomain()}, nil
}

// Login exchanges credentials for a bearer token.
func (a *Auth) Login(ctx context.Context, in domain.LoginInput, inviteToken string) (AuthResult, error) {
	req := loginRequest{Email: in.Email, Password: in.Password, InviteToken: inviteToken}
	var resp authResponse
	if err := a.c.Do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return AuthResult{}, fmt.Errorf("api.Auth.Login: %w", err)
	}
	return AuthResult{Token: resp.Token, User: resp.User.toDomain()}, nil
}

// CurrentUser returns the user the bearer token belongs to.
func (a *Auth) CurrentUser(ctx context.Context) (domain.User, error) {
	var u userDTO
	if err := a.c.Do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return domain.User{}, fmt.Errorf("api.Auth.CurrentUser: %w", err)
	}
	return *u.toDomain(), nil
}
