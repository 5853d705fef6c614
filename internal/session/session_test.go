package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripboard/tripboard/internal/api"
	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/internal/repo"
	"github.com/tripboard/tripboard/internal/session"
	"github.com/tripboard/tripboard/testutil"
)

// mockAuth is a test double for session.AuthAPI.
// Set only the method fields your test needs.
type mockAuth struct {
	register    func(ctx context.Context, in domain.RegisterInput, invite string) (api.AuthResult, error)
	login       func(ctx context.Context, in domain.LoginInput, invite string) (api.AuthResult, error)
	currentUser func(ctx context.Context) (domain.User, error)
}

func (m *mockAuth) Register(ctx context.Context, in domain.RegisterInput, invite string) (api.AuthResult, error) {
	return m.register(ctx, in, invite)
}
func (m *mockAuth) Login(ctx context.Context, in domain.LoginInput, invite string) (api.AuthResult, error) {
	return m.login(ctx, in, invite)
}
func (m *mockAuth) CurrentUser(ctx context.Context) (domain.User, error) {
	return m.currentUser(ctx)
}

// compile-time check: mockAuth must satisfy session.AuthAPI.
var _ session.AuthAPI = (*mockAuth)(nil)

var ada = domain.User{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

func mustDate(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStart_noToken(t *testing.T) {
	ctx := context.Background()
	tokens := testutil.NewTokenStore(t)
	auth := &mockAuth{currentUser: func(context.Context) (domain.User, error) {
		t.Fatal("CurrentUser must not be called without a token")
		return domain.User{}, nil
	}}
	c := session.New(auth, tokens, quietLogger())

	_, err := c.Start(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, session.State{}, c.State())
}

func TestStart_validToken(t *testing.T) {
	ctx := context.Background()
	tokens := testutil.NewTokenStore(t)
	require.NoError(t, tokens.SetToken(ctx, "good"))
	c := session.New(&mockAuth{currentUser: func(context.Context) (domain.User, error) {
		return ada, nil
	}}, tokens, quietLogger())

	_, err := c.Start(ctx, "")

	require.NoError(t, err)
	st := c.State()
	assert.True(t, st.LoggedIn)
	require.NotNil(t, st.User)
	assert.Equal(t, ada, *st.User)
}

// A single rejected lookup logs the user out and forgets the token; there
// is no retry.
func TestStart_rejectedToken(t *testing.T) {
	ctx := context.Background()
	tokens := testutil.NewTokenStore(t)
	require.NoError(t, tokens.SetToken(ctx, "expired"))
	calls := 0
	c := session.New(&mockAuth{currentUser: func(context.Context) (domain.User, error) {
		calls++
		return domain.User{}, &api.StatusError{StatusCode: 401}
	}}, tokens, quietLogger())

	_, err := c.Start(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, c.State().LoggedIn)
	tok, err := tokens.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestStart_capturesInvite(t *testing.T) {
	ctx := context.Background()
	tokens := testutil.NewTokenStore(t)
	c := session.New(&mockAuth{}, tokens, quietLogger())

	cleaned, err := c.Start(ctx, "http://localhost:5173/?invite=abc123&tab=map")

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/?tab=map", cleaned)
	pending, err := tokens.PendingInvite(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", pending)
}

func TestStart_discardsSentinelInvite(t *testing.T) {
	ctx := context.Background()
	local := repo.NewLocalRepo(testutil.NewSQLDB(t))
	require.NoError(t, local.Set(ctx, repo.KeyPendingInvite, "undefined"))
	tokens := repo.NewTokenStore(local)
	c := session.New(&mockAuth{}, tokens, quietLogger())

	cleaned, err := c.Start(ctx, "http://localhost:5173/?invite=null")

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/", cleaned)
	pending, err := tokens.PendingInvite(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestLogin_validatesBeforeRequest(t *testing.T) {
	c := session.New(&mockAuth{login: func(context.Context, domain.LoginInput, string) (api.AuthResult, error) {
		t.Fatal("no request expected")
		return api.AuthResult{}, nil
	}}, testutil.NewTokenStore(t), quietLogger())

	_, err := c.Login(context.Background(), domain.LoginInput{Email: "not-an-email", Password: "x"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin_sendsAndClearsPendingInvite(t *testing.T) {
	ctx := context.Background()
	tokens := testutil.NewTokenStore(t)
	require.NoError(t, tokens.SetPendingInvite(ctx, "inv-1"))

	var sentInvite string
	c := session.New(&mockAuth{
		login: func(_ context.Context, _ domain.LoginInput, invite string) (api.AuthResult, error) {
			sentInvite = invite
			return api.AuthResult{Token: "tok"}, nil
		},
		currentUser: func(context.Context) (domain.User, error) { return ada, nil },
	}, tokens, quietLogger())

	user, err := c.Login(ctx, domain.LoginInput{Email: "ada@example.com", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, ada, user)
	assert.Equal(t, "inv-1", sentInvite)
	pending, err := tokens.PendingInvite(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	tok, err := tokens.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	assert.True(t, c.State().LoggedIn)
}

func TestLogin_failureKeepsPendingInvite(t *testing.T) {
	ctx := context.Background()
	tokens := testutil.NewTokenStore(t)
	require.NoError(t, tokens.SetPendingInvite(ctx, "inv-1"))
	c := session.New(&mockAuth{login: func(context.Context, domain.LoginInput, string) (api.AuthResult, error) {
		return api.AuthResult{}, errors.New("boom")
	}}, tokens, quietLogger())

	_, err := c.Login(ctx, domain.LoginInput{Email: "ada@example.com", Password: "secret1"})

	require.Error(t, err)
	pending, err := tokens.PendingInvite(ctx)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", pending)
	assert.False(t, c.State().LoggedIn)
}

func TestRegister_shortPassword(t *testing.T) {
	c := session.New(&mockAuth{}, testutil.NewTokenStore(t), quietLogger())

	_, err := c.Register(context.Background(), domain.RegisterInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "12345",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "at least 6")
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	tokens := testutil.NewTokenStore(t)
	require.NoError(t, tokens.SetToken(ctx, "good"))
	c := session.New(&mockAuth{currentUser: func(context.Context) (domain.User, error) { return ada, nil }}, tokens, quietLogger())
	_, err := c.Start(ctx, "")
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))

	assert.False(t, c.State().LoggedIn)
	tok, err := tokens.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

// TestRegisterThenRestart runs the whole flow against the development API:
// an invite link is opened, the user registers, and a fresh controller
// restores the session from the stored token.
func TestRegisterThenRestart(t *testing.T) {
	ctx := context.Background()
	d := testutil.NewDevAPI(t)
	_, ownerToken := d.SignUp(t, "Owner", "One")
	owner := d.Client(ownerToken)
	trip, err := owner.Trips.Create(ctx, domain.TripInput{
		Name: "Coast", StartingPoint: "Lisbon", Destination: "Porto",
		StartDate: mustDate("2026-05-01"), EndDate: mustDate("2026-05-04"),
	})
	require.NoError(t, err)
	inv, err := owner.Invites.Generate(ctx, trip.ID)
	require.NoError(t, err)

	tokens := testutil.NewTokenStore(t)
	client := api.New(d.BaseURL, tokens)
	c := session.New(client.Auth, tokens, quietLogger())

	_, err = c.Start(ctx, domain.InviteLink("http://localhost:5173", inv.Token))
	require.NoError(t, err)
	user, err := c.Register(ctx, domain.RegisterInput{
		FirstName: "Bob", LastName: "Stone", Email: "bob@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob Stone", user.FullName())

	trips, err := client.Trips.List(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 1, "registration with a pending invite joins the trip")

	restarted := session.New(client.Auth, tokens, quietLogger())
	_, err = restarted.Start(ctx, "")
	require.NoError(t, err)
	require.True(t, restarted.State().LoggedIn)
	assert.Equal(t, user.ID, restarted.State().User.ID)
}
