package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tripboard/tripboard/internal/api"
	"github.com/tripboard/tripboard/internal/devapi"
	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/spec"
)

// TestSecret signs the tokens issued by NewDevAPI servers.
const TestSecret = "test-secret"

// DevAPI is an in-process development API server.
type DevAPI struct {
	Server *httptest.Server
	Store  *devapi.Store

	// BaseURL is the API root clients should use, ending in /api.
	BaseURL string
}

// NewDevAPI starts a development API server with an empty store. The server
// is closed automatically when the test finishes.
func NewDevAPI(t *testing.T) *DevAPI {
	t.Helper()

	store := devapi.NewStore(devapi.WithBcryptCost(bcrypt.MinCost))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(devapi.NewServer(store, TestSecret, log).Handler(devapi.Options{OpenAPI: spec.OpenAPI}))
	t.Cleanup(srv.Close)

	return &DevAPI{Server: srv, Store: store, BaseURL: srv.URL + "/api"}
}

// Client returns an API client authenticated with token (empty for none).
func (d *DevAPI) Client(token string) *api.API {
	return api.New(d.BaseURL, api.StaticToken(token))
}

// SignUp registers a user named first/last through the HTTP API and returns
// the user and their bearer token.
func (d *DevAPI) SignUp(t *testing.T, first, last string) (domain.User, string) {
	t.Helper()

	res, err := d.Client("").Auth.Register(context.Background(), domain.RegisterInput{
		FirstName: first,
		LastName:  last,
		Email:     first + "." + last + "@example.com",
		Password:  "password1",
	}, "")
	if err != nil {
		t.Fatalf("testutil.DevAPI.SignUp: %v", err)
	}
	if res.User == nil {
		t.Fatalf("testutil.DevAPI.SignUp: no user in response")
	}
	return *res.User, res.Token
}
