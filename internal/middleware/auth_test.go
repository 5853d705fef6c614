package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripboard/tripboard/internal/middleware"
)

// echoUserHandler writes the authenticated user id as the response body.
var echoUserHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.UserID(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(strconv.FormatInt(id, 10)))
})

func TestAuthenticator_IssueVerify(t *testing.T) {
	a := middleware.NewAuthenticator("secret", time.Hour)

	token, err := a.Issue(42)
	require.NoError(t, err)

	id, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestAuthenticator_Verify_wrongSecret(t *testing.T) {
	token, err := middleware.NewAuthenticator("one", time.Hour).Issue(1)
	require.NoError(t, err)

	_, err = middleware.NewAuthenticator("two", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestAuthenticator_Verify_expired(t *testing.T) {
	a := middleware.NewAuthenticator("secret", -time.Minute)
	token, err := a.Issue(1)
	require.NoError(t, err)

	_, err = a.Verify(token)
	assert.Error(t, err)
}

func TestRequire_validToken(t *testing.T) {
	a := middleware.NewAuthenticator("secret", time.Hour)
	token, err := a.Issue(7)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.Require()(echoUserHandler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Body.String())
}

func TestRequire_rejects(t *testing.T) {
	a := middleware.NewAuthenticator("secret", time.Hour)

	for name, header := range map[string]string{
		"missing":   "",
		"no bearer": "Token abc",
		"empty":     "Bearer ",
		"garbage":   "Bearer not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/trips", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			a.Require()(echoUserHandler).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "unauthorized")
		})
	}
}

func TestUserID_unauthenticated(t *testing.T) {
	_, err := middleware.UserID(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.ErrorIs(t, err, middleware.ErrNoUser)
}
