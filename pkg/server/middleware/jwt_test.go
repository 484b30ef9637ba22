package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelmarques1/church-web/pkg/authn"
	"github.com/miguelmarques1/church-web/pkg/identity"
	"github.com/miguelmarques1/church-web/pkg/server/store"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestAuthenticator(now time.Time) *authn.Authenticator {
	return authn.New(nil, testKey, authn.WithClock(func() time.Time { return now }))
}

func issueToken(t *testing.T, a *authn.Authenticator, role string) string {
	session, err := a.Issue(&store.User{ID: 7, Name: "Ana", Role: role})
	require.NoError(t, err)
	return session.AccessToken
}

// captureIdentity records the identity the wrapped handler saw.
func captureIdentity(seen **identity.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := identity.Get(r.Context()); ok {
			*seen = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewJWTAuthenticator(t *testing.T) {
	auth := NewJWTAuthenticator(nil)
	assert.NotNil(t, auth)
	assert.Nil(t, auth.Verifier)
}

func TestMiddleware_MissingAuthorization(t *testing.T) {
	auth := NewJWTAuthenticator(newTestAuthenticator(time.Now()))

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/whoami", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization missing", rec.Body.String())
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	auth := NewJWTAuthenticator(newTestAuthenticator(time.Now()))

	for _, header := range []string{"Token token=\"abc\"", "Bearer ", "Basic dXNlcjpwYXNz"} {
		t.Run(header, func(t *testing.T) {
			handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			}))

			req := httptest.NewRequest("GET", "/whoami", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Malformed authorization header", rec.Body.String())
		})
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	auth := NewJWTAuthenticator(newTestAuthenticator(time.Now()))

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", rec.Body.String())
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	token := issueToken(t, newTestAuthenticator(issuedAt), "member")

	auth := NewJWTAuthenticator(newTestAuthenticator(issuedAt.Add(25 * time.Hour)))
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token expired", rec.Body.String())
}

func TestMiddleware_ValidToken(t *testing.T) {
	a := newTestAuthenticator(time.Now())
	auth := NewJWTAuthenticator(a)

	var seen *identity.Identity
	handler := auth.Middleware(captureIdentity(&seen))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.RemoteAddr = "192.168.1.10:5555"
	req.Header.Set("Authorization", "Bearer "+issueToken(t, a, "leader"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "7", seen.UserID)
	assert.Equal(t, "Ana", seen.Name)
	assert.Equal(t, "leader", seen.Role)
	assert.Equal(t, "192.168.1.10", seen.ClientIP())
}

func TestOptionalMiddleware(t *testing.T) {
	a := newTestAuthenticator(time.Now())
	auth := NewJWTAuthenticator(a)

	t.Run("anonymous passes through", func(t *testing.T) {
		var seen *identity.Identity
		called := false
		handler := auth.OptionalMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			captureIdentity(&seen).ServeHTTP(w, r)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/permissions", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		handler := auth.OptionalMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/permissions", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		var seen *identity.Identity
		handler := auth.OptionalMiddleware(captureIdentity(&seen))

		req := httptest.NewRequest("GET", "/permissions", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, a, "pastor"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotNil(t, seen)
		assert.Equal(t, "pastor", seen.Role)
	})
}

func TestRemoteIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{name: "socket address", remoteAddr: "10.0.0.1:1234", expected: "10.0.0.1"},
		{name: "forwarded for wins", remoteAddr: "10.0.0.1:1234", forwarded: "203.0.113.5, 10.0.0.1", expected: "203.0.113.5"},
		{name: "garbage forwarded for ignored", remoteAddr: "10.0.0.1:1234", forwarded: "unknown", expected: "10.0.0.1"},
		{name: "address without port", remoteAddr: "10.0.0.2", expected: "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.expected, RemoteIP(req).String())
		})
	}
}
