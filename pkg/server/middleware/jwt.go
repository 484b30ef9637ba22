package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/miguelmarques1/church-web/pkg/authn"
	"github.com/miguelmarques1/church-web/pkg/identity"
)

const bearerPrefix = "Bearer "

// TokenVerifier turns an access token into the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (*identity.Identity, error)
}

// JWTAuthenticator is middleware that validates bearer tokens
type JWTAuthenticator struct {
	Verifier TokenVerifier
}

// NewJWTAuthenticator creates a new JWT authenticator middleware
func NewJWTAuthenticator(verifier TokenVerifier) *JWTAuthenticator {
	return &JWTAuthenticator{Verifier: verifier}
}

// Middleware rejects requests without a valid bearer token.
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return j.handler(next, true)
}

// OptionalMiddleware lets anonymous requests through. A token that is present
// but invalid is still rejected.
func (j *JWTAuthenticator) OptionalMiddleware(next http.Handler) http.Handler {
	return j.handler(next, false)
}

func (j *JWTAuthenticator) handler(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			if required {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte("Authorization missing"))
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Malformed authorization header"))
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenStr == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Malformed authorization header"))
			return
		}

		id, err := j.Verifier.Verify(tokenStr)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			if errors.Is(err, authn.ErrTokenExpired) {
				w.Write([]byte("Token expired"))
			} else {
				w.Write([]byte("Invalid token"))
			}
			return
		}

		id.WithRemoteIP(RemoteIP(r))
		r = r.WithContext(identity.Set(r.Context(), id))

		next.ServeHTTP(w, r)
	})
}

// RemoteIP returns the client address of r. The first X-Forwarded-For entry
// wins over the socket address so that decisions behind a proxy name the
// browser, not the proxy.
func RemoteIP(r *http.Request) net.IP {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
