package middleware

import (
	"net/http"

	"github.com/miguelmarques1/church-web/pkg/identity"
	"github.com/miguelmarques1/church-web/pkg/permission"
)

// ServiceSource yields the permission service to decide against. A
// policy.Holder satisfies it, so reloads apply to the next request.
type ServiceSource interface {
	Load() *permission.Service
}

// Require returns mux middleware that lets a request through only when the
// identity in its context may perform action on resource. It must run after
// one of the JWTAuthenticator middlewares.
func Require(source ServiceSource, resource string, action permission.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := identity.Role(r.Context())
			if role == "" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte("Authentication required"))
				return
			}

			svc := source.Load()
			if svc == nil || !svc.HasPermission(role, resource, action) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("Forbidden"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
