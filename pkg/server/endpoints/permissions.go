package endpoints

import (
	"net/http"

	"github.com/miguelmarques1/church-web/pkg/identity"
	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/middleware"
)

// PermissionsResponse is the permission matrix of the caller's role.
type PermissionsResponse struct {
	Role        string                           `json:"role"`
	Permissions map[string]permission.Permission `json:"permissions"`
}

// CheckResponse is the result of a single permission check.
type CheckResponse struct {
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Allowed  bool   `json:"allowed"`
}

// RegisterPermissionsEndpoints registers the permission matrix and check endpoints
func RegisterPermissionsEndpoints(s *server.Server) {
	jwtMiddleware := middleware.NewJWTAuthenticator(s.Authenticator)
	d := newDecider(s)

	permissionsRouter := s.Router.PathPrefix("/permissions").Subrouter()
	permissionsRouter.Use(jwtMiddleware.OptionalMiddleware)

	permissionsRouter.HandleFunc("", handlePermissions(d)).Methods("GET")
	permissionsRouter.HandleFunc("/check", handleCheck(d)).Methods("GET")
}

func handlePermissions(d *decider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := d.service(w)
		if !ok {
			return
		}

		role := identity.Role(r.Context())
		respondWithJSON(w, http.StatusOK, PermissionsResponse{
			Role:        role,
			Permissions: svc.Matrix(role),
		})
	}
}

func handleCheck(d *decider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, ok := requiredQuery(w, r, "resource")
		if !ok {
			return
		}
		action, err := permission.ActionString(r.URL.Query().Get("action"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "action must be one of create, read, update, delete")
			return
		}

		svc, ok := d.service(w)
		if !ok {
			return
		}

		allowed := d.check(r, svc, "check", resource, action)
		respondWithJSON(w, http.StatusOK, CheckResponse{
			Role:     identity.Role(r.Context()),
			Resource: resource,
			Action:   action.String(),
			Allowed:  allowed,
		})
	}
}
