package endpoints

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/miguelmarques1/church-web/pkg/identity"
	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/middleware"
)

// Headers set by forward-auth proxies (traefik, nginx auth_request).
const (
	headerForwardedMethod = "X-Forwarded-Method"
	headerForwardedURI    = "X-Forwarded-Uri"
)

// pageResources maps page segments that are named differently from the
// resource they show.
var pageResources = map[string]string{
	"calendar": permission.ResourceEvents,
}

// RegisterGateEndpoint registers the forward-auth /gate endpoint
func RegisterGateEndpoint(s *server.Server) {
	jwtMiddleware := middleware.NewJWTAuthenticator(s.Authenticator)

	gateRouter := s.Router.PathPrefix("/gate").Subrouter()
	gateRouter.Use(jwtMiddleware.OptionalMiddleware)
	gateRouter.HandleFunc("", handleGate(newDecider(s)))
}

// GateTarget is the resource and action a forwarded request maps to.
type GateTarget struct {
	Path     string
	Resource string
	Action   permission.Action
}

// ParseGateTarget maps a forwarded method and URI to a resource and action.
// The decoded path is cleaned first, so dot segments cannot borrow the
// resource or page class of another path. The first segment names the resource; "/<res>/create" creates and
// "/<res>/<id>/edit" updates regardless of method. ok is false for methods
// that carry no CRUD meaning.
func ParseGateTarget(method, uri string) (target GateTarget, ok bool) {
	raw := uri
	if u, err := url.Parse(uri); err == nil {
		raw = u.Path
	}
	target.Path = cleanGatePath(raw)

	segments := strings.FieldsFunc(target.Path, func(r rune) bool { return r == '/' })
	if len(segments) > 0 {
		target.Resource = segments[0]
		if alias, found := pageResources[target.Resource]; found {
			target.Resource = alias
		}
	}

	switch {
	case len(segments) == 2 && segments[1] == "create":
		target.Action = permission.ActionCreate
		return target, true
	case len(segments) == 3 && segments[2] == "edit":
		target.Action = permission.ActionUpdate
		return target, true
	}

	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, "":
		target.Action = permission.ActionRead
	case http.MethodPost:
		target.Action = permission.ActionCreate
	case http.MethodPut, http.MethodPatch:
		target.Action = permission.ActionUpdate
	case http.MethodDelete:
		target.Action = permission.ActionDelete
	default:
		return target, false
	}
	return target, true
}

// cleanGatePath resolves dot segments and duplicate slashes the way the
// upstream will, returning a rooted path.
func cleanGatePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func handleGate(d *decider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method := r.Header.Get(headerForwardedMethod)
		uri := r.Header.Get(headerForwardedURI)
		if uri == "" {
			respondWithError(w, http.StatusBadRequest, headerForwardedURI+" header is required")
			return
		}

		if strings.EqualFold(method, http.MethodOptions) {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		target, ok := ParseGateTarget(method, uri)
		if !ok {
			respondWithError(w, http.StatusMethodNotAllowed, "unsupported method "+method)
			return
		}

		svc, ok := d.service(w)
		if !ok {
			return
		}
		role := identity.Role(r.Context())

		// Public pages are readable by everyone.
		if target.Action == permission.ActionRead && svc.ClassifyPage(target.Path) == permission.PagePublic {
			d.count("gate", true)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Paths that name no resource are decided by the page sets alone.
		if !knownResource(svc, target.Resource) {
			_, allowed := d.page(r, svc, target.Path)
			respondGate(w, role, allowed)
			return
		}

		respondGate(w, role, d.check(r, svc, "gate", target.Resource, target.Action))
	}
}

func knownResource(svc *permission.Service, resource string) bool {
	if resource == "" {
		return false
	}
	for _, known := range svc.Table().AllResources() {
		if known == resource {
			return true
		}
	}
	return false
}

func respondGate(w http.ResponseWriter, role string, allowed bool) {
	switch {
	case allowed:
		w.WriteHeader(http.StatusNoContent)
	case role == "":
		w.WriteHeader(http.StatusUnauthorized)
	default:
		w.WriteHeader(http.StatusForbidden)
	}
}
