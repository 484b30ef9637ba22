package endpoints

import (
	"net/http"

	"github.com/miguelmarques1/church-web/pkg/identity"
	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/middleware"
)

// PageAccessResponse is the access decision for one page.
type PageAccessResponse struct {
	Path          string               `json:"path"`
	Class         permission.PageClass `json:"class"`
	Allowed       bool                 `json:"allowed"`
	LoginRequired bool                 `json:"login_required"`
}

// NavigationResponse is the navigation menu visible to the caller.
type NavigationResponse struct {
	Items []permission.NavItem `json:"items"`
}

// NavigationTargetResponse tells the chrome what following a link does.
type NavigationTargetResponse struct {
	Href     string                 `json:"href"`
	Decision permission.NavDecision `json:"decision"`
}

// RegisterPagesEndpoints registers the page access and navigation endpoints
func RegisterPagesEndpoints(s *server.Server) {
	jwtMiddleware := middleware.NewJWTAuthenticator(s.Authenticator)
	d := newDecider(s)

	pagesRouter := s.Router.PathPrefix("/pages").Subrouter()
	pagesRouter.Use(jwtMiddleware.OptionalMiddleware)
	pagesRouter.HandleFunc("/access", handlePageAccess(d)).Methods("GET")

	navRouter := s.Router.PathPrefix("/navigation").Subrouter()
	navRouter.Use(jwtMiddleware.OptionalMiddleware)
	navRouter.HandleFunc("", handleNavigation(d, permission.DefaultNavigation())).Methods("GET")
	navRouter.HandleFunc("/target", handleNavigationTarget(d)).Methods("GET")
}

func handlePageAccess(d *decider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, ok := requiredQuery(w, r, "path")
		if !ok {
			return
		}

		svc, ok := d.service(w)
		if !ok {
			return
		}

		class, allowed := d.page(r, svc, path)
		respondWithJSON(w, http.StatusOK, PageAccessResponse{
			Path:          path,
			Class:         class,
			Allowed:       allowed,
			LoginRequired: !allowed && identity.Role(r.Context()) == "",
		})
	}
}

func handleNavigation(d *decider, items []permission.NavItem) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := d.service(w)
		if !ok {
			return
		}

		respondWithJSON(w, http.StatusOK, NavigationResponse{
			Items: svc.FilterNavigation(identity.Role(r.Context()), items),
		})
	}
}

func handleNavigationTarget(d *decider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		href, ok := requiredQuery(w, r, "href")
		if !ok {
			return
		}

		svc, ok := d.service(w)
		if !ok {
			return
		}

		decision := svc.NavigationTarget(identity.Role(r.Context()), href)
		d.count("navigation", decision == permission.NavigateAllowed)
		respondWithJSON(w, http.StatusOK, NavigationTargetResponse{
			Href:     href,
			Decision: decision,
		})
	}
}
