package endpoints

import (
	"net/http"

	"github.com/miguelmarques1/church-web/pkg/audit"
	"github.com/miguelmarques1/church-web/pkg/identity"
	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/middleware"
)

// decider answers decisions against the current policy and records them.
type decider struct {
	source  middleware.ServiceSource
	audit   *audit.Logger
	metrics *server.Metrics
}

func newDecider(s *server.Server) *decider {
	return &decider{source: s.Policy, audit: s.Audit, metrics: s.Metrics}
}

// service returns the current permission service, answering 503 when no
// policy is loaded.
func (d *decider) service(w http.ResponseWriter) (*permission.Service, bool) {
	svc := d.source.Load()
	if svc == nil {
		respondWithError(w, http.StatusServiceUnavailable, "no permission policy loaded")
		return nil, false
	}
	return svc, true
}

func (d *decider) count(kind string, allowed bool) {
	if d.metrics != nil {
		d.metrics.Decisions.WithLabelValues(kind, server.Outcome(allowed)).Inc()
	}
}

func (d *decider) check(r *http.Request, svc *permission.Service, kind, resource string, action permission.Action) bool {
	role := identity.Role(r.Context())
	allowed := svc.HasPermission(role, resource, action)
	d.count(kind, allowed)
	d.audit.Log(audit.CheckEvent{
		UserID:   identity.UserID(r.Context()),
		Role:     role,
		ClientIP: middleware.RemoteIP(r).String(),
		Resource: resource,
		Action:   action.String(),
		Allowed:  allowed,
	})
	return allowed
}

func (d *decider) page(r *http.Request, svc *permission.Service, path string) (permission.PageClass, bool) {
	role := identity.Role(r.Context())
	class := svc.ClassifyPage(path)
	allowed := svc.CanAccessPage(role, path)
	d.count("page", allowed)
	d.audit.Log(audit.PageEvent{
		UserID:   identity.UserID(r.Context()),
		Role:     role,
		ClientIP: middleware.RemoteIP(r).String(),
		Path:     path,
		Class:    string(class),
		Allowed:  allowed,
	})
	return class, allowed
}
