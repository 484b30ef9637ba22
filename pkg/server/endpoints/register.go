package endpoints

import (
	"github.com/miguelmarques1/church-web/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterLoginEndpoint(srv)
	RegisterWhoamiEndpoint(srv)
	RegisterPermissionsEndpoints(srv)
	RegisterPagesEndpoints(srv)
	RegisterGateEndpoint(srv)
	RegisterPoliciesEndpoints(srv)
	RegisterStatusEndpoints(srv)
}
