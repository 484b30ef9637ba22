// Package server provides the HTTP server for the church-web authorization
// API.
//
// The server answers permission, page and navigation decisions for the web
// client and acts as a forward-auth gate for reverse proxies in front of the
// REST backend. It uses gorilla/mux for routing, gorilla/handlers for access
// logging and CORS, and reads the current permission service from a
// policy.Holder on every request so that policy reloads apply immediately.
//
// # Server Setup
//
//	srv := server.NewServer(holder, authenticator, db, "0.0.0.0", "8080",
//	    server.WithAllowedOrigins(cfg.AllowedOrigins),
//	    server.WithAuditLogger(auditLogger))
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - /login - Phone and password login
//   - /whoami - Token introspection
//   - /permissions - Permission matrix and single checks
//   - /pages/access - Page access decisions
//   - /navigation - Filtered navigation menu
//   - /gate - Forward-auth decisions for reverse proxies
//   - /status, /metrics - Health and prometheus metrics
package server
