// Package identity provides authenticated identity management for church-web
// requests.
//
// An Identity combines session token claims (user, role, session ID) with
// request-specific context such as the client IP. Permission decisions only
// ever look at the role; the rest is carried for audit records.
//
// # Basic Usage
//
//	// Create identity from verified session claims
//	id := authenticator.Verify(rawToken)
//
//	// Add request context
//	id.WithRemoteIP(clientIP)
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
//
//	// Role for permission checks, "" when unauthenticated
//	role := identity.Role(ctx)
package identity
