// Package permission implements the church-web authorization model.
//
// The model is a static table mapping each Role to a set of resources
// ("news", "members", "prayer-requests", ...) and, for each resource, the
// create/read/update/delete actions that role may perform. On top of the table
// sit two path based checks used by navigation chrome: whether a page may be
// opened at all and whether a link to it should be rendered.
//
// # Decisions
//
// All decisions go through a Service built from an immutable Table and Pages:
//
//	svc := permission.NewService(permission.DefaultTable(), permission.DefaultPages(),
//	    permission.WithDiagnostics(diag))
//
//	svc.HasPermission("leader", "events", permission.ActionCreate) // true
//	svc.CanAccessPage("", "/members")                              // false
//	svc.ShouldShowInNavigation("member", "/families")              // false
//
// An empty role string means "not authenticated".
//
// # Failing closed
//
// Unknown roles, unknown resources and out of range actions are denied. They
// are never treated as errors; instead a Gap is reported to the configured
// Diagnostics so operators can spot drift between the table and the callers.
//
// A Service holds no mutable state and may be shared by any number of
// goroutines.
package permission
