package permission

import "fmt"

// GapKind names the kind of configuration gap hit by a decision.
type GapKind string

const (
	GapUnknownRole     GapKind = "unknown_role"
	GapUnknownResource GapKind = "unknown_resource"
	GapUnknownAction   GapKind = "unknown_action"
)

// Gap describes a lookup that fell outside the configured table. Role holds
// the role string as the caller passed it.
type Gap struct {
	Kind     GapKind `json:"kind"`
	Role     string  `json:"role,omitempty"`
	Resource string  `json:"resource,omitempty"`
	Action   string  `json:"action,omitempty"`
}

func (g Gap) String() string {
	switch g.Kind {
	case GapUnknownRole:
		return fmt.Sprintf("role %q not found in permissions configuration", g.Role)
	case GapUnknownResource:
		return fmt.Sprintf("resource %q not found for role %q", g.Resource, g.Role)
	case GapUnknownAction:
		return fmt.Sprintf("action %q is not a permission action", g.Action)
	default:
		return fmt.Sprintf("configuration gap %s", string(g.Kind))
	}
}

// Diagnostics receives configuration gaps observed while answering
// decisions. Implementations must not block and must be safe for concurrent
// use.
type Diagnostics interface {
	ConfigurationGap(gap Gap)
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(Gap)

func (f DiagnosticsFunc) ConfigurationGap(gap Gap) { f(gap) }

// NopDiagnostics discards every gap.
var NopDiagnostics Diagnostics = DiagnosticsFunc(func(Gap) {})
