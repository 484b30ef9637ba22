package permission

// Service answers authorization decisions against a fixed Table and Pages.
type Service struct {
	table Table
	pages Pages
	diag  Diagnostics
}

// Option configures a Service.
type Option func(*Service)

// WithDiagnostics sets where configuration gaps are reported. A nil value
// discards them.
func WithDiagnostics(d Diagnostics) Option {
	return func(s *Service) {
		if d == nil {
			d = NopDiagnostics
		}
		s.diag = d
	}
}

// NewService creates a Service over table and pages.
func NewService(table Table, pages Pages, opts ...Option) *Service {
	s := &Service{
		table: table,
		pages: pages.clone(),
		diag:  NopDiagnostics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the table the service decides against.
func (s *Service) Table() Table {
	return s.table
}

// Pages returns a copy of the page sets.
func (s *Service) Pages() Pages {
	return s.pages.clone()
}

// HasPermission reports whether role may perform action on resource. An
// empty role is unauthenticated and holds no permissions.
func (s *Service) HasPermission(role, resource string, action Action) bool {
	if role == "" {
		return false
	}

	r, ok := ParseRole(role)
	if !ok || !s.table.HasRole(r) {
		s.diag.ConfigurationGap(Gap{Kind: GapUnknownRole, Role: role})
		return false
	}

	p, ok := s.table.Lookup(r, resource)
	if !ok {
		s.diag.ConfigurationGap(Gap{Kind: GapUnknownResource, Role: role, Resource: resource})
		return false
	}

	if !action.IsAAction() {
		s.diag.ConfigurationGap(Gap{Kind: GapUnknownAction, Role: role, Resource: resource, Action: action.String()})
		return false
	}
	return p.Allows(action)
}

// ClassifyPage returns the class of path.
func (s *Service) ClassifyPage(path string) PageClass {
	return s.pages.Classify(path)
}

// CanAccessPage reports whether role may navigate to path. It only looks at
// the page sets; the per-resource table is a separate check.
func (s *Service) CanAccessPage(role, path string) bool {
	if s.pages.Classify(path).NeedsLogin() {
		return role != ""
	}
	return true
}

// ShouldShowInNavigation reports whether a link to path is rendered for role.
// It is stricter than CanAccessPage: a hidden page may still be deep-linked.
func (s *Service) ShouldShowInNavigation(role, path string) bool {
	if containsPage(s.pages.Public, path) {
		return true
	}
	if role == "" {
		return false
	}

	normalized := normalizeRole(role)
	if containsPage(s.pages.AdminOnly, path) && normalized != RoleAdmin.String() {
		return false
	}
	if containsPage(s.pages.Management, path) && normalized == RoleMember.String() {
		return false
	}
	return true
}

// Matrix returns every permission held by role. Unauthenticated and unknown
// roles get an empty matrix; the latter is reported as a gap.
func (s *Service) Matrix(role string) map[string]Permission {
	if role == "" {
		return map[string]Permission{}
	}
	r, ok := ParseRole(role)
	if !ok || !s.table.HasRole(r) {
		s.diag.ConfigurationGap(Gap{Kind: GapUnknownRole, Role: role})
		return map[string]Permission{}
	}
	return s.table.Matrix(r)
}
