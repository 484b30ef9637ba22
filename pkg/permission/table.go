package permission

import (
	"sort"
	"strings"
)

// Resource keys used by the church-web client.
const (
	ResourceNews           = "news"
	ResourceDevotionals    = "devotionals"
	ResourceEvents         = "events"
	ResourceChat           = "chat"
	ResourceMembers        = "members"
	ResourceFamilies       = "families"
	ResourceMinistries     = "ministries"
	ResourceVisitors       = "visitors"
	ResourceInstitutional  = "institutional"
	ResourceSettings       = "settings"
	ResourcePrayerRequests = "prayer-requests"
)

// Table maps every role to the permissions it holds per resource.
//
// A Table is immutable once built; the zero value is an empty table that
// denies everything.
type Table struct {
	entries map[Role]map[string]Permission
}

// NewTable builds a Table from entries. The input is copied, so later changes
// to entries do not affect the returned Table.
func NewTable(entries map[Role]map[string]Permission) Table {
	t := Table{entries: make(map[Role]map[string]Permission, len(entries))}
	for role, resources := range entries {
		perms := make(map[string]Permission, len(resources))
		for resource, p := range resources {
			perms[resource] = p
		}
		t.entries[role] = perms
	}
	return t
}

// HasRole reports whether the table has an entry for role.
func (t Table) HasRole(role Role) bool {
	_, ok := t.entries[role]
	return ok
}

// Lookup returns the permission stored for (role, resource). The boolean is
// false when either key is missing.
func (t Table) Lookup(role Role, resource string) (Permission, bool) {
	resources, ok := t.entries[role]
	if !ok {
		return None, false
	}
	p, ok := resources[resource]
	return p, ok
}

// Roles returns the roles present in the table in enum order.
func (t Table) Roles() []Role {
	roles := make([]Role, 0, len(t.entries))
	for _, r := range RoleValues() {
		if _, ok := t.entries[r]; ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// Resources returns the resources configured for role, sorted.
func (t Table) Resources(role Role) []string {
	resources := make([]string, 0, len(t.entries[role]))
	for k := range t.entries[role] {
		resources = append(resources, k)
	}
	sort.Strings(resources)
	return resources
}

// AllResources returns the union of resources over every role, sorted.
func (t Table) AllResources() []string {
	seen := make(map[string]struct{})
	for _, resources := range t.entries {
		for k := range resources {
			seen[k] = struct{}{}
		}
	}
	all := make([]string, 0, len(seen))
	for k := range seen {
		all = append(all, k)
	}
	sort.Strings(all)
	return all
}

// Matrix returns a copy of the permissions held by role.
func (t Table) Matrix(role Role) map[string]Permission {
	m := make(map[string]Permission, len(t.entries[role]))
	for k, p := range t.entries[role] {
		m[k] = p
	}
	return m
}

// Gaps lists the (role, resource) pairs that some role configures and another
// role does not, plus every enum role missing from the table entirely. A
// complete table has no gaps.
func (t Table) Gaps() []Gap {
	var gaps []Gap
	all := t.AllResources()
	for _, role := range RoleValues() {
		resources, ok := t.entries[role]
		if !ok {
			gaps = append(gaps, Gap{Kind: GapUnknownRole, Role: role.String()})
			continue
		}
		for _, resource := range all {
			if _, ok := resources[resource]; !ok {
				gaps = append(gaps, Gap{Kind: GapUnknownResource, Role: role.String(), Resource: resource})
			}
		}
	}
	return gaps
}

// Equal reports whether t and other hold the same entries.
func (t Table) Equal(other Table) bool {
	if len(t.entries) != len(other.entries) {
		return false
	}
	for role, resources := range t.entries {
		o, ok := other.entries[role]
		if !ok || len(o) != len(resources) {
			return false
		}
		for k, p := range resources {
			if op, ok := o[k]; !ok || op != p {
				return false
			}
		}
	}
	return true
}

// String renders the table one role per line, resources in sorted order.
func (t Table) String() string {
	var sb strings.Builder
	for _, role := range t.Roles() {
		sb.WriteString(role.String())
		sb.WriteString(":")
		for _, resource := range t.Resources(role) {
			p, _ := t.Lookup(role, resource)
			sb.WriteString(" ")
			sb.WriteString(resource)
			sb.WriteString("=")
			sb.WriteString(p.String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// normalizeRole lowers ASCII letters only. Other runes are kept, so a role
// spelled with look-alike Unicode letters stays unknown.
func normalizeRole(role string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, role)
}

// DefaultTable returns the permission table shipped with the church-web
// client.
func DefaultTable() Table {
	crud := All
	cru := Grant(ActionCreate, ActionRead, ActionUpdate)
	r := Grant(ActionRead)
	ru := Grant(ActionRead, ActionUpdate)

	return NewTable(map[Role]map[string]Permission{
		RoleMember: {
			ResourceNews:           r,
			ResourceDevotionals:    r,
			ResourceEvents:         r,
			ResourceChat:           cru,
			ResourceMembers:        None,
			ResourceFamilies:       None,
			ResourceMinistries:     None,
			ResourceVisitors:       None,
			ResourceInstitutional:  r,
			ResourceSettings:       None,
			ResourcePrayerRequests: cru,
		},
		RoleLeader: {
			ResourceNews:           crud,
			ResourceDevotionals:    crud,
			ResourceEvents:         crud,
			ResourceChat:           crud,
			ResourceMembers:        cru,
			ResourceFamilies:       cru,
			ResourceMinistries:     r,
			ResourceVisitors:       None,
			ResourceInstitutional:  r,
			ResourceSettings:       None,
			ResourcePrayerRequests: crud,
		},
		RolePastor: {
			ResourceNews:           crud,
			ResourceDevotionals:    crud,
			ResourceEvents:         crud,
			ResourceChat:           crud,
			ResourceMembers:        crud,
			ResourceFamilies:       crud,
			ResourceMinistries:     crud,
			ResourceVisitors:       None,
			ResourceInstitutional:  cru,
			ResourceSettings:       ru,
			ResourcePrayerRequests: crud,
		},
		RoleAdmin: {
			ResourceNews:           crud,
			ResourceDevotionals:    crud,
			ResourceEvents:         crud,
			ResourceChat:           crud,
			ResourceMembers:        crud,
			ResourceFamilies:       crud,
			ResourceMinistries:     crud,
			ResourceVisitors:       crud,
			ResourceInstitutional:  crud,
			ResourceSettings:       crud,
			ResourcePrayerRequests: crud,
		},
	})
}
