package permission

import "strings"

// Permission is the set of CRUD actions one role holds on one resource.
type Permission struct {
	Create bool `json:"create" yaml:"create"`
	Read   bool `json:"read" yaml:"read"`
	Update bool `json:"update" yaml:"update"`
	Delete bool `json:"delete" yaml:"delete"`
}

// Grant returns a Permission allowing exactly the given actions.
func Grant(actions ...Action) Permission {
	var p Permission
	for _, a := range actions {
		switch a {
		case ActionCreate:
			p.Create = true
		case ActionRead:
			p.Read = true
		case ActionUpdate:
			p.Update = true
		case ActionDelete:
			p.Delete = true
		}
	}
	return p
}

// All allows every action.
var All = Permission{Create: true, Read: true, Update: true, Delete: true}

// None allows nothing.
var None = Permission{}

// Allows reports whether p grants action. Unknown actions are never allowed.
func (p Permission) Allows(action Action) bool {
	switch action {
	case ActionCreate:
		return p.Create
	case ActionRead:
		return p.Read
	case ActionUpdate:
		return p.Update
	case ActionDelete:
		return p.Delete
	default:
		return false
	}
}

// Actions lists the allowed actions in enum order.
func (p Permission) Actions() []Action {
	actions := make([]Action, 0, 4)
	for _, a := range ActionValues() {
		if p.Allows(a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// String renders p in the compact "crud" notation, using "-" for no access.
func (p Permission) String() string {
	var sb strings.Builder
	for _, a := range p.Actions() {
		sb.WriteByte(a.String()[0])
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
