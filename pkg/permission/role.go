package permission

//go:generate go run github.com/dmarkham/enumer -type Role -trimprefix Role -transform lower -json -text -output role.gen.go

// Role is the role a church-web user is assigned by the backend.
type Role int

const (
	RoleMember Role = iota
	RoleLeader
	RolePastor
	RoleAdmin
)

// ParseRole normalizes a role string as received from a session and returns
// the matching Role. Matching ignores ASCII case only.
func ParseRole(s string) (Role, bool) {
	normalized := normalizeRole(s)
	for _, r := range RoleValues() {
		if r.String() == normalized {
			return r, true
		}
	}
	return 0, false
}
