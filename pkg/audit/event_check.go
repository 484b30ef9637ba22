package audit

import "fmt"

// CheckEvent represents a resource permission decision
type CheckEvent struct {
	UserID   string
	Role     string
	ClientIP string
	Resource string
	Action   string
	Allowed  bool
}

func (e CheckEvent) MessageID() string {
	return "check"
}

func (e CheckEvent) Message() string {
	verdict := "allowed"
	if !e.Allowed {
		verdict = "denied"
	}
	return fmt.Sprintf("%s (%s) checked permission %s on %s: %s",
		orAnonymous(e.UserID), e.Role, e.Action, e.Resource, verdict)
}

func (e CheckEvent) Severity() Severity {
	if e.Allowed {
		return SeverityInfo
	}
	return SeverityNotice
}

func (e CheckEvent) Facility() int {
	return FacilityAuthPriv
}

func (e CheckEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": orAnonymous(e.UserID),
			"role": e.Role,
		},
		SDIDSubject: {
			"resource":  e.Resource,
			"privilege": e.Action,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "check",
			"result":    result(e.Allowed),
		},
	}
}

// PageEvent represents a page access decision
type PageEvent struct {
	UserID   string
	Role     string
	ClientIP string
	Path     string
	Class    string
	Allowed  bool
}

func (e PageEvent) MessageID() string {
	return "page"
}

func (e PageEvent) Message() string {
	if e.Allowed {
		return fmt.Sprintf("%s opened %s page %s", orAnonymous(e.UserID), e.Class, e.Path)
	}
	return fmt.Sprintf("%s was sent to login for %s page %s", orAnonymous(e.UserID), e.Class, e.Path)
}

func (e PageEvent) Severity() Severity {
	if e.Allowed {
		return SeverityInfo
	}
	return SeverityNotice
}

func (e PageEvent) Facility() int {
	return FacilityAuthPriv
}

func (e PageEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": orAnonymous(e.UserID),
			"role": e.Role,
		},
		SDIDSubject: {
			"path":  e.Path,
			"class": e.Class,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "navigate",
			"result":    result(e.Allowed),
		},
	}
}
