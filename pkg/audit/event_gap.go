package audit

// GapEvent records a decision that hit a hole in the permission table. These
// always fail closed; the event exists so drift is visible to operators.
type GapEvent struct {
	Kind        string
	Role        string
	Resource    string
	Action      string
	Description string
}

func (e GapEvent) MessageID() string {
	return "config-gap"
}

func (e GapEvent) Message() string {
	return "permission configuration gap: " + e.Description
}

func (e GapEvent) Severity() Severity {
	return SeverityWarning
}

func (e GapEvent) Facility() int {
	return FacilityAuth
}

func (e GapEvent) StructuredData() map[string]map[string]string {
	subject := map[string]string{"kind": e.Kind}
	if e.Role != "" {
		subject["role"] = e.Role
	}
	if e.Resource != "" {
		subject["resource"] = e.Resource
	}
	if e.Action != "" {
		subject["privilege"] = e.Action
	}
	return map[string]map[string]string{
		SDIDSubject: subject,
		SDIDAction: {
			"operation": "check",
			"result":    "failure",
		},
	}
}
