package audit

import "fmt"

// PolicyEvent represents a policy document load
type PolicyEvent struct {
	Source       string
	SHA256       string
	Version      int
	Operation    string // "load", "reload"
	Success      bool
	ErrorMessage string
}

func (e PolicyEvent) MessageID() string {
	return "policy"
}

func (e PolicyEvent) Message() string {
	verb := e.Operation + "ed"
	if e.Success {
		msg := fmt.Sprintf("%s permission policy from %s", verb, e.Source)
		if e.Version > 0 {
			msg += fmt.Sprintf(" (version %d)", e.Version)
		}
		return msg
	}
	msg := fmt.Sprintf("failed to %s permission policy from %s", e.Operation, e.Source)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e PolicyEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e PolicyEvent) Facility() int {
	return FacilityAuth
}

func (e PolicyEvent) StructuredData() map[string]map[string]string {
	policy := map[string]string{"source": e.Source}
	if e.SHA256 != "" {
		policy["sha256"] = e.SHA256
	}
	if e.Version > 0 {
		policy["version"] = fmt.Sprintf("%d", e.Version)
	}
	return map[string]map[string]string{
		SDIDPolicy: policy,
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
}
