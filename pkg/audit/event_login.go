package audit

import "fmt"

// LoginEvent represents a login attempt
type LoginEvent struct {
	UserID       string
	Phone        string
	Role         string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string {
	return "authn"
}

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("user %s successfully logged in with role %s", e.UserID, e.Role)
	}
	msg := fmt.Sprintf("login failed for phone %s", e.Phone)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e LoginEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e LoginEvent) Facility() int {
	return FacilityAuthPriv
}

func (e LoginEvent) StructuredData() map[string]map[string]string {
	auth := map[string]string{"authenticator": "authn"}
	if e.UserID != "" {
		auth["user"] = e.UserID
	}
	if e.Role != "" {
		auth["role"] = e.Role
	}
	return map[string]map[string]string{
		SDIDAuth: auth,
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "login",
			"result":    result(e.Success),
		},
	}
}
