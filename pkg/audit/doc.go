// Package audit provides audit logging for church-web authorization decisions.
//
// Security relevant operations are written as RFC5424 syslog lines and, when
// a database store is configured, persisted to the messages table.
//
// # Event Types
//
//   - CheckEvent: a resource permission decision (allowed or denied)
//   - PageEvent: a page access decision
//   - GapEvent: a lookup that fell outside the permission table
//   - LoginEvent: a login attempt
//   - PolicyEvent: a policy document load or reload
//
// # Usage
//
//	logger := audit.NewLogger(audit.WithStore(store))
//	logger.Log(audit.CheckEvent{UserID: "42", Role: "leader", Resource: "events", Action: "create", Allowed: true})
package audit
