// Package diagnostics provides sinks for permission configuration gaps.
//
// The permission service reports a gap whenever a decision falls outside the
// configured table (an unknown role, resource or action). Every decision of
// that kind denies; the sinks here only make the drift visible. Zap writes a
// warning log line, Audit writes an RFC5424 audit event, Prometheus counts
// gaps by kind, role and resource, and Multi fans a gap out to several sinks.
package diagnostics
