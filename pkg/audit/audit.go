package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// SDID constants for structured data IDs (RFC5424). 32473 is the private
// enterprise number reserved for documentation (RFC5612).
const (
	EnterpriseNumber = 32473
	SDIDAuth         = "auth@32473"
	SDIDSubject      = "subject@32473"
	SDIDAction       = "action@32473"
	SDIDClient       = "client@32473"
	SDIDPolicy       = "policy@32473"
)

// AppName is the APP-NAME field of every audit line.
const AppName = "church-web"

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH - security/authorization messages
	FacilityAuthPriv = 10 // LOG_AUTHPRIV - security/authorization messages (private)
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Saver persists audit events.
type Saver interface {
	Save(event Event) error
}

// Logger handles audit logging in RFC5424 syslog format
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	errors   io.Writer
	store    Saver
	disabled bool
	hostname string
	pid      int
	now      func() time.Time
}

// Option configures a Logger.
type Option func(*Logger)

// WithWriter sets where audit lines are written. Defaults to stdout.
func WithWriter(w io.Writer) Option {
	return func(l *Logger) { l.writer = w }
}

// WithStore persists every logged event in addition to writing it.
func WithStore(s Saver) Option {
	return func(l *Logger) { l.store = s }
}

// WithEnabled turns audit logging on or off.
func WithEnabled(enabled bool) Option {
	return func(l *Logger) { l.disabled = !enabled }
}

// NewLogger creates a new audit logger
func NewLogger(opts ...Option) *Logger {
	hostname, _ := os.Hostname()
	l := &Logger{
		writer:   os.Stdout,
		errors:   os.Stderr,
		hostname: hostname,
		pid:      os.Getpid(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Enabled reports whether events are recorded.
func (l *Logger) Enabled() bool {
	return l != nil && !l.disabled
}

// Log writes an audit event in RFC5424 syslog format and saves it to the
// store, if any. Store failures are reported on stderr and otherwise ignored.
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Log(event Event) {
	if !l.Enabled() {
		return
	}

	line := l.format(event)

	l.mu.Lock()
	_, _ = io.WriteString(l.writer, line)
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.Save(event); err != nil {
			fmt.Fprintf(l.errors, "audit: failed to save event: %v\n", err)
		}
	}
}

func (l *Logger) format(event Event) string {
	// facility * 8 + severity
	pri := event.Facility()*8 + int(event.Severity())

	timestamp := l.now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		AppName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)
}

// formatStructuredData formats the structured data according to RFC5424.
// SD-IDs and parameter names are sorted so identical events format identically.
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	ids := make([]string, 0, len(sd))
	for sdid := range sd {
		ids = append(ids, sdid)
	}
	sort.Strings(ids)

	var parts []string
	for _, sdid := range ids {
		params := sd[sdid]
		keys := make([]string, 0, len(params))
		for key := range params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		paramParts := []string{sdid}
		for _, key := range keys {
			paramParts = append(paramParts, fmt.Sprintf("%s=%s", key, escapeSDValue(params[key])))
		}
		parts = append(parts, "["+strings.Join(paramParts, " ")+"]")
	}
	return strings.Join(parts, "")
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func orAnonymous(userID string) string {
	if userID == "" {
		return "anonymous"
	}
	return userID
}
