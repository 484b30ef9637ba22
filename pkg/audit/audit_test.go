package audit

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

type failingSaver struct{ calls int }

func (f *failingSaver) Save(Event) error {
	f.calls++
	return errors.New("database unavailable")
}

func newTestLogger(buf *bytes.Buffer, opts ...Option) *Logger {
	l := NewLogger(append([]Option{WithWriter(buf)}, opts...)...)
	l.hostname = "test-host"
	l.pid = 1234
	l.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return l
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Log(CheckEvent{
		UserID:   "42",
		Role:     "member",
		ClientIP: "192.168.1.1",
		Resource: "members",
		Action:   "read",
		Allowed:  false,
	})

	want := `<85>1 2024-05-01T09:30:00.000Z test-host church-web 1234 check ` +
		`[action@32473 operation="check" result="failure"]` +
		`[auth@32473 role="member" user="42"]` +
		`[client@32473 ip="192.168.1.1"]` +
		`[subject@32473 privilege="read" resource="members"] ` +
		"42 (member) checked permission read on members: denied\n"

	if got := buf.String(); got != want {
		t.Errorf("Log() wrote\n%q\nwant\n%q", got, want)
	}
}

func TestLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, WithEnabled(false))

	logger.Log(LoginEvent{UserID: "1", Success: true})

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}
}

func TestNilLoggerIsDisabled(t *testing.T) {
	var logger *Logger
	if logger.Enabled() {
		t.Error("nil logger must report disabled")
	}
	logger.Log(LoginEvent{})
}

func TestLoggerStoreFailureIsNotFatal(t *testing.T) {
	var buf, errs bytes.Buffer
	saver := &failingSaver{}
	logger := newTestLogger(&buf, WithStore(saver))
	logger.errors = &errs

	logger.Log(PolicyEvent{Source: "/etc/church/policy.yml", Operation: "load", Success: true})

	if saver.calls != 1 {
		t.Errorf("expected 1 save attempt, got %d", saver.calls)
	}
	if !strings.Contains(buf.String(), "loaded permission policy") {
		t.Errorf("expected audit line to be written, got %q", buf.String())
	}
	if !strings.Contains(errs.String(), "database unavailable") {
		t.Errorf("expected store error on stderr, got %q", errs.String())
	}
}

func TestEscapeSDValue(t *testing.T) {
	got := escapeSDValue(`a"b]c\d`)
	want := `"a\"b\]c\\d"`
	if got != want {
		t.Errorf("escapeSDValue() = %s, want %s", got, want)
	}
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantMsg   string
		wantSev   Severity
		wantFac   int
		wantMsgID string
	}{
		{
			name:      "allowed check",
			event:     CheckEvent{UserID: "7", Role: "leader", Resource: "events", Action: "create", Allowed: true},
			wantMsg:   "7 (leader) checked permission create on events: allowed",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "check",
		},
		{
			name:      "anonymous denied check",
			event:     CheckEvent{Resource: "chat", Action: "read"},
			wantMsg:   "anonymous () checked permission read on chat: denied",
			wantSev:   SeverityNotice,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "check",
		},
		{
			name:      "page sent to login",
			event:     PageEvent{Path: "/members", Class: "requires-login"},
			wantMsg:   "anonymous was sent to login for requires-login page /members",
			wantSev:   SeverityNotice,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "page",
		},
		{
			name:      "page opened",
			event:     PageEvent{UserID: "3", Role: "member", Path: "/news", Class: "public", Allowed: true},
			wantMsg:   "3 opened public page /news",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "page",
		},
		{
			name:      "configuration gap",
			event:     GapEvent{Kind: "unknown_role", Role: "deacon", Description: `role "deacon" not found in permissions configuration`},
			wantMsg:   `permission configuration gap: role "deacon" not found`,
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuth,
			wantMsgID: "config-gap",
		},
		{
			name:      "successful login",
			event:     LoginEvent{UserID: "9", Role: "pastor", Success: true},
			wantMsg:   "user 9 successfully logged in with role pastor",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "authn",
		},
		{
			name:      "failed login",
			event:     LoginEvent{Phone: "5511988887777", ErrorMessage: "invalid credentials"},
			wantMsg:   "login failed for phone 5511988887777: invalid credentials",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "authn",
		},
		{
			name:      "policy reload",
			event:     PolicyEvent{Source: "policy.yml", Operation: "reload", Version: 4, Success: true},
			wantMsg:   "reloaded permission policy from policy.yml (version 4)",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuth,
			wantMsgID: "policy",
		},
		{
			name:      "failed policy reload",
			event:     PolicyEvent{Source: "policy.yml", Operation: "reload", ErrorMessage: "yaml: line 3"},
			wantMsg:   "failed to reload permission policy from policy.yml: yaml: line 3",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuth,
			wantMsgID: "policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.event.Message(), tt.wantMsg) {
				t.Errorf("Message() = %q, want to contain %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.Facility() != tt.wantFac {
				t.Errorf("Facility() = %v, want %v", tt.event.Facility(), tt.wantFac)
			}
			if tt.event.MessageID() != tt.wantMsgID {
				t.Errorf("MessageID() = %v, want %v", tt.event.MessageID(), tt.wantMsgID)
			}
		})
	}
}
