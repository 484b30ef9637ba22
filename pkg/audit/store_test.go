package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	event := CheckEvent{
		UserID:   "42",
		Role:     "leader",
		ClientIP: "10.0.0.1",
		Resource: "events",
		Action:   "create",
		Allowed:  true,
	}

	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(
			FacilityAuthPriv,  // facility
			int(SeverityInfo), // severity
			sqlmock.AnyArg(),  // timestamp
			sqlmock.AnyArg(),  // hostname
			"church-web",      // appname
			sqlmock.AnyArg(),  // procid
			"check",           // msgid
			sqlmock.AnyArg(),  // sdata (JSON)
			sqlmock.AnyArg(),  // message
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Save(event)
	if err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreSaveGapEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	event := GapEvent{
		Kind:        "unknown_resource",
		Role:        "member",
		Resource:    "sermons",
		Description: `resource "sermons" not found for role "member"`,
	}

	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(
			FacilityAuth,
			int(SeverityWarning),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			"church-web",
			sqlmock.AnyArg(),
			"config-gap",
			[]byte(`{"action@32473":{"operation":"check","result":"failure"},"subject@32473":{"kind":"unknown_resource","resource":"sermons","role":"member"}}`),
			`permission configuration gap: resource "sermons" not found for role "member"`,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Save(event); err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreSaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	mock.ExpectExec(`INSERT INTO messages`).
		WillReturnError(errors.New("connection refused"))

	err = store.Save(LoginEvent{Phone: "5511999990000", Success: false})
	if err == nil {
		t.Error("expected error from Save()")
	}
}

func TestStoreRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"facility", "severity", "timestamp", "hostname", "appname", "procid", "msgid", "sdata", "message"}).
		AddRow(10, 6, ts, "host-a", "church-web", "100", "check", []byte(`{"auth@32473":{"user":"42"}}`), "42 (leader) checked permission read on news: allowed")

	mock.ExpectQuery(`SELECT facility, severity, timestamp`).
		WithArgs(5).
		WillReturnRows(rows)

	messages, err := store.Recent(5)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Msgid != "check" {
		t.Errorf("Msgid = %q, want 'check'", messages[0].Msgid)
	}
	if messages[0].Sdata["auth@32473"] == nil {
		t.Errorf("expected auth structured data, got %v", messages[0].Sdata)
	}
}

func TestNewStoreWithoutURL(t *testing.T) {
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if store != nil {
		t.Error("expected nil store when no database URL is configured")
	}
}
