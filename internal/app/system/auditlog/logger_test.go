package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("POST", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, "u1", "email")
	logger.GroupCreated(ctx, req, "u1", "g1", "Physics")
}

func TestLogger_Modes(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		wantDB   int
		wantLogs int
	}{
		{"all", auditlog.ModeAll, 1, 1},
		{"db", auditlog.ModeDB, 1, 0},
		{"log", auditlog.ModeLog, 0, 1},
		{"off", auditlog.ModeOff, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			core, logs := observer.New(zapcore.InfoLevel)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.New(core), auditlog.Config{
				Auth:   tt.mode,
				Groups: auditlog.ModeOff,
			})
			req := httptest.NewRequest("POST", "/api/auth/login", nil)
			logger.LoginSuccess(ctx, req, "u1", "email")

			events, err := store.GetByUser(ctx, "u1", 10)
			if err != nil {
				t.Fatalf("GetByUser failed: %v", err)
			}
			if len(events) != tt.wantDB {
				t.Errorf("stored %d events, want %d", len(events), tt.wantDB)
			}
			if got := logs.FilterMessage("audit event").Len(); got != tt.wantLogs {
				t.Errorf("logged %d audit lines, want %d", got, tt.wantLogs)
			}
		})
	}
}

func TestLogger_CategoryRouting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:   auditlog.ModeOff,
		Groups: auditlog.ModeDB,
	})
	req := httptest.NewRequest("POST", "/api/groups", nil)
	logger.Registered(ctx, req, "u1", "ada@example.com")
	logger.GroupCreated(ctx, req, "u1", "g1", "Physics")
	logger.MemberJoined(ctx, req, "u2", "g1")

	n, err := store.Count(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("stored %d events, want 2 (auth is off)", n)
	}

	joined, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventMemberJoined})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(joined) != 1 || joined[0].GroupID != "g1" || joined[0].UserID != "u2" {
		t.Errorf("unexpected member_joined events: %+v", joined)
	}
}

func TestLogger_FailureIsWarnWithRequestContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{
		Auth:   auditlog.ModeLog,
		Groups: auditlog.ModeLog,
	})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "TestBrowser/1.0")
	logger.LoginFailedCredentials(ctx, req, "ada@example.com")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", e.Level)
	}
	fields := e.ContextMap()
	if fields["ip"] != "203.0.113.9" {
		t.Errorf("ip = %v, want 203.0.113.9", fields["ip"])
	}
	if fields["event_type"] != audit.EventLoginFailedCredential {
		t.Errorf("event_type = %v", fields["event_type"])
	}
	if fields["detail_attempted_email"] != "ada@example.com" {
		t.Errorf("detail_attempted_email = %v", fields["detail_attempted_email"])
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     auditlog.Config
		wantErr bool
	}{
		{"defaults", auditlog.Config{Auth: "all", Groups: "all"}, false},
		{"mixed", auditlog.Config{Auth: "db", Groups: "off"}, false},
		{"bad auth", auditlog.Config{Auth: "verbose", Groups: "all"}, true},
		{"empty groups", auditlog.Config{Auth: "log", Groups: ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
