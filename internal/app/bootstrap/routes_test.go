package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/studyhub/internal/app/system/realtime"
	"github.com/dalemusser/studyhub/internal/app/system/tokens"
	"github.com/dalemusser/studyhub/internal/app/system/workers"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/gorilla/websocket"
)

type testApp struct {
	srv  *httptest.Server
	deps DBDeps
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.SetupIndexedDB(t)
	testutil.NewFixtures(t, db)

	tok, err := tokens.New(strings.Repeat("k", minSecretLen), time.Hour)
	if err != nil {
		t.Fatalf("tokens.New: %v", err)
	}
	deps := DBDeps{
		MongoClient:   db.Client(),
		MongoDatabase: db,
		Tokens:        tok,
		Hub:           realtime.NewHub(testLogger(), realtime.BestEffort),
		LoginLimiter:  ratelimit.NewLoginLimiter(ratelimit.Config{}),
		Audit: auditlog.New(audit.New(db), testLogger(), auditlog.Config{
			Auth:   auditlog.ModeDB,
			Groups: auditlog.ModeDB,
		}),
	}
	t.Cleanup(func() {
		_ = deps.Hub.Close()
		deps.LoginLimiter.Close()
	})

	cfg := validAppConfig()
	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, deps: deps}
}

// call sends a JSON request and decodes the JSON response into out (if non-nil).
func (a *testApp) call(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp
}

func (a *testApp) register(t *testing.T, email, name string) (string, models.User) {
	t.Helper()
	var body struct {
		AccessToken string      `json:"access_token"`
		User        models.User `json:"user"`
	}
	resp := a.call(t, "POST", "/api/auth/register", "", map[string]string{
		"email": email, "password": "pw-" + name, "full_name": name,
	}, &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
	return body.AccessToken, body.User
}

func TestEndToEnd_GroupChat(t *testing.T) {
	app := newTestApp(t)

	token, userA := app.register(t, "a@example.com", "Alice")

	var g models.Group
	if resp := app.call(t, "POST", "/api/groups", token, map[string]string{"name": "G"}, &g); resp.StatusCode != http.StatusOK {
		t.Fatalf("create group: status %d", resp.StatusCode)
	}

	var sent models.Message
	resp := app.call(t, "POST", "/api/groups/"+g.ID+"/messages", token, map[string]string{"content": "hi"}, &sent)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post message: status %d", resp.StatusCode)
	}

	var history []models.Message
	if resp := app.call(t, "GET", "/api/groups/"+g.ID+"/messages", token, nil, &history); resp.StatusCode != http.StatusOK {
		t.Fatalf("get messages: status %d", resp.StatusCode)
	}
	if len(history) != 1 {
		t.Fatalf("got %d messages, want 1", len(history))
	}
	if history[0].Content != "hi" || history[0].UserID != userA.ID || history[0].ID != sent.ID {
		t.Errorf("message = %+v, want content hi from %s", history[0], userA.ID)
	}

	var me models.User
	app.call(t, "GET", "/api/auth/me", token, nil, &me)
	if len(me.GroupIDs) != 1 || me.GroupIDs[0] != g.ID {
		t.Errorf("me.group_ids = %v, want [%s]", me.GroupIDs, g.ID)
	}
}

func TestEndToEnd_MembershipGate(t *testing.T) {
	app := newTestApp(t)

	ownerToken, _ := app.register(t, "owner@example.com", "Owner")
	otherToken, _ := app.register(t, "other@example.com", "Other")

	var g models.Group
	app.call(t, "POST", "/api/groups", ownerToken, map[string]string{"name": "Closed"}, &g)

	if resp := app.call(t, "GET", "/api/groups/"+g.ID+"/messages", otherToken, nil, nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("read as outsider: status %d, want 403", resp.StatusCode)
	}
	if resp := app.call(t, "POST", "/api/groups/"+g.ID+"/messages", otherToken, map[string]string{"content": "x"}, nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("write as outsider: status %d, want 403", resp.StatusCode)
	}

	var joined struct {
		Message string `json:"message"`
	}
	app.call(t, "POST", "/api/groups/"+g.ID+"/join", otherToken, nil, &joined)
	if joined.Message != "Joined group successfully" {
		t.Errorf("join = %q", joined.Message)
	}
	if resp := app.call(t, "GET", "/api/groups/"+g.ID+"/messages", otherToken, nil, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("read as member: status %d, want 200", resp.StatusCode)
	}
}

func TestEndToEnd_AssignmentToggleTwice(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register(t, "student@example.com", "Student")

	var a models.Assignment
	resp := app.call(t, "POST", "/api/assignments", token, map[string]string{
		"title": "Lab report", "due_date": "2025-05-01T12:00:00Z",
	}, &a)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create assignment: status %d", resp.StatusCode)
	}

	var toggled struct {
		Completed bool `json:"completed"`
	}
	app.call(t, "PATCH", "/api/assignments/"+a.ID+"/complete", token, nil, &toggled)
	app.call(t, "PATCH", "/api/assignments/"+a.ID+"/complete", token, nil, &toggled)
	if toggled.Completed {
		t.Error("completed after two toggles, want false")
	}

	var list []models.Assignment
	app.call(t, "GET", "/api/assignments", token, nil, &list)
	if len(list) != 1 || list[0].Completed {
		t.Errorf("assignments = %+v", list)
	}
}

func TestGuard_ProtectsAPI(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage token", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Detail string `json:"detail"`
			}
			resp := app.call(t, "GET", "/api/groups", tt.token, nil, &body)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("status %d, want 401", resp.StatusCode)
			}
			if got := resp.Header.Get("WWW-Authenticate"); got != "Bearer" {
				t.Errorf("WWW-Authenticate = %q", got)
			}
			if body.Detail != "Could not validate credentials" {
				t.Errorf("detail = %q", body.Detail)
			}
		})
	}
}

func TestOperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	var health struct {
		Status string `json:"status"`
	}
	if resp := app.call(t, "GET", "/health", "", nil, &health); resp.StatusCode != http.StatusOK || health.Status != "ok" {
		t.Errorf("health: status %d body %+v", resp.StatusCode, health)
	}

	resp, err := app.srv.Client().Get(app.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "studyhub_realtime_subscribers") {
		t.Error("metrics output lacks studyhub_realtime_subscribers")
	}

	var nf struct {
		Detail string `json:"detail"`
	}
	if resp := app.call(t, "GET", "/api/nope", "", nil, &nf); resp.StatusCode != http.StatusNotFound || nf.Detail == "" {
		t.Errorf("unknown route: status %d detail %q", resp.StatusCode, nf.Detail)
	}
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t)

	req, _ := http.NewRequest("OPTIONS", app.srv.URL+"/api/groups", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	resp, err := app.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("preflight response lacks Access-Control-Allow-Origin")
	}
}

func TestEndToEnd_MessageReachesChatSocket(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register(t, "live@example.com", "Live")

	var g models.Group
	app.call(t, "POST", "/api/groups", token, map[string]string{"name": "Live"}, &g)

	url := "ws" + strings.TrimPrefix(app.srv.URL, "http") + "/ws/groups/" + g.ID
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	deadline := time.Now().Add(2 * time.Second)
	for app.deps.Hub.Count(g.ID) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	var sent models.Message
	app.call(t, "POST", "/api/groups/"+g.ID+"/messages", token, map[string]string{"content": "pushed"}, &sent)

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.Message
	if err := ws.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.ID != sent.ID || got.Content != "pushed" {
		t.Errorf("socket got %+v, want message %s", got, sent.ID)
	}
}

func TestShutdown_ClosesHub(t *testing.T) {
	hub := realtime.NewHub(testLogger(), realtime.BestEffort)
	limiter := ratelimit.NewLoginLimiter(ratelimit.Config{})

	sweeper := workers.NewAuditRetention(nil, testLogger(), time.Hour, time.Hour)
	sweeper.Start()

	// No Mongo client: the shared test client must stay connected.
	deps := DBDeps{Hub: hub, LoginLimiter: limiter, AuditRetention: sweeper}
	if err := Shutdown(context.Background(), &config.CoreConfig{}, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := hub.Subscribe(&nopConn{}, "g"); err != realtime.ErrHubClosed {
		t.Errorf("Subscribe after Shutdown = %v, want ErrHubClosed", err)
	}
}

type nopConn struct{}

func (nopConn) WriteJSON(any) error { return nil }
func (nopConn) Close() error        { return nil }

func TestEndToEnd_AuditTrail(t *testing.T) {
	app := newTestApp(t)

	token, user := app.register(t, "audit@example.com", "Auditor")
	app.call(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "audit@example.com", "password": "wrong",
	}, nil)
	app.call(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "audit@example.com", "password": "pw-Auditor",
	}, nil)

	var g models.Group
	app.call(t, "POST", "/api/groups", token, map[string]string{"name": "Audited"}, &g)
	otherToken, other := app.register(t, "joiner@example.com", "Joiner")
	app.call(t, "POST", "/api/groups/"+g.ID+"/join", otherToken, nil, nil)
	app.call(t, "POST", "/api/groups/"+g.ID+"/join", otherToken, nil, nil)

	store := audit.New(app.deps.MongoDatabase)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	count := func(f audit.QueryFilter) int64 {
		t.Helper()
		n, err := store.Count(ctx, f)
		if err != nil {
			t.Fatalf("Count(%+v): %v", f, err)
		}
		return n
	}

	if n := count(audit.QueryFilter{UserID: user.ID, EventType: audit.EventRegistered}); n != 1 {
		t.Errorf("registered events = %d, want 1", n)
	}
	if n := count(audit.QueryFilter{EventType: audit.EventLoginFailedCredential}); n != 1 {
		t.Errorf("failed login events = %d, want 1", n)
	}
	if n := count(audit.QueryFilter{UserID: user.ID, EventType: audit.EventLoginSuccess}); n != 1 {
		t.Errorf("login success events = %d, want 1", n)
	}
	if n := count(audit.QueryFilter{GroupID: g.ID, EventType: audit.EventGroupCreated}); n != 1 {
		t.Errorf("group created events = %d, want 1", n)
	}
	// The second join is a no-op and is not audited.
	if n := count(audit.QueryFilter{UserID: other.ID, EventType: audit.EventMemberJoined}); n != 1 {
		t.Errorf("member joined events = %d, want 1", n)
	}
}
