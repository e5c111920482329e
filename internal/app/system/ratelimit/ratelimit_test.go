package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(limit int, d time.Duration) (*Limiter, *clock) {
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(limit, d)
	l.now = c.now
	return l, c
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)
	defer l.Close()

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("fourth attempt should be refused")
	}
	if !l.Allow("other") {
		t.Error("other keys are independent")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l, c := newTestLimiter(1, time.Minute)
	defer l.Close()

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("second attempt inside the window should be refused")
	}
	c.t = c.t.Add(time.Minute)
	if !l.Allow("k") {
		t.Error("attempt after the window should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	defer l.Close()

	l.Allow("k")
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("attempt after Reset should be allowed")
	}
}

func TestLimiter_EvictExpired(t *testing.T) {
	l, c := newTestLimiter(1, time.Minute)
	defer l.Close()

	l.Allow("a")
	c.t = c.t.Add(2 * time.Minute)
	l.evictExpired()

	l.mu.Lock()
	n := len(l.windows)
	l.mu.Unlock()
	if n != 0 {
		t.Errorf("expected expired windows evicted, %d left", n)
	}
}

func TestLimiter_CloseTwice(t *testing.T) {
	l := New(1, time.Minute)
	l.Close()
	l.Close()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"forwarded", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"remote with port", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/auth/login", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_PerAccount(t *testing.T) {
	ll := NewLoginLimiter(Config{IPLimit: 100, EmailLimit: 2})
	defer ll.Close()
	r := httptest.NewRequest("POST", "/api/auth/login", nil)

	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, "a@example.com"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	ok, msg := ll.Check(r, " A@example.com ")
	if ok || msg != TooManyForAccount {
		t.Errorf("Check() = %v, %q; want refusal for account", ok, msg)
	}

	ll.ResetEmail("a@example.com")
	if ok, _ := ll.Check(r, "a@example.com"); !ok {
		t.Error("attempt after ResetEmail should be allowed")
	}
}

func TestLoginLimiter_PerIP(t *testing.T) {
	ll := NewLoginLimiter(Config{IPLimit: 1})
	defer ll.Close()
	r := httptest.NewRequest("POST", "/api/auth/login", nil)

	if ok, _ := ll.Check(r, "a@example.com"); !ok {
		t.Fatal("first attempt should be allowed")
	}
	ok, msg := ll.Check(r, "b@example.com")
	if ok || msg != TooManyFromIP {
		t.Errorf("Check() = %v, %q; want refusal for IP", ok, msg)
	}
}
