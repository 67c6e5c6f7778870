package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)}
}

// limiterWith returns a limiter that reads time from c.
func limiterWith(limit int, window time.Duration, c *fakeClock) *RateLimiter {
	rl := NewRateLimiter(limit, window)
	rl.now = c.now
	return rl
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	clock := newFakeClock()
	rl := limiterWith(2, time.Minute, clock)
	defer rl.Stop()

	rl.allow("10.0.0.1")
	clock.advance(20 * time.Second)
	rl.allow("10.0.0.1")

	ok, retry := rl.allow("10.0.0.1")
	if ok {
		t.Fatal("third attempt inside the window must be refused")
	}
	if retry != 40*time.Second {
		t.Errorf("retry = %v, want 40s", retry)
	}

	if ok, _ := rl.allow("10.0.0.2"); !ok {
		t.Error("limits are per client")
	}

	// The first attempt leaves the window; one slot frees up.
	clock.advance(40 * time.Second)
	if ok, _ := rl.allow("10.0.0.1"); !ok {
		t.Error("expected a slot once the oldest attempt expired")
	}
	if ok, _ := rl.allow("10.0.0.1"); ok {
		t.Error("only one slot should have freed up")
	}
}

func TestRateLimiterRefusalsAreNotRecorded(t *testing.T) {
	clock := newFakeClock()
	rl := limiterWith(1, time.Minute, clock)
	defer rl.Stop()

	rl.allow("ip")
	for i := 0; i < 5; i++ {
		clock.advance(5 * time.Second)
		rl.allow("ip")
	}

	clock.advance(35 * time.Second)
	if ok, _ := rl.allow("ip"); !ok {
		t.Error("refused attempts must not extend the lockout")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	clock := newFakeClock()
	rl := limiterWith(2, time.Minute, clock)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	login := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "[2001:db8::7]:51234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := login(); rec.Code != http.StatusNoContent {
			t.Fatalf("attempt %d: got %d, want 204", i+1, rec.Code)
		}
	}

	clock.advance(500 * time.Millisecond)
	rec := login()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Error == "" {
		t.Errorf("expected a JSON error body, got %q (%v)", rec.Body.String(), err)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff, xri   string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", "203.0.113.9, 10.0.0.1", "", "10.0.0.1:443", "203.0.113.9"},
		{"real ip", "", " 203.0.113.10 ", "10.0.0.1:443", "203.0.113.10"},
		{"ipv4 connection", "", "", "198.51.100.4:5000", "198.51.100.4"},
		{"ipv6 connection", "", "", "[2001:db8::1]:5000", "2001:db8::1"},
		{"bare address", "", "", "198.51.100.4", "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	clock := newFakeClock()
	rl := limiterWith(5, time.Minute, clock)
	defer rl.Stop()

	rl.allow("idle")
	clock.advance(45 * time.Second)
	rl.allow("active")
	clock.advance(30 * time.Second)

	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if _, ok := rl.clients["idle"]; ok {
		t.Error("idle client should be forgotten")
	}
	if _, ok := rl.clients["active"]; !ok {
		t.Error("active client should be kept")
	}
}
