package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time { return c.t }

func TestRateLimiterRefills(t *testing.T) {
	clock := &manualClock{t: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(1, 2)
	rl.now = clock.now

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("burst of two should pass")
	}
	if rl.Allow("a") {
		t.Fatalf("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Fatalf("other clients have their own bucket")
	}

	clock.t = clock.t.Add(time.Second)
	if !rl.Allow("a") {
		t.Fatalf("one token should refill after a second")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	clock := &manualClock{t: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(1, 1)
	rl.now = clock.now

	rl.Allow("old")
	clock.t = clock.t.Add(20 * time.Minute)
	rl.Allow("fresh")

	if remaining := rl.Sweep(10 * time.Minute); remaining != 1 {
		t.Fatalf("expected 1 bucket after sweep, got %d", remaining)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	handler := RateLimit(rl)(okHandler(nil))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request through, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.RemoteAddr = "203.0.113.7:6666"
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for same host on a new port, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}
