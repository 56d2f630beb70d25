package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeLimiter struct {
	allowed bool
	err     error
	scope   string
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, _ int64, _ time.Duration) (bool, int64, error) {
	f.scope = scope
	return f.allowed, 1, f.err
}

func runLimited(limiter *fakeLimiter) (*httptest.ResponseRecorder, bool) {
	handled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/payment-intent", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	rec := httptest.NewRecorder()
	RateLimit(limiter, nil, "checkout_intent", 30, time.Minute)(next).ServeHTTP(rec, req)
	return rec, handled
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	rec, handled := runLimited(limiter)

	if rec.Code != http.StatusOK || !handled {
		t.Fatalf("request should pass through, got %d handled=%v", rec.Code, handled)
	}
	if limiter.scope != "checkout_intent:203.0.113.9" {
		t.Fatalf("unexpected scope %q", limiter.scope)
	}
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	rec, handled := runLimited(&fakeLimiter{allowed: false})

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if handled {
		t.Fatalf("handler should not run when limited")
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	rec, handled := runLimited(&fakeLimiter{err: errors.New("redis down")})

	if rec.Code != http.StatusOK || !handled {
		t.Fatalf("limiter failure should not block requests, got %d handled=%v", rec.Code, handled)
	}
}

func TestClientIPPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")

	if ip := clientIP(req); ip != "198.51.100.7" {
		t.Fatalf("unexpected ip %q", ip)
	}
}
