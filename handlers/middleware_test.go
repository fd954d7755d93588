package handlers

import (
	"net/http"
	"testing"
	"time"

	"spark-feed/config"
	"spark-feed/models"

	"github.com/gin-gonic/gin"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"u1", "u1"},
		{"  u2 ", "u2"},
		{"", models.AnonymousUserID},
		{"   ", models.AnonymousUserID},
	}

	for _, tt := range tests {
		r := gin.New()
		var got string
		r.GET("/", Identity(), func(c *gin.Context) { got = userID(c) })

		doRequest(r, http.MethodGet, "/", tt.header, "")
		if got != tt.expected {
			t.Errorf("userID(%q) = %q, expected %q", tt.header, got, tt.expected)
		}
	}
}

func TestRateLimiter_PublicEndpointsOnly(t *testing.T) {
	s := newTestServer()
	s.limiter = NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 2})
	t.Cleanup(s.limiter.Stop)

	for i := 0; i < 2; i++ {
		expectStatus(t, s.do(t, http.MethodGet, "/feed/trending", "", ""), http.StatusOK)
	}
	w := s.do(t, http.MethodGet, "/feed/trending", "", "")
	expectStatus(t, w, http.StatusTooManyRequests)
	if resp := decode[models.ErrorResponse](t, w); resp.Code != http.StatusTooManyRequests {
		t.Errorf("error response = %+v", resp)
	}

	// the bucket is per client, shared by every public route
	expectStatus(t, s.do(t, http.MethodGet, "/feed/location?lat=1&lon=1", "", ""), http.StatusTooManyRequests)
	expectStatus(t, s.do(t, http.MethodGet, "/feed", "u1", ""), http.StatusOK)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.2")
	rl.cleanup(time.Now().Add(-time.Hour))
	if len(rl.limiters) != 2 {
		t.Fatalf("cleanup dropped active clients, %d left", len(rl.limiters))
	}

	rl.cleanup(time.Now().Add(time.Minute))
	if len(rl.limiters) != 0 {
		t.Errorf("cleanup kept %d idle clients", len(rl.limiters))
	}
	if !rl.Allow("10.0.0.1") {
		t.Error("a dropped client should start with a fresh bucket")
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		health string
	}{
		{"no database", nil, http.StatusOK, "healthy"},
		{"reachable", fakePinger{}, http.StatusOK, "healthy"},
		{"unreachable", fakePinger{err: errBoom}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.db = tt.db

			w := s.do(t, http.MethodGet, "/health", "", "")
			expectStatus(t, w, tt.status)
			body := decode[map[string]string](t, w)
			if body["status"] != tt.health || body["service"] != "spark-feed" {
				t.Errorf("body = %v", body)
			}
		})
	}
}
