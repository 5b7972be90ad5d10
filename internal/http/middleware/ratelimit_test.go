package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_PerIPBurst(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), NewRateLimiter(0.001, 2, KeyByIP()).Handler())
	r.GET("/api/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodGet, "/api/users", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d", i, w.Code)
		}
	}
	w := do(r, http.MethodGet, "/api/users", nil)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("third request: code=%d retry=%q", w.Code, w.Header().Get("Retry-After"))
	}
	if env := decodeEnvelope(t, w); env["code"] != "too_many_requests" {
		t.Fatalf("envelope = %v", env)
	}
}

func TestRateLimiter_ReplayBypasses(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
	}, NewRateLimiter(0.001, 1, nil).Handler())
	r.POST("/api/users", func(c *gin.Context) { c.Status(http.StatusCreated) })

	do(r, http.MethodPost, "/api/users", nil)
	if w := do(r, http.MethodPost, "/api/users", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected limit, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/users", map[string]string{"X-Replay": "1"}); w.Code != http.StatusCreated {
		t.Fatalf("replay limited: %d", w.Code)
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 0, nil)
	if rl.burst != 1 {
		t.Fatalf("burst = %d", rl.burst)
	}
	rl.limiterFor("stale")
	rl.buckets["stale"].lastSeen = time.Now().Add(-time.Hour)
	rl.lookups = 4999

	rl.limiterFor("fresh")
	if _, ok := rl.buckets["stale"]; ok {
		t.Fatal("stale bucket kept")
	}
	if rl.lookups != 0 || len(rl.buckets) != 1 {
		t.Fatalf("lookups=%d buckets=%d", rl.lookups, len(rl.buckets))
	}
}
