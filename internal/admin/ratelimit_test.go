package admin

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRateLimiter(t *testing.T) (*RateLimitMiddleware, http.Handler) {
	t.Helper()
	rl := NewRateLimitMiddleware(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	t.Cleanup(rl.Stop)
	return rl, rl.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func serve(h http.Handler, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":40000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware_AllowsNormalRequests(t *testing.T) {
	_, h := newTestRateLimiter(t)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/admin/v1/budget", "10.0.0.1").Code)
}

func TestRateLimitMiddleware_BlocksRepeatedSweep(t *testing.T) {
	_, h := newTestRateLimiter(t)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/admin/v1/sweep", "10.0.0.1").Code)

	rec := serve(h, http.MethodPost, "/admin/v1/sweep", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "300", rec.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_PerClientIP(t *testing.T) {
	_, h := newTestRateLimiter(t)

	serve(h, http.MethodPost, "/admin/v1/sweep", "10.0.0.1")
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/admin/v1/sweep", "10.0.0.2").Code)
}

func TestRateLimitMiddleware_DifferentEndpointsIndependent(t *testing.T) {
	_, h := newTestRateLimiter(t)

	serve(h, http.MethodPost, "/admin/v1/sweep", "10.0.0.1")
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/admin/v1/reconcile", "10.0.0.1").Code)
}

func TestRateLimitMiddleware_ReconcileBurst(t *testing.T) {
	_, h := newTestRateLimiter(t)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/admin/v1/reconcile", "10.0.0.1").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(h, http.MethodPost, "/admin/v1/reconcile", "10.0.0.1").Code)
}

func TestRateLimitMiddleware_EvictsStaleLimiters(t *testing.T) {
	rl, h := newTestRateLimiter(t)
	now := time.Now()
	rl.nowFunc = func() time.Time { return now }

	serve(h, http.MethodGet, "/admin/v1/budget", "10.0.0.1")
	serve(h, http.MethodGet, "/admin/v1/budget", "10.0.0.2")
	assert.Equal(t, 2, rl.LimiterCount())

	now = now.Add(staleLimiterTTL + time.Second)
	rl.evictStale()
	assert.Zero(t, rl.LimiterCount())
}

func TestExtractClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:1234"
	assert.Equal(t, "192.168.1.9", extractClientIP(req))

	req.Header.Set("X-Real-IP", " 172.16.0.4 ")
	assert.Equal(t, "172.16.0.4", extractClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", extractClientIP(req))
}

func TestMatchRule_FallsBackToCatchAll(t *testing.T) {
	rl, _ := newTestRateLimiter(t)
	assert.Equal(t, 0, rl.matchRule(http.MethodPost, "/admin/v1/sweep"))
	assert.Equal(t, len(defaultRules)-1, rl.matchRule(http.MethodGet, "/admin/v1/sweep"))
	assert.Equal(t, len(defaultRules)-1, rl.matchRule(http.MethodDelete, "/anything"))
}
