package admin

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// staleLimiterTTL is how long a per-IP limiter can be idle before cleanup.
	staleLimiterTTL = 10 * time.Minute
	cleanupInterval = time.Minute
)

type endpointRule struct {
	method string // empty matches any method
	prefix string // empty matches any path
	rps    rate.Limit
	burst  int
}

// defaultRules protect the expensive endpoints hardest: a sweep walks every
// user and a reconcile spends provider compute units.
var defaultRules = []endpointRule{
	{method: http.MethodPost, prefix: "/admin/v1/sweep", rps: rate.Limit(1.0 / 300), burst: 1},
	{method: http.MethodPost, prefix: "/admin/v1/reconcile", rps: rate.Limit(10.0 / 60), burst: 3},
	{method: http.MethodGet, prefix: "/admin/v1/holdings", rps: 2, burst: 10},
	{rps: 1, burst: 5},
}

type limiterKey struct {
	rule int
	ip   string
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies per-endpoint, per-client-IP token buckets.
type RateLimitMiddleware struct {
	rules  []endpointRule
	logger *slog.Logger

	mu       sync.Mutex
	limiters map[limiterKey]*limiterEntry
	nowFunc  func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimitMiddleware starts a background sweep of idle limiters; call
// Stop to end it.
func NewRateLimitMiddleware(logger *slog.Logger) *RateLimitMiddleware {
	rl := &RateLimitMiddleware{
		rules:    defaultRules,
		logger:   logger.With("component", "admin_ratelimit"),
		limiters: make(map[limiterKey]*limiterEntry),
		nowFunc:  time.Now,
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop is safe to call multiple times.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimitMiddleware) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.evictStale()
		}
	}
}

func (rl *RateLimitMiddleware) evictStale() {
	now := rl.nowFunc()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > staleLimiterTTL {
			delete(rl.limiters, key)
		}
	}
}

// LimiterCount returns the number of live limiters.
func (rl *RateLimitMiddleware) LimiterCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Wrap rejects requests over their bucket with 429 and a Retry-After hint.
func (rl *RateLimitMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		ruleIdx := rl.matchRule(r.Method, r.URL.Path)
		limiter := rl.limiterFor(limiterKey{rule: ruleIdx, ip: clientIP})

		if !limiter.Allow() {
			retryAfter := 1
			if rps := float64(rl.rules[ruleIdx].rps); rps > 0 && rps < 1 {
				retryAfter = int(1/rps + 0.5)
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			rl.logger.Warn("admin API rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", clientIP,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientIP prefers the first X-Forwarded-For hop, then X-Real-IP,
// then the connection address.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// matchRule returns the index of the first matching rule. The last rule is
// the catch-all.
func (rl *RateLimitMiddleware) matchRule(method, path string) int {
	for i, rule := range rl.rules {
		if rule.method != "" && !strings.EqualFold(rule.method, method) {
			continue
		}
		if rule.prefix != "" && !strings.HasPrefix(path, rule.prefix) {
			continue
		}
		return i
	}
	return len(rl.rules) - 1
}

func (rl *RateLimitMiddleware) limiterFor(key limiterKey) *rate.Limiter {
	now := rl.nowFunc()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if entry, ok := rl.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	rule := rl.rules[key.rule]
	entry := &limiterEntry{limiter: rate.NewLimiter(rule.rps, rule.burst), lastSeen: now}
	rl.limiters[key] = entry
	return entry.limiter
}
