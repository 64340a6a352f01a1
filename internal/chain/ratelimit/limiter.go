package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/httpclient"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/circuitbreaker"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/metrics"
	"golang.org/x/time/rate"
)

// Limiter paces a provider sold by requests per second rather than by
// compute units: DAS, KAS and the grouping lookup. It is the pacer half of a
// gateway; weighted providers are charged through Budget instead.
type Limiter struct {
	bucket   *rate.Limiter
	provider string
}

// NewLimiter paces provider to rps calls per second, letting burst calls
// through back to back.
func NewLimiter(rps float64, burst int, provider string) *Limiter {
	return &Limiter{
		bucket:   rate.NewLimiter(rate.Limit(rps), burst),
		provider: provider,
	}
}

// Wait takes exactly one slot for the next provider call. A caller that gives
// up while waiting hands its slot back.
func (l *Limiter) Wait(ctx context.Context) error {
	slot := l.bucket.Reserve()
	if !slot.OK() {
		return errors.New("rate: burst too small for a single call")
	}
	delay := slot.Delay()
	if delay <= 0 {
		return nil
	}

	metrics.ProviderRateLimitWaits.WithLabelValues(l.provider).Inc()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		slot.Cancel()
		return ctx.Err()
	}
}

// RecordProviderCall counts one logical provider call under its outcome.
func RecordProviderCall(provider, endpoint string, err error) {
	metrics.ProviderCallsTotal.WithLabelValues(provider, endpoint, ClassifyCallError(err)).Inc()
}

// ClassifyCallError maps a provider call outcome to its metric label. Typed
// errors are matched first; provider SDK errors that only carry text fall
// back to message matching.
func ClassifyCallError(err error) string {
	if err == nil {
		return "ok"
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return "circuit_open"
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		switch code := httpErr.StatusCode; {
		case code == http.StatusTooManyRequests:
			return "rate_limited"
		case code >= 500:
			return "server_error"
		default:
			return "client_error"
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "circuit breaker is open"):
		return "circuit_open"
	case containsAny(msg, "timeout", "deadline exceeded"):
		return "timeout"
	case containsAny(msg, "rate limit", "429", "too many requests"):
		return "rate_limited"
	case containsAny(msg, "500", "502", "503", "internal server error"):
		return "server_error"
	case containsAny(msg, "connection refused", "connection reset", "network is unreachable",
		"no such host", "broken pipe", "eof"):
		return "network_error"
	default:
		return "client_error"
	}
}

func containsAny(msg string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}
