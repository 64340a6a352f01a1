package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/httpclient"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/circuitbreaker"
)

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(10.0, 5, "das")

	require.NotNil(t, l)
	require.NotNil(t, l.bucket)
	assert.Equal(t, "das", l.provider)

	assert.InDelta(t, 10.0, float64(l.bucket.Limit()), 0.001)
	assert.Equal(t, 5, l.bucket.Burst())
}

func TestLimiter_AllowWithinBurst(t *testing.T) {
	const burst = 5
	l := NewLimiter(100, burst, "kas")

	ctx := context.Background()

	for i := 0; i < burst; i++ {
		start := time.Now()
		err := l.Wait(ctx)
		elapsed := time.Since(start)

		require.NoError(t, err, "request %d should not error", i)
		assert.Less(t, elapsed, 50*time.Millisecond,
			"request %d should complete immediately, took %v", i, elapsed)
	}
}

func TestLimiter_WaitWhenExhausted(t *testing.T) {
	const (
		rps   = 10.0 // 1 token every 100ms
		burst = 1
	)
	l := NewLimiter(rps, burst, "grouping")

	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))

	start := time.Now()
	err := l.Wait(ctx)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond,
		"should have waited for a token, but only took %v", elapsed)
}

func TestLimiter_ContextCancellation(t *testing.T) {
	l := NewLimiter(1.0, 1, "das")

	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	require.Error(t, err, "should return error when context is cancelled")
}

func TestClassifyCallError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("wrapped: %w", context.Canceled), "canceled"},
		{errors.New("context deadline exceeded"), "timeout"},
		{errors.New("http status 429: slow down"), "rate_limited"},
		{errors.New("http status 503: unavailable"), "server_error"},
		{errors.New("dial tcp: connection refused"), "network_error"},
		{errors.New("circuit breaker is open"), "circuit_open"},
		{errors.New("http status 400: bad address"), "client_error"},
		{fmt.Errorf("acquire 5 units: %w", context.DeadlineExceeded), "timeout"},
		{fmt.Errorf("das: %w", circuitbreaker.ErrCircuitOpen), "circuit_open"},
		{fmt.Errorf("get assets: %w", &httpclient.HTTPError{StatusCode: 429}), "rate_limited"},
		{fmt.Errorf("get token: %w", &httpclient.HTTPError{StatusCode: 502}), "server_error"},
		{&httpclient.HTTPError{StatusCode: 404, Body: "timeout waiting for upstream"}, "client_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyCallError(tt.err), "err=%v", tt.err)
	}
}
