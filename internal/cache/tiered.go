package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/metrics"
)

// Remote is a shared second-tier cache.
type Remote[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
}

// Tiered reads through an in-process LRU, then an optional remote cache,
// then the loader. Remote failures degrade to a miss and are only logged.
type Tiered[V any] struct {
	l1     *LRU[string, V]
	l2     Remote[V]
	l2TTL  time.Duration
	logger *slog.Logger
}

// NewTiered creates a tiered cache. remote may be nil.
func NewTiered[V any](l1 *LRU[string, V], remote Remote[V], remoteTTL time.Duration, logger *slog.Logger) *Tiered[V] {
	return &Tiered[V]{l1: l1, l2: remote, l2TTL: remoteTTL, logger: logger}
}

// GetOrLoad returns the cached value for key, calling load on a full miss and
// populating both tiers with its result. Load errors are not cached.
func (t *Tiered[V]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := t.l1.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("l1", "hit").Inc()
		return v, nil
	}
	metrics.CacheLookups.WithLabelValues("l1", "miss").Inc()

	if t.l2 != nil {
		v, ok, err := t.l2.Get(ctx, key)
		switch {
		case err != nil:
			t.logger.Warn("remote cache get failed", "key", key, "error", err)
		case ok:
			metrics.CacheLookups.WithLabelValues("l2", "hit").Inc()
			t.l1.Put(key, v)
			return v, nil
		default:
			metrics.CacheLookups.WithLabelValues("l2", "miss").Inc()
		}
	}

	v, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	t.l1.Put(key, v)
	if t.l2 != nil {
		if err := t.l2.Set(ctx, key, v, t.l2TTL); err != nil {
			t.logger.Warn("remote cache set failed", "key", key, "error", err)
		}
	}
	return v, nil
}
