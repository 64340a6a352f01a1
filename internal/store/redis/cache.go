package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// JSONCache stores JSON-encoded values under a key prefix. It satisfies
// cache.Remote.
type JSONCache[V any] struct {
	client *redis.Client
	prefix string
}

// NewJSONCache creates a cache whose keys are namespaced by prefix.
func NewJSONCache[V any](client *redis.Client, prefix string) *JSONCache[V] {
	return &JSONCache[V]{client: client, prefix: prefix}
}

func (c *JSONCache[V]) key(k string) string {
	return c.prefix + ":" + k
}

// Get returns the value for k. A missing key is not an error.
func (c *JSONCache[V]) Get(ctx context.Context, k string) (V, bool, error) {
	var zero V
	raw, err := c.client.Get(ctx, c.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("redis get %s: %w", k, err)
	}
	v, err := decode[V](raw)
	if err != nil {
		return zero, false, fmt.Errorf("redis get %s: %w", k, err)
	}
	return v, true, nil
}

// Set stores v under k for ttl. A zero ttl keeps the key forever.
func (c *JSONCache[V]) Set(ctx context.Context, k string, v V, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	if err := c.client.Set(ctx, c.key(k), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", k, err)
	}
	return nil
}

func decode[V any](raw []byte) (V, error) {
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}
