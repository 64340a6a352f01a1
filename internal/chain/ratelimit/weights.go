package ratelimit

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

// WeightSource fetches the provider's published per-endpoint costs.
type WeightSource interface {
	EndpointWeights(ctx context.Context) (map[string]int, error)
}

// WeightTable holds per-endpoint compute-unit costs. Costs are read at call
// issue time, so a refresh never changes what an in-flight call was charged.
type WeightTable struct {
	mu          sync.RWMutex
	weights     map[string]int
	defaultCost int
}

// NewWeightTable seeds a table with defaults. Endpoints without an entry cost
// defaultCost units.
func NewWeightTable(defaults map[string]int, defaultCost int) *WeightTable {
	if defaultCost <= 0 {
		defaultCost = 1
	}
	w := make(map[string]int, len(defaults))
	maps.Copy(w, defaults)
	return &WeightTable{weights: w, defaultCost: defaultCost}
}

// Cost returns the units charged for one call to endpoint.
func (t *WeightTable) Cost(endpoint string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.weights[endpoint]; ok {
		return c
	}
	return t.defaultCost
}

// Update merges weights into the table. Non-positive weights are ignored.
func (t *WeightTable) Update(weights map[string]int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for endpoint, cost := range weights {
		if cost <= 0 {
			continue
		}
		t.weights[endpoint] = cost
		n++
	}
	return n
}

// Refresh pulls weights from src and merges them. On error the table is
// left unchanged.
func (t *WeightTable) Refresh(ctx context.Context, src WeightSource) (int, error) {
	weights, err := src.EndpointWeights(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch endpoint weights: %w", err)
	}
	return t.Update(weights), nil
}

// Snapshot returns a copy of the current weights.
func (t *WeightTable) Snapshot() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]int, len(t.weights))
	maps.Copy(out, t.weights)
	return out
}
