package pipeline

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
)

// HealthStatus is the observed state of the provider serving a chain.
type HealthStatus string

const (
	HealthStatusUnknown   HealthStatus = "UNKNOWN"
	HealthStatusHealthy   HealthStatus = "HEALTHY"
	HealthStatusDegraded  HealthStatus = "DEGRADED"
	HealthStatusUnhealthy HealthStatus = "UNHEALTHY"

	// DefaultUnhealthyThreshold is the number of consecutive failed provider
	// pages before a chain is considered unhealthy.
	DefaultUnhealthyThreshold = 5

	// DefaultDegradedLatencyThreshold is the P95 provider page latency above
	// which a chain is considered degraded.
	DefaultDegradedLatencyThreshold = 5 * time.Second

	latencyWindowSize = 10
)

// ChainHealth tracks provider page outcomes for one chain.
type ChainHealth struct {
	mu                       sync.RWMutex
	chain                    model.Chain
	status                   HealthStatus
	consecutiveFailures      int
	lastSuccessAt            *time.Time
	lastFailureAt            *time.Time
	unhealthyThreshold       int
	recentLatencies          []time.Duration
	degradedLatencyThreshold time.Duration
	now                      func() time.Time
}

func NewChainHealth(chain model.Chain) *ChainHealth {
	return &ChainHealth{
		chain:                    chain,
		status:                   HealthStatusUnknown,
		unhealthyThreshold:       DefaultUnhealthyThreshold,
		recentLatencies:          make([]time.Duration, 0, latencyWindowSize),
		degradedLatencyThreshold: DefaultDegradedLatencyThreshold,
		now:                      time.Now,
	}
}

// RecordSuccess records a provider page fetched in d. It returns true when
// the chain recovers from UNHEALTHY.
func (h *ChainHealth) RecordSuccess(d time.Duration) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	wasUnhealthy := h.status == HealthStatusUnhealthy

	if len(h.recentLatencies) >= latencyWindowSize {
		h.recentLatencies = h.recentLatencies[1:]
	}
	h.recentLatencies = append(h.recentLatencies, d)

	h.consecutiveFailures = 0
	h.lastSuccessAt = &now
	if h.isLatencyDegraded() {
		h.status = HealthStatusDegraded
	} else {
		h.status = HealthStatusHealthy
	}
	return wasUnhealthy
}

// RecordFailure records a failed provider page. It returns true when the
// chain transitions to UNHEALTHY on this call.
func (h *ChainHealth) RecordFailure() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	h.consecutiveFailures++
	h.lastFailureAt = &now
	if h.consecutiveFailures >= h.unhealthyThreshold && h.status != HealthStatusUnhealthy {
		h.status = HealthStatusUnhealthy
		return true
	}
	return false
}

// isLatencyDegraded must be called with mu held.
func (h *ChainHealth) isLatencyDegraded() bool {
	if len(h.recentLatencies) < 2 {
		return false
	}
	return h.percentileLatency(95) > h.degradedLatencyThreshold
}

func (h *ChainHealth) percentileLatency(pct int) time.Duration {
	n := len(h.recentLatencies)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(h.recentLatencies)
	slices.Sort(sorted)
	idx := (pct*n - 1) / 100
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

func (h *ChainHealth) Snapshot() HealthSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthSnapshot{
		Chain:               string(h.chain),
		Status:              string(h.status),
		ConsecutiveFailures: h.consecutiveFailures,
		LastSuccessAt:       h.lastSuccessAt,
		LastFailureAt:       h.lastFailureAt,
	}
}

// HealthSnapshot is a point-in-time view of chain health (JSON-safe).
type HealthSnapshot struct {
	Chain               string     `json:"chain"`
	Status              string     `json:"status"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
}

// HealthRegistry holds one ChainHealth per configured chain.
type HealthRegistry struct {
	chains map[model.Chain]*ChainHealth
}

func NewHealthRegistry(chains []model.Chain) *HealthRegistry {
	r := &HealthRegistry{chains: make(map[model.Chain]*ChainHealth, len(chains))}
	for _, c := range chains {
		r.chains[c] = NewChainHealth(c)
	}
	return r
}

// For returns the tracker of c, or nil for an unknown chain.
func (r *HealthRegistry) For(c model.Chain) *ChainHealth {
	return r.chains[c]
}

// Snapshots returns every chain's state ordered by chain name.
func (r *HealthRegistry) Snapshots() []HealthSnapshot {
	out := make([]HealthSnapshot, 0, len(r.chains))
	for _, h := range r.chains {
		out = append(out, h.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Chain < out[j].Chain })
	return out
}

// Healthy reports whether no chain is UNHEALTHY.
func (r *HealthRegistry) Healthy() bool {
	for _, h := range r.chains {
		if h.Snapshot().Status == string(HealthStatusUnhealthy) {
			return false
		}
	}
	return true
}
