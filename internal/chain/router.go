package chain

import (
	"fmt"
	"sort"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
)

// Router maps each chain to exactly one provider adapter.
type Router struct {
	adapters map[model.Chain]HoldingsAdapter
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{adapters: make(map[model.Chain]HoldingsAdapter)}
}

// Register binds chains to adapter, replacing any previous binding.
func (r *Router) Register(adapter HoldingsAdapter, chains ...model.Chain) {
	for _, c := range chains {
		r.adapters[c] = adapter
	}
}

// Route returns the adapter serving c.
func (r *Router) Route(c model.Chain) (HoldingsAdapter, error) {
	adapter, ok := r.adapters[c]
	if !ok {
		return nil, fmt.Errorf("route %s: %w", c, ErrNotImplemented)
	}
	return adapter, nil
}

// Chains returns the routed chains, sorted by name.
func (r *Router) Chains() []model.Chain {
	out := make([]model.Chain, 0, len(r.adapters))
	for c := range r.adapters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
