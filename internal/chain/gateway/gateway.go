// Package gateway wraps every outbound provider call with admission control.
// A call is charged its endpoint weight before it is issued and the units are
// handed back after the budget's release delay, whatever the outcome.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/ratelimit"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/circuitbreaker"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/metrics"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline/retry"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Budget is the compute-unit admission contract.
type Budget interface {
	Acquire(ctx context.Context, units int) (ratelimit.Grant, error)
	Release(units int)
}

// Pacer paces requests to providers without a compute-unit budget.
type Pacer interface {
	Wait(ctx context.Context) error
}

var (
	_ Budget = (*ratelimit.Budget)(nil)
	_ Pacer  = (*ratelimit.Limiter)(nil)
)

// Gateway is the per-provider call wrapper.
type Gateway struct {
	provider model.Provider
	budget   Budget
	weights  *ratelimit.WeightTable
	pacer    Pacer
	breaker  *circuitbreaker.Breaker
	retry    retry.Policy
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithBudget governs the provider by a shared compute-unit budget priced by
// weights.
func WithBudget(b Budget, weights *ratelimit.WeightTable) Option {
	return func(g *Gateway) {
		g.budget = b
		g.weights = weights
	}
}

// WithPacer paces every HTTP attempt through p.
func WithPacer(p Pacer) Option {
	return func(g *Gateway) {
		g.pacer = p
	}
}

// WithBreaker overrides the default circuit breaker.
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(g *Gateway) {
		g.breaker = b
	}
}

// WithRetryPolicy overrides the in-grant retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(g *Gateway) {
		g.retry = p
	}
}

// New creates a gateway for provider.
func New(provider model.Provider, logger *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		provider: provider,
		retry:    retry.DefaultPolicy(),
		tracer:   tracing.Tracer("holdings/gateway"),
		logger:   logger.With("component", "gateway", "provider", string(provider)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.budget != nil && g.weights == nil {
		g.weights = ratelimit.NewWeightTable(nil, 1)
	}
	if g.breaker == nil {
		g.breaker = NewBreaker(provider, circuitbreaker.Config{}, g.logger)
	}
	return g
}

// NewBreaker creates a circuit breaker that publishes its state as a metric.
func NewBreaker(provider model.Provider, cfg circuitbreaker.Config, logger *slog.Logger) *circuitbreaker.Breaker {
	cfg.Name = string(provider)
	cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		metrics.ProviderCircuitState.WithLabelValues(name).Set(float64(to))
		logger.Warn("provider circuit state changed",
			"provider", name,
			"from", from.String(),
			"to", to.String(),
		)
	}
	metrics.ProviderCircuitState.WithLabelValues(string(provider)).Set(float64(circuitbreaker.StateClosed))
	return circuitbreaker.New(cfg)
}

// Provider returns the provider this gateway fronts.
func (g *Gateway) Provider() model.Provider {
	return g.provider
}

// Call runs fn as one logical provider call to endpoint. The endpoint weight
// is resolved and charged once, before the first attempt; transient failures
// are retried inside the same grant.
func Call[T any](ctx context.Context, g *Gateway, endpoint string, fn func(ctx context.Context) (T, error)) (result T, err error) {
	ctx, span := g.tracer.Start(ctx, string(g.provider)+"."+endpoint,
		trace.WithAttributes(
			attribute.String("provider", string(g.provider)),
			attribute.String("endpoint", endpoint),
		),
	)
	defer func() { tracing.EndSpan(span, err) }()
	defer func() { ratelimit.RecordProviderCall(string(g.provider), endpoint, err) }()

	// An open circuit fails before any budget is charged.
	if err := g.breaker.Allow(); err != nil {
		return result, err
	}

	if g.budget != nil {
		units := g.weights.Cost(endpoint)
		grant, acqErr := g.budget.Acquire(ctx, units)
		if acqErr != nil {
			return result, acqErr
		}
		span.SetAttributes(
			attribute.Int("budget.units", grant.Units),
			attribute.Int64("budget.wait_ms", grant.Waited.Milliseconds()),
		)
		defer g.budget.Release(grant.Units)
	}

	start := time.Now()
	attempt := func() error {
		if g.pacer != nil {
			if err := g.pacer.Wait(ctx); err != nil {
				return err
			}
		}
		v, callErr := fn(ctx)
		if callErr != nil {
			return callErr
		}
		result = v
		return nil
	}
	onRetry := func(retryErr error, next time.Duration) {
		g.logger.Debug("retrying provider call",
			"endpoint", endpoint,
			"backoff", next,
			"error", retryErr,
		)
	}

	err = retry.Do(ctx, g.retry, attempt, onRetry)
	metrics.ProviderCallLatency.WithLabelValues(string(g.provider), endpoint).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		g.breaker.RecordSuccess()
	case retry.Classify(err).IsTransient():
		g.breaker.RecordFailure()
	}
	return result, err
}
