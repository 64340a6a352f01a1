package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Holdings aggregation counters, gauges and histograms.

var (
	// Compute budget
	BudgetAvailableUnits = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "holdings",
		Subsystem: "budget",
		Name:      "available_units",
		Help:      "Compute units currently available in the shared budget",
	})

	BudgetQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "holdings",
		Subsystem: "budget",
		Name:      "queue_depth",
		Help:      "Number of callers waiting for compute units",
	})

	BudgetWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "holdings",
		Subsystem: "budget",
		Name:      "wait_duration_seconds",
		Help:      "Time spent queued before a compute-unit grant",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	BudgetUnitsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "budget",
		Name:      "units_granted_total",
		Help:      "Total compute units granted",
	})

	// Provider calls
	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "provider",
		Name:      "calls_total",
		Help:      "Total provider calls by endpoint and status class",
	}, []string{"provider", "endpoint", "status"})

	ProviderCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "holdings",
		Subsystem: "provider",
		Name:      "call_duration_seconds",
		Help:      "Provider call duration excluding budget wait",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider", "endpoint"})

	ProviderRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "provider",
		Name:      "rate_limit_waits_total",
		Help:      "Total times provider calls waited for the request limiter",
	}, []string{"provider"})

	ProviderCircuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "holdings",
		Subsystem: "provider",
		Name:      "circuit_state",
		Help:      "Circuit breaker state per provider (0=closed, 1=open, 2=half-open)",
	}, []string{"provider"})

	// Aggregation pipeline
	PipelinePagesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "pipeline",
		Name:      "pages_served_total",
		Help:      "Total holdings pages served by source (cached, live)",
	}, []string{"source"})

	PipelineProviderPages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "pipeline",
		Name:      "provider_pages_total",
		Help:      "Total provider pages consumed by the fan-out",
	}, []string{"chain"})

	// Reconciliation
	ReconcileWalletsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "reconciliation",
		Name:      "wallets_total",
		Help:      "Total wallets reconciled by outcome",
	}, []string{"status"})

	ReconcileTokenChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "reconciliation",
		Name:      "token_changes_total",
		Help:      "Total token rows created, touched or deleted",
	}, []string{"op"})

	ReconcileCollectionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "reconciliation",
		Name:      "collections_created_total",
		Help:      "Total collections created lazily by reconciliation",
	})

	ReconcileSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "holdings",
		Subsystem: "reconciliation",
		Name:      "sweep_duration_seconds",
		Help:      "Full-sweep duration",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
	})

	// Collection lookup cache
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Collection lookup cache results by tier (l1, l2) and result (hit, miss)",
	}, []string{"tier", "result"})

	// Scheduler
	SchedulerJobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "scheduler",
		Name:      "job_runs_total",
		Help:      "Total scheduled job runs by outcome (ok, error, skipped)",
	}, []string{"job", "status"})

	// Alerts
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "holdings",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Total alerts dispatched by type",
	}, []string{"type"})

	// Postgres pool
	DBPoolOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "holdings",
		Subsystem: "postgres",
		Name:      "db_pool_open",
		Help:      "Current number of open PostgreSQL connections in the pool",
	})

	DBPoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "holdings",
		Subsystem: "postgres",
		Name:      "db_pool_in_use",
		Help:      "Current number of in-use PostgreSQL connections in the pool",
	})

	DBPoolWaitCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "holdings",
		Subsystem: "postgres",
		Name:      "db_pool_wait_count",
		Help:      "Cumulative count of waits for PostgreSQL connections from pool",
	})
)
