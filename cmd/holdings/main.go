package main

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/admin"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/alert"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/cache"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/evm"
	evmrpc "github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/evm/rpc"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/gateway"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/klaytn"
	klaytnrpc "github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/klaytn/rpc"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/ratelimit"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/solana"
	solrpc "github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/solana/rpc"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/circuitbreaker"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/config"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline/cursor"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/reconciliation"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/scheduler"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store/memory"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store/postgres"
	redispkg "github.com/hmp-dev/HideMePleaseBE-sub000/internal/store/redis"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/tracing"
)

const (
	serviceName          = "holdings-aggregator"
	shutdownTimeout      = 5 * time.Second
	weightRefreshTimeout = 10 * time.Second
	collectionRefPrefix  = "holdings:solana:collection-ref"
)

// storage bundles the repositories of the configured backend.
type storage struct {
	wallets  store.WalletDirectory
	linker   store.WalletLinker
	holdings store.HoldingsStore
	pg       *postgres.DB // nil for the memory backend
}

func (s *storage) Close() error {
	if s.pg == nil {
		return nil
	}
	return s.pg.Close()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Storage.Backend == config.StorageBackendMemory {
		logger.Warn("using in-memory storage, holdings are lost on restart")
		mem := memory.New()
		return &storage{wallets: mem, linker: mem, holdings: mem}, nil
	}

	db, err := postgres.New(ctx, postgres.Config{
		URL:                cfg.DB.URL,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetime:    cfg.DB.ConnMaxLifetime,
		StatementTimeoutMS: cfg.DB.StatementTimeoutMS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.DB.MigrateOnStartup {
		if err := db.RunMigrations(ctx, cfg.DB.MigrationsDir, logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	logger.Info("connected to database", "url", maskCredentials(cfg.DB.URL))

	wallets := postgres.NewWalletRepo(db)
	return &storage{
		wallets:  wallets,
		linker:   wallets,
		holdings: postgres.NewHoldingsRepo(db),
		pg:       db,
	}, nil
}

// providers carries the shared pieces every provider gateway draws from.
type providers struct {
	budget  *ratelimit.Budget
	weights *ratelimit.WeightTable
	// redis is the optional L2 for Solana collection lookups.
	redis *goredis.Client
}

func breakerConfig(cfg *config.Config) circuitbreaker.Config {
	return circuitbreaker.Config{
		FailureThreshold: cfg.Provider.BreakerFailures,
		OpenTimeout:      cfg.Provider.BreakerOpenAfter,
	}
}

// pacerBurst allows one second worth of requests at once.
func pacerBurst(rps float64) int {
	return max(1, int(math.Ceil(rps)))
}

func pacedGateway(provider model.Provider, rps float64, cfg *config.Config, logger *slog.Logger) *gateway.Gateway {
	return gateway.New(provider, logger,
		gateway.WithPacer(ratelimit.NewLimiter(rps, pacerBurst(rps), string(provider))),
		gateway.WithBreaker(gateway.NewBreaker(provider, breakerConfig(cfg), logger)),
	)
}

// buildRouter registers an adapter for every enabled chain. Chains are
// served by Moralis (EVM), DAS plus the grouping lookup (Solana) and KAS
// (Klaytn).
func buildRouter(cfg *config.Config, p providers, moralis evmrpc.RPCClient, logger *slog.Logger) *chain.Router {
	router := chain.NewRouter()

	if evmChains := cfg.MoralisChains(); len(evmChains) > 0 {
		gw := gateway.New(model.ProviderMoralis, logger,
			gateway.WithBudget(p.budget, p.weights),
			gateway.WithBreaker(gateway.NewBreaker(model.ProviderMoralis, breakerConfig(cfg), logger)),
		)
		adapter := evm.NewAdapter(moralis, gw, evm.Config{SkipSpam: cfg.Moralis.SkipSpam}, logger)
		router.Register(adapter, evmChains...)
	}

	if cfg.HasChain(model.ChainSolana) {
		das := solrpc.NewClient(cfg.DAS.RPCURL, cfg.DAS.APIKey, cfg.Provider.Timeout, logger)
		var (
			grouping solrpc.GroupingClient
			lookupGW *gateway.Gateway
		)
		if cfg.Grouping.BaseURL != "" {
			grouping = solrpc.NewGroupingLookup(cfg.Grouping.BaseURL, cfg.Provider.Timeout, logger)
			lookupGW = pacedGateway(model.ProviderGrouping, cfg.Grouping.RPS, cfg, logger)
		} else {
			logger.Warn("grouping lookup disabled, ungrouped solana assets stay standalone")
		}

		var remote cache.Remote[solana.CollectionRef]
		if p.redis != nil {
			remote = redispkg.NewJSONCache[solana.CollectionRef](p.redis, collectionRefPrefix)
		}
		refs := cache.NewTiered(
			cache.NewLRU[string, solana.CollectionRef](cfg.Grouping.CacheSize, cfg.Grouping.CacheTTL),
			remote, cfg.Redis.LookupTTL, logger.With("component", "collection_ref_cache"),
		)

		adapter := solana.NewAdapter(
			das, pacedGateway(model.ProviderDAS, cfg.DAS.RPS, cfg, logger),
			grouping, lookupGW, refs,
			solana.Config{PageLimit: cfg.DAS.PageLimit},
			logger,
		)
		router.Register(adapter, model.ChainSolana)
	}

	if cfg.HasChain(model.ChainKlaytn) {
		client := klaytnrpc.NewClient(cfg.KAS.BaseURL, cfg.KAS.AccessKeyID, cfg.KAS.SecretAccessKey, cfg.Provider.Timeout, logger)
		adapter := klaytn.NewAdapter(client, pacedGateway(model.ProviderKAS, cfg.KAS.RPS, cfg, logger),
			klaytn.Config{PageLimit: cfg.KAS.PageLimit}, logger)
		router.Register(adapter, model.ChainKlaytn)
	}

	return router
}

// initWeights seeds the cost table, refreshes it from the provider when
// enabled, then applies operator overrides. A failed refresh keeps the
// built-in costs.
func initWeights(ctx context.Context, cfg *config.Config, src ratelimit.WeightSource, logger *slog.Logger) *ratelimit.WeightTable {
	table := ratelimit.NewWeightTable(evm.DefaultWeights, cfg.Budget.DefaultCost)

	if cfg.Budget.RefreshWeights && src != nil {
		refreshCtx, cancel := context.WithTimeout(ctx, weightRefreshTimeout)
		n, err := table.Refresh(refreshCtx, src)
		cancel()
		if err != nil {
			logger.Warn("endpoint weight refresh failed, using built-in costs", "error", err)
		} else {
			logger.Info("endpoint weights refreshed", "updated", n)
		}
	}

	if len(cfg.Budget.Weights) > 0 {
		n := table.Update(cfg.Budget.Weights)
		logger.Info("endpoint weight overrides applied", "updated", n)
	}
	return table
}

func buildAlerter(cfg *config.Config, logger *slog.Logger) alert.Alerter {
	var alerters []alert.Alerter
	if cfg.Alert.SlackWebhookURL != "" {
		alerters = append(alerters, alert.NewSlackAlerter(cfg.Alert.SlackWebhookURL))
	}
	if cfg.Alert.WebhookURL != "" {
		alerters = append(alerters, alert.NewWebhookAlerter(cfg.Alert.WebhookURL))
	}
	if len(alerters) == 0 {
		return &alert.NoopAlerter{}
	}
	return alert.NewMultiAlerter(cfg.Alert.Cooldown, logger, alerters...)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	logger.Info("starting holdings aggregator",
		"storage", cfg.Storage.Backend,
		"chains", cfg.Holdings.Chains,
		"budget_capacity", cfg.Budget.Capacity,
		"reconcile_max_pages", cfg.Reconcile.MaxPages,
		"reconcile_workers", cfg.Reconcile.Workers,
		"sweep_enabled", cfg.Reconcile.SweepEnabled,
	)

	shutdownTracing, err := tracing.Init(context.Background(), tracing.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()
	if cfg.Tracing.Endpoint != "" {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var redisClient *goredis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redispkg.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err, "redis_url", maskCredentials(cfg.Redis.URL))
			os.Exit(1)
		}
		defer redisClient.Close()
		logger.Info("redis collection cache enabled")
	}

	moralis := evmrpc.NewClient(cfg.Moralis.BaseURL, cfg.Moralis.APIKey, cfg.Provider.Timeout, logger)
	var weightSource ratelimit.WeightSource
	if len(cfg.MoralisChains()) > 0 {
		weightSource = moralis
	}

	budget := ratelimit.NewBudget(ratelimit.BudgetConfig{
		Capacity:          cfg.Budget.Capacity,
		ReplenishInterval: cfg.Budget.ReplenishInterval,
		ReleaseDelay:      cfg.Budget.ReleaseDelay,
	}, logger)

	router := buildRouter(cfg, providers{
		budget:  budget,
		weights: initWeights(ctx, cfg, weightSource, logger),
		redis:   redisClient,
	}, moralis, logger)

	aggregator, err := pipeline.NewAggregator(pipeline.Config{
		Chains:          cfg.Holdings.Chains,
		DefaultPageSize: cfg.Holdings.DefaultPageSize,
		MaxPageSize:     cfg.Holdings.MaxPageSize,
	}, st.wallets, st.holdings, router, cursor.NewCodec([]byte(cfg.Holdings.CursorSecret)), logger)
	if err != nil {
		logger.Error("failed to build aggregator", "error", err)
		os.Exit(1)
	}

	reconciler := reconciliation.NewService(aggregator, st.wallets, st.holdings, buildAlerter(cfg, logger), reconciliation.Config{
		MaxPages:      cfg.Reconcile.MaxPages,
		Workers:       cfg.Reconcile.Workers,
		SweepInterval: cfg.Reconcile.SweepInterval,
	}, logger)

	sched := scheduler.New(logger)
	if cfg.Reconcile.SweepEnabled {
		if err := sched.Register(reconciler.SweepJob()); err != nil {
			logger.Error("failed to register sweep job", "error", err)
			os.Exit(1)
		}
	}

	adminServer := admin.NewServer(aggregator, logger,
		admin.WithReconciler(reconciler),
		admin.WithWalletLinker(st.linker),
		admin.WithJobTrigger(sched, reconciliation.SweepJobName),
		admin.WithBudget(budget),
		admin.WithHealthProvider(aggregator.Health()),
	)
	adminLimiter := admin.NewRateLimitMiddleware(logger)
	defer adminLimiter.Stop()
	var adminHandler http.Handler = admin.AuditMiddleware(logger, adminLimiter.Wrap(adminServer.Handler()))
	if cfg.Server.AdminUser != "" {
		adminHandler = basicAuthMiddleware("admin", cfg.Server.AdminUser, cfg.Server.AdminPassword, adminHandler)
	}

	var readiness *sql.DB
	if st.pg != nil {
		readiness = st.pg.DB
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		budget.Start(gCtx)
		return nil
	})

	g.Go(func() error {
		sched.Start(gCtx)
		return nil
	})

	if st.pg != nil && cfg.DB.PoolStatsInterval > 0 {
		g.Go(func() error {
			st.pg.StartPoolStatsPump(gCtx, cfg.DB.PoolStatsInterval)
			return nil
		})
	}

	g.Go(func() error {
		return runHTTPServer(gCtx, "health", cfg.Server.HealthPort, healthHandler(cfg, readiness, logger), logger)
	})

	g.Go(func() error {
		return runHTTPServer(gCtx, "admin", cfg.Server.AdminPort, adminHandler, logger)
	})

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("holdings aggregator exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("holdings aggregator shut down gracefully")
}

// healthChecker reports readiness. The memory backend has no database and
// is always ready.
type healthChecker struct {
	db *sql.DB
}

func (h *healthChecker) check(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

func healthHandler(cfg *config.Config, db *sql.DB, logger *slog.Logger) http.Handler {
	checker := &healthChecker{db: db}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := checker.check(r.Context()); err != nil {
			logger.Warn("readiness check failed", "error", err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	var metricsHandler http.Handler = promhttp.Handler()
	if cfg.Server.AdminUser != "" {
		metricsHandler = basicAuthMiddleware("metrics", cfg.Server.AdminUser, cfg.Server.AdminPassword, metricsHandler)
	}
	mux.Handle("/metrics", metricsHandler)
	return mux
}

func basicAuthMiddleware(realm, user, password string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), []byte(password)) != 1 {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm=%q`, realm))
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// maskCredentials hides the userinfo of a connection URL for logging.
func maskCredentials(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	masked := u.String()
	return u.Scheme + "://***@" + masked[len(u.Scheme)+len("://"):]
}

func runHTTPServer(ctx context.Context, name string, port int, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server shutdown error", "server", name, "error", err)
		}
	}()

	logger.Info("server started", "server", name, "port", port)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
