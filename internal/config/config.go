package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"

	minCursorSecretBytes = 32
)

type Config struct {
	Storage   StorageConfig
	DB        DBConfig
	Redis     RedisConfig
	Budget    BudgetConfig
	Moralis   MoralisConfig
	DAS       DASConfig
	Grouping  GroupingConfig
	KAS       KASConfig
	Provider  ProviderConfig
	Holdings  HoldingsConfig
	Reconcile ReconcileConfig
	Alert     AlertConfig
	Tracing   TracingConfig
	Server    ServerConfig
	Log       LogConfig
}

type StorageConfig struct {
	Backend string
}

type DBConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	StatementTimeoutMS int
	PoolStatsInterval  time.Duration
	MigrationsDir      string
	MigrateOnStartup   bool
}

// RedisConfig configures the L2 collection lookup cache. An empty URL
// disables it.
type RedisConfig struct {
	URL       string
	LookupTTL time.Duration
}

type BudgetConfig struct {
	Capacity          int
	ReplenishInterval time.Duration
	ReleaseDelay      time.Duration
	// Weights override the built-in per-endpoint costs.
	Weights        map[string]int
	DefaultCost    int
	RefreshWeights bool
}

type MoralisConfig struct {
	BaseURL  string
	APIKey   string
	SkipSpam bool
}

type DASConfig struct {
	RPCURL    string
	APIKey    string
	PageLimit int
	RPS       float64
}

type GroupingConfig struct {
	BaseURL   string
	RPS       float64
	CacheSize int
	CacheTTL  time.Duration
}

type KASConfig struct {
	BaseURL         string
	AccessKeyID     string
	SecretAccessKey string
	PageLimit       int
	RPS             float64
}

// ProviderConfig holds settings shared by every provider client.
type ProviderConfig struct {
	Timeout          time.Duration
	BreakerFailures  int
	BreakerOpenAfter time.Duration
}

type HoldingsConfig struct {
	Chains          []model.Chain
	DefaultPageSize int
	MaxPageSize     int
	CursorSecret    string
}

type ReconcileConfig struct {
	MaxPages      int
	Workers       int
	SweepInterval time.Duration
	SweepEnabled  bool
}

type AlertConfig struct {
	SlackWebhookURL string
	WebhookURL      string
	Cooldown        time.Duration
}

type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// ServerConfig sets the listener ports. When AdminUser is set the admin API
// and /metrics require HTTP basic auth.
type ServerConfig struct {
	HealthPort    int
	AdminPort     int
	AdminUser     string
	AdminPassword string
}

type LogConfig struct {
	Level string
}

// fileOverlay is the optional YAML file named by HOLDINGS_CONFIG_FILE.
type fileOverlay struct {
	Chains  []string       `yaml:"chains"`
	Weights map[string]int `yaml:"weights"`
}

// Load reads .env (if present), then the YAML overlay (if configured), then
// the environment. Environment variables win over the overlay.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	overlay, err := loadOverlay(getEnv("HOLDINGS_CONFIG_FILE", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendPostgres)),
		},
		DB: DBConfig{
			URL:                getEnv("DB_URL", ""),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:    time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
			StatementTimeoutMS: getEnvInt("DB_STATEMENT_TIMEOUT_MS", 30000),
			PoolStatsInterval:  getEnvDuration("DB_POOL_STATS_INTERVAL", 15*time.Second),
			MigrationsDir:      getEnv("DB_MIGRATIONS_DIR", "internal/store/postgres/migrations"),
			MigrateOnStartup:   getEnvBool("DB_MIGRATE_ON_STARTUP", true),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			LookupTTL: getEnvDuration("REDIS_LOOKUP_TTL", 7*24*time.Hour),
		},
		Budget: BudgetConfig{
			Capacity:          getEnvInt("BUDGET_CAPACITY", 150),
			ReplenishInterval: getEnvDuration("BUDGET_REPLENISH_INTERVAL", time.Second),
			ReleaseDelay:      getEnvDuration("BUDGET_RELEASE_DELAY", time.Second),
			Weights:           overlay.Weights,
			DefaultCost:       getEnvInt("BUDGET_DEFAULT_COST", 5),
			RefreshWeights:    getEnvBool("BUDGET_REFRESH_WEIGHTS", true),
		},
		Moralis: MoralisConfig{
			BaseURL:  getEnv("MORALIS_BASE_URL", ""),
			APIKey:   getEnv("MORALIS_API_KEY", ""),
			SkipSpam: getEnvBool("MORALIS_SKIP_SPAM", false),
		},
		DAS: DASConfig{
			RPCURL:    getEnv("DAS_RPC_URL", ""),
			APIKey:    getEnv("DAS_API_KEY", ""),
			PageLimit: getEnvInt("DAS_PAGE_LIMIT", 100),
			RPS:       getEnvFloat("DAS_RPS", 10),
		},
		Grouping: GroupingConfig{
			BaseURL:   getEnv("GROUPING_BASE_URL", ""),
			RPS:       getEnvFloat("GROUPING_RPS", 5),
			CacheSize: getEnvInt("GROUPING_CACHE_SIZE", 10000),
			CacheTTL:  getEnvDuration("GROUPING_CACHE_TTL", 24*time.Hour),
		},
		KAS: KASConfig{
			BaseURL:         getEnv("KAS_BASE_URL", ""),
			AccessKeyID:     getEnv("KAS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("KAS_SECRET_ACCESS_KEY", ""),
			PageLimit:       getEnvInt("KAS_PAGE_LIMIT", 100),
			RPS:             getEnvFloat("KAS_RPS", 10),
		},
		Provider: ProviderConfig{
			Timeout:          getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second),
			BreakerFailures:  getEnvInt("PROVIDER_BREAKER_FAILURES", 5),
			BreakerOpenAfter: getEnvDuration("PROVIDER_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Holdings: HoldingsConfig{
			DefaultPageSize: getEnvInt("HOLDINGS_DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:     getEnvInt("HOLDINGS_MAX_PAGE_SIZE", 100),
			CursorSecret:    getEnv("CURSOR_SECRET", ""),
		},
		Reconcile: ReconcileConfig{
			MaxPages:      getEnvInt("RECONCILE_MAX_PAGES", 3),
			Workers:       getEnvInt("RECONCILE_WORKERS", 4),
			SweepInterval: getEnvDuration("RECONCILE_SWEEP_INTERVAL", 24*time.Hour),
			SweepEnabled:  getEnvBool("RECONCILE_SWEEP_ENABLED", true),
		},
		Alert: AlertConfig{
			SlackWebhookURL: getEnv("ALERT_SLACK_WEBHOOK_URL", ""),
			WebhookURL:      getEnv("ALERT_WEBHOOK_URL", ""),
			Cooldown:        getEnvDuration("ALERT_COOLDOWN", 30*time.Minute),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
		Server: ServerConfig{
			HealthPort:    getEnvInt("HEALTH_PORT", 8080),
			AdminPort:     getEnvInt("ADMIN_PORT", 8081),
			AdminUser:     getEnv("ADMIN_AUTH_USER", ""),
			AdminPassword: getEnv("ADMIN_AUTH_PASSWORD", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	chainNames := overlay.Chains
	if env := getEnvList("HOLDINGS_CHAINS"); len(env) > 0 {
		chainNames = env
	}
	if len(chainNames) == 0 {
		cfg.Holdings.Chains = append([]model.Chain(nil), model.AllChains...)
	} else {
		for _, name := range chainNames {
			c, err := model.ParseChain(name)
			if err != nil {
				return nil, fmt.Errorf("HOLDINGS_CHAINS: %w", err)
			}
			cfg.Holdings.Chains = append(cfg.Holdings.Chains, c)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadOverlay(path string) (fileOverlay, error) {
	var overlay fileOverlay
	if path == "" {
		return overlay, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return overlay, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return overlay, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return overlay, nil
}

// HasChain reports whether c is enabled.
func (c *Config) HasChain(target model.Chain) bool {
	for _, ch := range c.Holdings.Chains {
		if ch == target {
			return true
		}
	}
	return false
}

// MoralisChains returns the enabled chains served by the weighted provider.
func (c *Config) MoralisChains() []model.Chain {
	var out []model.Chain
	for _, ch := range c.Holdings.Chains {
		if ch.Family() == model.FamilyEVM && ch != model.ChainKlaytn {
			out = append(out, ch)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageBackendPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("DB_URL is required")
		}
	case StorageBackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q",
			StorageBackendPostgres, StorageBackendMemory, c.Storage.Backend)
	}

	seen := make(map[model.Chain]bool, len(c.Holdings.Chains))
	for _, ch := range c.Holdings.Chains {
		if seen[ch] {
			return fmt.Errorf("HOLDINGS_CHAINS lists %s twice", ch)
		}
		seen[ch] = true
	}
	if len(c.MoralisChains()) > 0 && c.Moralis.APIKey == "" {
		return fmt.Errorf("MORALIS_API_KEY is required when EVM chains are enabled")
	}
	if c.HasChain(model.ChainSolana) && c.DAS.RPCURL == "" {
		return fmt.Errorf("DAS_RPC_URL is required when solana is enabled")
	}
	if c.HasChain(model.ChainKlaytn) && (c.KAS.AccessKeyID == "" || c.KAS.SecretAccessKey == "") {
		return fmt.Errorf("KAS_ACCESS_KEY_ID and KAS_SECRET_ACCESS_KEY are required when klaytn is enabled")
	}

	if len(c.Holdings.CursorSecret) < minCursorSecretBytes {
		return fmt.Errorf("CURSOR_SECRET must be at least %d bytes", minCursorSecretBytes)
	}
	if c.Holdings.DefaultPageSize <= 0 || c.Holdings.MaxPageSize < c.Holdings.DefaultPageSize {
		return fmt.Errorf("HOLDINGS_DEFAULT_PAGE_SIZE must be in [1, HOLDINGS_MAX_PAGE_SIZE]")
	}
	if c.Budget.Capacity <= 0 {
		return fmt.Errorf("BUDGET_CAPACITY must be positive")
	}
	if c.Reconcile.MaxPages <= 0 {
		return fmt.Errorf("RECONCILE_MAX_PAGES must be positive")
	}
	if c.Reconcile.Workers <= 0 {
		return fmt.Errorf("RECONCILE_WORKERS must be positive")
	}
	if c.Server.AdminUser != "" && c.Server.AdminPassword == "" {
		return fmt.Errorf("ADMIN_AUTH_PASSWORD is required when ADMIN_AUTH_USER is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("1500ms", "24h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
