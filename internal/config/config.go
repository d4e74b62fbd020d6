package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// ESPN (schedule + standings)
	ESPNBaseURL      string        `envconfig:"ESPN_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/football/nfl"`
	ESPNStandingsURL string        `envconfig:"ESPN_STANDINGS_URL" default:"https://site.api.espn.com/apis/v2/sports/football/nfl/standings"`
	ESPNTimeout      time.Duration `envconfig:"ESPN_TIMEOUT" default:"15s"`

	// The Odds API
	OddsAPIKey     string        `envconfig:"ODDS_API_KEY" default:""`
	OddsAPIBaseURL string        `envconfig:"ODDS_API_BASE_URL" default:"https://api.the-odds-api.com/v4"`
	OddsAPITimeout time.Duration `envconfig:"ODDS_API_TIMEOUT" default:"10s"`

	// Reasoning service (OpenAI-compatible chat completions)
	ReasoningAPIKey  string        `envconfig:"REASONING_API_KEY" default:""`
	ReasoningBaseURL string        `envconfig:"REASONING_BASE_URL" default:"https://api.openai.com/v1"`
	ReasoningModel   string        `envconfig:"REASONING_MODEL" default:"gpt-4o-mini"`
	ReasoningTimeout time.Duration `envconfig:"PREDICTION_TIMEOUT" default:"30s"`

	// Reddit (fan sentiment for enriched predictions)
	RedditBaseURL    string   `envconfig:"REDDIT_BASE_URL" default:"https://www.reddit.com"`
	RedditSubreddits []string `envconfig:"REDDIT_SUBREDDITS" default:"nfl,NFLbets"`

	// Upstream transport
	UpstreamInsecureSkipVerify bool `envconfig:"UPSTREAM_INSECURE_SKIP_VERIFY" default:"false"`
	UpstreamMaxRetries         int  `envconfig:"UPSTREAM_MAX_RETRIES" default:"2"`
	UpstreamConcurrency        int  `envconfig:"UPSTREAM_CONCURRENCY" default:"8"`

	// Storage
	StoreBackend     string `envconfig:"STORE_BACKEND" default:"memory"`
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"nfl_dashboard"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"nfl_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis view cache (optional)
	RedisEnabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTLView  time.Duration `envconfig:"CACHE_TTL_VIEW" default:"5m"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`

	// CORS origins allowed on the HTTP API
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// Pipeline
	OddsStageTimeout       time.Duration `envconfig:"ODDS_STAGE_TIMEOUT" default:"20s"`
	PredictionStageTimeout time.Duration `envconfig:"PREDICTION_STAGE_TIMEOUT" default:"90s"`
	AdviceBatchSize        int           `envconfig:"ADVICE_BATCH_SIZE" default:"3"`
	EnrichedPredictions    bool          `envconfig:"ENABLE_ENRICHED_PREDICTIONS" default:"false"`
	SeedSyntheticPerWeek   bool          `envconfig:"SEED_SYNTHETIC_PER_WEEK" default:"false"`

	// Scheduler
	EnableScheduler    bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool          `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	NightlyRefreshCron string        `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 4 * * *"`
	PollInterval       time.Duration `envconfig:"POLL_INTERVAL" default:"15m"`
	CurrentSeason      int           `envconfig:"CURRENT_SEASON" default:"0"`
	CurrentWeek        int           `envconfig:"CURRENT_WEEK" default:"0"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
// Upstream credentials are optional: a missing key selects the synthetic path.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "memory":
	case "postgres":
		if c.DatabasePassword == "" {
			return fmt.Errorf("DATABASE_PASSWORD is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.AdviceBatchSize < 1 {
		return fmt.Errorf("ADVICE_BATCH_SIZE must be at least 1")
	}

	if c.CurrentWeek < 0 || c.CurrentWeek > 18 {
		return fmt.Errorf("CURRENT_WEEK must be between 1 and 18")
	}

	if c.OddsStageTimeout <= 0 || c.PredictionStageTimeout <= 0 {
		return fmt.Errorf("stage timeouts must be positive")
	}

	if c.UpstreamInsecureSkipVerify && c.IsProduction() {
		return fmt.Errorf("UPSTREAM_INSECURE_SKIP_VERIFY is not allowed in production")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits on error
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
