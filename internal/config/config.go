package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration. It is constructed once in main
// and passed into each component constructor; core logic never reads the
// environment directly.
type Config struct {
	// API-Football (RapidAPI)
	APIFootballKey     string        `envconfig:"APIFOOTBALL_KEY" required:"true"`
	APIFootballHost    string        `envconfig:"APIFOOTBALL_HOST" default:"v3.football.api-sports.io"`
	APIFootballBaseURL string        `envconfig:"APIFOOTBALL_BASE_URL" default:"https://v3.football.api-sports.io"`
	APIFootballTimeout time.Duration `envconfig:"APIFOOTBALL_TIMEOUT" default:"10s"`
	APIMaxRetries      int           `envconfig:"API_MAX_RETRIES" default:"5"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"football"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"football_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (optional metadata cache)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Snapshot directories
	SnapshotDir       string `envconfig:"SNAPSHOT_DIR" default:"data/cleaned"`
	SnapshotUpdateDir string `envconfig:"SNAPSHOT_UPDATE_DIR" default:"data/updates"`

	// Update pipeline
	UpdateBatchSize  int `envconfig:"UPDATE_BATCH_SIZE" default:"100"`
	FetchIDBatchSize int `envconfig:"FETCH_ID_BATCH_SIZE" default:"20"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler (worker only)
	EnableScheduler    bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	FullExtractionCron string        `envconfig:"FULL_EXTRACTION_CRON" default:"0 3 * * *"`
	UpdateInterval     time.Duration `envconfig:"UPDATE_INTERVAL" default:"30m"`

	// Caching TTL
	CacheTTLMetadata time.Duration `envconfig:"CACHE_TTL_METADATA" default:"24h"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables.
// It first attempts to load from a .env file if one is present.
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
func (c *Config) Validate() error {
	if c.APIFootballKey == "" {
		return fmt.Errorf("APIFOOTBALL_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.UpdateBatchSize < 1 {
		return fmt.Errorf("UPDATE_BATCH_SIZE must be positive, got %d", c.UpdateBatchSize)
	}

	if c.FetchIDBatchSize < 1 {
		return fmt.Errorf("FETCH_ID_BATCH_SIZE must be positive, got %d", c.FetchIDBatchSize)
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string.
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

// RedisAddr returns the Redis address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error.
// Use this in main() where we want to fail fast.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
