package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database. An empty DatabaseURL selects the SQLite mirror at SQLitePath.
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string

	// Redis. Empty disables the upstream response cache.
	RedisURL string

	// RabbitMQ. Empty publishes sync events in process only.
	RabbitMQURL string

	// Upstream record service
	UpstreamBaseURL          string
	UpstreamToken            string
	UpstreamTimeout          time.Duration
	UpstreamCacheTTL         time.Duration
	UpstreamBreakerEnabled   bool
	UpstreamBreakerThreshold int
	UpstreamBreakerTimeout   time.Duration

	// Sync
	SyncInterval    time.Duration
	SyncConcurrency int
	SyncOnStart     bool

	// HTTP API
	HTTPAddr            string
	HTTPShutdownTimeout time.Duration

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool
	OutboxStatsInterval    time.Duration

	// Worker
	WorkerHealthAddr string
}

// Load loads configuration from environment variables, reading a .env file
// in the working directory first when one exists.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DatabaseURL:    databaseURL,
		DatabaseDriver: getEnv("DATABASE_DRIVER", defaultDriver(databaseURL)),
		SQLitePath:     getEnv("SQLITE_PATH", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		UpstreamBaseURL:          getEnv("UPSTREAM_BASE_URL", "http://localhost:5000"),
		UpstreamToken:            getEnv("UPSTREAM_TOKEN", ""),
		UpstreamTimeout:          getDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamCacheTTL:         getDurationEnv("UPSTREAM_CACHE_TTL", 30*time.Second),
		UpstreamBreakerEnabled:   getBoolEnv("UPSTREAM_BREAKER_ENABLED", true),
		UpstreamBreakerThreshold: getIntEnv("UPSTREAM_BREAKER_THRESHOLD", 5),
		UpstreamBreakerTimeout:   getDurationEnv("UPSTREAM_BREAKER_TIMEOUT", 30*time.Second),

		SyncInterval:    getDurationEnv("SYNC_INTERVAL", 5*time.Minute),
		SyncConcurrency: getIntEnv("SYNC_CONCURRENCY", 4),
		SyncOnStart:     getBoolEnv("SYNC_ON_START", true),

		HTTPAddr:            getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		HTTPShutdownTimeout: getDurationEnv("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", time.Minute),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver))
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
	}
	if u, err := url.Parse(c.UpstreamBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("UPSTREAM_BASE_URL must be an absolute URL, got %q", c.UpstreamBaseURL))
	}
	if c.SyncInterval <= 0 {
		errs = append(errs, errors.New("SYNC_INTERVAL must be positive"))
	}
	if c.SyncConcurrency < 1 {
		errs = append(errs, errors.New("SYNC_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// IsSQLite returns true if the mirror is stored in SQLite.
func (c *Config) IsSQLite() bool {
	return c.DatabaseDriver == "sqlite"
}

// IsPostgres returns true if the mirror is stored in PostgreSQL.
func (c *Config) IsPostgres() bool {
	return c.DatabaseDriver == "postgres"
}

// OutboxRetention returns the retention period for published messages.
func (c *Config) OutboxRetention() time.Duration {
	return time.Duration(c.OutboxRetentionDays) * 24 * time.Hour
}

func defaultDriver(databaseURL string) string {
	if databaseURL == "" {
		return "sqlite"
	}
	if u, err := url.Parse(databaseURL); err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql") {
		return "postgres"
	}
	return "sqlite"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
