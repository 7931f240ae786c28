package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars clears all MasterScheduler environment variables.
func clearEnvVars() {
	envVars := []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
		"DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH",
		"REDIS_URL", "RABBITMQ_URL",
		"UPSTREAM_BASE_URL", "UPSTREAM_TOKEN", "UPSTREAM_TIMEOUT", "UPSTREAM_CACHE_TTL",
		"UPSTREAM_BREAKER_ENABLED", "UPSTREAM_BREAKER_THRESHOLD", "UPSTREAM_BREAKER_TIMEOUT",
		"SYNC_INTERVAL", "SYNC_CONCURRENCY", "SYNC_ON_START",
		"HTTP_ADDR", "HTTP_SHUTDOWN_TIMEOUT",
		"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
		"OUTBOX_RETENTION_DAYS", "OUTBOX_CLEANUP_INTERVAL",
		"OUTBOX_PROCESSOR_ENABLED", "WORKER_HEALTH_ADDR",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Application defaults
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	// The SQLite mirror is used when no DATABASE_URL is set
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.True(t, cfg.IsSQLite())
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.RabbitMQURL)

	// Upstream defaults
	assert.Equal(t, "http://localhost:5000", cfg.UpstreamBaseURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 30*time.Second, cfg.UpstreamCacheTTL)
	assert.True(t, cfg.UpstreamBreakerEnabled)
	assert.Equal(t, 5, cfg.UpstreamBreakerThreshold)

	// Sync defaults
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 4, cfg.SyncConcurrency)
	assert.True(t, cfg.SyncOnStart)

	// Outbox defaults
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)
	assert.Equal(t, 14, cfg.OutboxRetentionDays)
	assert.Equal(t, 14*24*time.Hour, cfg.OutboxRetention())
	assert.Equal(t, time.Minute, cfg.OutboxStatsInterval)
	assert.True(t, cfg.OutboxProcessorEnabled)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, "0.0.0.0:8081", cfg.WorkerHealthAddr)
}

func TestLoad_WithCustomEnvVars(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("UPSTREAM_BASE_URL", "https://scheduler.example.com")
	t.Setenv("UPSTREAM_TOKEN", "secret")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("SYNC_INTERVAL", "90s")
	t.Setenv("SYNC_CONCURRENCY", "8")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, "https://scheduler.example.com", cfg.UpstreamBaseURL)
	assert.Equal(t, "secret", cfg.UpstreamToken)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 90*time.Second, cfg.SyncInterval)
	assert.Equal(t, 8, cfg.SyncConcurrency)
	assert.False(t, cfg.OutboxProcessorEnabled)
}

func TestLoad_WithDatabaseURL(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	t.Setenv("DATABASE_URL", "postgres://scheduler:pw@db:5432/mirror?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.True(t, cfg.IsPostgres())
	assert.False(t, cfg.IsSQLite())
}

func TestLoad_SQLiteURL(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	t.Setenv("DATABASE_URL", "sqlite:///var/lib/masterscheduler/mirror.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "unknown driver",
			env:  map[string]string{"DATABASE_DRIVER": "mysql"},
			want: "DATABASE_DRIVER",
		},
		{
			name: "postgres without url",
			env:  map[string]string{"DATABASE_DRIVER": "postgres"},
			want: "DATABASE_URL",
		},
		{
			name: "relative upstream url",
			env:  map[string]string{"UPSTREAM_BASE_URL": "scheduler.local"},
			want: "UPSTREAM_BASE_URL",
		},
		{
			name: "zero concurrency",
			env:  map[string]string{"SYNC_CONCURRENCY": "0"},
			want: "SYNC_CONCURRENCY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			defer clearEnvVars()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		appEnv   string
		expected bool
	}{
		{"development", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.appEnv, func(t *testing.T) {
			cfg := &Config{AppEnv: tt.appEnv}
			assert.Equal(t, tt.expected, cfg.IsDevelopment())
			assert.Equal(t, tt.appEnv == "production", cfg.IsProduction())
		})
	}
}

func TestGetIntEnv(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getIntEnv("TEST_INT", 0))

	t.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 7, getIntEnv("TEST_INT", 7))

	assert.Equal(t, 3, getIntEnv("TEST_INT_MISSING", 3))
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("TEST_DURATION", "1m30s")
	assert.Equal(t, 90*time.Second, getDurationEnv("TEST_DURATION", 0))

	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Second, getDurationEnv("TEST_DURATION", time.Second))
}

func TestGetBoolEnv(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getBoolEnv("TEST_BOOL", false))

	t.Setenv("TEST_BOOL", "0")
	assert.False(t, getBoolEnv("TEST_BOOL", true))

	t.Setenv("TEST_BOOL", "maybe")
	assert.True(t, getBoolEnv("TEST_BOOL", true))
}
