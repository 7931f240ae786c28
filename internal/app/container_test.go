package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/config"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/observability"
)

var upstreamRecords = map[string]string{
	"/api/projects": `[{"id":1,"projectNumber":"P-1","name":"Transit bus","status":"active",
		"startDate":"2024-01-01","estimatedCompletionDate":"2024-12-31",
		"fabricationPercent":50,"paintPercent":50,"showPaintPhase":false}]`,
	"/api/projects/1":                    `{"id":1,"projectNumber":"P-1","name":"Transit bus","status":"active"}`,
	"/api/projects/1/tasks":              `[{"id":11,"name":"Frame","isCompleted":true},{"id":12,"name":"Wiring","isCompleted":false}]`,
	"/api/projects/1/milestones":         `[]`,
	"/api/projects/1/billing-milestones": `[]`,
	"/api/manufacturing-schedules":       `[{"id":41,"projectId":1,"bayId":3,"bayName":"Bay 3","startDate":"2024-02-01","endDate":"2024-03-01","status":"booked"}]`,
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := upstreamRecords[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, upstreamURL string) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:                 "test",
		DatabaseDriver:         "sqlite",
		SQLitePath:             filepath.Join(t.TempDir(), "mirror.db"),
		UpstreamBaseURL:        upstreamURL,
		UpstreamTimeout:        5 * time.Second,
		UpstreamBreakerEnabled: true,
		SyncInterval:           time.Minute,
		SyncConcurrency:        2,
		OutboxPollInterval:     10 * time.Millisecond,
		OutboxBatchSize:        10,
		OutboxMaxRetries:       3,
	}
}

func newTestContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	c, err := NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewContainer_SQLite(t *testing.T) {
	c := newTestContainer(t, testConfig(t, "http://localhost:5000"))

	assert.Equal(t, database.DriverSQLite, c.DBDriver)
	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.EventConsumer)
	assert.Same(t, c.EventBus, c.EventPublisher)

	assert.NotNil(t, c.ProjectRepo)
	assert.NotNil(t, c.TaskRepo)
	assert.NotNil(t, c.MilestoneRepo)
	assert.NotNil(t, c.BillingRepo)
	assert.NotNil(t, c.ScheduleRepo)
	assert.NotNil(t, c.OutboxRepo)
	assert.NotNil(t, c.Syncer)
	assert.NotNil(t, c.ProjectMetricsHandler)
	assert.NotNil(t, c.ScheduleViewHandler)

	health := c.Health.GetOverallHealth(context.Background())
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Checks, "database")
}

func TestNewContainer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{"unsupported driver", func(cfg *config.Config) { cfg.DatabaseDriver = "oracle" }},
		{"relative upstream URL", func(cfg *config.Config) { cfg.UpstreamBaseURL = "localhost" }},
		{"unreachable redis outside development", func(cfg *config.Config) { cfg.RedisURL = "redis://127.0.0.1:1/0" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, "http://localhost:5000")
			tt.mutate(cfg)
			c, err := NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(&strings.Builder{}, nil)))
			require.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestNewContainer_DevelopmentSkipsRedis(t *testing.T) {
	cfg := testConfig(t, "http://localhost:5000")
	cfg.AppEnv = "development"
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	c := newTestContainer(t, cfg)
	assert.Nil(t, c.RedisClient)
}

func TestContainer_SyncPublishAndServe(t *testing.T) {
	upstream := newUpstream(t)
	c := newTestContainer(t, testConfig(t, upstream.URL))
	ctx := context.Background()

	report, err := c.Syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 1, report.Schedules)
	assert.Empty(t, report.Failures)

	pending, err := c.OutboxRepo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)

	// Draining the outbox delivers the sync events to the status tracker.
	require.NoError(t, c.OutboxProcessor.ProcessOnce(ctx))
	status := c.SyncStatus.Snapshot()
	assert.Equal(t, 1, status.ProjectsSynced)
	assert.Equal(t, int64(1), status.LastProjectID)
	assert.Equal(t, 1, status.ScheduleCount)

	server := c.NewAPIServer()
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/1/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var metrics queries.ProjectMetricsDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, 50, metrics.Progress)
	assert.Equal(t, 2, metrics.TaskCount)
	assert.InDelta(t, 100.0, metrics.Allocations.Redistributed.Sum(), 0.01)
	assert.Equal(t, []string{"paint"}, metrics.Allocations.Hidden)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sync/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"upstreamBreaker":"closed"`)
}

func TestContainer_SyncWorkerRunsOnStart(t *testing.T) {
	upstream := newUpstream(t)
	cfg := testConfig(t, upstream.URL)
	cfg.SyncOnStart = true
	cfg.SyncInterval = time.Hour
	c := newTestContainer(t, cfg)

	worker := c.NewSyncWorker()
	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()

	require.Eventually(t, func() bool { return worker.Cycles() == 1 }, 5*time.Second, 10*time.Millisecond)
	worker.Stop()
	require.NoError(t, <-done)

	report, _ := worker.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Synced)

	project, err := c.ProjectRepo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "P-1", project.ProjectNumber)
}

func TestContainer_SeedFixture(t *testing.T) {
	c := newTestContainer(t, testConfig(t, "http://localhost:5000"))
	ctx := context.Background()

	fixture, err := recordsync.DecodeFixture(strings.NewReader(`
projects:
  - id: 7
    projectNumber: "P-7"
    name: Coach
    status: active
    tasks:
      - {id: 70, name: Frame, isCompleted: true}
`))
	require.NoError(t, err)

	report, err := c.Syncer.Seed(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)

	project, err := c.ProjectRepo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Coach", project.Name)
}

func TestRepositoryFactory(t *testing.T) {
	c := newTestContainer(t, testConfig(t, "http://localhost:5000"))
	factory := NewRepositoryFactory(c.DB)

	assert.Equal(t, database.DriverSQLite, factory.Driver())
	assert.Equal(t, c.DB, factory.Connection())

	records := factory.Records()
	assert.NotNil(t, records.Projects)
	assert.NotNil(t, records.Tasks)
	assert.NotNil(t, records.Milestones)
	assert.NotNil(t, records.Billing)
	assert.NotNil(t, records.Schedules)
}
