package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/api"
	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	mfgQueries "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/application/queries"
	mfgDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
	sharedApplication "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/application"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
	_ "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/eventbus"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/migrations"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/outbox"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/resilience"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/upstream"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/config"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics

	// Database
	DB       database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	ProjectRepo   domain.ProjectRepository
	TaskRepo      domain.TaskRepository
	MilestoneRepo domain.MilestoneRepository
	BillingRepo   domain.BillingMilestoneRepository
	ScheduleRepo  mfgDomain.ScheduleRepository
	OutboxRepo    outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Events. The outbox drains into EventPublisher: RabbitMQ when
	// configured, otherwise EventBus.
	EventBus        *eventbus.InProcessEventBus
	EventPublisher  eventbus.Publisher
	EventConsumer   *eventbus.RabbitMQConsumer
	OutboxProcessor *outbox.Processor

	// Upstream and sync
	Upstream   *upstream.Client
	Syncer     *recordsync.Syncer
	SyncStatus *recordsync.StatusTracker

	// Query Handlers
	ProjectMetricsHandler *queries.GetProjectMetricsHandler
	ListMetricsHandler    *queries.ListProjectMetricsHandler
	AllocationsHandler    *queries.GetAllocationsHandler
	RedistributeHandler   *queries.RedistributeAllocationsHandler
	ScheduleViewHandler   *mfgQueries.ListScheduleAllocationsHandler

	Health *observability.HealthRegistry
}

// NewContainer connects the mirror database, applies migrations and wires
// every service. Redis and RabbitMQ are optional: an unreachable one is
// fatal outside development, and skipped with a warning in development.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		Health:  observability.NewHealthRegistry(0),
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	factory := NewRepositoryFactory(c.DB)
	c.ProjectRepo = factory.ProjectRepository()
	c.TaskRepo = factory.TaskRepository()
	c.MilestoneRepo = factory.MilestoneRepository()
	c.BillingRepo = factory.BillingMilestoneRepository()
	c.ScheduleRepo = factory.ScheduleRepository()
	c.OutboxRepo = factory.OutboxRepository()
	c.UnitOfWork = database.NewUnitOfWork(c.DB)

	c.SyncStatus = recordsync.NewStatusTracker()
	c.EventBus = eventbus.NewInProcessEventBus(logger)
	c.EventBus.RegisterConsumer(c.SyncStatus)

	if err := c.initBroker(); err != nil {
		c.Close()
		return nil, err
	}

	processorConfig := outbox.DefaultProcessorConfig()
	processorConfig.PollInterval = cfg.OutboxPollInterval
	processorConfig.BatchSize = cfg.OutboxBatchSize
	processorConfig.MaxRetries = cfg.OutboxMaxRetries
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger).
		WithMetrics(c.Metrics)

	client, err := upstream.NewClient(upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Token:   cfg.UpstreamToken,
		Timeout: cfg.UpstreamTimeout,
		Breaker: c.upstreamBreakerConfig(),
	}, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}
	var cache upstream.Cache = upstream.NoopCache{}
	if c.RedisClient != nil {
		cache = upstream.NewRedisCache(c.RedisClient)
	}
	c.Upstream = client.WithCache(cache, cfg.UpstreamCacheTTL).WithMetrics(c.Metrics)

	c.Syncer = recordsync.NewSyncer(c.Upstream, factory.Records(), c.UnitOfWork, c.OutboxRepo, logger).
		WithConcurrency(cfg.SyncConcurrency).
		WithMetrics(c.Metrics)

	c.ProjectMetricsHandler = queries.NewGetProjectMetricsHandler(c.ProjectRepo, c.TaskRepo, c.MilestoneRepo, c.BillingRepo)
	c.ListMetricsHandler = queries.NewListProjectMetricsHandler(c.ProjectRepo, c.TaskRepo, c.BillingRepo)
	c.AllocationsHandler = queries.NewGetAllocationsHandler(c.ProjectRepo)
	c.RedistributeHandler = queries.NewRedistributeAllocationsHandler()
	c.ScheduleViewHandler = mfgQueries.NewListScheduleAllocationsHandler(c.ScheduleRepo, c.ProjectRepo)

	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(c.Config.DatabaseDriver),
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	applied, err := migrations.Run(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DB = conn
	c.DBDriver = conn.Driver()
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))
	c.Logger.Info("connected to database",
		"driver", c.DBDriver.String(),
		"migrations_applied", len(applied),
	)
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, upstream responses will not be cached", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, upstream responses will not be cached", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

// initBroker selects the outbox destination. With RabbitMQ the publisher is
// guarded by a breaker and a consumer feeds sync events back to SyncStatus.
func (c *Container) initBroker() error {
	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = c.EventBus
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, publishing events in process", "error", err)
		c.EventPublisher = c.EventBus
		return nil
	}

	breaker := resilience.NewBreaker[struct{}]("rabbitmq", resilience.DefaultBreakerConfig(), c.Logger, c.Metrics.SetBreakerState)
	c.EventPublisher = eventbus.NewBreakerPublisher(publisher, breaker)
	c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(publisher.Check))

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:    c.Config.RabbitMQURL,
		Logger: c.Logger,
	}, nil)
	if err != nil {
		c.Logger.Warn("RabbitMQ consumer not available, sync status will not be tracked", "error", err)
		return nil
	}
	consumer.RegisterConsumer(c.SyncStatus)
	c.EventConsumer = consumer
	return nil
}

func (c *Container) upstreamBreakerConfig() resilience.BreakerConfig {
	cfg := resilience.DefaultBreakerConfig()
	cfg.Enabled = c.Config.UpstreamBreakerEnabled
	if c.Config.UpstreamBreakerThreshold > 0 {
		cfg.FailureThreshold = uint32(c.Config.UpstreamBreakerThreshold)
	}
	if c.Config.UpstreamBreakerTimeout > 0 {
		cfg.Timeout = c.Config.UpstreamBreakerTimeout
	}
	return cfg
}

// StartEvents starts delivering outbox events: the processor when enabled,
// and the RabbitMQ consumer when one is connected.
func (c *Container) StartEvents(ctx context.Context) error {
	if c.Config.OutboxProcessorEnabled {
		if err := c.OutboxProcessor.Start(ctx); err != nil {
			return fmt.Errorf("failed to start outbox processor: %w", err)
		}
	}
	if c.EventConsumer != nil {
		go func() {
			err := c.EventConsumer.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, eventbus.ErrConsumerRunning) {
				c.Logger.Error("event consumer stopped", "error", err)
			}
		}()
	}
	return nil
}

// NewSyncWorker builds the interval sync loop from the sync settings.
func (c *Container) NewSyncWorker() *recordsync.Worker {
	return recordsync.NewWorker(c.Syncer, recordsync.WorkerConfig{
		Interval:   c.Config.SyncInterval,
		RunOnStart: c.Config.SyncOnStart,
	}, c.Logger.With("component", "sync_worker"))
}

// APIHandlers returns the services the HTTP API exposes.
func (c *Container) APIHandlers() api.Handlers {
	return api.Handlers{
		ProjectMetrics:  c.ProjectMetricsHandler,
		ListMetrics:     c.ListMetricsHandler,
		Allocations:     c.AllocationsHandler,
		Redistribute:    c.RedistributeHandler,
		ScheduleView:    c.ScheduleViewHandler,
		Syncer:          c.Syncer,
		SyncStatus:      c.SyncStatus,
		Health:          c.Health,
		UpstreamBreaker: c.Upstream.BreakerState,
	}
}

// NewAPIServer builds the HTTP API server on the configured address.
func (c *Container) NewAPIServer() *api.Server {
	cfg := api.DefaultServerConfig()
	if c.Config.HTTPAddr != "" {
		cfg.Addr = c.Config.HTTPAddr
	}
	return api.NewServer(cfg, c.APIHandlers(), c.Metrics, c.Logger)
}

// CLIApp returns the dependencies the command line uses.
func (c *Container) CLIApp() *cli.App {
	return &cli.App{
		ListMetricsHandler:    c.ListMetricsHandler,
		ProjectMetricsHandler: c.ProjectMetricsHandler,
		AllocationsHandler:    c.AllocationsHandler,
		RedistributeHandler:   c.RedistributeHandler,
		ScheduleViewHandler:   c.ScheduleViewHandler,
		Syncer:                c.Syncer,
		SyncStatus:            c.SyncStatus,
		Server:                c.NewAPIServer(),
		StartEvents:           c.StartEvents,
		ShutdownTimeout:       c.Config.HTTPShutdownTimeout,
		Migrate: func(ctx context.Context) ([]string, error) {
			return migrations.Run(ctx, c.DB)
		},
	}
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventConsumer != nil {
		if err := c.EventConsumer.Close(); err != nil {
			c.Logger.Warn("error closing event consumer", "error", err)
		}
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver.String())
		}
	}
}
