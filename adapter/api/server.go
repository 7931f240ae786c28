// Package api serves derived project metrics over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	mfgQueries "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/observability"
)

// Syncer triggers mirror refreshes. recordsync.Syncer implements it.
type Syncer interface {
	SyncAll(ctx context.Context) (*recordsync.Report, error)
	SyncProject(ctx context.Context, id int64) (*recordsync.Report, error)
}

// Handlers are the application services the API exposes.
type Handlers struct {
	ProjectMetrics  *queries.GetProjectMetricsHandler
	ListMetrics     *queries.ListProjectMetricsHandler
	Allocations     *queries.GetAllocationsHandler
	Redistribute    *queries.RedistributeAllocationsHandler
	ScheduleView    *mfgQueries.ListScheduleAllocationsHandler
	Syncer          Syncer
	SyncStatus      *recordsync.StatusTracker
	Health          *observability.HealthRegistry
	UpstreamBreaker func() string
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server is the HTTP API server.
type Server struct {
	echo     *echo.Echo
	config   ServerConfig
	handlers Handlers
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, handlers Handlers, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Server.IdleTimeout = cfg.IdleTimeout

	s := &Server{
		echo:     e,
		config:   cfg,
		handlers: handlers,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestContext())
	e.Use(requestLogger(logger))
	e.Use(requestMetrics(metrics))

	s.registerRoutes()
	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", echo.WrapHandler(observability.LivenessHandler()))
	s.echo.GET("/ready", s.handleReady)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	api := s.echo.Group("/api")
	api.GET("/projects", s.listProjects)
	api.GET("/projects/:id/metrics", s.getProjectMetrics)
	api.GET("/projects/:id/health", s.getProjectHealth)
	api.GET("/projects/:id/allocations", s.getAllocations)
	api.POST("/projects/:id/sync", s.syncProject)
	api.POST("/allocations/redistribute", s.redistribute)
	api.GET("/manufacturing-schedules", s.listSchedules)
	api.POST("/sync", s.syncAll)
	api.GET("/sync/status", s.syncStatus)
}

// ServeHTTP makes the server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.config.Addr)
	return s.echo.Start(s.config.Addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleReady(c echo.Context) error {
	if s.handlers.Health == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": string(observability.HealthStatusHealthy)})
	}
	s.handlers.Health.ReadinessHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}
