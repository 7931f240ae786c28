package cli

import (
	"context"
	"time"

	mfgQueries "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
)

// Syncer refreshes the mirror. recordsync.Syncer implements it.
type Syncer interface {
	SyncAll(ctx context.Context) (*recordsync.Report, error)
	SyncProject(ctx context.Context, id int64) (*recordsync.Report, error)
	Seed(ctx context.Context, fixture *recordsync.Fixture) (*recordsync.Report, error)
}

// Server is the HTTP API run by the serve command.
type Server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// App holds the CLI application dependencies.
type App struct {
	// Query Handlers
	ListMetricsHandler    *queries.ListProjectMetricsHandler
	ProjectMetricsHandler *queries.GetProjectMetricsHandler
	AllocationsHandler    *queries.GetAllocationsHandler
	RedistributeHandler   *queries.RedistributeAllocationsHandler
	ScheduleViewHandler   *mfgQueries.ListScheduleAllocationsHandler

	// Sync
	Syncer     Syncer
	SyncStatus *recordsync.StatusTracker

	// Serve
	Server          Server
	StartEvents     func(ctx context.Context) error
	ShutdownTimeout time.Duration

	// Migrate applies pending schema migrations and returns their names.
	Migrate func(ctx context.Context) ([]string, error)

	// Now is the clock used for derived metrics. Nil means time.Now.
	Now func() time.Time
}

// CurrentTime returns the time derived metrics are computed at.
func (a *App) CurrentTime() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// Global app instance (set by main)
var app *App

// SetApp sets the global app instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global app instance.
func GetApp() *App {
	return app
}
