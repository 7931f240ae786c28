package app

import (
	mfgPersistence "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/infrastructure/persistence"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/infrastructure/persistence"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates the mirror repositories over one connection.
// The repositories share SQL across drivers, so the factory only carries
// the connection.
type RepositoryFactory struct {
	conn database.Connection
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// ProjectRepository creates a project repository.
func (f *RepositoryFactory) ProjectRepository() *persistence.ProjectRepository {
	return persistence.NewProjectRepository(f.conn)
}

// TaskRepository creates a task repository.
func (f *RepositoryFactory) TaskRepository() *persistence.TaskRepository {
	return persistence.NewTaskRepository(f.conn)
}

// MilestoneRepository creates a milestone repository.
func (f *RepositoryFactory) MilestoneRepository() *persistence.MilestoneRepository {
	return persistence.NewMilestoneRepository(f.conn)
}

// BillingMilestoneRepository creates a billing milestone repository.
func (f *RepositoryFactory) BillingMilestoneRepository() *persistence.BillingMilestoneRepository {
	return persistence.NewBillingMilestoneRepository(f.conn)
}

// ScheduleRepository creates a manufacturing schedule repository.
func (f *RepositoryFactory) ScheduleRepository() *mfgPersistence.ScheduleRepository {
	return mfgPersistence.NewScheduleRepository(f.conn)
}

// OutboxRepository creates an outbox repository.
func (f *RepositoryFactory) OutboxRepository() *outbox.SQLRepository {
	return outbox.NewSQLRepository(f.conn)
}

// Records returns the repositories a sync writes.
func (f *RepositoryFactory) Records() recordsync.Repositories {
	return recordsync.Repositories{
		Projects:   f.ProjectRepository(),
		Tasks:      f.TaskRepository(),
		Milestones: f.MilestoneRepository(),
		Billing:    f.BillingMilestoneRepository(),
		Schedules:  f.ScheduleRepository(),
	}
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.conn.Driver()
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
