// Package recordsync copies upstream records into the local mirror and
// records a sync event per project in the outbox.
package recordsync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	mfgDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	sharedApp "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/application"
	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/outbox"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/observability"
)

// DefaultConcurrency is the number of projects fetched at once.
const DefaultConcurrency = 4

// RecordSource reads records from upstream. upstream.Client implements it.
type RecordSource interface {
	ListProjects(ctx context.Context) ([]*domain.Project, error)
	GetProject(ctx context.Context, id int64) (*domain.Project, error)
	ListTasks(ctx context.Context, projectID int64) ([]domain.Task, error)
	ListMilestones(ctx context.Context, projectID int64) ([]domain.Milestone, error)
	ListBillingMilestones(ctx context.Context, projectID int64) ([]domain.BillingMilestone, error)
	ListManufacturingSchedules(ctx context.Context) ([]mfgDomain.Schedule, error)
}

// Repositories are the mirror stores written by a sync.
type Repositories struct {
	Projects   domain.ProjectRepository
	Tasks      domain.TaskRepository
	Milestones domain.MilestoneRepository
	Billing    domain.BillingMilestoneRepository
	Schedules  mfgDomain.ScheduleRepository
}

// Syncer mirrors upstream records.
type Syncer struct {
	source      RecordSource
	repos       Repositories
	uow         sharedApp.UnitOfWork
	outbox      outbox.Repository
	logger      *slog.Logger
	metrics     *observability.Metrics
	concurrency int
	now         func() time.Time

	// skipSchedules leaves the mirrored schedules untouched by SyncAll.
	skipSchedules bool
}

// NewSyncer creates a syncer.
func NewSyncer(
	source RecordSource,
	repos Repositories,
	uow sharedApp.UnitOfWork,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		source:      source,
		repos:       repos,
		uow:         uow,
		outbox:      outboxRepo,
		logger:      logger,
		concurrency: DefaultConcurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithConcurrency bounds the project fan-out. Values below one are ignored.
func (s *Syncer) WithConcurrency(n int) *Syncer {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// WithMetrics records sync runs on m.
func (s *Syncer) WithMetrics(m *observability.Metrics) *Syncer {
	s.metrics = m
	return s
}

// WithClock overrides the clock used for SyncedAt.
func (s *Syncer) WithClock(now func() time.Time) *Syncer {
	if now != nil {
		s.now = now
	}
	return s
}

// SyncAll mirrors every upstream project, then the manufacturing schedules.
// Failures of single projects or of the schedule step are collected in the
// report; an error is returned only when the project list cannot be read or
// ctx is cancelled.
func (s *Syncer) SyncAll(ctx context.Context) (*Report, error) {
	report := newReport(s.now())
	meta := sharedApp.NewEventMetadata(observability.CorrelationUUID(ctx))

	projects, err := s.source.ListProjects(ctx)
	if err != nil {
		err = fmt.Errorf("failed to list upstream projects: %w", err)
		s.finish(ctx, report, err)
		return report, err
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, project := range projects {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			err := s.syncProject(ctx, project, meta)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.addFailure(ScopeProject, project.ID, err)
				return nil
			}
			report.Synced++
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.finish(ctx, report, err)
		return report, err
	}

	if !s.skipSchedules {
		count, err := s.syncSchedules(ctx, meta)
		if err != nil {
			report.addFailure(ScopeSchedules, 0, err)
		} else {
			report.Schedules = count
		}
	}

	s.finish(ctx, report, nil)
	return report, nil
}

// SyncProject mirrors one project. The returned error is the project's
// failure; upstream.ErrNotFound is preserved for callers.
func (s *Syncer) SyncProject(ctx context.Context, id int64) (*Report, error) {
	report := newReport(s.now())
	meta := sharedApp.NewEventMetadata(observability.CorrelationUUID(ctx))

	project, err := s.source.GetProject(ctx, id)
	if err == nil {
		err = s.syncProject(ctx, project, meta)
	}
	if err != nil {
		err = fmt.Errorf("failed to sync project %d: %w", id, err)
		report.addFailure(ScopeProject, id, err)
		s.finish(ctx, report, err)
		return report, err
	}

	report.Synced = 1
	s.finish(ctx, report, nil)
	return report, nil
}

func (s *Syncer) syncProject(ctx context.Context, project *domain.Project, meta sharedDomain.EventMetadata) error {
	tasks, err := s.source.ListTasks(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}
	milestones, err := s.source.ListMilestones(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch milestones: %w", err)
	}
	billing, err := s.source.ListBillingMilestones(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch billing milestones: %w", err)
	}

	project.SyncedAt = s.now()
	event := domain.NewProjectSynced(project, len(tasks), len(milestones), len(billing))
	sharedApp.ApplyEventMetadata([]sharedDomain.DomainEvent{event}, meta)

	err = sharedApp.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.repos.Projects.Upsert(txCtx, project); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}
		if err := s.repos.Tasks.ReplaceForProject(txCtx, project.ID, tasks); err != nil {
			return fmt.Errorf("failed to save tasks: %w", err)
		}
		if err := s.repos.Milestones.ReplaceForProject(txCtx, project.ID, milestones); err != nil {
			return fmt.Errorf("failed to save milestones: %w", err)
		}
		if err := s.repos.Billing.ReplaceForProject(txCtx, project.ID, billing); err != nil {
			return fmt.Errorf("failed to save billing milestones: %w", err)
		}
		return s.saveEvent(txCtx, event)
	})
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "project synced",
		"project_id", project.ID,
		"tasks", len(tasks),
		"milestones", len(milestones),
		"billing_milestones", len(billing),
	)
	return nil
}

func (s *Syncer) syncSchedules(ctx context.Context, meta sharedDomain.EventMetadata) (int, error) {
	schedules, err := s.source.ListManufacturingSchedules(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch manufacturing schedules: %w", err)
	}

	event := mfgDomain.NewSchedulesSynced(schedules)
	sharedApp.ApplyEventMetadata([]sharedDomain.DomainEvent{event}, meta)

	err = sharedApp.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.repos.Schedules.ReplaceAll(txCtx, schedules); err != nil {
			return fmt.Errorf("failed to save manufacturing schedules: %w", err)
		}
		return s.saveEvent(txCtx, event)
	})
	if err != nil {
		return 0, err
	}
	return len(schedules), nil
}

func (s *Syncer) saveEvent(ctx context.Context, event sharedDomain.DomainEvent) error {
	if s.outbox == nil {
		return nil
	}
	msg, err := outbox.NewMessage(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.RoutingKey(), err)
	}
	if err := s.outbox.Save(ctx, msg); err != nil {
		return fmt.Errorf("failed to save %s event: %w", event.RoutingKey(), err)
	}
	return nil
}

func (s *Syncer) finish(ctx context.Context, report *Report, err error) {
	report.FinishedAt = s.now()
	sort.Slice(report.Failures, func(i, j int) bool {
		a, b := report.Failures[i], report.Failures[j]
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		return a.ProjectID < b.ProjectID
	})

	duration := report.FinishedAt.Sub(report.StartedAt)
	s.metrics.ObserveSync(report.Synced, len(report.Failures), err, duration)

	if err != nil {
		s.logger.ErrorContext(ctx, "sync failed",
			"synced", report.Synced,
			"failures", len(report.Failures),
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "sync completed",
		"synced", report.Synced,
		"schedules", report.Schedules,
		"failures", len(report.Failures),
		"duration", duration,
	)
}
