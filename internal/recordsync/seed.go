package recordsync

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	mfgDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

// Fixture is a YAML document of records to load into the mirror without
// an upstream.
type Fixture struct {
	Projects  []ProjectFixture  `yaml:"projects"`
	Schedules []ScheduleFixture `yaml:"schedules"`
}

// ProjectFixture is one project with its child records.
type ProjectFixture struct {
	ID                      int64                  `yaml:"id"`
	ProjectNumber           string                 `yaml:"projectNumber"`
	Name                    string                 `yaml:"name"`
	Status                  string                 `yaml:"status"`
	PercentComplete         float64                `yaml:"percentComplete"`
	StartDate               sharedDomain.DateValue `yaml:"startDate"`
	EstimatedCompletionDate sharedDomain.DateValue `yaml:"estimatedCompletionDate"`
	ShipDate                sharedDomain.DateValue `yaml:"shipDate"`
	Allocations             map[string]float64     `yaml:"allocations"`
	Hide                    []string               `yaml:"hide"`
	Tasks                   []TaskFixture          `yaml:"tasks"`
	Milestones              []MilestoneFixture     `yaml:"milestones"`
	BillingMilestones       []BillingFixture       `yaml:"billingMilestones"`
}

// TaskFixture is a task record.
type TaskFixture struct {
	ID          int64                  `yaml:"id"`
	MilestoneID *int64                 `yaml:"milestoneId"`
	Name        string                 `yaml:"name"`
	IsCompleted bool                   `yaml:"isCompleted"`
	DueDate     sharedDomain.DateValue `yaml:"dueDate"`
}

// MilestoneFixture is a milestone record.
type MilestoneFixture struct {
	ID          int64                  `yaml:"id"`
	Name        string                 `yaml:"name"`
	DueDate     sharedDomain.DateValue `yaml:"dueDate"`
	IsCompleted bool                   `yaml:"isCompleted"`
}

// BillingFixture is a billing milestone record.
type BillingFixture struct {
	ID                int64                  `yaml:"id"`
	Name              string                 `yaml:"name"`
	Status            string                 `yaml:"status"`
	Amount            float64                `yaml:"amount"`
	TargetInvoiceDate sharedDomain.DateValue `yaml:"targetInvoiceDate"`
}

// ScheduleFixture is a manufacturing schedule record.
type ScheduleFixture struct {
	ID        int64                  `yaml:"id"`
	ProjectID int64                  `yaml:"projectId"`
	BayID     int64                  `yaml:"bayId"`
	BayName   string                 `yaml:"bayName"`
	StartDate sharedDomain.DateValue `yaml:"startDate"`
	EndDate   sharedDomain.DateValue `yaml:"endDate"`
	Status    string                 `yaml:"status"`
}

// DecodeFixture reads a YAML fixture.
func DecodeFixture(r io.Reader) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &fixture, nil
}

// Source returns a RecordSource that serves the fixture's records.
func (f *Fixture) Source() (RecordSource, error) {
	src := &fixtureSource{
		projects:   make(map[int64]*domain.Project, len(f.Projects)),
		tasks:      make(map[int64][]domain.Task),
		milestones: make(map[int64][]domain.Milestone),
		billing:    make(map[int64][]domain.BillingMilestone),
	}

	for _, p := range f.Projects {
		project, err := p.toDomain()
		if err != nil {
			return nil, fmt.Errorf("project %d: %w", p.ID, err)
		}
		src.order = append(src.order, p.ID)
		src.projects[p.ID] = project

		for _, t := range p.Tasks {
			src.tasks[p.ID] = append(src.tasks[p.ID], domain.Task{
				ID:          t.ID,
				ProjectID:   p.ID,
				MilestoneID: t.MilestoneID,
				Name:        t.Name,
				IsCompleted: t.IsCompleted,
				DueDate:     t.DueDate,
			})
		}
		for _, m := range p.Milestones {
			src.milestones[p.ID] = append(src.milestones[p.ID], domain.Milestone{
				ID:          m.ID,
				ProjectID:   p.ID,
				Name:        m.Name,
				DueDate:     m.DueDate,
				IsCompleted: m.IsCompleted,
			})
		}
		for _, b := range p.BillingMilestones {
			amount, err := sharedDomain.NewNumber(b.Amount)
			if err != nil {
				return nil, fmt.Errorf("project %d billing milestone %d amount: %w", p.ID, b.ID, err)
			}
			src.billing[p.ID] = append(src.billing[p.ID], domain.BillingMilestone{
				ID:                b.ID,
				ProjectID:         p.ID,
				Name:              b.Name,
				Status:            b.Status,
				Amount:            amount,
				TargetInvoiceDate: b.TargetInvoiceDate,
			})
		}
	}

	for _, s := range f.Schedules {
		src.schedules = append(src.schedules, mfgDomain.Schedule{
			ID:        s.ID,
			ProjectID: s.ProjectID,
			BayID:     s.BayID,
			BayName:   s.BayName,
			StartDate: s.StartDate,
			EndDate:   s.EndDate,
			Status:    s.Status,
		})
	}
	return src, nil
}

func (p ProjectFixture) toDomain() (*domain.Project, error) {
	percentComplete, err := sharedDomain.NewNumber(p.PercentComplete)
	if err != nil {
		return nil, fmt.Errorf("percentComplete: %w", err)
	}

	var allocations domain.Allocations
	seen := make(map[domain.Department]string, len(p.Allocations))
	for name, pct := range p.Allocations {
		d, err := domain.ParseDepartment(name)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[d]; ok {
			return nil, fmt.Errorf("%w: %q and %q both name %s", domain.ErrDuplicateDepartment, prev, name, d)
		}
		seen[d] = name
		value, err := sharedDomain.NewNumber(pct)
		if err != nil {
			return nil, fmt.Errorf("allocation %s: %w", d, err)
		}
		allocations.Set(d, value.Float64())
	}

	visibility := domain.AllVisible()
	for _, name := range p.Hide {
		d, err := domain.ParseDepartment(name)
		if err != nil {
			return nil, err
		}
		visibility = visibility.Hide(d)
	}

	return &domain.Project{
		ID:                      p.ID,
		ProjectNumber:           p.ProjectNumber,
		Name:                    p.Name,
		Status:                  p.Status,
		PercentComplete:         percentComplete.Float64(),
		StartDate:               p.StartDate,
		EstimatedCompletionDate: p.EstimatedCompletionDate,
		ShipDate:                p.ShipDate,
		Allocations:             allocations,
		Visibility:              visibility,
	}, nil
}

// Seed loads the fixture into the mirror through the same path as a sync.
// A fixture without schedules keeps the mirrored schedules.
func (s *Syncer) Seed(ctx context.Context, fixture *Fixture) (*Report, error) {
	src, err := fixture.Source()
	if err != nil {
		return nil, err
	}
	seeder := *s
	seeder.source = src
	seeder.skipSchedules = len(fixture.Schedules) == 0
	return seeder.SyncAll(ctx)
}

type fixtureSource struct {
	order      []int64
	projects   map[int64]*domain.Project
	tasks      map[int64][]domain.Task
	milestones map[int64][]domain.Milestone
	billing    map[int64][]domain.BillingMilestone
	schedules  []mfgDomain.Schedule
}

func (f *fixtureSource) ListProjects(context.Context) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0, len(f.order))
	for _, id := range f.order {
		p := *f.projects[id]
		out = append(out, &p)
	}
	return out, nil
}

func (f *fixtureSource) GetProject(_ context.Context, id int64) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fixtureSource) ListTasks(_ context.Context, projectID int64) ([]domain.Task, error) {
	return f.tasks[projectID], nil
}

func (f *fixtureSource) ListMilestones(_ context.Context, projectID int64) ([]domain.Milestone, error) {
	return f.milestones[projectID], nil
}

func (f *fixtureSource) ListBillingMilestones(_ context.Context, projectID int64) ([]domain.BillingMilestone, error) {
	return f.billing[projectID], nil
}

func (f *fixtureSource) ListManufacturingSchedules(context.Context) ([]mfgDomain.Schedule, error) {
	return f.schedules, nil
}
