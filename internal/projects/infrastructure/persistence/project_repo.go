// Package persistence stores the project mirror over database.Executor, so
// one implementation serves SQLite and PostgreSQL.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
)

const projectColumns = `id, project_number, name, status, percent_complete,
	start_date, estimated_completion_date, ship_date,
	fabrication_percent, paint_percent, assembly_percent, it_percent, ntc_testing_percent, qc_percent,
	show_fab_phase, show_paint_phase, show_production_phase, show_it_phase, show_ntc_phase, show_qc_phase,
	synced_at`

// ProjectRepository implements domain.ProjectRepository.
type ProjectRepository struct {
	conn database.Connection
}

// NewProjectRepository creates a project repository.
func NewProjectRepository(conn database.Connection) *ProjectRepository {
	return &ProjectRepository{conn: conn}
}

func (r *ProjectRepository) executor(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Upsert inserts the project or replaces the mirrored copy.
func (r *ProjectRepository) Upsert(ctx context.Context, p *domain.Project) error {
	if p.SyncedAt.IsZero() {
		p.SyncedAt = time.Now().UTC()
	}
	a, v := p.Allocations, p.Visibility

	_, err := r.executor(ctx).Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			project_number = excluded.project_number,
			name = excluded.name,
			status = excluded.status,
			percent_complete = excluded.percent_complete,
			start_date = excluded.start_date,
			estimated_completion_date = excluded.estimated_completion_date,
			ship_date = excluded.ship_date,
			fabrication_percent = excluded.fabrication_percent,
			paint_percent = excluded.paint_percent,
			assembly_percent = excluded.assembly_percent,
			it_percent = excluded.it_percent,
			ntc_testing_percent = excluded.ntc_testing_percent,
			qc_percent = excluded.qc_percent,
			show_fab_phase = excluded.show_fab_phase,
			show_paint_phase = excluded.show_paint_phase,
			show_production_phase = excluded.show_production_phase,
			show_it_phase = excluded.show_it_phase,
			show_ntc_phase = excluded.show_ntc_phase,
			show_qc_phase = excluded.show_qc_phase,
			synced_at = excluded.synced_at`,
		p.ID, p.ProjectNumber, p.Name, p.Status, p.PercentComplete,
		p.StartDate, p.EstimatedCompletionDate, p.ShipDate,
		a[domain.Fabrication], a[domain.Paint], a[domain.Assembly], a[domain.IT], a[domain.NTCTesting], a[domain.QC],
		v[domain.Fabrication], v[domain.Paint], v[domain.Assembly], v[domain.IT], v[domain.NTCTesting], v[domain.QC],
		database.FormatTime(p.SyncedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project %d: %w", p.ID, err)
	}
	return nil
}

// FindByID returns a mirrored project or domain.ErrProjectNotFound.
func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	row := r.executor(ctx).QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns mirrored projects ordered by project number.
func (r *ProjectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if filter.Status != "" {
		query += ` WHERE LOWER(status) = LOWER(?)`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY project_number, id`

	return r.query(ctx, query, args...)
}

// ListByIDs returns the mirrored projects among ids, keyed by ID.
func (r *ProjectRepository) ListByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Project, error) {
	out := make(map[int64]*domain.Project, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	projects, err := r.query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id IN (`+database.Placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProjectRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := r.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func scanProject(row database.Row) (*domain.Project, error) {
	var p domain.Project
	var syncedAt string
	a, v := &p.Allocations, &p.Visibility

	err := row.Scan(
		&p.ID, &p.ProjectNumber, &p.Name, &p.Status, &p.PercentComplete,
		&p.StartDate, &p.EstimatedCompletionDate, &p.ShipDate,
		&a[domain.Fabrication], &a[domain.Paint], &a[domain.Assembly], &a[domain.IT], &a[domain.NTCTesting], &a[domain.QC],
		&v[domain.Fabrication], &v[domain.Paint], &v[domain.Assembly], &v[domain.IT], &v[domain.NTCTesting], &v[domain.QC],
		&syncedAt,
	)
	if err != nil {
		return nil, err
	}
	if t, err := database.ParseTime(syncedAt); err == nil {
		p.SyncedAt = t
	}
	return &p, nil
}
