package persistence

import (
	"context"
	"fmt"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
)

// MilestoneRepository implements domain.MilestoneRepository.
type MilestoneRepository struct {
	conn database.Connection
}

// NewMilestoneRepository creates a milestone repository.
func NewMilestoneRepository(conn database.Connection) *MilestoneRepository {
	return &MilestoneRepository{conn: conn}
}

// ReplaceForProject swaps the project's mirrored milestones.
func (r *MilestoneRepository) ReplaceForProject(ctx context.Context, projectID int64, milestones []domain.Milestone) error {
	return database.RunInTx(ctx, r.conn, func(ctx context.Context) error {
		exec := database.ExecutorFromContext(ctx, r.conn)
		if _, err := exec.Exec(ctx, `DELETE FROM milestones WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("failed to clear milestones for project %d: %w", projectID, err)
		}
		for _, m := range milestones {
			_, err := exec.Exec(ctx,
				`INSERT INTO milestones (id, project_id, name, due_date, is_completed) VALUES (?, ?, ?, ?, ?)`,
				m.ID, projectID, m.Name, m.DueDate, m.IsCompleted,
			)
			if err != nil {
				return fmt.Errorf("failed to insert milestone %d: %w", m.ID, err)
			}
		}
		return nil
	})
}

// ListByProject returns the project's milestones ordered by ID.
func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.Milestone, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT id, project_id, name, due_date, is_completed FROM milestones WHERE project_id = ? ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	var milestones []domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Name, &m.DueDate, &m.IsCompleted); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}
