package persistence

import (
	"context"
	"fmt"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
)

// TaskRepository implements domain.TaskRepository.
type TaskRepository struct {
	conn database.Connection
}

// NewTaskRepository creates a task repository.
func NewTaskRepository(conn database.Connection) *TaskRepository {
	return &TaskRepository{conn: conn}
}

// ReplaceForProject swaps the project's mirrored tasks for tasks in one
// transaction.
func (r *TaskRepository) ReplaceForProject(ctx context.Context, projectID int64, tasks []domain.Task) error {
	return database.RunInTx(ctx, r.conn, func(ctx context.Context) error {
		exec := database.ExecutorFromContext(ctx, r.conn)
		if _, err := exec.Exec(ctx, `DELETE FROM tasks WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("failed to clear tasks for project %d: %w", projectID, err)
		}
		for _, t := range tasks {
			_, err := exec.Exec(ctx,
				`INSERT INTO tasks (id, project_id, milestone_id, name, is_completed, due_date) VALUES (?, ?, ?, ?, ?, ?)`,
				t.ID, projectID, t.MilestoneID, t.Name, t.IsCompleted, t.DueDate,
			)
			if err != nil {
				return fmt.Errorf("failed to insert task %d: %w", t.ID, err)
			}
		}
		return nil
	})
}

// ListByProject returns the project's mirrored tasks ordered by ID.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.Task, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT id, project_id, milestone_id, name, is_completed, due_date FROM tasks WHERE project_id = ? ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.MilestoneID, &t.Name, &t.IsCompleted, &t.DueDate); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
