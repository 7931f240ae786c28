package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
)

// ScheduleRepository implements domain.ScheduleRepository.
type ScheduleRepository struct {
	conn database.Connection
}

// NewScheduleRepository creates a schedule repository.
func NewScheduleRepository(conn database.Connection) *ScheduleRepository {
	return &ScheduleRepository{conn: conn}
}

// ReplaceAll deletes every mirrored schedule and inserts schedules in one
// transaction.
func (r *ScheduleRepository) ReplaceAll(ctx context.Context, schedules []domain.Schedule) error {
	return database.RunInTx(ctx, r.conn, func(ctx context.Context) error {
		exec := database.ExecutorFromContext(ctx, r.conn)
		if _, err := exec.Exec(ctx, `DELETE FROM manufacturing_schedules`); err != nil {
			return fmt.Errorf("failed to clear schedules: %w", err)
		}
		for _, s := range schedules {
			_, err := exec.Exec(ctx, `
				INSERT INTO manufacturing_schedules (id, project_id, bay_id, bay_name, start_date, end_date, status)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				s.ID, s.ProjectID, s.BayID, s.BayName, s.StartDate, s.EndDate, s.Status,
			)
			if err != nil {
				return fmt.Errorf("failed to insert schedule %d: %w", s.ID, err)
			}
		}
		return nil
	})
}

// List returns schedules matching filter ordered by bay, start date and ID.
func (r *ScheduleRepository) List(ctx context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, error) {
	query := `SELECT id, project_id, bay_id, bay_name, start_date, end_date, status FROM manufacturing_schedules`

	var conditions []string
	var args []any
	if filter.BayID != 0 {
		conditions = append(conditions, "bay_id = ?")
		args = append(args, filter.BayID)
	}
	if filter.ProjectID != 0 {
		conditions = append(conditions, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY bay_id, start_date, id"

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		var s domain.Schedule
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.BayID, &s.BayName, &s.StartDate, &s.EndDate, &s.Status); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
