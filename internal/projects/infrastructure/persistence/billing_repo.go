package persistence

import (
	"context"
	"fmt"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/database"
)

// BillingMilestoneRepository implements domain.BillingMilestoneRepository.
type BillingMilestoneRepository struct {
	conn database.Connection
}

// NewBillingMilestoneRepository creates a billing milestone repository.
func NewBillingMilestoneRepository(conn database.Connection) *BillingMilestoneRepository {
	return &BillingMilestoneRepository{conn: conn}
}

// ReplaceForProject swaps the project's mirrored billing milestones.
func (r *BillingMilestoneRepository) ReplaceForProject(ctx context.Context, projectID int64, milestones []domain.BillingMilestone) error {
	return database.RunInTx(ctx, r.conn, func(ctx context.Context) error {
		exec := database.ExecutorFromContext(ctx, r.conn)
		if _, err := exec.Exec(ctx, `DELETE FROM billing_milestones WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("failed to clear billing milestones for project %d: %w", projectID, err)
		}
		for _, m := range milestones {
			_, err := exec.Exec(ctx,
				`INSERT INTO billing_milestones (id, project_id, name, status, amount, target_invoice_date) VALUES (?, ?, ?, ?, ?, ?)`,
				m.ID, projectID, m.Name, m.Status, m.Amount.Float64(), m.TargetInvoiceDate,
			)
			if err != nil {
				return fmt.Errorf("failed to insert billing milestone %d: %w", m.ID, err)
			}
		}
		return nil
	})
}

// ListByProject returns the project's billing milestones ordered by ID.
func (r *BillingMilestoneRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.BillingMilestone, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT id, project_id, name, status, amount, target_invoice_date FROM billing_milestones WHERE project_id = ? ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query billing milestones: %w", err)
	}
	defer rows.Close()

	var milestones []domain.BillingMilestone
	for rows.Next() {
		var m domain.BillingMilestone
		var amount float64
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Status, &amount, &m.TargetInvoiceDate); err != nil {
			return nil, err
		}
		m.Amount = sharedDomain.Number(amount)
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}
