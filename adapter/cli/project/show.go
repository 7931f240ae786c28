package project

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show every derived metric for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ProjectMetricsHandler == nil {
			return errors.New("application not initialized - database connection required")
		}

		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}

		m, err := app.ProjectMetricsHandler.Handle(cmd.Context(), queries.GetProjectMetricsQuery{
			ProjectID: projectID,
			Now:       app.CurrentTime(),
		})
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}

		out := cmd.OutOrStdout()
		if showJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		}

		fmt.Fprintf(out, "%s %s\n", m.ProjectNumber, m.Name)
		fmt.Fprintf(out, "Status: %s\n\n", m.Status)

		fmt.Fprintln(out, "Timeline:")
		fmt.Fprintf(out, "  Start:      %s\n", cli.FormatDate(m.StartDate))
		fmt.Fprintf(out, "  Completion: %s\n", cli.FormatDate(m.EstimatedCompletionDate))
		fmt.Fprintf(out, "  Ship:       %s\n\n", cli.FormatDate(m.ShipDate))

		fmt.Fprintln(out, "Progress:")
		fmt.Fprintf(out, "  Tasks:      %d%% (%d/%d complete)\n", m.Progress, m.CompletedTaskCount, m.TaskCount)
		fmt.Fprintf(out, "  Milestones: %d/%d complete\n", m.CompletedMilestoneCount, m.MilestoneCount)
		fmt.Fprintf(out, "  Reported:   %.0f%%\n\n", m.PercentComplete)

		fmt.Fprintf(out, "Health: %s %d/100 (%s)\n\n", cli.BandIcon(m.Health.Band), m.Health.Overall, m.Health.Band)

		if m.Billing.Count > 0 {
			fmt.Fprintln(out, "Billing:")
			fmt.Fprintf(out, "  Paid: %d/%d milestones\n", m.Billing.PaidCount, m.Billing.Count)
			fmt.Fprintf(out, "  Amount: %.2f of %.2f\n\n", m.Billing.PaidAmount, m.Billing.TotalAmount)
		}

		printAllocations(out, m.Allocations)

		if !m.SyncedAt.IsZero() {
			fmt.Fprintf(out, "\nSynced: %s\n", m.SyncedAt.Format("2006-01-02 15:04 MST"))
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the metrics as JSON")
}
