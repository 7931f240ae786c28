package project

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

var healthCmd = &cobra.Command{
	Use:   "health [project-id]",
	Short: "Show the health score breakdown for a project",
	Long: `Display the health score and the component scores it blends.

Health Score Legend:
  🟢 90-100  Excellent - Project is on track
  🟡 70-89   Good - Minor issues to address
  🟠 50-69   At Risk - Attention needed
  🔴 0-49    Critical - Immediate action required

Examples:
  masterscheduler project health 42`,
	Args: cobra.ExactArgs(1),
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

		h := m.Health
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Project: %s %s\n", m.ProjectNumber, m.Name)
		fmt.Fprintf(out, "Health Score: %s %d/100 (%s)\n\n", cli.BandIcon(h.Band), h.Overall, h.Band)

		fmt.Fprintln(out, "Components:")
		fmt.Fprintf(out, "  Tasks     %5.1f  x %.1f\n", h.TaskScore, domain.TaskWeight)
		fmt.Fprintf(out, "  Billing   %5.1f  x %.1f\n", h.BillingScore, domain.BillingWeight)
		fmt.Fprintf(out, "  Timeline  %5.1f  x %.1f\n", h.TimelineScore, domain.TimelineWeight)
		fmt.Fprintf(out, "\n  Expected progress: %.0f%% (reported %.0f%%)\n", h.ExpectedProgress, m.PercentComplete)

		if h.Trend.Computed {
			fmt.Fprintf(out, "  Trend: %+d\n", h.Trend.Delta)
		}
		return nil
	},
}
