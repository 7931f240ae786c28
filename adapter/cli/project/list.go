package project

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with progress and health",
	Long: `List every mirrored project, optionally filtered by upstream status.

Examples:
  masterscheduler project list
  masterscheduler project list --status active`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListMetricsHandler == nil {
			return errors.New("application not initialized - database connection required")
		}

		projects, err := app.ListMetricsHandler.Handle(cmd.Context(), queries.ListProjectMetricsQuery{
			Status: listStatus,
			Now:    app.CurrentTime(),
		})
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects found.")
			return nil
		}

		fmt.Fprintf(out, "Found %d project(s):\n\n", len(projects))
		for _, p := range projects {
			fmt.Fprintf(out, "%s %s %s [%s]\n", cli.BandIcon(p.Band), p.ProjectNumber, p.Name, p.Status)
			fmt.Fprintf(out, "   ID: %d\n", p.ProjectID)
			fmt.Fprintf(out, "   Progress: %d%%\n", p.Progress)
			fmt.Fprintf(out, "   Health: %d/100 (%s)\n", p.Health, p.Band)
			if p.TaskCount > 0 {
				fmt.Fprintf(out, "   Tasks: %d\n", p.TaskCount)
			}
			fmt.Fprintf(out, "   Ship: %s\n", cli.FormatDate(p.ShipDate))
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by upstream status")
}
