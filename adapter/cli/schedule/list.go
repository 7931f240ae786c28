package schedule

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

var listBay int64

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bay schedules",
	Long: `List bay schedules ordered by bay and start date.

Examples:
  masterscheduler schedule list
  masterscheduler schedule list --bay 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ScheduleViewHandler == nil {
			return errors.New("application not initialized - database connection required")
		}
		if listBay < 0 {
			return fmt.Errorf("invalid bay ID %d", listBay)
		}

		schedules, err := app.ScheduleViewHandler.Handle(cmd.Context(), queries.ListScheduleAllocationsQuery{BayID: listBay})
		if err != nil {
			return fmt.Errorf("failed to list schedules: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(schedules) == 0 {
			fmt.Fprintln(out, "No schedules found.")
			return nil
		}

		fmt.Fprintf(out, "Found %d schedule(s):\n\n", len(schedules))
		for _, s := range schedules {
			fmt.Fprintf(out, "📅 %s  %s → %s [%s]\n", s.BayName, cli.FormatDate(s.StartDate), cli.FormatDate(s.EndDate), s.Status)
			if s.ProjectName == "" {
				fmt.Fprintf(out, "   Project %d (not mirrored)\n\n", s.ProjectID)
				continue
			}
			fmt.Fprintf(out, "   Project: %s %s\n", s.ProjectNumber, s.ProjectName)
			if s.Allocations != nil {
				fmt.Fprint(out, "   ")
				for _, d := range domain.Departments() {
					if s.Allocations.Visibility.Visible(d) {
						fmt.Fprintf(out, " %s %.0f%%", d.String(), s.Allocations.Redistributed.Get(d))
					}
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().Int64Var(&listBay, "bay", 0, "only show schedules for this bay")
}
