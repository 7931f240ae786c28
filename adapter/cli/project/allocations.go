package project

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

var (
	allocationsHide []string
	allocationsShow []string
)

var allocationsCmd = &cobra.Command{
	Use:   "allocations [project-id]",
	Short: "Show department allocations for a project",
	Long: `Show the project's raw department percentages and the same percentages
rescaled over the shown departments. --hide and --show override the
project's own show-phase flags; --show wins for a department in both.

Departments: fabrication, paint, assembly, it, ntc_testing, qc

Examples:
  masterscheduler project allocations 42
  masterscheduler project allocations 42 --hide paint,it`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AllocationsHandler == nil {
			return errors.New("application not initialized - database connection required")
		}

		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}
		hide, err := domain.ParseDepartments(strings.Join(allocationsHide, ","))
		if err != nil {
			return err
		}
		show, err := domain.ParseDepartments(strings.Join(allocationsShow, ","))
		if err != nil {
			return err
		}

		view, err := app.AllocationsHandler.Handle(cmd.Context(), queries.GetAllocationsQuery{
			ProjectID: projectID,
			Hide:      hide,
			Show:      show,
		})
		if err != nil {
			return fmt.Errorf("failed to get allocations: %w", err)
		}

		printAllocations(cmd.OutOrStdout(), *view)
		return nil
	},
}

func printAllocations(out io.Writer, view queries.AllocationView) {
	fmt.Fprintln(out, "Allocations:")
	fmt.Fprintf(out, "  %-12s %8s %8s\n", "Department", "Raw", "Shown")
	for _, d := range domain.Departments() {
		shown := "hidden"
		if view.Visibility.Visible(d) {
			shown = fmt.Sprintf("%.2f", view.Redistributed.Get(d))
		}
		fmt.Fprintf(out, "  %-12s %8.2f %8s\n", d.String(), view.Raw.Get(d), shown)
	}
	fmt.Fprintf(out, "  %-12s %8.2f %8.2f\n", "total", view.Raw.Sum(), view.Redistributed.Sum())
}

func init() {
	allocationsCmd.Flags().StringSliceVar(&allocationsHide, "hide", nil, "departments to hide")
	allocationsCmd.Flags().StringSliceVar(&allocationsShow, "show", nil, "departments to show")
}
