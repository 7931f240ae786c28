package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
)

var seedJSON bool

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Load records from a YAML fixture into the mirror",
	Long: `Load projects, their child records and bay schedules from a YAML
fixture instead of upstream. Records are written the same way a sync
writes them, so mirrored projects not in the fixture are kept. A
fixture without schedules leaves the mirrored schedules in place.

Example fixture:
  projects:
    - id: 1
      projectNumber: "P-100"
      name: Transit bus
      status: active
      allocations: {fabrication: 30, assembly: 70}
      tasks:
        - {id: 11, name: Frame, isCompleted: true}
  schedules:
    - {id: 41, projectId: 1, bayId: 3, bayName: Bay 3, startDate: "2024-02-01", endDate: "2024-03-01"}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Syncer == nil {
			return errors.New("seed requires database connection")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open fixture: %w", err)
		}
		defer f.Close()

		fixture, err := recordsync.DecodeFixture(f)
		if err != nil {
			return fmt.Errorf("failed to read fixture %s: %w", args[0], err)
		}

		report, err := app.Syncer.Seed(cmd.Context(), fixture)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		return PrintReport(cmd.OutOrStdout(), report, seedJSON)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(seedCmd)
}
