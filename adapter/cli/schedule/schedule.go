package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show bay schedules",
	Long:  `Show mirrored manufacturing bay schedules with each project's department allocations.`,
}

func init() {
	Cmd.AddCommand(listCmd)
}
