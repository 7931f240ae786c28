package project

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// Cmd is the project command group
var Cmd = &cobra.Command{
	Use:   "project",
	Short: "Show derived project metrics",
	Long:  `List mirrored projects and show their progress, health and department allocations.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(healthCmd)
	Cmd.AddCommand(allocationsCmd)
}

func parseProjectID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid project ID %q", raw)
	}
	return id, nil
}
