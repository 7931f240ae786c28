package allocation

import (
	"github.com/spf13/cobra"
)

// Cmd is the allocation command group
var Cmd = &cobra.Command{
	Use:   "allocation",
	Short: "Work with department allocations",
}

func init() {
	Cmd.AddCommand(redistributeCmd)
}
