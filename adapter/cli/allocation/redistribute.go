package allocation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

var (
	redistributeRaw  = map[domain.Department]*float64{}
	redistributeHide []string
	redistributeJSON bool
)

var redistributeCmd = &cobra.Command{
	Use:   "redistribute",
	Short: "Rescale department percentages over the shown departments",
	Long: `Rescale raw department percentages so the shown departments sum to
100. Hidden departments are zeroed. No mirrored records are needed.

Examples:
  masterscheduler allocation redistribute --fabrication 27 --paint 7 --assembly 45 --it 7 --ntc_testing 7 --qc 7 --hide paint
  masterscheduler allocation redistribute --fabrication 50 --assembly 50 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RedistributeHandler == nil {
			return errors.New("application not initialized")
		}

		var raw domain.Allocations
		for d, pct := range redistributeRaw {
			raw.Set(d, *pct)
		}
		hide, err := domain.ParseDepartments(strings.Join(redistributeHide, ","))
		if err != nil {
			return err
		}

		view := app.RedistributeHandler.Handle(cmd.Context(), queries.RedistributeAllocationsQuery{
			Raw:        raw,
			Visibility: domain.AllVisible().Hide(hide...),
		})

		out := cmd.OutOrStdout()
		if redistributeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}
		for _, d := range domain.Departments() {
			if !view.Visibility.Visible(d) {
				fmt.Fprintf(out, "%-12s hidden\n", d.String())
				continue
			}
			fmt.Fprintf(out, "%-12s %6.2f\n", d.String(), view.Redistributed.Get(d))
		}
		return nil
	},
}

func init() {
	for _, d := range domain.Departments() {
		pct := new(float64)
		redistributeRaw[d] = pct
		redistributeCmd.Flags().Float64Var(pct, d.String(), 0, fmt.Sprintf("raw %s percentage", d.String()))
	}
	redistributeCmd.Flags().StringSliceVar(&redistributeHide, "hide", nil, "departments to hide")
	redistributeCmd.Flags().BoolVar(&redistributeJSON, "json", false, "print the result as JSON")
}
