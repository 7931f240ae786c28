package allocation

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

func runRedistribute(t *testing.T, flags map[string]string) (string, error) {
	t.Helper()
	cli.SetApp(&cli.App{RedistributeHandler: queries.NewRedistributeAllocationsHandler()})
	t.Cleanup(func() { cli.SetApp(nil) })

	for _, d := range domain.Departments() {
		*redistributeRaw[d] = 0
	}
	redistributeHide, redistributeJSON = nil, false
	for name, value := range flags {
		require.NoError(t, redistributeCmd.Flags().Set(name, value))
	}
	t.Cleanup(func() {
		redistributeHide, redistributeJSON = nil, false
	})

	var out bytes.Buffer
	redistributeCmd.SetOut(&out)
	redistributeCmd.SetContext(context.Background())
	t.Cleanup(func() { redistributeCmd.SetOut(nil) })
	err := redistributeCmd.RunE(redistributeCmd, nil)
	return out.String(), err
}

func TestRedistributeCmd_HidesDepartment(t *testing.T) {
	out, err := runRedistribute(t, map[string]string{
		"fabrication": "27",
		"paint":       "7",
		"assembly":    "45",
		"it":          "7",
		"ntc_testing": "7",
		"qc":          "7",
		"hide":        "paint",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "fabrication   29.03")
	assert.Contains(t, out, "paint        hidden")
	assert.Contains(t, out, "assembly      48.39")
	assert.Contains(t, out, "qc             7.53")
}

func TestRedistributeCmd_AllShownIsUnchanged(t *testing.T) {
	out, err := runRedistribute(t, map[string]string{
		"fabrication": "50",
		"assembly":    "50",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "fabrication   50.00")
	assert.Contains(t, out, "assembly      50.00")
	assert.Contains(t, out, "paint          0.00")
}

func TestRedistributeCmd_JSON(t *testing.T) {
	out, err := runRedistribute(t, map[string]string{
		"fabrication": "40",
		"paint":       "60",
		"hide":        "paint",
		"json":        "true",
	})
	require.NoError(t, err)

	assert.Contains(t, out, `"redistributed"`)
	assert.Contains(t, out, `"hidden": [`)
	assert.Contains(t, out, `"fabrication": 100`)
}

func TestRedistributeCmd_UnknownDepartment(t *testing.T) {
	_, err := runRedistribute(t, map[string]string{"hide": "welding"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownDepartment)
}
