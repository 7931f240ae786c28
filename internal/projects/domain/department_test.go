package domain

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAllocations() Allocations {
	return Allocations{
		Fabrication: 27,
		Paint:       7,
		Assembly:    45,
		IT:          7,
		NTCTesting:  7,
		QC:          7,
	}
}

func TestRedistribute_PaintHidden(t *testing.T) {
	got := Redistribute(sampleAllocations(), AllVisible().Hide(Paint))

	assert.Equal(t, 29.03, got.Get(Fabrication))
	assert.Equal(t, 0.0, got.Get(Paint))
	assert.Equal(t, 48.39, got.Get(Assembly))
	assert.Equal(t, 7.53, got.Get(IT))
	assert.Equal(t, 7.53, got.Get(NTCTesting))
	assert.Equal(t, 7.53, got.Get(QC))
}

func TestRedistribute_AllVisibleUnchanged(t *testing.T) {
	raw := Allocations{Fabrication: 33.333, Paint: 10.1, Assembly: 40, IT: 5, NTCTesting: 5, QC: 6.567}

	assert.Equal(t, raw, Redistribute(raw, AllVisible()))
}

func TestRedistribute_AllHidden(t *testing.T) {
	got := Redistribute(sampleAllocations(), Visibility{})

	assert.Equal(t, Allocations{}, got)
}

func TestRedistribute_VisibleSumZero(t *testing.T) {
	raw := Allocations{Fabrication: 60, Paint: 40}

	got := Redistribute(raw, AllVisible().Hide(Fabrication, Paint))

	assert.Equal(t, Allocations{}, got)
}

func TestRedistribute_SumsToHundred(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		var raw Allocations
		var vis Visibility
		for _, d := range Departments() {
			raw[d] = float64(rng.Intn(10000)) / 100
			vis[d] = rng.Intn(3) > 0
		}

		got := Redistribute(raw, vis)

		var visibleRaw, visibleOut float64
		for _, d := range Departments() {
			if !vis[d] {
				assert.Zero(t, got[d])
				continue
			}
			visibleRaw += raw[d]
			visibleOut += got[d]
		}
		if vis.AllShown() {
			assert.Equal(t, raw, got)
		} else if visibleRaw > 0 {
			assert.InDelta(t, 100, visibleOut, 0.031, "raw=%v vis=%v", raw, vis)
		}
	}
}

func TestParseDepartment(t *testing.T) {
	tests := []struct {
		input string
		want  Department
	}{
		{"fabrication", Fabrication},
		{"FAB", Fabrication},
		{"paint", Paint},
		{"production", Assembly},
		{"Assembly", Assembly},
		{"it", IT},
		{"ntc", NTCTesting},
		{"ntc_testing", NTCTesting},
		{" qc ", QC},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDepartment(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDepartment("welding")
	assert.ErrorIs(t, err, ErrUnknownDepartment)
}

func TestParseDepartments(t *testing.T) {
	got, err := ParseDepartments("paint, qc,,")
	require.NoError(t, err)
	assert.Equal(t, []Department{Paint, QC}, got)

	got, err = ParseDepartments("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseDepartments("paint,welding")
	assert.ErrorIs(t, err, ErrUnknownDepartment)
}

func TestVisibility(t *testing.T) {
	v := AllVisible().Hide(Paint, QC)

	assert.False(t, v.Visible(Paint))
	assert.True(t, v.Visible(Fabrication))
	assert.Equal(t, []Department{Paint, QC}, v.Hidden())
	assert.False(t, v.AllShown())
	assert.True(t, AllVisible().AllShown())

	shown := v.Show(QC)
	assert.True(t, shown.Visible(QC))
	assert.False(t, v.Visible(QC), "Show must not modify the receiver")
}

func TestVisibility_JSON(t *testing.T) {
	var v Visibility
	require.NoError(t, json.Unmarshal([]byte(`{"paint":false,"production":true}`), &v))
	assert.Equal(t, []Department{Paint}, v.Hidden())

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"paint":false`)

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"welding":false}`), &v), ErrUnknownDepartment)
}

func TestAllocations_JSON(t *testing.T) {
	data, err := json.Marshal(sampleAllocations())
	require.NoError(t, err)
	assert.JSONEq(t, `{"fabrication":27,"paint":7,"assembly":45,"it":7,"ntc_testing":7,"qc":7}`, string(data))

	var decoded Allocations
	require.NoError(t, json.Unmarshal([]byte(`{"fab":27,"production":45,"ntc":7}`), &decoded))
	assert.Equal(t, 27.0, decoded.Get(Fabrication))
	assert.Equal(t, 45.0, decoded.Get(Assembly))
	assert.Equal(t, 7.0, decoded.Get(NTCTesting))
	assert.Equal(t, 79.0, decoded.Sum())

	assert.Error(t, json.Unmarshal([]byte(`{"welding":1}`), &decoded))
}

func TestDepartment_String(t *testing.T) {
	assert.Equal(t, "ntc_testing", NTCTesting.String())
	assert.Equal(t, "department(9)", Department(9).String())
	assert.False(t, Department(-1).IsValid())
}

func TestAllocations_JSON_DuplicateDepartment(t *testing.T) {
	var decoded Allocations
	err := json.Unmarshal([]byte(`{"fab":10,"fabrication":20}`), &decoded)
	assert.ErrorIs(t, err, ErrDuplicateDepartment)

	var v Visibility
	err = json.Unmarshal([]byte(`{"production":false,"assembly":true}`), &v)
	assert.ErrorIs(t, err, ErrDuplicateDepartment)
}

func TestDepartment_InvalidIndexIsIgnored(t *testing.T) {
	invalid := []Department{Department(7), Department(-1)}

	a := sampleAllocations()
	for _, d := range invalid {
		assert.NotPanics(t, func() {
			assert.Zero(t, a.Get(d))
			a.Set(d, 50)
		})
	}
	assert.Equal(t, sampleAllocations(), a)

	v := AllVisible()
	for _, d := range invalid {
		assert.NotPanics(t, func() {
			assert.False(t, v.Visible(d))
			v = v.Hide(d).Show(d)
		})
	}
	assert.True(t, v.AllShown())
}
