package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Department is one of the six manufacturing phases a project's hours are
// allocated across.
type Department int

const (
	Fabrication Department = iota
	Paint
	Assembly
	IT
	NTCTesting
	QC

	departmentCount = int(QC) + 1
)

var departmentNames = [departmentCount]string{
	Fabrication: "fabrication",
	Paint:       "paint",
	Assembly:    "assembly",
	IT:          "it",
	NTCTesting:  "ntc_testing",
	QC:          "qc",
}

// department aliases used by the upstream show-phase flags.
var departmentAliases = map[string]Department{
	"fab":         Fabrication,
	"production":  Assembly,
	"ntc":         NTCTesting,
	"ntc-testing": NTCTesting,
	"ntctesting":  NTCTesting,
}

// Departments returns every department in display order.
func Departments() []Department {
	return []Department{Fabrication, Paint, Assembly, IT, NTCTesting, QC}
}

// String returns the canonical department name.
func (d Department) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("department(%d)", int(d))
	}
	return departmentNames[d]
}

// IsValid returns true if d is one of the six departments.
func (d Department) IsValid() bool {
	return d >= Fabrication && d <= QC
}

// ParseDepartment parses a canonical name or an upstream phase alias,
// case-insensitively.
func ParseDepartment(s string) (Department, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range departmentNames {
		if n == name {
			return Department(i), nil
		}
	}
	if d, ok := departmentAliases[name]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDepartment, s)
}

// ParseDepartments parses a comma-separated list, ignoring empty entries.
func ParseDepartments(list string) ([]Department, error) {
	var out []Department
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := ParseDepartment(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// parseUniqueDepartment parses name and records it in seen, failing when
// another name for the same department was already parsed.
func parseUniqueDepartment(name string, seen map[Department]string) (Department, error) {
	d, err := ParseDepartment(name)
	if err != nil {
		return 0, err
	}
	if prev, ok := seen[d]; ok {
		return 0, fmt.Errorf("%w: %q and %q both name %s", ErrDuplicateDepartment, prev, name, d)
	}
	seen[d] = name
	return d, nil
}

// Allocations holds one percentage per department.
type Allocations [departmentCount]float64

// Get returns the percentage for d, or 0 for an invalid department.
func (a Allocations) Get(d Department) float64 {
	if !d.IsValid() {
		return 0
	}
	return a[d]
}

// Set sets the percentage for d. Invalid departments are ignored.
func (a *Allocations) Set(d Department, pct float64) {
	if d.IsValid() {
		a[d] = pct
	}
}

// Sum returns the total over all departments.
func (a Allocations) Sum() float64 {
	var sum float64
	for _, v := range a {
		sum += v
	}
	return sum
}

// MarshalJSON encodes allocations as an object keyed by department name.
func (a Allocations) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, departmentCount)
	for _, d := range Departments() {
		out[d.String()] = a[d]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by department name or alias.
func (a *Allocations) UnmarshalJSON(data []byte) error {
	var in map[string]float64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var out Allocations
	seen := make(map[Department]string, len(in))
	for name, pct := range in {
		d, err := parseUniqueDepartment(name, seen)
		if err != nil {
			return err
		}
		out[d] = pct
	}
	*a = out
	return nil
}

// Visibility holds one show-phase flag per department.
type Visibility [departmentCount]bool

// AllVisible returns a Visibility with every department shown.
func AllVisible() Visibility {
	var v Visibility
	for i := range v {
		v[i] = true
	}
	return v
}

// Visible returns the flag for d. Invalid departments are never visible.
func (v Visibility) Visible(d Department) bool {
	return d.IsValid() && v[d]
}

// Hide returns a copy of v with the given departments hidden. Invalid
// departments are ignored.
func (v Visibility) Hide(departments ...Department) Visibility {
	for _, d := range departments {
		if d.IsValid() {
			v[d] = false
		}
	}
	return v
}

// Show returns a copy of v with the given departments shown. Invalid
// departments are ignored.
func (v Visibility) Show(departments ...Department) Visibility {
	for _, d := range departments {
		if d.IsValid() {
			v[d] = true
		}
	}
	return v
}

// Hidden returns the hidden departments in display order.
func (v Visibility) Hidden() []Department {
	var hidden []Department
	for _, d := range Departments() {
		if !v[d] {
			hidden = append(hidden, d)
		}
	}
	return hidden
}

// AllShown returns true if no department is hidden.
func (v Visibility) AllShown() bool {
	for _, shown := range v {
		if !shown {
			return false
		}
	}
	return true
}

// MarshalJSON encodes visibility as an object keyed by department name.
func (v Visibility) MarshalJSON() ([]byte, error) {
	out := make(map[string]bool, departmentCount)
	for _, d := range Departments() {
		out[d.String()] = v[d]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by department name or alias.
// Departments missing from the object are visible.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	var in map[string]bool
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := AllVisible()
	seen := make(map[Department]string, len(in))
	for name, shown := range in {
		d, err := parseUniqueDepartment(name, seen)
		if err != nil {
			return err
		}
		out[d] = shown
	}
	*v = out
	return nil
}

// Redistribute rescales the visible departments so they sum to 100 and
// zeroes the hidden ones. Results are rounded to two decimals. With every
// department visible the input is returned unchanged; when nothing visible
// carries a percentage the result is all zeros.
func Redistribute(raw Allocations, visibility Visibility) Allocations {
	if visibility.AllShown() {
		return raw
	}

	var visibleSum float64
	for _, d := range Departments() {
		if visibility[d] {
			visibleSum += raw[d]
		}
	}

	var out Allocations
	if visibleSum <= 0 {
		return out
	}

	factor := 100 / visibleSum
	for _, d := range Departments() {
		if visibility[d] {
			out[d] = roundTo2(raw[d] * factor)
		}
	}
	return out
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
