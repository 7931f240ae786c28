package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNumber is returned for values that are not finite numbers.
var ErrInvalidNumber = errors.New("invalid number")

// Number is a float that decodes from either a JSON number or a numeric
// string. Upstream sends percentages and amounts both ways.
type Number float64

// NewNumber wraps f, rejecting NaN and infinities.
func NewNumber(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidNumber, f)
	}
	return Number(f), nil
}

// Float64 returns the underlying value.
func (n Number) Float64() float64 { return float64(n) }

// ParseNumber parses a numeric string. The empty string is zero; "NaN" and
// "Inf" are rejected.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidNumber, s, err)
	}
	return NewNumber(f)
}

// UnmarshalJSON accepts null, a number, or a quoted number.
func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseNumber(s)
		if err != nil {
			return err
		}
		*n = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w %s: %w", ErrInvalidNumber, raw, err)
	}
	parsed, err := NewNumber(f)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
