// Package convert provides safe integer conversions.
package convert

import "math"

// IntToInt32Clamped converts an int to int32, clamping to the int32 range.
func IntToInt32Clamped(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// IntToUintClamped converts an int to uint, clamping negative values to 0.
func IntToUintClamped(v int) uint {
	if v < 0 {
		return 0
	}
	return uint(v)
}

// ShiftClamped returns 1<<n for n in [0, max], clamping n into that range.
func ShiftClamped(n, max int) int64 {
	if n > max {
		n = max
	}
	return int64(1) << IntToUintClamped(n)
}
