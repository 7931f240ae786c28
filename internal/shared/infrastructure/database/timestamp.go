package database

import "time"

// timestampLayout is fixed width so stored timestamps compare correctly as
// text on both drivers.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t in UTC for a TEXT timestamp column.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTime parses a value written by FormatTime. RFC3339 is accepted for
// rows written by hand.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// NullableTime converts an optional timestamp column.
func NullableTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := ParseTime(*s)
	if err != nil {
		return nil
	}
	return &t
}
