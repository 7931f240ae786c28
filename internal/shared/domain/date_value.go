package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateKind tags the variant held by a DateValue.
type DateKind uint8

const (
	// DateUnset means the field was absent or null.
	DateUnset DateKind = iota
	// DateKnown means the field holds a concrete date.
	DateKnown
	// DatePending means the date has not been decided yet ("PENDING").
	DatePending
	// DateNotApplicable means the date does not apply to the record ("N/A").
	DateNotApplicable
)

const (
	pendingLiteral       = "PENDING"
	notApplicableLiteral = "N/A"
)

// ErrInvalidDate is returned when a string is neither a date nor a known marker.
var ErrInvalidDate = errors.New("invalid date value")

// dateLayouts are tried in order when parsing upstream date strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// DateValue is a date field that upstream may send as a date, null,
// "PENDING" or "N/A".
type DateValue struct {
	kind DateKind
	at   time.Time
}

// KnownDate wraps a concrete date.
func KnownDate(t time.Time) DateValue {
	return DateValue{kind: DateKnown, at: t.UTC()}
}

// PendingDate returns the "PENDING" variant.
func PendingDate() DateValue {
	return DateValue{kind: DatePending}
}

// NotApplicableDate returns the "N/A" variant.
func NotApplicableDate() DateValue {
	return DateValue{kind: DateNotApplicable}
}

// ParseDateValue parses an upstream date string. The empty string is unset.
func ParseDateValue(s string) (DateValue, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "":
		return DateValue{}, nil
	case pendingLiteral, "TBD":
		return PendingDate(), nil
	case notApplicableLiteral, "NA":
		return NotApplicableDate(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return KnownDate(t), nil
		}
	}
	return DateValue{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MustParseDateValue is like ParseDateValue but panics on error. Intended for
// fixtures and tests.
func MustParseDateValue(s string) DateValue {
	d, err := ParseDateValue(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Kind returns the variant tag.
func (d DateValue) Kind() DateKind { return d.kind }

// IsKnown returns true if the value holds a concrete date.
func (d DateValue) IsKnown() bool { return d.kind == DateKnown }

// Time returns the concrete date and true for the known variant.
func (d DateValue) Time() (time.Time, bool) {
	if d.kind != DateKnown {
		return time.Time{}, false
	}
	return d.at, true
}

// String renders the value the way upstream sends it.
func (d DateValue) String() string {
	switch d.kind {
	case DateKnown:
		return d.at.Format(time.RFC3339)
	case DatePending:
		return pendingLiteral
	case DateNotApplicable:
		return notApplicableLiteral
	default:
		return ""
	}
}

// MarshalJSON encodes unset as null and every other variant as a string.
func (d DateValue) MarshalJSON() ([]byte, error) {
	if d.kind == DateUnset {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null or a string.
func (d *DateValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = DateValue{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	parsed, err := ParseDateValue(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML renders the value as its upstream string.
func (d DateValue) MarshalYAML() (any, error) {
	if d.kind == DateUnset {
		return nil, nil
	}
	return d.String(), nil
}

// UnmarshalYAML parses a scalar the same way as JSON strings.
func (d *DateValue) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDateValue(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the value as text; unset is NULL.
func (d DateValue) Value() (driver.Value, error) {
	if d.kind == DateUnset {
		return nil, nil
	}
	return d.String(), nil
}

// Scan reads a text or timestamp column.
func (d *DateValue) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = DateValue{}
		return nil
	case time.Time:
		*d = KnownDate(v)
		return nil
	case string:
		parsed, err := ParseDateValue(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, src)
	}
}
