package queryapi

import (
	"encoding/json"
	"fmt"
	"time"
)

// Rows is a positional result set from the query endpoint.
type Rows []Row

// Row wraps one result tuple. Column order is part of the contract with the
// remote endpoint; accessors validate index and type at this boundary so a
// reordered query surfaces as a mapping error instead of silently misread
// fields.
type Row []any

func (r Row) at(i int) (any, error) {
	if i < 0 || i >= len(r) {
		return nil, fmt.Errorf("column %d out of range (row has %d columns)", i, len(r))
	}
	return r[i], nil
}

// String returns the column as a string. Numeric identifiers are
// formatted; null is an error here, use StringOr or NullString for
// nullable columns.
func (r Row) String(i int) (string, error) {
	v, err := r.at(i)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case float64:
		return trimFloat(s), nil
	case json.Number:
		return s.String(), nil
	case nil:
		return "", fmt.Errorf("column %d is null", i)
	default:
		return "", fmt.Errorf("column %d is %T, expected string", i, v)
	}
}

// StringOr returns the column as a string, falling back to def when the
// column is null, missing, or empty. Numeric identifiers are formatted.
func (r Row) StringOr(i int, def string) string {
	v, err := r.at(i)
	if err != nil || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return def
		}
		return s
	case float64:
		return trimFloat(s)
	case json.Number:
		return s.String()
	default:
		return def
	}
}

// NullString returns a pointer to the column value, or nil for null/empty.
func (r Row) NullString(i int) *string {
	v, err := r.at(i)
	if err != nil || v == nil {
		return nil
	}
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}

// Int returns the column as an int. JSON numbers arrive as float64.
func (r Row) Int(i int) (int, error) {
	v, err := r.at(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("column %d: %w", i, err)
		}
		return int(parsed), nil
	case nil:
		return 0, fmt.Errorf("column %d is null", i)
	default:
		return 0, fmt.Errorf("column %d is %T, expected number", i, v)
	}
}

// IntOr returns the column as an int, falling back to def on null or
// mismatch.
func (r Row) IntOr(i, def int) int {
	n, err := r.Int(i)
	if err != nil {
		return def
	}
	return n
}

// CountAt reads a numeric aggregate, clamping to zero. Derived counts must
// never be presented as negative; the clamp lives here at the mapping
// boundary, not at render time.
func (r Row) CountAt(i int) int {
	n := r.IntOr(i, 0)
	if n < 0 {
		return 0
	}
	return n
}

// FloatPtr returns a nullable numeric column.
func (r Row) FloatPtr(i int) *float64 {
	v, err := r.at(i)
	if err != nil || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

// DateOr parses a timestamp column into a YYYY-MM-DD string, returning def
// when the column is null or unparseable.
func (r Row) DateOr(i int, def string) string {
	v, err := r.at(i)
	if err != nil || v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return def
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
