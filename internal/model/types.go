package model

import (
	"bytes"
	"strconv"
)

// ID is a numeric identifier that the remote service may serialize as a
// JSON number, a numeric string, an empty string, or null. Any value
// that does not parse decodes to zero rather than failing, because the
// service is not consistent about field types across endpoints.
type ID int64

// UnmarshalJSON implements the json.Unmarshaler interface for ID.
func (id *ID) UnmarshalJSON(b []byte) error {
	*id = ID(lenientInt(b))
	return nil
}

// Seconds is an effort duration stored as seconds. Like ID it tolerates
// numbers, numeric strings, empty strings, and null; a missing or
// unparseable value is zero, never an error.
type Seconds int64

// UnmarshalJSON implements the json.Unmarshaler interface for Seconds.
func (s *Seconds) UnmarshalJSON(b []byte) error {
	*s = Seconds(lenientInt(b))
	return nil
}

// Hours converts the stored seconds to fractional hours, the unit every
// report row carries.
func (s Seconds) Hours() float64 {
	return float64(s) / 3600
}

// lenientInt parses a raw JSON value as an integer, returning 0 for
// null, empty strings, and anything else that does not parse.
func lenientInt(b []byte) int64 {
	v := bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return 0
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		// Some endpoints report durations as floats.
		f, ferr := strconv.ParseFloat(string(v), 64)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return n
}
