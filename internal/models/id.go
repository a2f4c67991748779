package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is the canonical identifier of every backend entity. The backend sends
// ids as JSON numbers on some endpoints and as strings on others; both decode
// to the same int64 here so callers compare ids numerically.
type ID int64

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalJSON leaves id untouched for JSON null, so a missing company or
// owner decodes as zero.
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	v, ok, err := parseID(data)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("id: not a number: %s", data)
	}
	*id = ID(v)
	return nil
}

// ParseID converts a path or form value into an ID.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id: %q: %w", s, err)
	}
	return ID(v), nil
}

// OptionalID is an id that may be missing or unusable. Null, absent and
// non-numeric values decode to Valid=false without error.
type OptionalID struct {
	ID    ID
	Valid bool
}

func SomeID(id ID) OptionalID { return OptionalID{ID: id, Valid: true} }

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return o.ID.MarshalJSON()
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	v, ok, err := parseID(data)
	if err != nil || !ok {
		*o = OptionalID{}
		return nil
	}
	*o = OptionalID{ID: ID(v), Valid: true}
	return nil
}

// parseID accepts 12, 12.0, "12" and " 12 ". ok is false for null and for
// strings that do not hold an integer.
func parseID(data []byte) (int64, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false, err
		}
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, false, nil
		}
		return v, true, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, false, fmt.Errorf("id: %w", err)
	}
	if v, err := n.Int64(); err == nil {
		return v, true, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, false, nil
	}
	return int64(f), true, nil
}
