package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LooseInt decodes an integer that the browser client may send as a JSON
// number, a numeric string, an empty string or null. Valid is false for the
// latter two.
type LooseInt struct {
	Value int
	Valid bool
}

// NewLooseInt returns a valid LooseInt holding value.
func NewLooseInt(value int) LooseInt {
	return LooseInt{Value: value, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LooseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = LooseInt{}
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		raw = strings.TrimSpace(text)
		if raw == "" {
			*l = LooseInt{}
			return nil
		}
	}

	number, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", raw)
	}
	if number != float64(int(number)) {
		return fmt.Errorf("invalid integer %q", raw)
	}

	*l = LooseInt{Value: int(number), Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l LooseInt) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte(`""`), nil
	}
	return []byte(strconv.Itoa(l.Value)), nil
}

// Ptr returns the value as a pointer, nil when not valid.
func (l LooseInt) Ptr() *int {
	if !l.Valid {
		return nil
	}
	value := l.Value
	return &value
}
