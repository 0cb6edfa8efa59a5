package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a JSON array-of-strings column, used for awaiting tags.
type StringList []string

// Value implements driver.Valuer. A nil list persists as an empty array so
// the column never holds SQL NULL.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	payload, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshaling string list: %w", err)
	}
	return string(payload), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = StringList{}
		return nil
	}

	var payload []byte
	switch v := src.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	default:
		return fmt.Errorf("unsupported string list column type %T", src)
	}

	var decoded []string
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("unmarshaling string list: %w", err)
	}
	*l = decoded
	return nil
}

// Clone returns an independent copy.
func (l StringList) Clone() StringList {
	if l == nil {
		return nil
	}
	out := make(StringList, len(l))
	copy(out, l)
	return out
}
