package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attachment is the JSON column shape for an item document. The stored form
// is a remote reference {url, name}; rows written by older clients may carry
// an embedded payload {name, type, size, data} instead, which the attachment
// service normalizes into a stored object on first touch. Exactly one of the
// two forms is authoritative at a time.
type Attachment struct {
	URL  string `json:"url,omitempty"`
	Name string `json:"name,omitempty"`

	// Embedded-payload form. Data is base64.
	MimeType  string `json:"type,omitempty"`
	SizeBytes int64  `json:"size,omitempty"`
	Data      string `json:"data,omitempty"`
}

// IsRemote reports whether the attachment is a stored reference.
func (a *Attachment) IsRemote() bool {
	return a != nil && a.URL != ""
}

// IsEmbedded reports whether the attachment carries an inline base64 payload.
func (a *Attachment) IsEmbedded() bool {
	return a != nil && a.URL == "" && a.Data != ""
}

// Value implements driver.Valuer. A nil attachment persists as SQL NULL.
func (a *Attachment) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshaling attachment: %w", err)
	}
	return string(payload), nil
}

// Scan implements sql.Scanner. Malformed column JSON scans as an empty
// attachment rather than failing the row load; the caller treats the empty
// form as "no attachment".
func (a *Attachment) Scan(src any) error {
	if src == nil {
		*a = Attachment{}
		return nil
	}

	var payload []byte
	switch v := src.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	default:
		return fmt.Errorf("unsupported attachment column type %T", src)
	}

	var decoded Attachment
	if err := json.Unmarshal(payload, &decoded); err != nil {
		*a = Attachment{}
		return nil
	}
	*a = decoded
	return nil
}

// Empty reports whether no attachment is present in either form.
func (a *Attachment) Empty() bool {
	return a == nil || (a.URL == "" && a.Data == "")
}
