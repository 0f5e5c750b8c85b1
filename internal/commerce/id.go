package commerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a server-issued identifier. The commerce API emits integers, but the
// client treats identifiers as opaque and accepts either JSON numbers or
// strings.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }

// MarshalJSON writes numeric identifiers back as JSON numbers so the server
// receives the type it issued. Only the canonical decimal form is written
// bare; "007" or "+5" stay strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("commerce: invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}
