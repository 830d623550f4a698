package xstore

import (
	"bytes"
	"encoding/json"
)

// Value is a stored value that may be absent, in the manner of
// sql.NullString. Valid is false when the key does not exist.
type Value struct {
	String string
	Valid  bool
}

// decodeValue converts one JSON result element. Strings are unquoted; other
// non-null JSON values are kept as their literal text.
func decodeValue(raw json.RawMessage) Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return Value{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Value{String: s, Valid: true}
	}
	return Value{String: string(raw), Valid: true}
}
