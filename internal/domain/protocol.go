package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Namespace prefixes every control string and every request method.
const Namespace = "cross-storage:"

// Control messages are plain strings, never JSON.
const (
	// ControlReady is sent by the hub once it can serve requests.
	ControlReady = Namespace + "ready"

	// ControlUnavailable is sent by the hub when its backing store is inaccessible.
	ControlUnavailable = Namespace + "unavailable"

	// ControlPoll is sent by a client attached to an existing frame until it
	// observes a ready signal.
	ControlPoll = Namespace + "poll"
)

// Method is an un-namespaced storage operation name.
type Method string

const (
	MethodSet     Method = "set"
	MethodGet     Method = "get"
	MethodDel     Method = "del"
	MethodClear   Method = "clear"
	MethodGetKeys Method = "getKeys"
)

// Methods lists every operation the protocol defines.
var Methods = []Method{MethodSet, MethodGet, MethodDel, MethodClear, MethodGetKeys}

// Qualified returns the namespaced wire name, e.g. "cross-storage:get".
func (m Method) Qualified() string {
	return Namespace + string(m)
}

// Valid reports whether m is one of the defined operations.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMethod strips the namespace from a wire method name. The second
// return is false when the prefix is missing or nothing follows it.
func ParseMethod(wire string) (Method, bool) {
	if !strings.HasPrefix(wire, Namespace) {
		return "", false
	}
	m := Method(strings.TrimPrefix(wire, Namespace))
	if m == "" {
		return "", false
	}
	return m, true
}

// IsControl reports whether payload carries the protocol namespace prefix.
func IsControl(payload string) bool {
	return strings.HasPrefix(payload, Namespace)
}

// Request is the outbound envelope for one operation.
type Request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

// Response is the inbound envelope answering a Request.
type Response struct {
	ID     string          `json:"id"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// SetParams are the parameters of a set request. TTL is in milliseconds and
// is honored by the reference hub only.
type SetParams struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	TTL   int64  `json:"ttl,omitempty"`
}

// KeysParams are the parameters of get and del requests.
type KeysParams struct {
	Keys []string `json:"keys"`
}

// wireResponse is a Response as received. The error field may carry any JSON
// value.
type wireResponse struct {
	ID     string          `json:"id"`
	Error  json.RawMessage `json:"error"`
	Result json.RawMessage `json:"result"`
}

// DecodeResponse parses a payload as a Response. The second return is false
// for anything that is not a JSON object carrying a non-empty id.
func DecodeResponse(payload string) (Response, bool) {
	var wire wireResponse
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return Response{}, false
	}
	if wire.ID == "" {
		return Response{}, false
	}
	return Response{
		ID:     wire.ID,
		Error:  errorText(wire.Error),
		Result: wire.Result,
	}, true
}

// errorText converts an error field to its message. Absent and falsy values
// (null, false, 0, "") mean no error; strings are unquoted and any other
// value is kept as its JSON text.
func errorText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
