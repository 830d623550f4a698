package log

import "time"

// Logger receives the client, hub and CLI diagnostics. Messages are short
// lower-case phrases ("frame embedded", "request timed out"); context such
// as the frame id, origin or request id travels in fields.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key-value pair attached to a log entry. Build fields with the
// constructors below; adapters render any other value generically.
type Field struct {
	Key   string
	Value any
}

// String attaches an identifier or URL, e.g. String("origin", o).
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int attaches a count, e.g. the number of permission rules.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration attaches a timeout or elapsed time.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err attaches err under the "error" key.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
