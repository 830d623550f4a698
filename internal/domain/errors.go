package domain

import "errors"

// Domain errors returned by the public API. Check them with errors.Is.
var (
	// ErrClosed is returned for any operation attempted after the client closed.
	ErrClosed = errors.New("xstore: client has closed")

	// ErrDisconnected is returned when no agent handle is present.
	ErrDisconnected = errors.New("xstore: client is in disconnected state")

	// ErrConnectTimeout is returned when OnConnect exceeds the client timeout.
	ErrConnectTimeout = errors.New("xstore: could not connect")

	// ErrRequestTimeout is returned, wrapped with the method name, when no
	// response arrives within the client timeout.
	ErrRequestTimeout = errors.New("xstore: request timeout")

	// ErrChannelUnavailable is returned to connect waiters when the hub
	// reports that its backing store is inaccessible.
	ErrChannelUnavailable = errors.New("xstore: closing client, hub storage is unavailable")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("xstore: invalid configuration")
)

// RemoteError carries an error string reported by the hub for one request.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}
