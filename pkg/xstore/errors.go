package xstore

import "github.com/bft-labs/xstore/internal/domain"

// Errors returned by Client. Check them with errors.Is.
var (
	ErrClosed             = domain.ErrClosed
	ErrDisconnected       = domain.ErrDisconnected
	ErrConnectTimeout     = domain.ErrConnectTimeout
	ErrRequestTimeout     = domain.ErrRequestTimeout
	ErrChannelUnavailable = domain.ErrChannelUnavailable
	ErrInvalidConfig      = domain.ErrInvalidConfig
)

// RemoteError is an error reported by the hub for one request, such as
// "Invalid permissions for get". Match it with errors.As.
type RemoteError = domain.RemoteError
