// Package domain contains the wire protocol and error vocabulary shared by
// the xstore client and the reference hub.
//
// This package has no dependencies on transports, logging or storage and
// holds only the pieces both ends of the channel must agree on.
//
// # Contents
//
//   - Control strings exchanged during the handshake ([ControlReady],
//     [ControlUnavailable], [ControlPoll])
//   - [Request] and [Response] envelopes and their JSON encoding
//   - [Method] names and namespacing helpers
//   - Sentinel errors and [RemoteError]
package domain
