package xstore

import (
	"time"

	"github.com/bft-labs/xstore/internal/app"
	"github.com/bft-labs/xstore/internal/domain"
)

// State is the connection state of a Client.
type State int

const (
	// StateConnecting is the initial state, until the hub signals readiness.
	StateConnecting State = iota

	// StateConnected means the hub has acknowledged the client.
	StateConnected

	// StateClosed is terminal.
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent describes one connection state transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// RequestEvent describes one settled request.
type RequestEvent struct {
	// ID is the request id, "<client id>:<counter>".
	ID string

	// Method is the namespaced method, e.g. "cross-storage:get".
	Method string

	Duration time.Duration

	// Err is nil on success.
	Err error
}

// EventHandler receives client events.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnRequestComplete(RequestEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only the events you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnRequestComplete(RequestEvent) {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnRequestComplete(method domain.Method, id string, duration time.Duration, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnRequestComplete(RequestEvent{
		ID:       id,
		Method:   method.Qualified(),
		Duration: duration,
		Err:      err,
	})
}

func convertState(s app.State) State {
	switch s {
	case app.StateConnected:
		return StateConnected
	case app.StateClosed:
		return StateClosed
	default:
		return StateConnecting
	}
}
