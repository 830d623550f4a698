package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/xstore/internal/domain"
	"github.com/bft-labs/xstore/internal/ports"
)

// errInvalidTransition is reported by transitionLocked for a move the state
// machine does not allow.
var errInvalidTransition = errors.New("xstore: invalid connection state transition")

// State represents the connection state of a client.
type State int

const (
	StateConnecting State = iota
	StateConnected
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

// EventEmitter is called when the connection state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// waiter is one pending OnConnect call. It is settled by whoever removes it
// from the connection's queue.
type waiter struct {
	ch    chan error
	timer *time.Timer
}

// Connection is the CONNECTING -> CONNECTED -> CLOSED state machine together
// with the queue of callers waiting for the handshake.
type Connection struct {
	mu           sync.Mutex
	state        State
	waiters      []*waiter
	connected    chan struct{}
	closed       chan struct{}
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewConnection creates a connection in StateConnecting.
func NewConnection(logger ports.Logger, emitter EventEmitter) *Connection {
	return &Connection{
		state:        StateConnecting,
		connected:    make(chan struct{}),
		closed:       make(chan struct{}),
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current connection state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected is closed when the connection reaches StateConnected.
func (c *Connection) Connected() <-chan struct{} {
	return c.connected
}

// Done is closed when the connection reaches StateClosed.
func (c *Connection) Done() <-chan struct{} {
	return c.closed
}

// MarkConnected performs the one-time CONNECTING -> CONNECTED transition and
// succeeds every queued waiter. It reports whether the transition happened.
func (c *Connection) MarkConnected(reason string) bool {
	c.mu.Lock()
	if c.state != StateConnecting {
		c.mu.Unlock()
		return false
	}
	oldState, drained, _ := c.transitionLocked(StateConnected)
	c.mu.Unlock()

	c.settle(drained, nil)
	c.emit(oldState, StateConnected, reason)
	return true
}

// Close enters StateClosed and fails every queued waiter with cause. It
// reports whether this call performed the transition; closing an already
// closed connection is a no-op.
func (c *Connection) Close(reason string, cause error) bool {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return false
	}
	oldState, _, _ := c.transitionLocked(StateClosed)
	drained := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	if cause == nil {
		cause = domain.ErrClosed
	}
	c.settle(drained, cause)
	c.emit(oldState, StateClosed, reason)
	return true
}

// Wait blocks until the connection is established. It returns nil at once
// when already connected and domain.ErrClosed at once when closed. Otherwise
// the caller is queued with its own timer and receives
// domain.ErrConnectTimeout if the handshake does not finish in time.
func (c *Connection) Wait(ctx context.Context, timeout time.Duration) error {
	c.mu.Lock()
	switch c.state {
	case StateConnected:
		c.mu.Unlock()
		return nil
	case StateClosed:
		c.mu.Unlock()
		return domain.ErrClosed
	}

	w := &waiter{ch: make(chan error, 1)}
	c.waiters = append(c.waiters, w)
	w.timer = time.AfterFunc(timeout, func() {
		if c.removeWaiter(w) {
			c.logger.Debug("connect wait timed out", ports.Duration("timeout", timeout))
			w.ch <- domain.ErrConnectTimeout
		}
	})
	c.mu.Unlock()

	select {
	case err := <-w.ch:
		return err
	case <-ctx.Done():
		if c.removeWaiter(w) {
			w.timer.Stop()
			return ctx.Err()
		}
		return <-w.ch
	}
}

// Waiting returns the number of queued connect waiters.
func (c *Connection) Waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// transitionLocked validates and applies a transition. On a move to
// StateConnected it drains the waiter queue and returns it for settlement
// outside the lock. Callers must hold c.mu.
func (c *Connection) transitionLocked(newState State) (State, []*waiter, error) {
	oldState := c.state

	switch oldState {
	case StateConnecting:
		if newState != StateConnected && newState != StateClosed {
			return oldState, nil, errInvalidTransition
		}
	case StateConnected:
		if newState != StateClosed {
			return oldState, nil, errInvalidTransition
		}
	case StateClosed:
		return oldState, nil, domain.ErrClosed
	}

	c.state = newState

	var drained []*waiter
	switch newState {
	case StateConnected:
		close(c.connected)
		drained = c.waiters
		c.waiters = nil
	case StateClosed:
		close(c.closed)
	}
	return oldState, drained, nil
}

func (c *Connection) removeWaiter(w *waiter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, queued := range c.waiters {
		if queued == w {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Connection) settle(waiters []*waiter, err error) {
	for _, w := range waiters {
		if w.timer != nil {
			w.timer.Stop()
		}
		w.ch <- err
	}
}

func (c *Connection) emit(oldState, newState State, reason string) {
	if c.eventEmitter != nil {
		c.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	c.logger.Info("connection state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)
}
