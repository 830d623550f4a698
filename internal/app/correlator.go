package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bft-labs/xstore/internal/domain"
	"github.com/bft-labs/xstore/internal/ports"
)

// RequestEventEmitter is called once per dispatched request when it settles.
type RequestEventEmitter interface {
	OnRequestComplete(method domain.Method, id string, duration time.Duration, err error)
}

// Call is the deferred result of one dispatched operation.
type Call struct {
	ID     string
	Method domain.Method

	started time.Time
	done    chan struct{}
	result  json.RawMessage
	err     error
}

// Done is closed once the call has settled.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call settles or ctx is done. Cancelling ctx does not
// cancel the request; its pending entry still ends by response or timeout.
func (c *Call) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Call) settle(result json.RawMessage, err error) {
	c.result = result
	c.err = err
	close(c.done)
}

// pendingRequest owns a Call and the timer enforcing its timeout.
type pendingRequest struct {
	call  *Call
	timer *time.Timer
}

// CorrelatorConfig configures a Correlator.
type CorrelatorConfig struct {
	// ClientID prefixes every request id.
	ClientID string

	// TargetOrigin restricts outbound messages; "*" for file contexts.
	TargetOrigin string

	// Timeout bounds each request.
	Timeout time.Duration
}

// Correlator assigns request ids, tracks pending requests, matches responses
// to them and enforces per-request timeouts.
type Correlator struct {
	config  CorrelatorConfig
	conn    *Connection
	window  func() ports.Window
	logger  ports.Logger
	emitter RequestEventEmitter

	mu      sync.Mutex
	count   uint64
	pending map[string]*pendingRequest
}

// NewCorrelator creates a correlator gated by conn. window returns the
// current agent handle, or nil when none is present.
func NewCorrelator(
	config CorrelatorConfig,
	conn *Connection,
	window func() ports.Window,
	logger ports.Logger,
	emitter RequestEventEmitter,
) *Correlator {
	return &Correlator{
		config:  config,
		conn:    conn,
		window:  window,
		logger:  logger,
		emitter: emitter,
		pending: make(map[string]*pendingRequest),
	}
}

// Dispatch sends one operation to the agent and returns its deferred result.
// Usage errors (domain.ErrClosed, domain.ErrDisconnected) and send failures
// are returned directly and never through the Call.
func (c *Correlator) Dispatch(method domain.Method, params any) (*Call, error) {
	if c.conn.State() == StateClosed {
		return nil, domain.ErrClosed
	}
	w := c.window()
	if w == nil {
		return nil, domain.ErrDisconnected
	}
	if params == nil {
		params = struct{}{}
	}

	c.mu.Lock()
	c.count++
	id := c.config.ClientID + ":" + strconv.FormatUint(c.count, 10)
	call := &Call{
		ID:      id,
		Method:  method,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	req := domain.Request{ID: id, Method: method.Qualified(), Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("encode %s request: %w", method.Qualified(), err)
	}

	p := &pendingRequest{call: call}
	c.pending[id] = p
	p.timer = time.AfterFunc(c.config.Timeout, func() { c.expire(id) })
	c.mu.Unlock()

	c.logger.Debug("dispatching request",
		ports.String("id", id),
		ports.String("method", req.Method),
	)

	if err := w.PostMessage(string(payload), c.config.TargetOrigin); err != nil {
		if c.take(id) != nil {
			p.timer.Stop()
		}
		return nil, fmt.Errorf("post %s request: %w", req.Method, err)
	}

	return call, nil
}

// Deliver settles the pending request matching resp.ID. It reports whether
// one was found; unknown ids, including late responses to timed out
// requests, are dropped.
func (c *Correlator) Deliver(resp domain.Response) bool {
	p := c.take(resp.ID)
	if p == nil {
		c.logger.Debug("dropping response for unknown request", ports.String("id", resp.ID))
		return false
	}
	p.timer.Stop()

	var err error
	if resp.Error != "" {
		err = &domain.RemoteError{Message: resp.Error}
	}
	c.complete(p.call, resp.Result, err)
	return true
}

// Pending returns the number of requests awaiting a response or timeout.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Correlator) expire(id string) {
	p := c.take(id)
	if p == nil {
		return
	}
	err := fmt.Errorf("%w: could not perform %s", domain.ErrRequestTimeout, p.call.Method.Qualified())
	c.logger.Warn("request timed out",
		ports.String("id", id),
		ports.String("method", p.call.Method.Qualified()),
		ports.Duration("timeout", c.config.Timeout),
	)
	c.complete(p.call, nil, err)
}

// take removes and returns the pending entry for id. Whoever takes an entry
// is the only one allowed to settle its call.
func (c *Correlator) take(id string) *pendingRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	return p
}

func (c *Correlator) complete(call *Call, result json.RawMessage, err error) {
	call.settle(result, err)
	if c.emitter != nil {
		c.emitter.OnRequestComplete(call.Method, call.ID, time.Since(call.started), err)
	}
}
