package xstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/xstore/internal/app"
	"github.com/bft-labs/xstore/internal/domain"
	"github.com/bft-labs/xstore/pkg/log"
	"github.com/bft-labs/xstore/pkg/origin"
)

// Client stores and retrieves values through a hub embedded in its host
// document. Create one with New; it is safe for concurrent use.
type Client struct {
	id      string
	origin  string
	config  Config
	session *app.Session
	logger  Logger
}

// New creates a client and attaches to, or embeds, the hub frame. It returns
// once the frame exists; call OnConnect to wait for the hub handshake.
// An embedder and a listener are required (see WithHost).
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.embedder == nil || o.listener == nil {
		return nil, fmt.Errorf("%w: an embedder and a listener are required", ErrInvalidConfig)
	}

	base := o.location
	u, err := origin.Parse(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: location: %v", ErrInvalidConfig, err)
	}
	if u != nil {
		base = u
	}

	c := &Client{
		id:     uuid.NewString(),
		origin: origin.Resolve(cfg.HubURL, base),
		config: cfg,
		logger: o.logger,
	}

	var events app.SessionEvents
	if o.eventHandler != nil {
		events = &eventEmitterWrapper{handler: o.eventHandler}
	}

	session, err := app.NewSession(ctx, app.SessionConfig{
		ClientID:     c.id,
		HubURL:       cfg.HubURL,
		HubOrigin:    c.origin,
		FrameID:      cfg.FrameID,
		Timeout:      cfg.Timeout,
		PollInterval: cfg.PollInterval,
	}, o.embedder, o.listener, o.logger, events)
	if err != nil {
		return nil, err
	}
	c.session = session

	c.logger.Debug("client created",
		log.String("id", c.id),
		log.String("hub_origin", c.origin),
	)
	return c, nil
}

// ID returns the client identity that prefixes every request id.
func (c *Client) ID() string {
	return c.id
}

// Origin returns the resolved hub origin.
func (c *Client) Origin() string {
	return c.origin
}

// State returns the current connection state.
func (c *Client) State() State {
	return convertState(c.session.Connection().State())
}

// OnConnect blocks until the hub handshake completes. It returns nil at once
// when already connected and ErrClosed at once when closed. Otherwise it
// fails with ErrConnectTimeout after the client timeout, with
// ErrChannelUnavailable when the hub reports its storage unavailable, or
// with ctx.Err().
func (c *Client) OnConnect(ctx context.Context) error {
	return c.session.Connection().Wait(ctx, c.config.Timeout)
}

// Set stores value under key.
func (c *Client) Set(ctx context.Context, key, value string) error {
	_, err := c.call(ctx, domain.MethodSet, domain.SetParams{Key: key, Value: value})
	return err
}

// SetTTL stores value under key for ttl. Hubs that do not support expiry
// store the value without one.
func (c *Client) SetTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := c.call(ctx, domain.MethodSet, domain.SetParams{Key: key, Value: value, TTL: ttl.Milliseconds()})
	return err
}

// Get returns the value stored under key. An absent key yields a Value with
// Valid set to false.
func (c *Client) Get(ctx context.Context, key string) (Value, error) {
	raw, err := c.call(ctx, domain.MethodGet, domain.KeysParams{Keys: []string{key}})
	if err != nil {
		return Value{}, err
	}
	return decodeValue(raw), nil
}

// GetMany returns the values of every key, index-aligned with the
// arguments.
func (c *Client) GetMany(ctx context.Context, key string, moreKeys ...string) ([]Value, error) {
	keys := append([]string{key}, moreKeys...)
	raw, err := c.call(ctx, domain.MethodGet, domain.KeysParams{Keys: keys})
	if err != nil {
		return nil, err
	}
	if len(keys) == 1 {
		return []Value{decodeValue(raw)}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decode get result: %w", err)
	}
	if len(elems) != len(keys) {
		return nil, fmt.Errorf("decode get result: got %d values for %d keys", len(elems), len(keys))
	}
	values := make([]Value, len(elems))
	for i, e := range elems {
		values[i] = decodeValue(e)
	}
	return values, nil
}

// Del removes every key.
func (c *Client) Del(ctx context.Context, key string, moreKeys ...string) error {
	keys := append([]string{key}, moreKeys...)
	_, err := c.call(ctx, domain.MethodDel, domain.KeysParams{Keys: keys})
	return err
}

// Clear removes every key visible to the hub.
func (c *Client) Clear(ctx context.Context) error {
	_, err := c.call(ctx, domain.MethodClear, nil)
	return err
}

// GetKeys lists every key visible to the hub.
func (c *Client) GetKeys(ctx context.Context) ([]string, error) {
	raw, err := c.call(ctx, domain.MethodGetKeys, nil)
	if err != nil {
		return nil, err
	}
	keys := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return keys, nil
	}
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decode getKeys result: %w", err)
	}
	return keys, nil
}

// Close detaches the hub frame, releases the inbound subscription and
// enters StateClosed. Requests already in flight are not failed; they end
// with ErrRequestTimeout. Closing twice is a no-op.
func (c *Client) Close() {
	c.session.Close()
}

func (c *Client) call(ctx context.Context, m domain.Method, params any) (json.RawMessage, error) {
	call, err := c.session.Correlator().Dispatch(m, params)
	if err != nil {
		return nil, err
	}
	return call.Wait(ctx)
}
