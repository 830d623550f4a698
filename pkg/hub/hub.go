package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/xstore/internal/domain"
	"github.com/bft-labs/xstore/pkg/hub/store"
	"github.com/bft-labs/xstore/pkg/log"
	"github.com/bft-labs/xstore/pkg/origin"
)

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger log.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// Hub answers storage requests on behalf of permitted origins.
type Hub struct {
	store   store.Store
	logger  log.Logger
	now     func() time.Time
	plugins []Plugin

	mu    sync.RWMutex
	perms *Permissions
}

// incomingRequest is a request as sent by any client. The id is echoed
// verbatim, whatever its JSON type.
type incomingRequest struct {
	ID     json.RawMessage `json:"id"`
	Method json.RawMessage `json:"method"`
	Params json.RawMessage `json:"params"`
}

type reply struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

type setParams struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
	TTL   float64         `json:"ttl"`
}

// New creates a hub serving st under perms.
func New(st store.Store, perms *Permissions, opts ...Option) *Hub {
	h := &Hub{
		store:  st,
		perms:  perms,
		logger: log.NewNoopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetPermissions replaces the permissions applied to later requests.
func (h *Hub) SetPermissions(perms *Permissions) {
	h.mu.Lock()
	h.perms = perms
	h.mu.Unlock()

	h.logger.Info("permissions updated", log.Int("rules", len(perms.Rules())))
}

// Permissions returns the permissions currently in force.
func (h *Hub) Permissions() *Permissions {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.perms
}

// Greeting is the control message a freshly loaded hub sends its parent:
// ready when the store is accessible and unavailable otherwise.
func (h *Hub) Greeting(ctx context.Context) string {
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("store unavailable", log.Err(err))
		return domain.ControlUnavailable
	}
	return domain.ControlReady
}

// Handle processes one inbound message from eventOrigin and returns the
// reply to post back. ok is false when the message warrants no reply.
func (h *Hub) Handle(ctx context.Context, eventOrigin, data string) (string, bool) {
	switch data {
	case domain.ControlPoll:
		return h.Greeting(ctx), true
	case domain.ControlReady:
		return "", false
	}

	var req incomingRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return "", false
	}
	var wire string
	if err := json.Unmarshal(req.Method, &wire); err != nil {
		return "", false
	}
	method, ok := domain.ParseMethod(wire)
	if !ok {
		return "", false
	}

	requester := origin.Normalize(eventOrigin)
	resp := reply{ID: req.ID}

	if !h.Permissions().Allowed(requester, method) {
		resp.Error = "Invalid permissions for " + string(method)
		h.logger.Warn("request denied",
			log.String("origin", requester),
			log.String("method", string(method)),
		)
	} else {
		result, err := h.execute(ctx, method, req.Params)
		if err != nil {
			resp.Error = err.Error()
		}
		resp.Result = result
		h.logger.Debug("request handled",
			log.String("origin", requester),
			log.String("method", string(method)),
			log.Bool("failed", err != nil),
		)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("encode reply", log.Err(err))
		return "", false
	}
	return string(out), true
}

func (h *Hub) execute(ctx context.Context, m domain.Method, params json.RawMessage) (json.RawMessage, error) {
	switch m {
	case domain.MethodSet:
		var p setParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		value := p.Value
		if len(value) == 0 {
			value = json.RawMessage("null")
		}
		var expiresAt time.Time
		if p.TTL > 0 {
			expiresAt = h.now().Add(time.Duration(p.TTL * float64(time.Millisecond)))
		}
		return nil, h.store.Set(ctx, p.Key, string(value), expiresAt)

	case domain.MethodGet:
		var p domain.KeysParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		values := make([]json.RawMessage, 0, len(p.Keys))
		for _, k := range p.Keys {
			v, ok, err := h.store.Get(ctx, k)
			if err != nil {
				return nil, err
			}
			if !ok || !json.Valid([]byte(v)) {
				values = append(values, json.RawMessage("null"))
				continue
			}
			values = append(values, json.RawMessage(v))
		}
		switch len(values) {
		case 0:
			return nil, nil
		case 1:
			return values[0], nil
		}
		return json.Marshal(values)

	case domain.MethodDel:
		var p domain.KeysParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return nil, h.store.Delete(ctx, p.Keys...)

	case domain.MethodClear:
		return nil, h.store.Clear(ctx)

	case domain.MethodGetKeys:
		keys, err := h.store.Keys(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(keys)
	}
	return nil, fmt.Errorf("unsupported method %s", m)
}

var errMissingParams = errors.New("missing params")

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errMissingParams
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
