package xstore

import (
	"net/url"

	"github.com/bft-labs/xstore/internal/ports"
	"github.com/bft-labs/xstore/pkg/log"
)

// Transport and embedding contracts, re-exported for implementers.
type (
	// Window posts text messages into a hub frame.
	Window = ports.Window

	// Listener delivers inbound message events to the client.
	Listener = ports.Listener

	// Subscription is a registered inbound handler.
	Subscription = ports.Subscription

	// MessageEvent is one inbound message.
	MessageEvent = ports.MessageEvent

	// Embedder locates or creates hub frames.
	Embedder = ports.Embedder

	// Frame is an embedded hub context.
	Frame = ports.Frame

	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger
)

// Host is a document that can both embed frames and deliver their messages.
// *page.Document and *wsframe.Document are hosts.
type Host interface {
	Embedder
	Listener
	Location() *url.URL
}

// Option configures optional behavior of a Client.
type Option func(*options)

type options struct {
	logger       Logger
	embedder     Embedder
	listener     Listener
	location     *url.URL
	eventHandler EventHandler
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEmbedder sets the embedder used to find or create the hub frame.
func WithEmbedder(e Embedder) Option {
	return func(o *options) {
		o.embedder = e
	}
}

// WithListener sets the source of inbound messages.
func WithListener(l Listener) Option {
	return func(o *options) {
		o.listener = l
	}
}

// WithHost uses h as both embedder and listener. Its location is used when
// Config.Location is empty.
func WithHost(h Host) Option {
	return func(o *options) {
		o.embedder = h
		o.listener = h
		o.location = h.Location()
	}
}

// WithEventHandler sets a handler for client events.
// Events are called synchronously from the goroutine that caused them.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}
