// Package xstore provides storage shared across origins through an embedded
// hub document.
//
// Example usage:
//
//	doc, err := wsframe.New("https://app.example/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := xstore.New(ctx, xstore.Config{HubURL: "wss://hub.example/hub"},
//	    xstore.WithHost(doc))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//	if err := client.OnConnect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	v, err := client.Get(ctx, "theme")
//
// The full API lives in pkg/xstore; this package re-exports it.
package xstore

import (
	"context"

	"github.com/bft-labs/xstore/pkg/xstore"
)

// Config holds the construction parameters of a Client.
type Config = xstore.Config

// Client stores and retrieves values through a hub.
type Client = xstore.Client

// Value is a stored value that may be absent.
type Value = xstore.Value

// Option configures optional behavior of a Client.
type Option = xstore.Option

// Host is a document that embeds hub frames and delivers their messages.
type Host = xstore.Host

// State is the connection state of a Client.
type State = xstore.State

// Connection states.
const (
	StateConnecting = xstore.StateConnecting
	StateConnected  = xstore.StateConnected
	StateClosed     = xstore.StateClosed
)

// Event hooks.
type (
	EventHandler     = xstore.EventHandler
	BaseEventHandler = xstore.BaseEventHandler
	StateChangeEvent = xstore.StateChangeEvent
	RequestEvent     = xstore.RequestEvent
)

// RemoteError is an error reported by the hub for one request.
type RemoteError = xstore.RemoteError

// Errors returned by Client.
var (
	ErrClosed             = xstore.ErrClosed
	ErrDisconnected       = xstore.ErrDisconnected
	ErrConnectTimeout     = xstore.ErrConnectTimeout
	ErrRequestTimeout     = xstore.ErrRequestTimeout
	ErrChannelUnavailable = xstore.ErrChannelUnavailable
	ErrInvalidConfig      = xstore.ErrInvalidConfig
)

// Options.
var (
	WithLogger       = xstore.WithLogger
	WithEmbedder     = xstore.WithEmbedder
	WithListener     = xstore.WithListener
	WithHost         = xstore.WithHost
	WithEventHandler = xstore.WithEventHandler
)

// New creates a client; see pkg/xstore.New.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	return xstore.New(ctx, cfg, opts...)
}
