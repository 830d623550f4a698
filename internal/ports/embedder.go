package ports

import "context"

// Frame is an embedded, invisible agent context.
type Frame interface {
	// ID is the embedding identifier.
	ID() string

	// Window returns the handle used to post messages into the frame. It
	// returns nil once the frame is detached.
	Window() Window

	// Detach removes the frame from its host. Detaching twice is a no-op.
	Detach() error
}

// Embedder creates or locates agent contexts.
type Embedder interface {
	// Lookup returns an already embedded frame by id.
	Lookup(id string) (Frame, bool)

	// Embed creates a new frame with the given id pointed at hubURL.
	Embed(ctx context.Context, id, hubURL string) (Frame, error)
}
