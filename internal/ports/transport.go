package ports

// MessageEvent is one inbound message as observed by the client's window.
type MessageEvent struct {
	// Data is the raw text payload.
	Data string

	// Origin is the origin the sender claims. "null" denotes a file context.
	Origin string
}

// Window is a handle through which messages are posted to an agent context.
type Window interface {
	// PostMessage dispatches data to the context, restricted to targetOrigin.
	// A targetOrigin of "*" disables the restriction.
	PostMessage(data, targetOrigin string) error
}

// Listener is the source of inbound message events for one client.
type Listener interface {
	// Listen registers handler for every inbound message event. The channel
	// performs no parsing or filtering.
	Listen(handler func(MessageEvent)) Subscription
}

// Subscription is a registered handler. Release detaches it; calls after the
// first are no-ops.
type Subscription interface {
	Release()
}
