// Package ports defines the interfaces (ports) that connect the xstore
// application core to infrastructure adapters.
//
// Ports are the boundaries between the client core and the outside world.
// They say what the core needs from a transport or an embedding host without
// saying how those needs are met.
//
// # Port Interfaces
//
//   - [Window]: posts text messages to an agent context
//   - [Listener]: delivers inbound message events to a single handler
//   - [Subscription]: an owned listener registration, released once
//   - [Embedder]: finds or creates the embedded agent context ([Frame])
//   - [Logger]: structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters (pkg/page for an in-process document, pkg/wsframe for websocket
// hubs) implement them.
package ports
