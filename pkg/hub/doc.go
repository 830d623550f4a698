// Package hub is a reference storage agent for xstore clients.
//
// A [Hub] checks each request's origin against its [Permissions], executes
// the operation against a [store.Store] and produces the reply envelope. It
// can be served to in-process documents with [Mount] or over websocket with
// [Handler].
//
// Permissions are an ordered list of rules, usually loaded from a file:
//
//	[[permissions]]
//	origin = '^https://(www\.)?example\.com$'
//	allow = ["get", "set", "del"]
//
// or, in YAML:
//
//	permissions:
//	  - origin: '^https://(www\.)?example\.com$'
//	    allow: [get, set, del]
package hub
