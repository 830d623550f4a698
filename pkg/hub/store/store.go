// Package store holds the key/value backends a hub serves requests from.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Store is the hub's backing storage. Values are strings; an entry whose
// expiry has passed behaves as absent.
type Store interface {
	// Ping reports whether the store is accessible.
	Ping(ctx context.Context) error

	// Get returns the value for key. ok is false when the key is absent or
	// expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key. A zero expiresAt means the entry never
	// expires.
	Set(ctx context.Context, key, value string, expiresAt time.Time) error

	// Delete removes keys. Absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Keys lists the live keys in ascending order.
	Keys(ctx context.Context) ([]string, error)

	// Close releases the store's resources.
	Close() error
}
