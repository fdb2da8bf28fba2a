// Package kv is the durable persistence boundary. Every entity kind
// (orders, returns, stock, coupons) is serialized as a JSON record through
// the same get/set/list contract, so the repositories are backend-agnostic
// and nothing in the core assumes in-process memory survives a restart.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when no record exists for the given kind/key
var ErrKeyNotFound = errors.New("kv: key not found")

// Record is one stored entry within a kind
type Record struct {
	Key   string
	Value []byte
}

// Store is the key-value persistence contract. Implementations must be safe
// for concurrent use; atomicity across keys is provided above this layer by
// the repositories' keyed locking, not by the store.
type Store interface {
	// Get returns the value for kind/key, or ErrKeyNotFound
	Get(ctx context.Context, kind, key string) ([]byte, error)

	// Set writes the value for kind/key, creating or overwriting
	Set(ctx context.Context, kind, key string, value []byte) error

	// Delete removes kind/key; deleting a missing key is not an error
	Delete(ctx context.Context, kind, key string) error

	// List returns every record under kind in unspecified order
	List(ctx context.Context, kind string) ([]Record, error)

	// Close releases the backend connection
	Close() error
}
