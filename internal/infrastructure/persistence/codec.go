// Package persistence implements the domain repository interfaces on top of
// the kv.Store boundary. Aggregates are stored as JSON documents; writes go
// through per-key striped mutexes so every read-modify-write is a single
// atomic step, and the aggregate Version field backs optimistic locking for
// detached saves.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/kv"
)

// Entity kinds as stored in the kv boundary
const (
	kindOrders   = "orders"
	kindReturns  = "returns"
	kindStock    = "stock"
	kindCoupons  = "coupons"
	kindCounters = "counters"
)

// defaultStripes is the lock stripe count shared by all repositories
const defaultStripes = 64

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return data, nil
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// storedVersion reads only the version field of a stored document
func storedVersion(data []byte) (int, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("decode version: %w", err)
	}
	return probe.Version, nil
}

// checkVersion compares a detached aggregate's version against the stored
// document before an overwrite. A mismatch means another writer got there
// first.
func checkVersion(ctx context.Context, store kv.Store, kind, key string, version int) error {
	data, err := store.Get(ctx, kind, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil // first write
		}
		return err
	}
	current, err := storedVersion(data)
	if err != nil {
		return err
	}
	if current != version {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
