package kv

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for development and tests. Values are
// copied on the way in and out so callers can never alias the stored bytes.
type MemoryStore struct {
	mu    sync.RWMutex
	kinds map[string]map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		kinds: make(map[string]map[string][]byte),
	}
}

// Get returns the value for kind/key, or ErrKeyNotFound
func (s *MemoryStore) Get(_ context.Context, kind, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.kinds[kind][key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return cloneBytes(value), nil
}

// Set writes the value for kind/key
func (s *MemoryStore) Set(_ context.Context, kind, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.kinds[kind]
	if !ok {
		bucket = make(map[string][]byte)
		s.kinds[kind] = bucket
	}
	bucket[key] = cloneBytes(value)
	return nil
}

// Delete removes kind/key
func (s *MemoryStore) Delete(_ context.Context, kind, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.kinds[kind], key)
	return nil
}

// List returns every record under kind
func (s *MemoryStore) List(_ context.Context, kind string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.kinds[kind]
	records := make([]Record, 0, len(bucket))
	for key, value := range bucket {
		records = append(records, Record{Key: key, Value: cloneBytes(value)})
	}
	return records, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ Store = (*MemoryStore)(nil)
