package persistence

import (
	"hash/fnv"
	"sort"
	"sync"
)

// KeyedMutex serializes work per key using a fixed set of lock stripes.
// Two keys may share a stripe; that costs throughput, never correctness.
type KeyedMutex struct {
	stripes []sync.Mutex
}

// NewKeyedMutex creates a keyed mutex with the given number of stripes
func NewKeyedMutex(stripes int) *KeyedMutex {
	if stripes <= 0 {
		stripes = 64
	}
	return &KeyedMutex{stripes: make([]sync.Mutex, stripes)}
}

func (m *KeyedMutex) stripeFor(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(m.stripes)))
}

// Lock acquires the stripe for key and returns its unlock function
func (m *KeyedMutex) Lock(key string) func() {
	idx := m.stripeFor(key)
	m.stripes[idx].Lock()
	return m.stripes[idx].Unlock
}

// LockAll acquires the stripes for every key as one unit and returns a
// single unlock function. Stripe indexes are deduplicated and taken in
// ascending order, so two overlapping LockAll calls can never deadlock.
func (m *KeyedMutex) LockAll(keys []string) func() {
	seen := make(map[int]bool, len(keys))
	indexes := make([]int, 0, len(keys))
	for _, key := range keys {
		idx := m.stripeFor(key)
		if !seen[idx] {
			seen[idx] = true
			indexes = append(indexes, idx)
		}
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		m.stripes[idx].Lock()
	}
	return func() {
		for i := len(indexes) - 1; i >= 0; i-- {
			m.stripes[indexes[i]].Unlock()
		}
	}
}
