package kv

import (
	"sync"
	"sync/atomic"

	"github.com/lborres/reisetagebuch/core"
)

// Ensure Memory implements KVStorage
var _ core.KVStorage = (*Memory)(nil)

// Memory implements an in-memory key-value store.
// Values are copied on the way in and out.
type Memory struct {
	items map[string][]byte
	mu    sync.RWMutex

	// counters
	hits    int64
	misses  int64
	sets    int64
	deletes int64
}

// Stats is a snapshot of the store counters
type Stats struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Deletes int64
	Size    int
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) GetItem(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.items[key]
	if !exists {
		atomic.AddInt64(&m.misses, 1)
		return nil, false, nil
	}

	atomic.AddInt64(&m.hits, 1)
	return append([]byte(nil), value...), true, nil
}

func (m *Memory) SetItem(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = append([]byte(nil), value...)
	atomic.AddInt64(&m.sets, 1)
	return nil
}

func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, existed := m.items[key]; existed {
		delete(m.items, key)
		atomic.AddInt64(&m.deletes, 1)
	}
	return nil
}

// Len returns the number of stored keys
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) Stats() Stats {
	return Stats{
		Hits:    atomic.LoadInt64(&m.hits),
		Misses:  atomic.LoadInt64(&m.misses),
		Sets:    atomic.LoadInt64(&m.sets),
		Deletes: atomic.LoadInt64(&m.deletes),
		Size:    m.Len(),
	}
}
