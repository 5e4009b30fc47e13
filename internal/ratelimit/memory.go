package ratelimit

import (
	"sync"
	"time"
)

// MemoryStore keeps per-identity timestamps in a process-local map. State
// is lost on restart, which is acceptable: the limiter provides abuse
// friction, not hard quota enforcement.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]time.Time)}
}

// Get returns the recorded timestamps for identity, oldest first.
func (m *MemoryStore) Get(identity string) []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[identity]
}

// Set replaces the timestamps for identity. An empty slice removes the
// entry.
func (m *MemoryStore) Set(identity string, stamps []time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(stamps) == 0 {
		delete(m.records, identity)
		return
	}
	m.records[identity] = stamps
}

// Prune drops identities whose most recent request predates idleBefore.
func (m *MemoryStore) Prune(idleBefore time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for identity, stamps := range m.records {
		if len(stamps) == 0 || stamps[len(stamps)-1].Before(idleBefore) {
			delete(m.records, identity)
		}
	}
}

// Len reports the number of tracked identities.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

var _ Store = (*MemoryStore)(nil)
