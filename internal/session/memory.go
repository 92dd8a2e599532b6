package session

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is the process-local implementation. It backs tests and serves
// as the degraded mode when Redis is unreachable.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	locks map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		locks: make(map[string]bool),
	}
}

func (m *MemoryStore) Put(_ context.Context, sessionID string, slot Slot, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key(sessionID, slot)] = payload
}

func (m *MemoryStore) Take(_ context.Context, sessionID string, slot Slot, dest any) bool {
	m.mu.Lock()
	payload, ok := m.data[key(sessionID, slot)]
	if ok {
		delete(m.data, key(sessionID, slot))
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string, slot Slot, dest any) bool {
	m.mu.Lock()
	payload, ok := m.data[key(sessionID, slot)]
	m.mu.Unlock()

	if !ok {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

func (m *MemoryStore) Acquire(_ context.Context, sessionID string, slot Slot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(sessionID, slot)
	if m.locks[k] {
		return false
	}
	m.locks[k] = true
	return true
}

func (m *MemoryStore) Release(_ context.Context, sessionID string, slot Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key(sessionID, slot))
}
