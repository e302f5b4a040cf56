// Package storage provides the durable client-side key/value stores the
// session core persists its token, user, and active-role entries into: an
// in-memory map for tests and ephemeral sessions, a JSON file for simple
// CLI hosts, and a sqlite-backed store (bunstore) for state that must
// survive process restarts.
package storage

import (
	"sync"

	session "github.com/farmvine/go-session"
)

// Memory is a map-backed Storage. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

var _ session.Storage = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: map[string]string{}}
}

// Get implements session.Storage.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok
}

// Set implements session.Storage.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// Delete implements session.Storage.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
