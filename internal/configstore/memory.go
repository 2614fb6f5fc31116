package configstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and static bootstrap.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryStore(entries map[string]string) *MemoryStore {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &MemoryStore{entries: copied}
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.entries[id]
	return val, ok, nil
}

// Set replaces or adds one entry.
func (s *MemoryStore) Set(id, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = value
}

// Delete removes one entry.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}
