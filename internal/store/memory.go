package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory document store. Documents
// round-trip through JSON so it behaves like the file store, minus the
// disk.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]json.RawMessage)}
}

// Load reads the document stored under key into the given value.
func (s *MemoryStore) Load(key string, into any) error {
	s.mu.RLock()
	raw, ok := s.docs[key]
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode document %q: %w", key, err)
	}
	return nil
}

// Save writes the document under key, replacing any previous version.
func (s *MemoryStore) Save(key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", key, err)
	}

	s.mu.Lock()
	s.docs[key] = raw
	s.mu.Unlock()
	return nil
}
