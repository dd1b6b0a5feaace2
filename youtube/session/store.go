package session

import (
	"sync"
)

// CredentialStore is an external mapping from a named slot to a credential
// bundle. Implementations must make Update atomic per slot.
type CredentialStore interface {
	// Get returns the bundle stored under slot. ok is false when absent.
	Get(slot string) (raw map[string]string, ok bool, err error)
	// Update merges partial into the bundle stored under slot.
	Update(slot string, partial map[string]string) error
}

// MemoryStore is an in-process CredentialStore, used in tests and by
// embedders that handle persistence themselves.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]map[string]string)}
}

// Get implements CredentialStore.
func (s *MemoryStore) Get(slot string) (map[string]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.slots[slot]
	if !ok {
		return nil, false, nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out, true, nil
}

// Update implements CredentialStore with merge semantics.
func (s *MemoryStore) Update(slot string, partial map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.slots[slot]
	if !ok {
		cur = make(map[string]string, len(partial))
		s.slots[slot] = cur
	}
	for k, v := range partial {
		cur[k] = v
	}
	return nil
}
