package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const defaultKeyringService = "ytresolve"

// KeyringStore persists credential bundles in the OS keyring, one JSON
// document per slot.
type KeyringStore struct {
	Service string
}

// NewKeyringStore creates a KeyringStore under the default service name.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{Service: defaultKeyringService}
}

// Get implements CredentialStore.
func (s *KeyringStore) Get(slot string) (map[string]string, bool, error) {
	data, err := keyring.Get(s.Service, slot)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("keyring get: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, false, fmt.Errorf("keyring decode: %w", err)
	}
	return raw, true, nil
}

// Update implements CredentialStore with merge semantics.
func (s *KeyringStore) Update(slot string, partial map[string]string) error {
	cur, ok, err := s.Get(slot)
	if err != nil {
		return err
	}
	if !ok {
		cur = make(map[string]string, len(partial))
	}
	for k, v := range partial {
		cur[k] = v
	}
	data, err := json.Marshal(cur)
	if err != nil {
		return fmt.Errorf("keyring encode: %w", err)
	}
	if err := keyring.Set(s.Service, slot, string(data)); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}
