package ownerkey

import "sync"

// MemoryStore implements Store with in-memory storage. Thread-safe via
// RWMutex. Keys are held in plaintext — suitable for testing and ephemeral
// use cases only.
type MemoryStore struct {
	mu     sync.RWMutex
	keys   map[string]EncryptedKey
	closed bool
}

// NewMemoryStore creates a new in-memory key store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]EncryptedKey, 16)}
}

// Store saves a key to the store.
func (m *MemoryStore) Store(name string, key EncryptedKey) error {
	if err := ValidateKeyName(name); err != nil {
		return err
	}
	if name != key.Name {
		return ErrKeyNameMismatch
	}
	if !key.Algorithm.IsValid() {
		return ErrInvalidAlgorithm
	}
	if err := key.ValidateEncryptionParams(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrKeyStoreClosed
	}
	if _, exists := m.keys[name]; exists {
		return ErrKeyStoreExists
	}
	m.keys[name] = copyEncryptedKey(key)
	return nil
}

// Load retrieves a key from the store.
func (m *MemoryStore) Load(name string) (EncryptedKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return EncryptedKey{}, ErrKeyStoreClosed
	}
	key, exists := m.keys[name]
	if !exists {
		return EncryptedKey{}, ErrKeyStoreNotFound
	}
	return copyEncryptedKey(key), nil
}

// Delete removes a key from the store, wiping its material first.
func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrKeyStoreClosed
	}
	key, exists := m.keys[name]
	if !exists {
		return ErrKeyStoreNotFound
	}
	key.Wipe()
	delete(m.keys, name)
	return nil
}

// List returns all key names in the store, in no particular order.
func (m *MemoryStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrKeyStoreClosed
	}
	names := make([]string, 0, len(m.keys))
	for name := range m.keys {
		names = append(names, name)
	}
	return names, nil
}

// Close marks the store closed and wipes all stored keys. Safe to call
// multiple times.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for _, key := range m.keys {
		key.Wipe()
	}
	m.keys = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
