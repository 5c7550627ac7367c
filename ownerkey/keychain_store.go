package ownerkey

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	// keychainKeyPrefix is prepended to key names to namespace them within
	// the service.
	keychainKeyPrefix = "key:"
	// keychainListKey stores the list of all key names for List(), since
	// OS keychain APIs don't offer a native enumerate-all operation.
	keychainListKey = "_keylist"
)

// KeychainStore implements Store using the OS keychain (macOS Keychain,
// Windows Credential Store, Linux Secret Service via libsecret). The
// keychain provides its own encryption at rest, so keys are stored as
// plaintext JSON.
type KeychainStore struct {
	serviceName string
	mu          sync.RWMutex
	closed      bool
}

// keychainKeyData is the JSON structure stored in the keychain.
type keychainKeyData struct {
	Name        string `json:"name"`
	Algorithm   string `json:"algorithm"`
	PubKey      []byte `json:"pub_key"`
	PrivKeyData []byte `json:"priv_key_data"`
}

// NewKeychainStore creates a KeychainStore scoped to serviceName. Returns
// ErrKeychainUnavailable if the keychain cannot be reached (e.g. no D-Bus
// secret service on a headless Linux host).
func NewKeychainStore(serviceName string) (*KeychainStore, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("%w: service name cannot be empty", ErrKeyStoreIO)
	}
	_, err := keyring.Get(serviceName, keychainListKey)
	if err != nil && err != keyring.ErrNotFound {
		return nil, fmt.Errorf("%w: %v", ErrKeychainUnavailable, err)
	}
	return &KeychainStore{serviceName: serviceName}, nil
}

// Store saves a key to the OS keychain.
func (ks *KeychainStore) Store(name string, key EncryptedKey) error {
	if err := ValidateKeyName(name); err != nil {
		return err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	if err := ks.checkClosed(); err != nil {
		return err
	}

	keychainKey := keychainKeyPrefix + name

	if _, err := keyring.Get(ks.serviceName, keychainKey); err == nil {
		return ErrKeyStoreExists
	} else if err != keyring.ErrNotFound {
		return fmt.Errorf("%w: checking existing key: %v", ErrKeyStoreIO, err)
	}

	data := keychainKeyData{
		Name:        name,
		Algorithm:   string(key.Algorithm),
		PubKey:      key.PubKey,
		PrivKeyData: key.PrivKeyData,
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: marshaling key data: %v", ErrKeyStoreIO, err)
	}
	if err := keyring.Set(ks.serviceName, keychainKey, string(jsonData)); err != nil {
		return fmt.Errorf("%w: storing key in keychain: %v", ErrKeyStoreIO, err)
	}

	if err := ks.addToKeyList(name); err != nil {
		_ = keyring.Delete(ks.serviceName, keychainKey)
		return err
	}
	return nil
}

// Load retrieves a key from the OS keychain.
func (ks *KeychainStore) Load(name string) (EncryptedKey, error) {
	if err := ValidateKeyName(name); err != nil {
		return EncryptedKey{}, err
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if err := ks.checkClosed(); err != nil {
		return EncryptedKey{}, err
	}

	keychainKey := keychainKeyPrefix + name
	jsonStr, err := keyring.Get(ks.serviceName, keychainKey)
	if err == keyring.ErrNotFound {
		return EncryptedKey{}, ErrKeyStoreNotFound
	}
	if err != nil {
		return EncryptedKey{}, fmt.Errorf("%w: loading key: %v", ErrKeyStoreIO, err)
	}

	var data keychainKeyData
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return EncryptedKey{}, fmt.Errorf("%w: parsing key data: %v", ErrKeyStoreIO, err)
	}
	alg := Algorithm(data.Algorithm)
	if !alg.IsValid() {
		return EncryptedKey{}, fmt.Errorf("%w: unknown algorithm %q", ErrKeyStoreIO, data.Algorithm)
	}
	return EncryptedKey{Name: data.Name, Algorithm: alg, PubKey: data.PubKey, PrivKeyData: data.PrivKeyData}, nil
}

// Delete removes a key from the OS keychain.
func (ks *KeychainStore) Delete(name string) error {
	if err := ValidateKeyName(name); err != nil {
		return err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	if err := ks.checkClosed(); err != nil {
		return err
	}

	keychainKey := keychainKeyPrefix + name
	if _, err := keyring.Get(ks.serviceName, keychainKey); err == keyring.ErrNotFound {
		return ErrKeyStoreNotFound
	} else if err != nil {
		return fmt.Errorf("%w: checking key existence: %v", ErrKeyStoreIO, err)
	}

	if err := keyring.Delete(ks.serviceName, keychainKey); err != nil {
		return fmt.Errorf("%w: deleting key: %v", ErrKeyStoreIO, err)
	}
	_ = ks.removeFromKeyList(name)
	return nil
}

// List returns all key names stored in the keychain, via the maintained
// index.
func (ks *KeychainStore) List() ([]string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if err := ks.checkClosed(); err != nil {
		return nil, err
	}

	listStr, err := keyring.Get(ks.serviceName, keychainListKey)
	if err == keyring.ErrNotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading key list: %v", ErrKeyStoreIO, err)
	}
	if listStr == "" {
		return []string{}, nil
	}
	names := strings.Split(listStr, ",")
	result := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			result = append(result, name)
		}
	}
	return result, nil
}

// Close marks the store closed. Safe to call multiple times.
func (ks *KeychainStore) Close() error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.closed = true
	return nil
}

func (ks *KeychainStore) checkClosed() error {
	if ks.closed {
		return ErrKeyStoreClosed
	}
	return nil
}

func (ks *KeychainStore) addToKeyList(name string) error {
	listStr, err := keyring.Get(ks.serviceName, keychainListKey)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("%w: reading key list: %v", ErrKeyStoreIO, err)
	}
	var names []string
	if listStr != "" {
		names = strings.Split(listStr, ",")
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	names = append(names, name)
	if err := keyring.Set(ks.serviceName, keychainListKey, strings.Join(names, ",")); err != nil {
		return fmt.Errorf("%w: updating key list: %v", ErrKeyStoreIO, err)
	}
	return nil
}

func (ks *KeychainStore) removeFromKeyList(name string) error {
	listStr, err := keyring.Get(ks.serviceName, keychainListKey)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading key list: %v", ErrKeyStoreIO, err)
	}
	if listStr == "" {
		return nil
	}
	names := strings.Split(listStr, ",")
	newNames := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			newNames = append(newNames, n)
		}
	}
	if err := keyring.Set(ks.serviceName, keychainListKey, strings.Join(newNames, ",")); err != nil {
		return fmt.Errorf("%w: updating key list: %v", ErrKeyStoreIO, err)
	}
	return nil
}

// RepairReport summarizes the outcome of a RepairIndex call.
type RepairReport struct {
	// StaleEntriesRemoved lists key names that were in the index but not
	// found in the keychain; they have been removed from the index.
	StaleEntriesRemoved []string

	// OrphanedKeysFound lists key names found in the keychain (via
	// probeKeys) that were missing from the index; they have been added.
	OrphanedKeysFound []string

	// KeysVerified is the count of keys confirmed present in both the
	// index and the keychain.
	KeysVerified int
}

// RepairIndex reconciles the maintained name index against the keychain,
// useful after a crash between keyring.Set(key) and addToKeyList leaves
// the two out of sync. Because go-keyring cannot enumerate a service's
// keys, detecting orphans (present in the keychain but missing from the
// index) requires probing a caller-supplied list of candidate names; pass
// nil to skip orphan detection and only prune stale entries.
func (ks *KeychainStore) RepairIndex(probeKeys []string) (RepairReport, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if err := ks.checkClosed(); err != nil {
		return RepairReport{}, err
	}

	report := RepairReport{StaleEntriesRemoved: []string{}, OrphanedKeysFound: []string{}}

	currentIndex := make(map[string]bool)
	listStr, err := keyring.Get(ks.serviceName, keychainListKey)
	if err != nil && err != keyring.ErrNotFound {
		return RepairReport{}, fmt.Errorf("%w: reading key list: %v", ErrKeyStoreIO, err)
	}
	if listStr != "" {
		for _, name := range strings.Split(listStr, ",") {
			if name != "" {
				currentIndex[name] = true
			}
		}
	}

	verifiedKeys := make([]string, 0, len(currentIndex))
	for name := range currentIndex {
		keychainKey := keychainKeyPrefix + name
		if _, err := keyring.Get(ks.serviceName, keychainKey); err == keyring.ErrNotFound {
			report.StaleEntriesRemoved = append(report.StaleEntriesRemoved, name)
		} else if err != nil {
			return RepairReport{}, fmt.Errorf("%w: verifying key %q: %v", ErrKeyStoreIO, name, err)
		} else {
			verifiedKeys = append(verifiedKeys, name)
			report.KeysVerified++
		}
	}

	for _, name := range probeKeys {
		if currentIndex[name] {
			continue
		}
		if ValidateKeyName(name) != nil {
			continue
		}
		keychainKey := keychainKeyPrefix + name
		if _, err := keyring.Get(ks.serviceName, keychainKey); err == nil {
			report.OrphanedKeysFound = append(report.OrphanedKeysFound, name)
			verifiedKeys = append(verifiedKeys, name)
		}
	}

	if len(report.StaleEntriesRemoved) > 0 || len(report.OrphanedKeysFound) > 0 {
		if err := keyring.Set(ks.serviceName, keychainListKey, strings.Join(verifiedKeys, ",")); err != nil {
			return RepairReport{}, fmt.Errorf("%w: updating key list: %v", ErrKeyStoreIO, err)
		}
	}

	return report, nil
}

var _ Store = (*KeychainStore)(nil)
