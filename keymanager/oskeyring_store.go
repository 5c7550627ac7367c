package keymanager

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keychainShareKeyPrefix = "share:"
	keychainShareListKey   = "_sharelist"
)

// OSKeyringStore implements ShareStore using the OS keychain (macOS
// Keychain, Windows Credential Store, Linux Secret Service via libsecret).
// Useful for a mint node process that should not keep its secret share in a
// plaintext file on disk.
type OSKeyringStore struct {
	serviceName string
	mu          sync.RWMutex
	closed      bool
}

type keychainShareData struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// NewOSKeyringStore creates a OSKeyringStore scoped to serviceName.
// Returns ErrKeychainUnavailable if the keychain cannot be reached.
func NewOSKeyringStore(serviceName string) (*OSKeyringStore, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("keymanager: service name cannot be empty")
	}
	_, err := keyring.Get(serviceName, keychainShareListKey)
	if err != nil && err != keyring.ErrNotFound {
		return nil, fmt.Errorf("%w: %v", ErrKeychainUnavailable, err)
	}
	return &OSKeyringStore{serviceName: serviceName}, nil
}

func (ks *OSKeyringStore) Store(name string, share StoredShare) error {
	if err := validateShareName(name); err != nil {
		return err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	if err := ks.checkClosed(); err != nil {
		return err
	}

	key := keychainShareKeyPrefix + name
	if _, err := keyring.Get(ks.serviceName, key); err == nil {
		return ErrShareExists
	} else if err != keyring.ErrNotFound {
		return fmt.Errorf("keymanager: checking existing share: %w", err)
	}

	data := keychainShareData{Name: name, Data: share.Data}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("keymanager: marshaling share data: %w", err)
	}
	if err := keyring.Set(ks.serviceName, key, string(jsonData)); err != nil {
		return fmt.Errorf("keymanager: storing share in keychain: %w", err)
	}

	if err := ks.addToShareList(name); err != nil {
		_ = keyring.Delete(ks.serviceName, key)
		return err
	}
	return nil
}

func (ks *OSKeyringStore) Load(name string) (StoredShare, error) {
	if err := validateShareName(name); err != nil {
		return StoredShare{}, err
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if err := ks.checkClosed(); err != nil {
		return StoredShare{}, err
	}

	key := keychainShareKeyPrefix + name
	jsonStr, err := keyring.Get(ks.serviceName, key)
	if err == keyring.ErrNotFound {
		return StoredShare{}, ErrShareNotFound
	}
	if err != nil {
		return StoredShare{}, fmt.Errorf("keymanager: loading share: %w", err)
	}

	var data keychainShareData
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return StoredShare{}, fmt.Errorf("keymanager: parsing share data: %w", err)
	}
	return StoredShare{Name: data.Name, Data: data.Data}, nil
}

func (ks *OSKeyringStore) Delete(name string) error {
	if err := validateShareName(name); err != nil {
		return err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	if err := ks.checkClosed(); err != nil {
		return err
	}

	key := keychainShareKeyPrefix + name
	if _, err := keyring.Get(ks.serviceName, key); err == keyring.ErrNotFound {
		return ErrShareNotFound
	} else if err != nil {
		return fmt.Errorf("keymanager: checking share existence: %w", err)
	}

	if err := keyring.Delete(ks.serviceName, key); err != nil {
		return fmt.Errorf("keymanager: deleting share: %w", err)
	}
	_ = ks.removeFromShareList(name)
	return nil
}

func (ks *OSKeyringStore) List() ([]string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if err := ks.checkClosed(); err != nil {
		return nil, err
	}

	listStr, err := keyring.Get(ks.serviceName, keychainShareListKey)
	if err == keyring.ErrNotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keymanager: reading share list: %w", err)
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
func (ks *OSKeyringStore) Close() error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.closed = true
	return nil
}

func (ks *OSKeyringStore) checkClosed() error {
	if ks.closed {
		return ErrStoreClosed
	}
	return nil
}

func (ks *OSKeyringStore) addToShareList(name string) error {
	listStr, err := keyring.Get(ks.serviceName, keychainShareListKey)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("keymanager: reading share list: %w", err)
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
	if err := keyring.Set(ks.serviceName, keychainShareListKey, strings.Join(names, ",")); err != nil {
		return fmt.Errorf("keymanager: updating share list: %w", err)
	}
	return nil
}

func (ks *OSKeyringStore) removeFromShareList(name string) error {
	listStr, err := keyring.Get(ks.serviceName, keychainShareListKey)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("keymanager: reading share list: %w", err)
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
	if err := keyring.Set(ks.serviceName, keychainShareListKey, strings.Join(newNames, ",")); err != nil {
		return fmt.Errorf("keymanager: updating share list: %w", err)
	}
	return nil
}

// RepairReport summarizes the outcome of a RepairIndex call.
type RepairReport struct {
	// StaleEntriesRemoved lists share names that were in the index but not
	// found in the keychain; they have been removed from the index.
	StaleEntriesRemoved []string

	// OrphanedSharesFound lists share names found in the keychain (via
	// probeNames) that were missing from the index; they have been added.
	OrphanedSharesFound []string

	// SharesVerified is the count of shares confirmed present in both the
	// index and the keychain.
	SharesVerified int
}

// RepairIndex reconciles the maintained name index against the keychain,
// useful after a crash between keyring.Set(share) and addToShareList leaves
// the two out of sync. Because go-keyring cannot enumerate a service's
// entries, detecting orphans requires probing a caller-supplied list of
// candidate names; pass nil to skip orphan detection and only prune stale
// entries.
func (ks *OSKeyringStore) RepairIndex(probeNames []string) (RepairReport, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if err := ks.checkClosed(); err != nil {
		return RepairReport{}, err
	}

	report := RepairReport{StaleEntriesRemoved: []string{}, OrphanedSharesFound: []string{}}

	currentIndex := make(map[string]bool)
	listStr, err := keyring.Get(ks.serviceName, keychainShareListKey)
	if err != nil && err != keyring.ErrNotFound {
		return RepairReport{}, fmt.Errorf("keymanager: reading share list: %w", err)
	}
	if listStr != "" {
		for _, name := range strings.Split(listStr, ",") {
			if name != "" {
				currentIndex[name] = true
			}
		}
	}

	verifiedNames := make([]string, 0, len(currentIndex))
	for name := range currentIndex {
		key := keychainShareKeyPrefix + name
		if _, err := keyring.Get(ks.serviceName, key); err == keyring.ErrNotFound {
			report.StaleEntriesRemoved = append(report.StaleEntriesRemoved, name)
		} else if err != nil {
			return RepairReport{}, fmt.Errorf("keymanager: verifying share %q: %w", name, err)
		} else {
			verifiedNames = append(verifiedNames, name)
			report.SharesVerified++
		}
	}

	for _, name := range probeNames {
		if currentIndex[name] {
			continue
		}
		if validateShareName(name) != nil {
			continue
		}
		key := keychainShareKeyPrefix + name
		if _, err := keyring.Get(ks.serviceName, key); err == nil {
			report.OrphanedSharesFound = append(report.OrphanedSharesFound, name)
			verifiedNames = append(verifiedNames, name)
		}
	}

	if len(report.StaleEntriesRemoved) > 0 || len(report.OrphanedSharesFound) > 0 {
		if err := keyring.Set(ks.serviceName, keychainShareListKey, strings.Join(verifiedNames, ",")); err != nil {
			return RepairReport{}, fmt.Errorf("keymanager: updating share list: %w", err)
		}
	}

	return report, nil
}

var _ ShareStore = (*OSKeyringStore)(nil)
