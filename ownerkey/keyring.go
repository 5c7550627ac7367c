package ownerkey

import (
	"errors"
	"fmt"
	"sync"
)

// MaxSignDataLength bounds Sign's input length, capping resource use for
// pathological callers.
const MaxSignDataLength = 64 * 1024 * 1024

var (
	ErrKeyExists    = errors.New("ownerkey: key already exists")
	ErrInvalidKey   = errors.New("ownerkey: invalid key data")
	ErrDataTooLarge = errors.New("ownerkey: data exceeds maximum sign length")
)

// basicSigner adapts a PrivateKey to the Signer interface.
type basicSigner struct {
	privateKey PrivateKey
}

func newSigner(pk PrivateKey) Signer { return &basicSigner{privateKey: pk} }

func (s *basicSigner) Algorithm() Algorithm  { return s.privateKey.Algorithm() }
func (s *basicSigner) PublicKey() PublicKey  { return s.privateKey.PublicKey() }
func (s *basicSigner) Sign(msg []byte) ([]byte, error) { return s.privateKey.Sign(msg) }

// Keyring manages multiple owner signing keys over a pluggable Store
// backend, with an LRU cache of hot signers. All methods are thread-safe.
type Keyring struct {
	store Store

	mu           sync.RWMutex
	cache        map[string]Signer
	cacheOrder   []string
	maxCacheSize int
	closed       bool
}

// KeyringOption configures a Keyring.
type KeyringOption func(*Keyring)

// WithCacheSize sets the maximum number of signers cached in memory.
// Default is 100; 0 disables caching.
func WithCacheSize(size int) KeyringOption {
	return func(kr *Keyring) { kr.maxCacheSize = size }
}

// NewKeyring creates a Keyring backed by store.
func NewKeyring(store Store, opts ...KeyringOption) *Keyring {
	kr := &Keyring{
		store:        store,
		cache:        make(map[string]Signer),
		cacheOrder:   make([]string, 0, 100),
		maxCacheSize: 100,
	}
	for _, opt := range opts {
		opt(kr)
	}
	return kr
}

// NewKey generates a fresh secp256k1 key under name.
func (kr *Keyring) NewKey(name string) (Signer, error) {
	kr.mu.RLock()
	if err := kr.checkClosed(); err != nil {
		kr.mu.RUnlock()
		return nil, err
	}
	kr.mu.RUnlock()

	if err := ValidateKeyName(name); err != nil {
		return nil, err
	}

	privKey, err := GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	entry := EncryptedKey{
		Name:        name,
		Algorithm:   AlgorithmSecp256k1,
		PubKey:      privKey.PublicKey().Bytes(),
		PrivKeyData: privKey.Bytes(),
	}
	if err := kr.store.Store(name, entry); err != nil {
		return nil, err
	}

	signer := newSigner(privKey)
	kr.addToCache(name, signer)
	return signer, nil
}

// ImportKey imports an existing secp256k1 private key under name.
func (kr *Keyring) ImportKey(name string, privKeyBytes []byte) (Signer, error) {
	kr.mu.RLock()
	if err := kr.checkClosed(); err != nil {
		kr.mu.RUnlock()
		return nil, err
	}
	kr.mu.RUnlock()

	if err := ValidateKeyName(name); err != nil {
		return nil, err
	}

	privKey, err := PrivateKeyFromBytes(privKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	entry := EncryptedKey{
		Name:        name,
		Algorithm:   AlgorithmSecp256k1,
		PubKey:      privKey.PublicKey().Bytes(),
		PrivKeyData: privKey.Bytes(),
	}
	if err := kr.store.Store(name, entry); err != nil {
		return nil, err
	}

	signer := newSigner(privKey)
	kr.addToCache(name, signer)
	return signer, nil
}

// GetKey retrieves a signer by name, consulting the cache first.
func (kr *Keyring) GetKey(name string) (Signer, error) {
	kr.mu.RLock()
	if err := kr.checkClosed(); err != nil {
		kr.mu.RUnlock()
		return nil, err
	}
	if signer, ok := kr.cache[name]; ok {
		kr.mu.RUnlock()
		return signer, nil
	}
	kr.mu.RUnlock()

	entry, err := kr.store.Load(name)
	if err != nil {
		return nil, err
	}
	defer entry.Wipe()

	privKey, err := PrivateKeyFromBytes(entry.PrivKeyData)
	if err != nil {
		return nil, ErrInvalidKey
	}

	signer := newSigner(privKey)
	kr.addToCache(name, signer)
	return signer, nil
}

// ListKeys returns all key names in the backing store.
func (kr *Keyring) ListKeys() ([]string, error) {
	kr.mu.RLock()
	if err := kr.checkClosed(); err != nil {
		kr.mu.RUnlock()
		return nil, err
	}
	kr.mu.RUnlock()
	return kr.store.List()
}

// DeleteKey removes a key from the cache and the backing store.
func (kr *Keyring) DeleteKey(name string) error {
	kr.mu.Lock()
	if err := kr.checkClosed(); err != nil {
		kr.mu.Unlock()
		return err
	}
	if signer, ok := kr.cache[name]; ok {
		zeroizeSigner(signer)
		delete(kr.cache, name)
	}
	for i, n := range kr.cacheOrder {
		if n == name {
			kr.cacheOrder = append(kr.cacheOrder[:i], kr.cacheOrder[i+1:]...)
			break
		}
	}
	kr.mu.Unlock()

	return kr.store.Delete(name)
}

// Sign signs data with the named key.
func (kr *Keyring) Sign(name string, data []byte) ([]byte, error) {
	if len(data) > MaxSignDataLength {
		return nil, ErrDataTooLarge
	}

	kr.mu.RLock()
	defer kr.mu.RUnlock()

	if kr.closed {
		return nil, ErrKeyStoreClosed
	}

	if signer, ok := kr.cache[name]; ok {
		return signer.Sign(data)
	}

	entry, err := kr.store.Load(name)
	if err != nil {
		return nil, err
	}
	defer entry.Wipe()

	privKey, err := PrivateKeyFromBytes(entry.PrivKeyData)
	if err != nil {
		return nil, ErrInvalidKey
	}

	signer := newSigner(privKey)
	sig, err := signer.Sign(data)
	zeroizeSigner(signer)
	return sig, err
}

// addToCache adds a signer to the cache, evicting the oldest entry if at
// capacity. Recency is updated only on cache misses, trading strict LRU
// ordering for a read path that needs no write lock.
func (kr *Keyring) addToCache(name string, signer Signer) {
	if kr.maxCacheSize <= 0 {
		return
	}

	kr.mu.Lock()
	defer kr.mu.Unlock()

	if _, ok := kr.cache[name]; ok {
		kr.moveToFront(name)
		return
	}

	for len(kr.cache) >= kr.maxCacheSize && len(kr.cacheOrder) > 0 {
		oldest := kr.cacheOrder[0]
		kr.cacheOrder = kr.cacheOrder[1:]
		if oldSigner, ok := kr.cache[oldest]; ok {
			zeroizeSigner(oldSigner)
		}
		delete(kr.cache, oldest)
	}

	kr.cache[name] = signer
	kr.cacheOrder = append(kr.cacheOrder, name)
}

func (kr *Keyring) moveToFront(name string) {
	for i, n := range kr.cacheOrder {
		if n == name {
			kr.cacheOrder = append(kr.cacheOrder[:i], kr.cacheOrder[i+1:]...)
			kr.cacheOrder = append(kr.cacheOrder, name)
			return
		}
	}
}

// Close zeroizes all cached signers and closes the backing store. Safe to
// call multiple times.
func (kr *Keyring) Close() error {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if kr.closed {
		return nil
	}
	kr.closed = true

	for name, signer := range kr.cache {
		zeroizeSigner(signer)
		delete(kr.cache, name)
	}
	kr.cacheOrder = nil

	return kr.store.Close()
}

func zeroizeSigner(s Signer) {
	if bs, ok := s.(*basicSigner); ok && bs.privateKey != nil {
		bs.privateKey.Zeroize()
	}
}

func (kr *Keyring) checkClosed() error {
	if kr.closed {
		return ErrKeyStoreClosed
	}
	return nil
}
