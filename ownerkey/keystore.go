package ownerkey

import "fmt"

// EncryptedKey represents a stored owner key. PrivKeyData is plaintext for
// stores whose backend provides its own encryption (in-memory, OS keychain);
// other backends are expected to populate Salt/Nonce and keep PrivKeyData as
// ciphertext.
type EncryptedKey struct {
	Name        string
	Algorithm   Algorithm
	PubKey      []byte
	PrivKeyData []byte
	Salt        []byte
	Nonce       []byte
}

// Wipe zeroes the key's sensitive byte slices in place.
func (k *EncryptedKey) Wipe() {
	for i := range k.PrivKeyData {
		k.PrivKeyData[i] = 0
	}
	for i := range k.Salt {
		k.Salt[i] = 0
	}
	for i := range k.Nonce {
		k.Nonce[i] = 0
	}
}

// ValidateEncryptionParams checks that Salt/Nonce, when present, have
// plausible lengths for the AEAD constructions this package uses elsewhere.
func (k EncryptedKey) ValidateEncryptionParams() error {
	if k.Nonce != nil && len(k.Nonce) != 12 && len(k.Nonce) != 24 {
		return fmt.Errorf("ownerkey: invalid nonce length %d", len(k.Nonce))
	}
	if k.Salt != nil && len(k.Salt) == 0 {
		return fmt.Errorf("ownerkey: empty salt")
	}
	return nil
}

// ValidateKeyName rejects empty or implausibly long key names.
func ValidateKeyName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidKeyName)
	}
	if len(name) > 256 {
		return fmt.Errorf("%w: name exceeds 256 bytes", ErrInvalidKeyName)
	}
	return nil
}

// Store is the interface for owner-key storage backends.
type Store interface {
	// Store saves a key to the store. Returns ErrKeyStoreExists if a key
	// with the same name already exists.
	Store(name string, key EncryptedKey) error

	// Load retrieves a key from the store. Returns ErrKeyStoreNotFound if
	// the key does not exist.
	Load(name string) (EncryptedKey, error)

	// Delete removes a key from the store. Returns ErrKeyStoreNotFound if
	// the key does not exist.
	Delete(name string) error

	// List returns all key names in the store.
	List() ([]string, error)

	// Close releases resources held by the store.
	Close() error
}

func copyEncryptedKey(key EncryptedKey) EncryptedKey {
	cp := EncryptedKey{Name: key.Name, Algorithm: key.Algorithm}
	if key.PubKey != nil {
		cp.PubKey = append([]byte(nil), key.PubKey...)
	}
	if key.PrivKeyData != nil {
		cp.PrivKeyData = append([]byte(nil), key.PrivKeyData...)
	}
	if key.Salt != nil {
		cp.Salt = append([]byte(nil), key.Salt...)
	}
	if key.Nonce != nil {
		cp.Nonce = append([]byte(nil), key.Nonce...)
	}
	return cp
}
