package keymanager

import (
	"fmt"

	bls "github.com/herumi/bls-eth-go-binary/bls"

	"github.com/safenetwork-community/sn-dbc/blsthreshold"
)

// SimpleKeyManager is the KeyManager a single mint node runs: one
// blsthreshold.SecretKeyShare of the master key, plus the master
// PublicKeySet every client verifies signatures against.
type SimpleKeyManager struct {
	publicKeySet blsthreshold.PublicKeySet
	masterShare  blsthreshold.SecretKeyShare
}

// NewSimpleKeyManager constructs a SimpleKeyManager from an already-derived
// master share and the mint's public key set.
func NewSimpleKeyManager(publicKeySet blsthreshold.PublicKeySet, masterShare blsthreshold.SecretKeyShare) *SimpleKeyManager {
	return &SimpleKeyManager{publicKeySet: publicKeySet, masterShare: masterShare}
}

// LoadSimpleKeyManager reconstructs a SimpleKeyManager from a share
// persisted under name in store.
func LoadSimpleKeyManager(store ShareStore, name string, publicKeySet blsthreshold.PublicKeySet) (*SimpleKeyManager, error) {
	stored, err := store.Load(name)
	if err != nil {
		return nil, fmt.Errorf("keymanager: loading share %q: %w", name, err)
	}
	share, err := blsthreshold.SecretKeyShareFromBytes(stored.Data)
	if err != nil {
		return nil, fmt.Errorf("keymanager: decoding share %q: %w", name, err)
	}
	return NewSimpleKeyManager(publicKeySet, share), nil
}

// Save persists this manager's master share into store under name, so a mint
// node process can restore it on restart without regenerating key material.
func (m *SimpleKeyManager) Save(store ShareStore, name string) error {
	if err := store.Store(name, StoredShare{Name: name, Data: m.masterShare.Bytes()}); err != nil {
		return fmt.Errorf("keymanager: saving share %q: %w", name, err)
	}
	return nil
}

// PublicKeySet returns the mint's master threshold public key set.
func (m *SimpleKeyManager) PublicKeySet() blsthreshold.PublicKeySet {
	return m.publicKeySet
}

// SignWithChildKey derives the secret share for derivationIndex from this
// node's master share and signs msg with it.
func (m *SimpleKeyManager) SignWithChildKey(derivationIndex []byte, msg []byte) (blsthreshold.SignatureShare, error) {
	childShare, err := m.masterShare.DeriveChild(derivationIndex)
	if err != nil {
		return blsthreshold.SignatureShare{}, fmt.Errorf("keymanager: deriving child share: %w", err)
	}
	return childShare.Sign(msg), nil
}

// Verify reports whether sig is a valid signature over msg under publicKey.
// publicKey need not be this node's own key share — it is whatever
// derived public key the caller is checking a combined signature against.
func (m *SimpleKeyManager) Verify(msg []byte, publicKey bls.PublicKey, sig bls.Sign) bool {
	return sig.Verify(&publicKey, string(msg))
}

var _ KeyManager = (*SimpleKeyManager)(nil)
