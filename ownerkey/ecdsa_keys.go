package ownerkey

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// secp256k1PublicKey implements PublicKey for secp256k1.
type secp256k1PublicKey struct {
	key *secp256k1.PublicKey
}

// Bytes returns the compressed public key bytes (33 bytes).
func (k *secp256k1PublicKey) Bytes() []byte {
	return k.key.SerializeCompressed()
}

// Algorithm returns secp256k1.
func (k *secp256k1PublicKey) Algorithm() Algorithm {
	return AlgorithmSecp256k1
}

// Verify verifies a signature (64 bytes: r||s big-endian); both low-S and
// high-S forms are accepted.
func (k *secp256k1PublicKey) Verify(data, signature []byte) bool {
	if len(signature) != 64 {
		return false
	}

	var r, s secp256k1.ModNScalar
	if r.SetByteSlice(signature[:32]) {
		return false // overflow
	}
	if s.SetByteSlice(signature[32:]) {
		return false // overflow
	}

	sig := dcrecdsa.NewSignature(&r, &s)
	hash := sha256.Sum256(data)
	return sig.Verify(hash[:], k.key)
}

// Equals checks equality using constant-time comparison.
func (k *secp256k1PublicKey) Equals(other PublicKey) bool {
	if other == nil || other.Algorithm() != AlgorithmSecp256k1 {
		return false
	}
	return subtle.ConstantTimeCompare(k.Bytes(), other.Bytes()) == 1
}

// String returns Base64-encoded public key.
func (k *secp256k1PublicKey) String() string {
	return base64.StdEncoding.EncodeToString(k.Bytes())
}

// secp256k1PrivateKey implements PrivateKey for secp256k1.
type secp256k1PrivateKey struct {
	key *secp256k1.PrivateKey
}

// Bytes returns the raw private key bytes (32 bytes).
func (k *secp256k1PrivateKey) Bytes() []byte {
	return k.key.Serialize()
}

// Algorithm returns secp256k1.
func (k *secp256k1PrivateKey) Algorithm() Algorithm {
	return AlgorithmSecp256k1
}

// PublicKey returns the corresponding public key.
func (k *secp256k1PrivateKey) PublicKey() PublicKey {
	return &secp256k1PublicKey{key: k.key.PubKey()}
}

// Sign signs data using RFC 6979 deterministic signatures, normalized to
// low-S form. Returns a 64-byte signature: r||s in big-endian.
func (k *secp256k1PrivateKey) Sign(data []byte) ([]byte, error) {
	hash := sha256.Sum256(data)
	sig := dcrecdsa.Sign(k.key, hash[:])

	r := sig.R()
	s := sig.S()
	rBytes := r.Bytes()
	sBytes := s.Bytes()

	signature := make([]byte, 64)
	copy(signature[:32], rBytes[:])
	copy(signature[32:], sBytes[:])

	return NormalizeSignature(signature), nil
}

// Zeroize overwrites the private key with zeros.
func (k *secp256k1PrivateKey) Zeroize() {
	k.key.Zero()
}

// GeneratePrivateKey generates a new secp256k1 owner key.
func GeneratePrivateKey() (PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("ownerkey: failed to generate secp256k1 key: %w", err)
	}
	return &secp256k1PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes reconstructs a private key from its 32-byte scalar.
func PrivateKeyFromBytes(data []byte) (PrivateKey, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("ownerkey: invalid secp256k1 private key size: expected 32, got %d", len(data))
	}
	key := secp256k1.PrivKeyFromBytes(data)
	return &secp256k1PrivateKey{key: key}, nil
}

// PublicKeyFromBytes parses a compressed secp256k1 public key (33 bytes).
func PublicKeyFromBytes(data []byte) (PublicKey, error) {
	if len(data) != 33 {
		return nil, fmt.Errorf("ownerkey: invalid secp256k1 public key size: expected 33, got %d", len(data))
	}
	key, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("ownerkey: invalid secp256k1 public key: %w", err)
	}
	return &secp256k1PublicKey{key: key}, nil
}
