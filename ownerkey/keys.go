package ownerkey

// PublicKey is an owner's verification key.
type PublicKey interface {
	// Bytes returns the compressed public key encoding (33 bytes).
	Bytes() []byte

	// Algorithm returns the signing algorithm this key belongs to.
	Algorithm() Algorithm

	// Verify reports whether signature is a valid signature over data.
	Verify(data, signature []byte) bool

	// Equals reports whether other names the same public key.
	Equals(other PublicKey) bool

	// String returns a Base64 encoding of the public key, for logging.
	String() string
}

// PrivateKey is an owner's signing key. Implementations must never expose
// private key material outside of Bytes/Sign, and must support Zeroize for
// best-effort clearing once the key is no longer needed.
type PrivateKey interface {
	// Bytes returns the raw private scalar (32 bytes).
	Bytes() []byte

	// Algorithm returns the signing algorithm this key belongs to.
	Algorithm() Algorithm

	// PublicKey returns the corresponding public key.
	PublicKey() PublicKey

	// Sign signs data and returns a 64-byte (r||s) signature.
	Sign(data []byte) ([]byte, error)

	// Zeroize overwrites the private scalar with zeros.
	Zeroize()
}

// Signer is the interface for signing operations, separate from PrivateKey
// so that callers needing only to sign (e.g. a hardware-backed key) are not
// coupled to key material access.
type Signer interface {
	Algorithm() Algorithm
	PublicKey() PublicKey
	Sign(message []byte) ([]byte, error)
}
