package envelope

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
)

// BlindingFactor is the symmetric key a client uses to seal a Slip into an
// Envelope and later unblind it. It never leaves the client.
type BlindingFactor [chacha20poly1305.KeySize]byte

// Envelope is the sealed form of a Slip that a mint signs without being
// able to read the owner public key or denomination it commits to. The
// mint's signature is computed over Hash, which is bound to Sealed but
// reveals nothing about its plaintext.
type Envelope struct {
	Sealed []byte
	Hash   [32]byte
}

// NewEnvelope seals slip with a freshly sampled blinding factor.
func NewEnvelope(slip Slip) (Envelope, BlindingFactor, error) {
	var bf BlindingFactor
	if _, err := rand.Read(bf[:]); err != nil {
		return Envelope{}, BlindingFactor{}, fmt.Errorf("%w: sampling blinding factor: %v", ErrSealFailed, err)
	}
	env, err := seal(slip, bf)
	if err != nil {
		return Envelope{}, BlindingFactor{}, err
	}
	return env, bf, nil
}

func seal(slip Slip, bf BlindingFactor) (Envelope, error) {
	aead, err := chacha20poly1305.NewX(bf[:])
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("%w: sampling seal nonce: %v", ErrSealFailed, err)
	}
	sealed := aead.Seal(nonce, nonce, slip.Bytes(), nil)
	return Envelope{Sealed: sealed, Hash: blake2b.Sum256(sealed)}, nil
}

// Unblind opens the envelope with the blinding factor that sealed it,
// recovering the original Slip. Returns ErrUnblindFailed if bf does not
// match or the sealed content has been altered.
func (e Envelope) Unblind(bf BlindingFactor) (Slip, error) {
	aead, err := chacha20poly1305.NewX(bf[:])
	if err != nil {
		return Slip{}, fmt.Errorf("%w: %v", ErrUnblindFailed, err)
	}
	if len(e.Sealed) < chacha20poly1305.NonceSizeX {
		return Slip{}, ErrUnblindFailed
	}
	nonce, ct := e.Sealed[:chacha20poly1305.NonceSizeX], e.Sealed[chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return Slip{}, fmt.Errorf("%w: %v", ErrUnblindFailed, err)
	}
	slip, err := slipFromBytes(plain)
	if err != nil {
		return Slip{}, fmt.Errorf("%w: %v", ErrUnblindFailed, err)
	}
	return slip, nil
}

// Equal reports whether two envelopes carry identical sealed content.
func (e Envelope) Equal(other Envelope) bool {
	return e.Hash == other.Hash
}
