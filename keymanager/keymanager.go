// Package keymanager wraps a mint node's threshold BLS key material behind
// the narrow interface its reissue handler actually needs: the public key
// set clients verify against, and the ability to sign with the child key
// for a specific denomination without exposing the raw secret share.
package keymanager

import (
	bls "github.com/herumi/bls-eth-go-binary/bls"

	"github.com/safenetwork-community/sn-dbc/blsthreshold"
)

// KeyManager is what a mint node's reissue handler signs through. It never
// exposes a raw SecretKeyShare, only signatures produced with one.
type KeyManager interface {
	// PublicKeySet returns the mint's master threshold public key set.
	PublicKeySet() blsthreshold.PublicKeySet

	// SignWithChildKey signs msg with the secret share derived from
	// derivationIndex (a denomination's byte encoding).
	SignWithChildKey(derivationIndex []byte, msg []byte) (blsthreshold.SignatureShare, error)

	// Verify reports whether sig is a valid signature over msg under
	// publicKey.
	Verify(msg []byte, publicKey bls.PublicKey, sig bls.Sign) bool
}
