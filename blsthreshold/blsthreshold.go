// Package blsthreshold wraps the BLS12-381 threshold signature primitives a
// mint node uses to sign reissue outputs: a (t, n) Feldman-VSS key set lets
// any t+1 of n participants jointly produce a signature indistinguishable
// from one made with a single secret key, and a fixed public-key set lets
// clients verify against the combined key without learning which subset of
// mints signed.
package blsthreshold

import (
	"encoding/binary"
	"errors"
	"fmt"

	bls "github.com/herumi/bls-eth-go-binary/bls"
)

func init() {
	if err := bls.Init(bls.BLS12_381); err != nil {
		panic(fmt.Sprintf("blsthreshold: failed to initialize BLS12-381 backend: %v", err))
	}
	if err := bls.SetETHmode(bls.EthModeDraft07); err != nil {
		panic(fmt.Sprintf("blsthreshold: failed to set signing mode: %v", err))
	}
}

// ErrInsufficientShares is returned when fewer than threshold+1 signature
// shares are supplied to CombineSignatures.
var ErrInsufficientShares = errors.New("blsthreshold: fewer than threshold+1 signature shares supplied")

// PublicKeySet is the public half of a (t, n) threshold key set: the
// Feldman-VSS commitments to each coefficient of the sharing polynomial.
// commitments[0] is the combined public key against which a recovered
// signature verifies.
type PublicKeySet struct {
	threshold   int
	commitments []bls.PublicKey
}

// SecretKeyShare is one participant's share of the threshold secret key.
type SecretKeyShare struct {
	ID uint64
	sk bls.SecretKey
}

// SignatureShare is one participant's partial signature over a message,
// produced with their SecretKeyShare.
type SignatureShare struct {
	ID  uint64
	sig bls.Sign
}

// Threshold returns t: any t+1 shares, but no fewer, can combine a
// signature or reconstruct the secret key.
func (pks PublicKeySet) Threshold() int { return pks.threshold }

// PublicKey returns the combined public key against which a combined
// signature is verified.
func (pks PublicKeySet) PublicKey() bls.PublicKey { return pks.commitments[0] }

// GenerateKeySet creates a fresh (threshold, total) key set with a randomly
// sampled secret sharing polynomial. Participant IDs are assigned 1..total.
func GenerateKeySet(threshold, total int) (PublicKeySet, []SecretKeyShare, error) {
	if threshold < 0 || total <= threshold {
		return PublicKeySet{}, nil, fmt.Errorf("blsthreshold: invalid (threshold=%d, total=%d)", threshold, total)
	}
	var master bls.SecretKey
	master.SetByCSPRNG()
	msk := master.GetMasterSecretKey(threshold + 1)

	commitments := make([]bls.PublicKey, len(msk))
	for i, s := range msk {
		commitments[i] = *s.GetPublicKey()
	}

	shares := make([]SecretKeyShare, total)
	for i := 0; i < total; i++ {
		id := uint64(i + 1)
		var blsID bls.ID
		if err := blsID.SetDecString(fmt.Sprintf("%d", id)); err != nil {
			return PublicKeySet{}, nil, fmt.Errorf("blsthreshold: setting participant id: %w", err)
		}
		var share bls.SecretKey
		if err := share.Set(msk, &blsID); err != nil {
			return PublicKeySet{}, nil, fmt.Errorf("blsthreshold: deriving share %d: %w", id, err)
		}
		shares[i] = SecretKeyShare{ID: id, sk: share}
	}
	return PublicKeySet{threshold: threshold, commitments: commitments}, shares, nil
}

// DeriveChild derives the public key set for a given derivation index
// (typically a denomination's byte encoding), by additively tweaking the
// constant term of the sharing polynomial with a hash-derived scalar. Every
// participant's share shifts by the same scalar, so combined signatures and
// threshold arithmetic carry over unchanged to the derived key.
func (pks PublicKeySet) DeriveChild(index []byte) (PublicKeySet, error) {
	var delta bls.SecretKey
	if err := delta.SetHashOf(index); err != nil {
		return PublicKeySet{}, fmt.Errorf("blsthreshold: hashing derivation index: %w", err)
	}
	child := make([]bls.PublicKey, len(pks.commitments))
	copy(child, pks.commitments)
	child[0].Add(delta.GetPublicKey())
	return PublicKeySet{threshold: pks.threshold, commitments: child}, nil
}

// DeriveChild derives this participant's secret share for the given
// derivation index, matching the shift applied by PublicKeySet.DeriveChild.
func (s SecretKeyShare) DeriveChild(index []byte) (SecretKeyShare, error) {
	var delta bls.SecretKey
	if err := delta.SetHashOf(index); err != nil {
		return SecretKeyShare{}, fmt.Errorf("blsthreshold: hashing derivation index: %w", err)
	}
	child := s.sk
	child.Add(&delta)
	return SecretKeyShare{ID: s.ID, sk: child}, nil
}

// Sign produces this participant's signature share over msg.
func (s SecretKeyShare) Sign(msg []byte) SignatureShare {
	return SignatureShare{ID: s.ID, sig: *s.sk.SignByte(msg)}
}

// PublicKey returns this participant's public key share.
func (s SecretKeyShare) PublicKey() bls.PublicKey {
	return *s.sk.GetPublicKey()
}

// CombineSignatures recovers the combined threshold signature from at least
// threshold+1 distinct signature shares via Lagrange interpolation.
func CombineSignatures(threshold int, shares []SignatureShare) (bls.Sign, error) {
	if len(shares) < threshold+1 {
		return bls.Sign{}, ErrInsufficientShares
	}
	sigVec := make([]bls.Sign, len(shares))
	idVec := make([]bls.ID, len(shares))
	for i, s := range shares {
		sigVec[i] = s.sig
		if err := idVec[i].SetDecString(fmt.Sprintf("%d", s.ID)); err != nil {
			return bls.Sign{}, fmt.Errorf("blsthreshold: setting participant id: %w", err)
		}
	}
	var combined bls.Sign
	if err := combined.Recover(sigVec, idVec); err != nil {
		return bls.Sign{}, fmt.Errorf("blsthreshold: recovering combined signature: %w", err)
	}
	return combined, nil
}

// Verify reports whether sig is a valid signature over msg under the
// combined public key.
func (pks PublicKeySet) Verify(msg []byte, sig bls.Sign) bool {
	pub := pks.PublicKey()
	return sig.Verify(&pub, string(msg))
}

// Bytes serializes this share for offline storage: an 8-byte big-endian ID
// followed by the raw secret key scalar.
func (s SecretKeyShare) Bytes() []byte {
	skBytes := s.sk.Serialize()
	buf := make([]byte, 8+len(skBytes))
	binary.BigEndian.PutUint64(buf[:8], s.ID)
	copy(buf[8:], skBytes)
	return buf
}

// SecretKeyShareFromBytes is the inverse of SecretKeyShare.Bytes.
func SecretKeyShareFromBytes(b []byte) (SecretKeyShare, error) {
	if len(b) < 9 {
		return SecretKeyShare{}, fmt.Errorf("blsthreshold: secret key share encoding too short (%d bytes)", len(b))
	}
	id := binary.BigEndian.Uint64(b[:8])
	var sk bls.SecretKey
	if err := sk.Deserialize(b[8:]); err != nil {
		return SecretKeyShare{}, fmt.Errorf("blsthreshold: deserializing secret key share: %w", err)
	}
	return SecretKeyShare{ID: id, sk: sk}, nil
}
