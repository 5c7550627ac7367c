// Package dbc defines the Digital Bearer Certificate data model: the
// owner-addressed content a slip is derived from, the blinded envelope form
// a mint node actually signs, and the finished, self-verifying certificate a
// client assembles once enough mint nodes have signed.
package dbc

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/safenetwork-community/sn-dbc/denom"
	"github.com/safenetwork-community/sn-dbc/envelope"
)

// Content is the plaintext backing a Dbc: who owns it, what it's worth, and
// the nonce that makes its derived slip unique even for two Dbcs with the
// same owner and denomination.
type Content struct {
	OwnerPublicKey []byte
	Denomination   denom.Denomination
	Nonce          [32]byte
}

// NewContent builds fresh Content for ownerPublicKey and denomination, with
// a randomly sampled nonce.
func NewContent(ownerPublicKey []byte, denomination denom.Denomination) (Content, error) {
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return Content{}, fmt.Errorf("dbc: sampling content nonce: %w", err)
	}
	owner := make([]byte, len(ownerPublicKey))
	copy(owner, ownerPublicKey)
	return Content{OwnerPublicKey: owner, Denomination: denomination, Nonce: nonce}, nil
}

// Slip derives the plaintext slip a mint node blind-signs for this content.
func (c Content) Slip() envelope.Slip {
	return envelope.Slip{
		Denomination:   c.Denomination,
		OwnerPublicKey: c.OwnerPublicKey,
		Nonce:          c.Nonce,
	}
}

// Bytes returns the canonical byte encoding of the content: denomination
// bytes, the owner public key length-prefixed, then the nonce.
func (c Content) Bytes() []byte {
	out := make([]byte, 0, 5+4+len(c.OwnerPublicKey)+32)
	out = append(out, c.Denomination.Bytes()...)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c.OwnerPublicKey)))
	out = append(out, lenBuf[:]...)
	out = append(out, c.OwnerPublicKey...)
	out = append(out, c.Nonce[:]...)
	return out
}

// Hash is the content identity: blake2b-256 of its canonical encoding.
func (c Content) Hash() [32]byte {
	return blake2b.Sum256(c.Bytes())
}

// contentFromBytes parses the inverse of Content.Bytes, re-validating
// denomination legality.
func contentFromBytes(b []byte) (Content, error) {
	if len(b) < 5+4 {
		return Content{}, ErrMalformedContent
	}
	d, err := denom.FromBytes(b[:5])
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	ownerLen := binary.BigEndian.Uint32(b[5:9])
	rest := b[9:]
	if uint64(len(rest)) < uint64(ownerLen)+32 {
		return Content{}, ErrMalformedContent
	}
	owner := make([]byte, ownerLen)
	copy(owner, rest[:ownerLen])
	var nonce [32]byte
	copy(nonce[:], rest[ownerLen:ownerLen+32])
	return Content{OwnerPublicKey: owner, Denomination: d, Nonce: nonce}, nil
}
