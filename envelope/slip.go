package envelope

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/safenetwork-community/sn-dbc/denom"
)

// Slip is the plaintext content a client wants a mint to sign: an output's
// face value and the public key that will own it, plus a nonce that makes
// otherwise-identical outputs distinguishable. A mint never sees a Slip
// directly — only the Envelope it is sealed into.
type Slip struct {
	Denomination  denom.Denomination
	OwnerPublicKey []byte
	Nonce          [32]byte
}

// NewSlip builds a Slip with a freshly sampled random nonce.
func NewSlip(d denom.Denomination, ownerPublicKey []byte) (Slip, error) {
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return Slip{}, fmt.Errorf("envelope: sampling slip nonce: %w", err)
	}
	return Slip{Denomination: d, OwnerPublicKey: append([]byte(nil), ownerPublicKey...), Nonce: nonce}, nil
}

// Bytes returns the slip's fixed-layout binary encoding: denomination bytes,
// a length-prefixed owner public key, then the nonce.
func (s Slip) Bytes() []byte {
	denomBytes := s.Denomination.Bytes()
	buf := make([]byte, 0, len(denomBytes)+4+len(s.OwnerPublicKey)+32)
	buf = append(buf, denomBytes...)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(s.OwnerPublicKey)))
	buf = append(buf, lenBuf...)
	buf = append(buf, s.OwnerPublicKey...)
	buf = append(buf, s.Nonce[:]...)
	return buf
}

// slipFromBytes is the inverse of Slip.Bytes.
func slipFromBytes(b []byte) (Slip, error) {
	if len(b) < 5+4+32 {
		return Slip{}, fmt.Errorf("envelope: slip encoding too short (%d bytes)", len(b))
	}
	d, err := denom.FromBytes(b[0:5])
	if err != nil {
		return Slip{}, fmt.Errorf("envelope: decoding slip denomination: %w", err)
	}
	ownerLen := binary.BigEndian.Uint32(b[5:9])
	rest := b[9:]
	if uint32(len(rest)) != ownerLen+32 {
		return Slip{}, fmt.Errorf("envelope: slip encoding length mismatch")
	}
	ownerKey := append([]byte(nil), rest[:ownerLen]...)
	var nonce [32]byte
	copy(nonce[:], rest[ownerLen:])
	return Slip{Denomination: d, OwnerPublicKey: ownerKey, Nonce: nonce}, nil
}
