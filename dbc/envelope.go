package dbc

import (
	"github.com/safenetwork-community/sn-dbc/denom"
	"github.com/safenetwork-community/sn-dbc/envelope"
)

// Envelope is the blinded output handle a TransactionBuilder hands to mint
// nodes before any signature exists: the sealed envelope plus the
// denomination the mint must derive its child key from to sign it. Its
// identity is the envelope's own hash, since the underlying slip is still
// hidden from the mint.
type Envelope struct {
	Envelope     envelope.Envelope
	Denomination denom.Denomination
}

// Hash returns the envelope identity.
func (e Envelope) Hash() [32]byte { return e.Envelope.Hash }

// Equal reports whether two Envelopes wrap the same sealed bytes and
// denomination.
func (e Envelope) Equal(other Envelope) bool {
	return e.Envelope.Equal(other.Envelope) && e.Denomination.Equal(other.Denomination)
}
