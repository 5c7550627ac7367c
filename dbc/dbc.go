package dbc

import (
	"bytes"

	bls "github.com/herumi/bls-eth-go-binary/bls"

	"github.com/safenetwork-community/sn-dbc/blsthreshold"
	"github.com/safenetwork-community/sn-dbc/envelope"
)

// Dbc is a finished, bearer certificate. The mint never sees a slip in
// plaintext, so what it actually signs is the blinded Envelope's hash; Dbc
// retains that Envelope and the BlindingFactor that unblinds it so anyone
// holding the certificate can confirm Content really is the slip the mint
// signed, without trusting whoever assembled it.
type Dbc struct {
	Content        Content
	Envelope       envelope.Envelope
	BlindingFactor envelope.BlindingFactor
	MintPublicKey  bls.PublicKey
	MintSignature  bls.Sign
}

// Name is the Dbc identity: the hash of its content.
func (d Dbc) Name() [32]byte { return d.Content.Hash() }

// Verify checks that Envelope unblinds to the slip of Content, that
// MintSignature verifies over Envelope.Hash under MintPublicKey, and that
// MintPublicKey is the correct denomination-derived child of masterKeySet.
func (d Dbc) Verify(masterKeySet blsthreshold.PublicKeySet) error {
	expected, err := masterKeySet.DeriveChild(d.Content.Denomination.Bytes())
	if err != nil {
		return err
	}
	if !bytes.Equal(expected.PublicKey().Serialize(), d.MintPublicKey.Serialize()) {
		return ErrUnrecognizedDenomination
	}

	recoveredSlip, err := d.Envelope.Unblind(d.BlindingFactor)
	if err != nil {
		return ErrContentEnvelopeMismatch
	}
	if !slipsEqual(recoveredSlip, d.Content.Slip()) {
		return ErrContentEnvelopeMismatch
	}

	if !d.MintSignature.Verify(&d.MintPublicKey, string(d.Envelope.Hash[:])) {
		return ErrInvalidMintSignature
	}
	return nil
}

func slipsEqual(a, b envelope.Slip) bool {
	return bytes.Equal(a.Bytes(), b.Bytes())
}
