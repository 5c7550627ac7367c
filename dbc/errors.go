package dbc

import "errors"

var (
	// ErrInvalidMintSignature is returned when a Dbc's MintSignature does
	// not verify over its Envelope's hash under its MintPublicKey.
	ErrInvalidMintSignature = errors.New("dbc: mint signature does not verify against envelope hash")

	// ErrUnrecognizedDenomination is returned when a Dbc's mint_public_key is
	// not the correct derivation of the verifying master key set for the
	// content's denomination.
	ErrUnrecognizedDenomination = errors.New("dbc: mint public key is not the correct denomination derivation")

	// ErrMalformedContent is returned when serialized content bytes cannot
	// be parsed back into a Content.
	ErrMalformedContent = errors.New("dbc: malformed content encoding")

	// ErrContentEnvelopeMismatch is returned when a Dbc's Envelope does not
	// unblind to the slip of its Content.
	ErrContentEnvelopeMismatch = errors.New("dbc: envelope does not unblind to content's slip")
)
