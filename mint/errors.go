package mint

import "errors"

var (
	// ErrFilteredInputNotPresent is returned when the caller's expected
	// input-name set disagrees with the transaction's actual inputs — a
	// defense against a transport layer silently dropping or adding inputs
	// between request construction and arrival at this node.
	ErrFilteredInputNotPresent = errors.New("mint: expected input names do not match transaction inputs")

	// ErrEmptyTransaction is returned when the transaction has no inputs.
	ErrEmptyTransaction = errors.New("mint: transaction has no inputs")

	// ErrTransactionValueMismatch is returned when input and output amount
	// sums are unequal.
	ErrTransactionValueMismatch = errors.New("mint: input and output amount sums do not match")

	// ErrInvalidMintSignature is returned when an input's embedded mint
	// signature does not verify under its embedded mint public key.
	ErrInvalidMintSignature = errors.New("mint: input mint signature does not verify")

	// ErrUnrecognizedDenomination is returned when an input's mint public
	// key is not this mint's denomination-derived child key.
	ErrUnrecognizedDenomination = errors.New("mint: input mint public key is not a recognized denomination child key")

	// ErrMissingInputOwnerProof is returned when an input has no entry in
	// the request's ownership-proof map.
	ErrMissingInputOwnerProof = errors.New("mint: missing ownership proof for input")

	// ErrFailedSignature is returned when an ownership proof's signature
	// does not verify against the blinded transaction hash.
	ErrFailedSignature = errors.New("mint: ownership proof signature does not verify")

	// ErrDbcAlreadySpent is returned when any input name is already present
	// in the spend-book.
	ErrDbcAlreadySpent = errors.New("mint: dbc already spent")
)
