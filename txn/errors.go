package txn

import "errors"

var (
	// ErrEmptyTransaction is returned when a transaction has no inputs.
	ErrEmptyTransaction = errors.New("txn: transaction has no inputs")

	// ErrNoOutputs is returned when a transaction has no outputs.
	ErrNoOutputs = errors.New("txn: transaction has no outputs")

	// ErrValueMismatch is returned when the sum of output denominations does
	// not equal the sum of input amounts.
	ErrValueMismatch = errors.New("txn: sum of outputs does not equal sum of inputs")

	// ErrDuplicateInput is returned when the same input appears more than
	// once in a transaction. ReissueTransaction.Validate also returns it
	// when two outputs share an envelope hash.
	ErrDuplicateInput = errors.New("txn: duplicate input in transaction")

	// ErrMissingOwnerProof is returned when an input lacks a corresponding
	// ownership signature in a ReissueRequest.
	ErrMissingOwnerProof = errors.New("txn: missing ownership proof for input")
)
