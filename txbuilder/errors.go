package txbuilder

import "errors"

var (
	// ErrNoInputs is returned when Build is called with no inputs added.
	ErrNoInputs = errors.New("txbuilder: no inputs added")

	// ErrAmountMismatch is returned when the sum of output denominations
	// does not equal the sum of input denominations.
	ErrAmountMismatch = errors.New("txbuilder: sum of outputs does not equal sum of inputs")
)
