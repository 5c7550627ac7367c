package amount

import "errors"

var (
	// ErrAmountIncompatible is returned when two amounts cannot be summed
	// (or subtracted) exactly: the resulting count overflows the
	// representable counter range at every unit it can be written in
	// without rounding.
	ErrAmountIncompatible = errors.New("amount: operands incompatible, sum exceeds representable range")

	// ErrAmountUnderflow is returned when a subtraction would produce a
	// negative amount.
	ErrAmountUnderflow = errors.New("amount: subtrahend exceeds minuend")
)
