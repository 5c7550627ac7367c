// Package amount implements the fixed-precision value algebra used to
// denominate certificates: an Amount is a (count, unit) pair representing
// count*10^unit, normalized to a canonical highest-unit form so that two
// amounts of equal value always compare and hash equal regardless of how
// they were constructed.
package amount

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/big"
)

// counterMax bounds the count field of a canonical Amount; count == counterMax
// is itself a valid boundary value. CheckedAdd and CheckedSub re-canonicalize
// by shifting the unit upward whenever the raw result would exceed it.
const counterMax uint64 = 1_000_000_000

// unitMax and unitMin bound the exponent. The -9..+9 margin below the int8
// range ceiling keeps SI-prefix lookups (yocto..yotta, ±24) well inside the
// representable range with headroom for intermediate rescaling.
const (
	unitMax = int8(math.MaxInt8 - 9)
	unitMin = -unitMax
)

// Amount is count*10^unit. The zero value represents zero.
type Amount struct {
	count uint32
	unit  int8
}

// New constructs an Amount, rejecting units outside [unitMin, unitMax].
func New(count uint32, unit int8) (Amount, error) {
	if unit > unitMax || unit < unitMin {
		return Amount{}, fmt.Errorf("amount: unit %d outside representable range [%d, %d]", unit, unitMin, unitMax)
	}
	return Amount{count: count, unit: unit}, nil
}

// Zero is the additive identity.
var Zero = Amount{count: 0, unit: 0}

// Max returns the largest Amount representable in canonical form.
func Max() Amount {
	return Amount{count: uint32(counterMax), unit: unitMax}
}

// Count returns the amount's raw count.
func (a Amount) Count() uint32 { return a.count }

// Unit returns the amount's power-of-ten exponent.
func (a Amount) Unit() int8 { return a.unit }

// IsZero reports whether the amount has zero value.
func (a Amount) IsZero() bool { return a.count == 0 }

// ToHighestUnit rewrites the amount in its canonical form: the count has no
// trailing decimal zero that could instead be folded into the unit, short of
// the unit ceiling.
func (a Amount) ToHighestUnit() Amount {
	count, unit := uint64(a.count), a.unit
	for count != 0 && count%10 == 0 && unit < unitMax {
		unit++
		count /= 10
	}
	return Amount{count: uint32(count), unit: unit}
}

// normalize rescales two amounts to a common unit (the lesser of their two
// canonical units) and returns their counts as arbitrary-precision integers,
// since rescaling a large count to a lower unit can overflow uint32.
func normalize(a, b Amount) (ca, cb *big.Int, unit int8) {
	a, b = a.ToHighestUnit(), b.ToHighestUnit()
	ca = new(big.Int).SetUint64(uint64(a.count))
	cb = new(big.Int).SetUint64(uint64(b.count))
	switch {
	case a.unit == b.unit:
		return ca, cb, a.unit
	case a.unit < b.unit:
		scale := pow10(int(b.unit - a.unit))
		cb.Mul(cb, scale)
		return ca, cb, a.unit
	default:
		scale := pow10(int(a.unit - b.unit))
		ca.Mul(ca, scale)
		return ca, cb, b.unit
	}
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// canonicalize takes a raw (possibly over-range) count at a given unit and
// folds it back into range by shifting the unit upward and dividing the
// count by ten, exactly as ToHighestUnit does but starting from a big.Int
// that may exceed counterMax. A shift only happens while the count is a
// multiple of ten, so the value is never rounded. Returns
// ErrAmountIncompatible if the count exceeds counterMax and either is not a
// multiple of ten or the unit ceiling is reached before it fits.
func canonicalize(count *big.Int, unit int8) (Amount, error) {
	ten := big.NewInt(10)
	counterMaxBig := new(big.Int).SetUint64(counterMax)
	for (count.Cmp(counterMaxBig) > 0 || isMultipleOfTen(count)) && unit < unitMax {
		if !isMultipleOfTen(count) {
			return Amount{}, ErrAmountIncompatible
		}
		unit++
		count = ceilDiv10(count, ten)
	}
	if count.Cmp(counterMaxBig) > 0 {
		return Amount{}, ErrAmountIncompatible
	}
	return Amount{count: uint32(count.Uint64()), unit: unit}, nil
}

func isMultipleOfTen(n *big.Int) bool {
	if n.Sign() == 0 {
		return false
	}
	rem := new(big.Int).Mod(n, big.NewInt(10))
	return rem.Sign() == 0
}

func ceilDiv10(n, ten *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.DivMod(n, ten, r)
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// CheckedAdd returns a+b in canonical form, or ErrAmountIncompatible if the
// sum cannot be represented exactly (its count exceeds the counter bound at
// every unit the sum can be written in without rounding).
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	ca, cb, unit := normalize(a, b)
	sum := new(big.Int).Add(ca, cb)
	return canonicalize(sum, unit)
}

// CheckedSub returns a-b in canonical form, or ErrAmountUnderflow if b > a.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	if a.Compare(b) < 0 {
		return Amount{}, ErrAmountUnderflow
	}
	ca, cb, unit := normalize(a, b)
	diff := new(big.Int).Sub(ca, cb)
	return canonicalize(diff, unit)
}

// CheckedSum folds CheckedAdd over a slice of amounts, starting from Zero.
func CheckedSum(amounts []Amount) (Amount, error) {
	sum := Zero
	for _, a := range amounts {
		var err error
		sum, err = sum.CheckedAdd(a)
		if err != nil {
			return Amount{}, err
		}
	}
	return sum, nil
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func (a Amount) Compare(b Amount) int {
	if a.count == 0 && b.count == 0 {
		return 0
	}
	if a.unit == b.unit {
		switch {
		case a.count < b.count:
			return -1
		case a.count > b.count:
			return 1
		default:
			return 0
		}
	}
	ca, cb, _ := normalize(a, b)
	return ca.Cmp(cb)
}

// Equal reports whether a and b denote the same value.
func (a Amount) Equal(b Amount) bool {
	return a.Compare(b) == 0
}

// Hash returns a value-stable hash: equal amounts (even with different
// count/unit representations before canonicalization) hash equal.
func (a Amount) Hash() uint64 {
	h := fnv.New64a()
	c := a.ToHighestUnit()
	fmt.Fprintf(h, "%d*10^%d", c.count, c.unit)
	return h.Sum64()
}

// String renders the amount in its raw count*10^unit form.
func (a Amount) String() string {
	return fmt.Sprintf("%d*10^%d", a.count, a.unit)
}

var siPrefixes = []struct {
	exp    int8
	prefix string
}{
	{24, "Y"}, {21, "Z"}, {18, "E"}, {15, "P"}, {12, "T"}, {9, "G"}, {6, "M"}, {3, "k"},
	{0, ""},
	{-3, "m"}, {-6, "µ"}, {-9, "n"}, {-12, "p"}, {-15, "f"}, {-18, "a"}, {-21, "z"}, {-24, "y"},
}

// ToSIString renders the amount's decimal value with six decimal places,
// scaled by the largest SI prefix from k up to Y that keeps the scaled value
// at or above one, e.g. "1.500000k" for 1500. Values below 1000 are rendered
// without a prefix ("0.000000" for 42*10^-24); the sub-unit prefixes m
// through y are never chosen.
func (a Amount) ToSIString() string {
	c := a.ToHighestUnit()
	rat := new(big.Rat).SetInt(new(big.Int).SetUint64(uint64(c.count)))
	if c.unit >= 0 {
		rat.Mul(rat, new(big.Rat).SetInt(pow10(int(c.unit))))
	} else {
		rat.Quo(rat, new(big.Rat).SetInt(pow10(int(-c.unit))))
	}
	for _, p := range siPrefixes {
		scaled := new(big.Rat).Quo(rat, pow10Rat(p.exp))
		if scaled.Cmp(big.NewRat(1, 1)) >= 0 || p.exp <= 0 {
			return scaled.FloatString(6) + p.prefix
		}
	}
	return rat.FloatString(6)
}

// pow10Rat returns 10^exp as a big.Rat, exp may be negative.
func pow10Rat(exp int8) *big.Rat {
	if exp >= 0 {
		return new(big.Rat).SetInt(pow10(int(exp)))
	}
	return new(big.Rat).SetFrac(big.NewInt(1), pow10(int(-exp)))
}
