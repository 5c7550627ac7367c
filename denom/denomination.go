// Package denom defines the fixed set of legal face values certificates may
// be issued in, each with a stable binary encoding used to derive a mint
// node's per-denomination threshold key share.
package denom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/safenetwork-community/sn-dbc/amount"
)

// ErrNotLegal is returned when a denomination's amount does not belong to
// the fixed legal set.
var ErrNotLegal = errors.New("denom: amount is not a legal denomination")

// Denomination is a legal face value a certificate may carry. Its wire
// encoding is the canonical big-endian bytes of the underlying amount,
// which doubles as the threshold key derivation index for that value.
type Denomination struct {
	value amount.Amount
}

// legalSet is the fixed, ascending list of denominations the mint will
// issue and accept. Values are 1, 2, 5 times powers of ten, matching
// conventional fiat/coin denominations.
var legalSet []Denomination

func init() {
	digits := []uint32{1, 2, 5}
	for unit := int8(-9); unit <= 18; unit++ {
		for _, d := range digits {
			a, err := amount.New(d, unit)
			if err != nil {
				panic(fmt.Sprintf("denom: failed to build legal set entry: %v", err))
			}
			legalSet = append(legalSet, Denomination{value: a})
		}
	}
	sort.Slice(legalSet, func(i, j int) bool {
		return legalSet[i].value.Compare(legalSet[j].value) < 0
	})
}

// New returns the Denomination for a, or ErrNotLegal if a is not in the
// fixed legal set.
func New(a amount.Amount) (Denomination, error) {
	for _, d := range legalSet {
		if d.value.Equal(a) {
			return d, nil
		}
	}
	return Denomination{}, ErrNotLegal
}

// IsLegal reports whether a belongs to the fixed legal denomination set.
func IsLegal(a amount.Amount) bool {
	_, err := New(a)
	return err == nil
}

// LegalDenominations returns the fixed, ascending set of denominations the
// mint recognizes. The returned slice is a defensive copy.
func LegalDenominations() []Denomination {
	out := make([]Denomination, len(legalSet))
	copy(out, legalSet)
	return out
}

// Amount returns the underlying face value.
func (d Denomination) Amount() amount.Amount { return d.value }

// Bytes returns the denomination's stable big-endian encoding: a 4-byte
// count followed by a 1-byte signed unit. This encoding is used verbatim
// as the child-key derivation index for threshold signing, so it must
// never change for a given denomination once issued.
func (d Denomination) Bytes() []byte {
	buf := make([]byte, 5)
	binary.BigEndian.PutUint32(buf[0:4], d.value.Count())
	buf[4] = byte(d.value.Unit())
	return buf
}

// String renders the denomination's SI-prefixed value.
func (d Denomination) String() string {
	return d.value.ToSIString()
}

// Equal reports whether two denominations carry the same face value.
func (d Denomination) Equal(other Denomination) bool {
	return d.value.Equal(other.value)
}

// FromBytes decodes a denomination from its Bytes() encoding and verifies it
// names a legal value, returning ErrNotLegal otherwise.
func FromBytes(b []byte) (Denomination, error) {
	if len(b) != 5 {
		return Denomination{}, fmt.Errorf("denom: encoding must be 5 bytes, got %d", len(b))
	}
	count := binary.BigEndian.Uint32(b[0:4])
	unit := int8(b[4])
	a, err := amount.New(count, unit)
	if err != nil {
		return Denomination{}, err
	}
	return New(a)
}
