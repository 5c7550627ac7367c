package ownerkey

import (
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Low-S signature normalization utilities for ECDSA.
//
// ECDSA signatures are malleable: for any valid signature (r, s), the
// signature (r, n-s) is also valid where n is the curve order. This can
// cause signature-based deduplication and replay detection to miss
// semantically identical signatures. Sign() always produces low-S form;
// Verify() accepts both, so these helpers are only needed when comparing
// or re-serializing externally sourced signatures.

var (
	// curveOrder is the order of the secp256k1 curve.
	curveOrder = secp256k1.Params().N

	// halfCurveOrder is n/2, the low-S threshold.
	halfCurveOrder = new(big.Int).Rsh(curveOrder, 1)
)

// IsLowS reports whether a 64-byte signature has s in the lower half of the
// curve order. Returns false for invalid signature lengths.
func IsLowS(sig []byte) bool {
	if len(sig) != 64 {
		return false
	}
	s := new(big.Int).SetBytes(sig[32:64])
	return s.Cmp(halfCurveOrder) <= 0
}

// NormalizeSignature converts a high-S signature to low-S form. If the
// signature is already low-S, returns a copy. Returns nil for invalid
// signature lengths.
func NormalizeSignature(sig []byte) []byte {
	if len(sig) != 64 {
		return nil
	}

	s := new(big.Int).SetBytes(sig[32:64])
	if s.Cmp(halfCurveOrder) <= 0 {
		result := make([]byte, 64)
		copy(result, sig)
		return result
	}

	s.Sub(curveOrder, s)

	result := make([]byte, 64)
	copy(result[:32], sig[:32])
	sBytes := s.Bytes()
	copy(result[64-len(sBytes):64], sBytes)
	return result
}

// CurveOrder returns the secp256k1 curve order n.
func CurveOrder() *big.Int { return curveOrder }

// HalfCurveOrder returns n/2, the low-S threshold.
func HalfCurveOrder() *big.Int { return halfCurveOrder }
