package testing

import (
	"sync/atomic"
	"testing"

	"github.com/safenetwork-community/sn-dbc/amount"
	"github.com/safenetwork-community/sn-dbc/denom"
	"github.com/safenetwork-community/sn-dbc/txn"
)

func sampleBlindedTransaction() txn.BlindedTransaction {
	a, err := amount.New(1, 0)
	if err != nil {
		panic(err)
	}
	d, err := denom.New(a)
	if err != nil {
		panic(err)
	}
	return txn.BlindedTransaction{
		NetworkID:  "test-net",
		InputNames: []txn.Hash{{1}, {2}},
		Outputs: []txn.BlindedOutput{
			{EnvelopeHash: [32]byte{9}, Denomination: d},
		},
	}
}

// nonDeterministicEncoder flips a byte on every other call, simulating a
// broken encoder that should fail the determinism checks.
type nonDeterministicEncoder struct {
	calls int32
}

func (e *nonDeterministicEncoder) ToJSON() ([]byte, error) {
	n := atomic.AddInt32(&e.calls, 1)
	if n%2 == 0 {
		return []byte(`{"a":1}`), nil
	}
	return []byte(`{"a":2}`), nil
}

func TestAssertCanonicalEncodingValidOnRealBlindedTransaction(t *testing.T) {
	bt := sampleBlindedTransaction()
	AssertCanonicalEncodingValid(t, bt)
}

func TestAssertCanonicalEncodingDeterminismConcurrentOnRealBlindedTransaction(t *testing.T) {
	bt := sampleBlindedTransaction()
	AssertCanonicalEncodingDeterminismConcurrent(t, bt, 8, 50)
}

func TestAssertCanonicalEncodingDeterminismCatchesNonDeterministicEncoder(t *testing.T) {
	enc := &nonDeterministicEncoder{}
	ok := t.Run("subtest", func(st *testing.T) {
		AssertCanonicalEncodingDeterminism(st, enc, 4)
	})
	if ok {
		t.Fatal("expected AssertCanonicalEncodingDeterminism to report failure for a non-deterministic encoder")
	}
}
