package txn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safenetwork-community/sn-dbc/amount"
	"github.com/safenetwork-community/sn-dbc/denom"
)

func testDenomination(t *testing.T) denom.Denomination {
	t.Helper()
	a, err := amount.New(1, 0)
	require.NoError(t, err)
	d, err := denom.New(a)
	require.NoError(t, err)
	return d
}

func TestBlindedTransactionOrderIndependence(t *testing.T) {
	d := testDenomination(t)
	a := Hash{1}
	b := Hash{2}
	outA := BlindedOutput{EnvelopeHash: [32]byte{10}, Denomination: d}
	outB := BlindedOutput{EnvelopeHash: [32]byte{20}, Denomination: d}

	bt1 := newBlindedTransaction("test-net", []Hash{a, b}, []BlindedOutput{outA, outB})
	bt2 := newBlindedTransaction("test-net", []Hash{b, a}, []BlindedOutput{outB, outA})

	require.True(t, bt1.Equal(bt2))
}

func TestBlindedTransactionHashStableAndDistinct(t *testing.T) {
	d := testDenomination(t)
	bt1 := newBlindedTransaction("net", []Hash{{1}}, []BlindedOutput{{EnvelopeHash: [32]byte{9}, Denomination: d}})
	bt2 := newBlindedTransaction("net", []Hash{{2}}, []BlindedOutput{{EnvelopeHash: [32]byte{9}, Denomination: d}})

	h1, err := bt1.Hash()
	require.NoError(t, err)
	h1Again, err := bt1.Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h1Again)

	h2, err := bt2.Hash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestBlindedTransactionRejectsEmptyInputs(t *testing.T) {
	bt := newBlindedTransaction("net", nil, nil)
	_, err := bt.ToJSON()
	require.ErrorIs(t, err, ErrEmptyTransaction)
}

func TestBlindedTransactionDifferentNetworkIDsDiffer(t *testing.T) {
	d := testDenomination(t)
	outs := []BlindedOutput{{EnvelopeHash: [32]byte{1}, Denomination: d}}
	bt1 := newBlindedTransaction("net-a", []Hash{{1}}, outs)
	bt2 := newBlindedTransaction("net-b", []Hash{{1}}, outs)
	require.False(t, bt1.Equal(bt2))
}
