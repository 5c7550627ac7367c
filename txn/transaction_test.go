package txn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safenetwork-community/sn-dbc/dbc"
	"github.com/safenetwork-community/sn-dbc/envelope"
)

func TestReissueTransactionAmountSums(t *testing.T) {
	d := testDenomination(t)

	content, err := dbc.NewContent([]byte("owner"), d)
	require.NoError(t, err)
	env, bf, err := envelope.NewEnvelope(content.Slip())
	require.NoError(t, err)

	input := dbc.Dbc{Content: content, Envelope: env, BlindingFactor: bf}

	outputSlip, err := envelope.NewSlip(d, []byte("recipient"))
	require.NoError(t, err)
	outputEnv, _, err := envelope.NewEnvelope(outputSlip)
	require.NoError(t, err)

	rt := ReissueTransaction{
		NetworkID: "test-net",
		Inputs:    []dbc.Dbc{input},
		Outputs:   []dbc.Envelope{{Envelope: outputEnv, Denomination: d}},
	}

	inSum, err := rt.InputAmountSum()
	require.NoError(t, err)
	outSum, err := rt.OutputAmountSum()
	require.NoError(t, err)
	require.True(t, inSum.Equal(outSum))
}

func TestReissueTransactionBlindedIsOrderIndependent(t *testing.T) {
	d := testDenomination(t)

	mkInput := func(owner string) dbc.Dbc {
		content, err := dbc.NewContent([]byte(owner), d)
		require.NoError(t, err)
		env, bf, err := envelope.NewEnvelope(content.Slip())
		require.NoError(t, err)
		return dbc.Dbc{Content: content, Envelope: env, BlindingFactor: bf}
	}

	a := mkInput("alice")
	b := mkInput("bob")

	rt1 := ReissueTransaction{NetworkID: "net", Inputs: []dbc.Dbc{a, b}}
	rt2 := ReissueTransaction{NetworkID: "net", Inputs: []dbc.Dbc{b, a}}

	require.True(t, rt1.Blinded().Equal(rt2.Blinded()))
}
