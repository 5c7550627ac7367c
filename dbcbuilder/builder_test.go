package dbcbuilder

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safenetwork-community/sn-dbc/amount"
	"github.com/safenetwork-community/sn-dbc/blsthreshold"
	"github.com/safenetwork-community/sn-dbc/dbc"
	"github.com/safenetwork-community/sn-dbc/denom"
	"github.com/safenetwork-community/sn-dbc/keymanager"
	"github.com/safenetwork-community/sn-dbc/mint"
	"github.com/safenetwork-community/sn-dbc/ownerkey"
	"github.com/safenetwork-community/sn-dbc/spendbook"
	"github.com/safenetwork-community/sn-dbc/txbuilder"
	"github.com/safenetwork-community/sn-dbc/txn"
)

// testFederation is a minimal (threshold+1, total) mint quorum, built the
// same way mint's own tests build one, so this package's tests exercise
// the real Reissue path rather than hand-assembled ReissueShares.
type testFederation struct {
	pks   blsthreshold.PublicKeySet
	nodes []*mint.Node
}

func newTestFederation(t *testing.T, threshold, total int) testFederation {
	t.Helper()
	pks, shares, err := blsthreshold.GenerateKeySet(threshold, total)
	require.NoError(t, err)
	nodes := make([]*mint.Node, total)
	for i, share := range shares {
		km := keymanager.NewSimpleKeyManager(pks, share)
		nodes[i] = mint.NewNode(km, spendbook.NewMemorySpendBook(), nil)
	}
	return testFederation{pks: pks, nodes: nodes}
}

func mustOwnerKey(t *testing.T) ownerkey.PrivateKey {
	t.Helper()
	key, err := ownerkey.GeneratePrivateKey()
	require.NoError(t, err)
	return key
}

func mustDenom(t *testing.T, count uint32, unit int8) denom.Denomination {
	t.Helper()
	a, err := amount.New(count, unit)
	require.NoError(t, err)
	d, err := denom.New(a)
	require.NoError(t, err)
	return d
}

func issueGenesis(t *testing.T, fed testFederation, owner ownerkey.PrivateKey, d denom.Denomination) dbc.Dbc {
	t.Helper()
	quorum := fed.nodes[:fed.pks.Threshold()+1]
	g, err := mint.IssueGenesisDbc(quorum, owner.PublicKey().Bytes(), d.Amount())
	require.NoError(t, err)
	return g
}

// reissueAllNodes drives req through every node in fed and feeds their
// shares into builder, the way a client assembling a DbcBuilder would.
func reissueAllNodes(t *testing.T, fed testFederation, req txn.ReissueRequest, builder *DbcBuilder) {
	t.Helper()
	expected := make(map[txn.Hash]struct{}, len(req.Transaction.Inputs))
	for _, in := range req.Transaction.Inputs {
		expected[txn.Hash(in.Name())] = struct{}{}
	}
	for _, node := range fed.nodes {
		share, err := node.Reissue(req, expected)
		require.NoError(t, err)
		builder.AddReissueShare(share)
	}
}

func TestDbcBuilderEndToEndSplit(t *testing.T) {
	fed := newTestFederation(t, 1, 3)
	alice := mustOwnerKey(t)
	bob := mustOwnerKey(t)
	carol := mustOwnerKey(t)

	hundred := mustDenom(t, 1, 2)
	fifty := mustDenom(t, 5, 1)
	genesis := issueGenesis(t, fed, alice, hundred)

	result, err := txbuilder.NewTransactionBuilder("test-net").
		AddInput(genesis).
		AddOutput(txn.Output{Denomination: fifty, OwnerPublicKey: bob.PublicKey().Bytes()}).
		AddOutput(txn.Output{Denomination: fifty, OwnerPublicKey: carol.PublicKey().Bytes()}).
		Build()
	require.NoError(t, err)

	blindedHash, err := result.Transaction.Blinded().Hash()
	require.NoError(t, err)
	sig, err := alice.Sign(blindedHash[:])
	require.NoError(t, err)

	req := txn.ReissueRequest{
		Transaction: result.Transaction,
		InputOwnershipProofs: map[txn.Hash]txn.OwnershipProof{
			txn.Hash(genesis.Name()): {OwnerPublicKey: alice.PublicKey().Bytes(), Signature: sig},
		},
	}

	builder := NewDbcBuilder(result.Transaction).AddOutputsContent(result.OutputsContent, result.OutputsBlinding)
	reissueAllNodes(t, fed, req, builder)

	dbcs, err := builder.Build()
	require.NoError(t, err)
	require.Len(t, dbcs, 2)

	for _, out := range dbcs {
		require.NoError(t, out.Verify(fed.pks))
	}

	// outputs come back sorted by name.
	nameA, nameB := dbcs[0].Name(), dbcs[1].Name()
	require.True(t, bytes.Compare(nameA[:], nameB[:]) < 0)
}

func TestDbcBuilderRejectsEmptyShares(t *testing.T) {
	fed := newTestFederation(t, 1, 3)
	alice := mustOwnerKey(t)
	hundred := mustDenom(t, 1, 2)
	genesis := issueGenesis(t, fed, alice, hundred)

	tx := txn.ReissueTransaction{NetworkID: "test-net", Inputs: []dbc.Dbc{genesis}}
	_, err := NewDbcBuilder(tx).Build()
	require.ErrorIs(t, err, ErrNoReissueShares)
}

func TestDbcBuilderRejectsMismatchedTransaction(t *testing.T) {
	fed := newTestFederation(t, 1, 3)
	alice := mustOwnerKey(t)
	bob := mustOwnerKey(t)
	hundred := mustDenom(t, 1, 2)
	genesis := issueGenesis(t, fed, alice, hundred)

	result, err := txbuilder.NewTransactionBuilder("test-net").
		AddInput(genesis).
		AddOutput(txn.Output{Denomination: hundred, OwnerPublicKey: bob.PublicKey().Bytes()}).
		Build()
	require.NoError(t, err)

	blindedHash, err := result.Transaction.Blinded().Hash()
	require.NoError(t, err)
	sig, err := alice.Sign(blindedHash[:])
	require.NoError(t, err)

	req := txn.ReissueRequest{
		Transaction: result.Transaction,
		InputOwnershipProofs: map[txn.Hash]txn.OwnershipProof{
			txn.Hash(genesis.Name()): {OwnerPublicKey: alice.PublicKey().Bytes(), Signature: sig},
		},
	}

	expected := map[txn.Hash]struct{}{txn.Hash(genesis.Name()): {}}
	share, err := fed.nodes[0].Reissue(req, expected)
	require.NoError(t, err)

	// Build against a transaction that differs from the one the share was
	// signed for: the blinded-transaction comparison must reject it.
	otherTx := txn.ReissueTransaction{NetworkID: "different-net", Inputs: result.Transaction.Inputs, Outputs: result.Transaction.Outputs}
	_, err = NewDbcBuilder(otherTx).AddOutputsContent(result.OutputsContent, result.OutputsBlinding).AddReissueShare(share).Build()
	require.ErrorIs(t, err, ErrReissueShareDbcTransactionMismatch)
}
