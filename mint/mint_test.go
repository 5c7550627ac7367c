package mint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safenetwork-community/sn-dbc/amount"
	"github.com/safenetwork-community/sn-dbc/blsthreshold"
	"github.com/safenetwork-community/sn-dbc/dbc"
	"github.com/safenetwork-community/sn-dbc/denom"
	"github.com/safenetwork-community/sn-dbc/envelope"
	"github.com/safenetwork-community/sn-dbc/keymanager"
	"github.com/safenetwork-community/sn-dbc/ownerkey"
	"github.com/safenetwork-community/sn-dbc/spendbook"
	"github.com/safenetwork-community/sn-dbc/txn"
)

// testFederation is a (threshold+1, total) quorum of mint nodes sharing one
// master key set, each with its own independent spend-book, the way
// distinct mint processes would in production.
type testFederation struct {
	pks   blsthreshold.PublicKeySet
	nodes []*Node
}

func newTestFederation(t *testing.T, threshold, total int) testFederation {
	t.Helper()
	pks, shares, err := blsthreshold.GenerateKeySet(threshold, total)
	require.NoError(t, err)

	nodes := make([]*Node, total)
	for i, share := range shares {
		km := keymanager.NewSimpleKeyManager(pks, share)
		nodes[i] = NewNode(km, spendbook.NewMemorySpendBook(), nil)
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

// issueGenesis mints the federation's first Dbc using exactly threshold+1
// nodes, the minimum quorum the signature scheme requires.
func issueGenesis(t *testing.T, fed testFederation, owner ownerkey.PrivateKey, d denom.Denomination) dbc.Dbc {
	t.Helper()
	quorum := fed.nodes[:fed.pks.Threshold()+1]
	g, err := IssueGenesisDbc(quorum, owner.PublicKey().Bytes(), d.Amount())
	require.NoError(t, err)
	require.NoError(t, g.Verify(fed.pks))
	return g
}

// combineReissue drives request through every node in fed (a quorum), then
// assembles finished output Dbcs from the combined signature shares,
// mirroring what a DbcBuilder does.
func combineReissue(t *testing.T, fed testFederation, request txn.ReissueRequest, outputContents map[[32]byte]dbc.Content, outputBF map[[32]byte]envelope.BlindingFactor) []dbc.Dbc {
	t.Helper()

	expected := make(map[txn.Hash]struct{}, len(request.Transaction.Inputs))
	for _, in := range request.Transaction.Inputs {
		expected[txn.Hash(in.Name())] = struct{}{}
	}

	shares := make([]txn.ReissueShare, len(fed.nodes))
	for i, node := range fed.nodes {
		share, err := node.Reissue(request, expected)
		require.NoError(t, err)
		shares[i] = share
	}

	outputs := request.Transaction.Outputs
	results := make([]dbc.Dbc, len(outputs))
	for oi, out := range outputs {
		childPKS, err := fed.pks.DeriveChild(out.Denomination.Bytes())
		require.NoError(t, err)

		quorum := childPKS.Threshold() + 1
		sigShares := make([]blsthreshold.SignatureShare, 0, quorum)
		for ni, share := range shares {
			require.Equal(t, len(outputs), len(share.SignedEnvelopeShares))
			if ni < quorum {
				sigShares = append(sigShares, share.SignedEnvelopeShares[oi].Share)
			}
		}
		combined, err := blsthreshold.CombineSignatures(childPKS.Threshold(), sigShares)
		require.NoError(t, err)

		results[oi] = dbc.Dbc{
			Content:        outputContents[out.Hash()],
			Envelope:       out.Envelope,
			BlindingFactor: outputBF[out.Hash()],
			MintPublicKey:  childPKS.PublicKey(),
			MintSignature:  combined,
		}
	}
	return results
}

// buildOutput seals a fresh envelope for a (owner, denomination) pair and
// returns the pieces a client keeps privately.
func buildOutput(t *testing.T, owner ownerkey.PrivateKey, d denom.Denomination) (envelope.Envelope, envelope.BlindingFactor, dbc.Content) {
	t.Helper()
	content, err := dbc.NewContent(owner.PublicKey().Bytes(), d)
	require.NoError(t, err)
	env, bf, err := envelope.NewEnvelope(content.Slip())
	require.NoError(t, err)
	return env, bf, content
}

func TestIssueGenesisDbcSelfVerifies(t *testing.T) {
	fed := newTestFederation(t, 1, 3)
	owner := mustOwnerKey(t)
	d := mustDenom(t, 100, 0)

	genesis := issueGenesis(t, fed, owner, d)
	require.Equal(t, d, genesis.Content.Denomination)
}

func TestReissueSplitAndMerge(t *testing.T) {
	fed := newTestFederation(t, 1, 3)
	alice := mustOwnerKey(t)
	bob := mustOwnerKey(t)
	carol := mustOwnerKey(t)

	genesisDenom := mustDenom(t, 100, 0)
	genesis := issueGenesis(t, fed, alice, genesisDenom)

	// split: one input of 100 into two outputs of 50.
	fiftyDenom := mustDenom(t, 5, 1)
	envBob, bfBob, contentBob := buildOutput(t, bob, fiftyDenom)
	envCarol, bfCarol, contentCarol := buildOutput(t, carol, fiftyDenom)

	splitTx := txn.ReissueTransaction{
		NetworkID: "test-net",
		Inputs:    []dbc.Dbc{genesis},
		Outputs:   []dbc.Envelope{{Envelope: envBob, Denomination: fiftyDenom}, {Envelope: envCarol, Denomination: fiftyDenom}},
	}
	splitBlinded, err := splitTx.Blinded().Hash()
	require.NoError(t, err)
	sig, err := alice.Sign(splitBlinded[:])
	require.NoError(t, err)

	splitReq := txn.ReissueRequest{
		Transaction: splitTx,
		InputOwnershipProofs: map[txn.Hash]txn.OwnershipProof{
			txn.Hash(genesis.Name()): {OwnerPublicKey: alice.PublicKey().Bytes(), Signature: sig},
		},
	}

	outputContents := map[[32]byte]dbc.Content{
		envBob.Hash:   contentBob,
		envCarol.Hash: contentCarol,
	}
	outputBF := map[[32]byte]envelope.BlindingFactor{
		envBob.Hash:   bfBob,
		envCarol.Hash: bfCarol,
	}

	splitOutputs := combineReissue(t, fed, splitReq, outputContents, outputBF)
	require.Len(t, splitOutputs, 2)
	for _, out := range splitOutputs {
		require.NoError(t, out.Verify(fed.pks))
	}

	for _, node := range fed.nodes {
		spent, err := node.spendBook.Contains(spendbook.Name(genesis.Name()))
		require.NoError(t, err)
		require.True(t, spent)
	}

	// merge: the two 50s back into one 100.
	dave := mustOwnerKey(t)
	envDave, bfDave, contentDave := buildOutput(t, dave, genesisDenom)

	mergeTx := txn.ReissueTransaction{
		NetworkID: "test-net",
		Inputs:    splitOutputs,
		Outputs:   []dbc.Envelope{{Envelope: envDave, Denomination: genesisDenom}},
	}
	mergeBlinded, err := mergeTx.Blinded().Hash()
	require.NoError(t, err)
	bobSig, err := bob.Sign(mergeBlinded[:])
	require.NoError(t, err)
	carolSig, err := carol.Sign(mergeBlinded[:])
	require.NoError(t, err)

	mergeReq := txn.ReissueRequest{
		Transaction: mergeTx,
		InputOwnershipProofs: map[txn.Hash]txn.OwnershipProof{
			txn.Hash(splitOutputs[0].Name()): {OwnerPublicKey: bob.PublicKey().Bytes(), Signature: bobSig},
			txn.Hash(splitOutputs[1].Name()): {OwnerPublicKey: carol.PublicKey().Bytes(), Signature: carolSig},
		},
	}

	mergeOutputs := combineReissue(t, fed, mergeReq,
		map[[32]byte]dbc.Content{envDave.Hash: contentDave},
		map[[32]byte]envelope.BlindingFactor{envDave.Hash: bfDave})
	require.Len(t, mergeOutputs, 1)
	require.NoError(t, mergeOutputs[0].Verify(fed.pks))

	// double-spend: resubmitting the split request must fail on every node,
	// and the spend-book must be unaffected.
	for _, node := range fed.nodes {
		expected := map[txn.Hash]struct{}{txn.Hash(genesis.Name()): {}}
		_, err := node.Reissue(splitReq, expected)
		require.ErrorIs(t, err, ErrDbcAlreadySpent)
	}
}

func TestReissueRejectsValueMismatch(t *testing.T) {
	fed := newTestFederation(t, 1, 3)
	alice := mustOwnerKey(t)
	bob := mustOwnerKey(t)

	genesisDenom := mustDenom(t, 100, 0)
	genesis := issueGenesis(t, fed, alice, genesisDenom)

	wrongDenom := mustDenom(t, 5, 1) // 50, not 100: value mismatch
	env, _, _ := buildOutput(t, bob, wrongDenom)

	tx := txn.ReissueTransaction{
		NetworkID: "test-net",
		Inputs:    []dbc.Dbc{genesis},
		Outputs:   []dbc.Envelope{{Envelope: env, Denomination: wrongDenom}},
	}
	blindedHash, err := tx.Blinded().Hash()
	require.NoError(t, err)
	sig, err := alice.Sign(blindedHash[:])
	require.NoError(t, err)

	req := txn.ReissueRequest{
		Transaction: tx,
		InputOwnershipProofs: map[txn.Hash]txn.OwnershipProof{
			txn.Hash(genesis.Name()): {OwnerPublicKey: alice.PublicKey().Bytes(), Signature: sig},
		},
	}

	expected := map[txn.Hash]struct{}{txn.Hash(genesis.Name()): {}}
	_, err = fed.nodes[0].Reissue(req, expected)
	require.ErrorIs(t, err, ErrTransactionValueMismatch)

	spent, err := fed.nodes[0].spendBook.Contains(spendbook.Name(genesis.Name()))
	require.NoError(t, err)
	require.False(t, spent)
}

func TestReissueRejectsMissingOwnershipProof(t *testing.T) {
	fed := newTestFederation(t, 1, 3)
	alice := mustOwnerKey(t)
	bob := mustOwnerKey(t)

	genesisDenom := mustDenom(t, 100, 0)
	genesis := issueGenesis(t, fed, alice, genesisDenom)

	env, _, _ := buildOutput(t, bob, genesisDenom)
	tx := txn.ReissueTransaction{
		NetworkID: "test-net",
		Inputs:    []dbc.Dbc{genesis},
		Outputs:   []dbc.Envelope{{Envelope: env, Denomination: genesisDenom}},
	}

	req := txn.ReissueRequest{Transaction: tx, InputOwnershipProofs: map[txn.Hash]txn.OwnershipProof{}}
	expected := map[txn.Hash]struct{}{txn.Hash(genesis.Name()): {}}
	_, err := fed.nodes[0].Reissue(req, expected)
	require.ErrorIs(t, err, ErrMissingInputOwnerProof)
}

func TestReissueRejectsFilteredInputMismatch(t *testing.T) {
	fed := newTestFederation(t, 1, 3)
	alice := mustOwnerKey(t)
	bob := mustOwnerKey(t)

	genesisDenom := mustDenom(t, 100, 0)
	genesis := issueGenesis(t, fed, alice, genesisDenom)

	env, _, _ := buildOutput(t, bob, genesisDenom)
	tx := txn.ReissueTransaction{
		NetworkID: "test-net",
		Inputs:    []dbc.Dbc{genesis},
		Outputs:   []dbc.Envelope{{Envelope: env, Denomination: genesisDenom}},
	}
	blindedHash, err := tx.Blinded().Hash()
	require.NoError(t, err)
	sig, err := alice.Sign(blindedHash[:])
	require.NoError(t, err)

	req := txn.ReissueRequest{
		Transaction: tx,
		InputOwnershipProofs: map[txn.Hash]txn.OwnershipProof{
			txn.Hash(genesis.Name()): {OwnerPublicKey: alice.PublicKey().Bytes(), Signature: sig},
		},
	}

	_, err = fed.nodes[0].Reissue(req, map[txn.Hash]struct{}{{}: {}})
	require.ErrorIs(t, err, ErrFilteredInputNotPresent)
}
