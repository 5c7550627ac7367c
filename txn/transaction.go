// Package txn implements the reissue transaction shapes a client builds,
// a mint node validates and signs, and the client reassembles: the
// full-detail ReissueTransaction, its blinded projection that is what mint
// nodes actually see and sign, the ReissueRequest a mint validates, and the
// ReissueShare a mint returns.
package txn

import (
	"github.com/safenetwork-community/sn-dbc/amount"
	"github.com/safenetwork-community/sn-dbc/blsthreshold"
	"github.com/safenetwork-community/sn-dbc/dbc"
	"github.com/safenetwork-community/sn-dbc/denom"
	"github.com/safenetwork-community/sn-dbc/envelope"
)

// Output is the unblinded data a TransactionBuilder needs to prepare one
// output slot: the face value and the public key that will own it.
type Output struct {
	Denomination   denom.Denomination
	OwnerPublicKey []byte
}

// ReissueTransaction is a client's full-detail reissue request: the inputs
// being spent and the output envelopes they're being spent into.
// Conservation of value (sum of input denominations equals sum of output
// denominations) must hold, is checked at construction by
// TransactionBuilder.Build, and is re-checked by every mint node.
type ReissueTransaction struct {
	NetworkID string
	Inputs    []dbc.Dbc
	Outputs   []dbc.Envelope
}

// InputAmountSum returns the sum of all input denominations' amounts.
func (rt ReissueTransaction) InputAmountSum() (amount.Amount, error) {
	amounts := make([]amount.Amount, 0, len(rt.Inputs))
	for _, in := range rt.Inputs {
		amounts = append(amounts, in.Content.Denomination.Amount())
	}
	return amount.CheckedSum(amounts)
}

// OutputAmountSum returns the sum of all output denominations' amounts.
func (rt ReissueTransaction) OutputAmountSum() (amount.Amount, error) {
	amounts := make([]amount.Amount, 0, len(rt.Outputs))
	for _, out := range rt.Outputs {
		amounts = append(amounts, out.Denomination.Amount())
	}
	return amount.CheckedSum(amounts)
}

// Validate checks the structural invariants a mint node requires before it
// will consider signing: non-empty inputs, uniquely-named inputs,
// uniquely-enveloped outputs, and equal input/output amount sums.
func (rt ReissueTransaction) Validate() error {
	if len(rt.Inputs) == 0 {
		return ErrEmptyTransaction
	}

	seenInputs := make(map[[32]byte]struct{}, len(rt.Inputs))
	for _, in := range rt.Inputs {
		name := in.Name()
		if _, dup := seenInputs[name]; dup {
			return ErrDuplicateInput
		}
		seenInputs[name] = struct{}{}
	}

	seenOutputs := make(map[[32]byte]struct{}, len(rt.Outputs))
	for _, out := range rt.Outputs {
		hash := out.Hash()
		if _, dup := seenOutputs[hash]; dup {
			return ErrDuplicateInput
		}
		seenOutputs[hash] = struct{}{}
	}

	inSum, err := rt.InputAmountSum()
	if err != nil {
		return err
	}
	outSum, err := rt.OutputAmountSum()
	if err != nil {
		return err
	}
	if !inSum.Equal(outSum) {
		return ErrValueMismatch
	}
	return nil
}

// Blinded projects the transaction to what mint nodes actually verify and
// sign over: input identities and output envelopes, sorted into a
// canonical order so the projection doesn't depend on slice order.
func (rt ReissueTransaction) Blinded() BlindedTransaction {
	names := make([]Hash, len(rt.Inputs))
	for i, in := range rt.Inputs {
		names[i] = Hash(in.Name())
	}
	outs := make([]BlindedOutput, len(rt.Outputs))
	for i, out := range rt.Outputs {
		outs[i] = BlindedOutput{EnvelopeHash: out.Hash(), Denomination: out.Denomination}
	}
	return newBlindedTransaction(rt.NetworkID, names, outs)
}

// OwnershipProof is one input's proof that its owner authorized this
// specific blinded transaction: a signature by the owner's public key over
// the blinded transaction's hash.
type OwnershipProof struct {
	OwnerPublicKey []byte
	Signature      []byte
}

// ReissueRequest is a ReissueTransaction plus, for every input, a proof
// that its owner authorized it.
type ReissueRequest struct {
	Transaction          ReissueTransaction
	InputOwnershipProofs map[Hash]OwnershipProof
}

// ReissueShare is one mint node's response to a successful reissue: the
// blinded transaction it validated, one signature share per output, and
// the mint's master public key set so a client can tell which mint
// deployment it came from.
type ReissueShare struct {
	DbcTransaction       BlindedTransaction
	SignedEnvelopeShares []envelope.SignedEnvelopeShare
	PublicKeySet         blsthreshold.PublicKeySet
}
