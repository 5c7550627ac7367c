// Package txbuilder implements the client-side accumulator that assembles a
// ReissueTransaction from a set of input Dbcs and a set of desired outputs,
// sealing each output's slip into a fresh envelope so the mint that signs it
// never learns the recipient or nonce.
package txbuilder

import (
	"fmt"

	"github.com/safenetwork-community/sn-dbc/amount"
	"github.com/safenetwork-community/sn-dbc/dbc"
	"github.com/safenetwork-community/sn-dbc/envelope"
	"github.com/safenetwork-community/sn-dbc/txn"
)

// Result is what Build returns: the transaction a mint node will validate
// and sign, plus the private data (content, blinding factor) the client
// needs later to unblind each output's mint signature into a finished Dbc.
// It mirrors the Rust builder's (ReissueTransaction, envelope->content map)
// pair, additionally carrying the blinding factors since this envelope
// scheme — unlike the one the Rust code assumed — needs them to unblind.
type Result struct {
	Transaction     txn.ReissueTransaction
	OutputsContent  map[[32]byte]dbc.Content
	OutputsBlinding map[[32]byte]envelope.BlindingFactor
}

// TransactionBuilder is a fluent, pointer-receiver accumulator: each Add*
// call records an error on the builder (rather than panicking or returning
// one immediately) so a chain of calls can be written without intermediate
// error checks, with Build returning the first error encountered.
type TransactionBuilder struct {
	networkID string
	inputs    []dbc.Dbc
	inputSeen map[[32]byte]struct{}
	outputs   []txn.Output
	err       error
}

// NewTransactionBuilder starts a builder for a transaction scoped to
// networkID.
func NewTransactionBuilder(networkID string) *TransactionBuilder {
	return &TransactionBuilder{
		networkID: networkID,
		inputSeen: make(map[[32]byte]struct{}),
	}
}

// AddInput adds one input Dbc, recording an error on the builder if d
// duplicates an already-added input by name.
func (b *TransactionBuilder) AddInput(d dbc.Dbc) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	name := d.Name()
	if _, dup := b.inputSeen[name]; dup {
		b.err = fmt.Errorf("txbuilder: duplicate input %x", name)
		return b
	}
	b.inputSeen[name] = struct{}{}
	b.inputs = append(b.inputs, d)
	return b
}

// AddInputs adds multiple input Dbcs in order.
func (b *TransactionBuilder) AddInputs(ds []dbc.Dbc) *TransactionBuilder {
	for _, d := range ds {
		b = b.AddInput(d)
		if b.err != nil {
			return b
		}
	}
	return b
}

// AddOutput adds one desired output.
func (b *TransactionBuilder) AddOutput(o txn.Output) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.outputs = append(b.outputs, o)
	return b
}

// AddOutputs adds multiple desired outputs in order.
func (b *TransactionBuilder) AddOutputs(os []txn.Output) *TransactionBuilder {
	for _, o := range os {
		b = b.AddOutput(o)
		if b.err != nil {
			return b
		}
	}
	return b
}

// Build checks conservation of value, seals a fresh envelope for each
// output with freshly sampled blinding randomness, and returns the
// ReissueTransaction plus the private data needed to finish each output
// once mint signature shares come back.
func (b *TransactionBuilder) Build() (Result, error) {
	if b.err != nil {
		return Result{}, b.err
	}
	if len(b.inputs) == 0 {
		return Result{}, ErrNoInputs
	}

	inputSum, err := sumInputDenominations(b.inputs)
	if err != nil {
		return Result{}, err
	}
	outputSum, err := sumOutputDenominations(b.outputs)
	if err != nil {
		return Result{}, err
	}
	if !inputSum.Equal(outputSum) {
		return Result{}, ErrAmountMismatch
	}

	envelopes := make([]dbc.Envelope, 0, len(b.outputs))
	outputsContent := make(map[[32]byte]dbc.Content, len(b.outputs))
	outputsBlinding := make(map[[32]byte]envelope.BlindingFactor, len(b.outputs))

	for _, o := range b.outputs {
		content, err := dbc.NewContent(o.OwnerPublicKey, o.Denomination)
		if err != nil {
			return Result{}, fmt.Errorf("txbuilder: building output content: %w", err)
		}
		env, bf, err := envelope.NewEnvelope(content.Slip())
		if err != nil {
			return Result{}, fmt.Errorf("txbuilder: sealing output envelope: %w", err)
		}
		dbcEnv := dbc.Envelope{Envelope: env, Denomination: o.Denomination}
		envelopes = append(envelopes, dbcEnv)
		outputsContent[dbcEnv.Hash()] = content
		outputsBlinding[dbcEnv.Hash()] = bf
	}

	return Result{
		Transaction: txn.ReissueTransaction{
			NetworkID: b.networkID,
			Inputs:    b.inputs,
			Outputs:   envelopes,
		},
		OutputsContent:  outputsContent,
		OutputsBlinding: outputsBlinding,
	}, nil
}

func sumInputDenominations(inputs []dbc.Dbc) (amount.Amount, error) {
	rt := txn.ReissueTransaction{Inputs: inputs}
	sum, err := rt.InputAmountSum()
	if err != nil {
		return amount.Amount{}, fmt.Errorf("txbuilder: summing input amounts: %w", err)
	}
	return sum, nil
}

func sumOutputDenominations(outputs []txn.Output) (amount.Amount, error) {
	amounts := make([]amount.Amount, 0, len(outputs))
	for _, o := range outputs {
		amounts = append(amounts, o.Denomination.Amount())
	}
	sum, err := amount.CheckedSum(amounts)
	if err != nil {
		return amount.Amount{}, fmt.Errorf("txbuilder: summing output amounts: %w", err)
	}
	return sum, nil
}
