// Package dbcbuilder implements the client-side aggregator that turns a set
// of mint nodes' ReissueShares, plus the private content a TransactionBuilder
// set aside for each output, into finished, self-verifying Dbcs.
package dbcbuilder

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/safenetwork-community/sn-dbc/blsthreshold"
	"github.com/safenetwork-community/sn-dbc/dbc"
	"github.com/safenetwork-community/sn-dbc/envelope"
	"github.com/safenetwork-community/sn-dbc/txn"
)

// DbcBuilder aggregates ReissueShares from a quorum of mint nodes that
// signed the same reissue transaction, checks they all agree on the
// blinded transaction and the mint's public key set, then combines their
// per-output signature shares into finished Dbcs.
type DbcBuilder struct {
	transaction     txn.ReissueTransaction
	reissueShares   []txn.ReissueShare
	outputsContent  map[[32]byte]dbc.Content
	outputsBlinding map[[32]byte]envelope.BlindingFactor
}

// NewDbcBuilder starts a builder for the given reissue transaction.
func NewDbcBuilder(transaction txn.ReissueTransaction) *DbcBuilder {
	return &DbcBuilder{
		transaction:     transaction,
		outputsContent:  make(map[[32]byte]dbc.Content),
		outputsBlinding: make(map[[32]byte]envelope.BlindingFactor),
	}
}

// AddOutputContent registers the private content and blinding factor behind
// one output envelope, identified by its hash.
func (b *DbcBuilder) AddOutputContent(envelopeHash [32]byte, content dbc.Content, bf envelope.BlindingFactor) *DbcBuilder {
	b.outputsContent[envelopeHash] = content
	b.outputsBlinding[envelopeHash] = bf
	return b
}

// AddOutputsContent registers multiple outputs' content and blinding
// factors, keyed the same way as the maps a TransactionBuilder.Build result
// carries.
func (b *DbcBuilder) AddOutputsContent(content map[[32]byte]dbc.Content, blinding map[[32]byte]envelope.BlindingFactor) *DbcBuilder {
	for hash, c := range content {
		b.outputsContent[hash] = c
	}
	for hash, bf := range blinding {
		b.outputsBlinding[hash] = bf
	}
	return b
}

// AddReissueShare adds one mint node's response to this builder.
func (b *DbcBuilder) AddReissueShare(share txn.ReissueShare) *DbcBuilder {
	b.reissueShares = append(b.reissueShares, share)
	return b
}

// Build validates the accumulated ReissueShares and assembles the finished
// output Dbcs, sorted by name. It returns an error rather than a partial
// result if the shares don't agree on the transaction or mint key set, or
// don't collectively cover every output.
func (b *DbcBuilder) Build() ([]dbc.Dbc, error) {
	if len(b.reissueShares) == 0 {
		return nil, ErrNoReissueShares
	}
	if len(b.transaction.Inputs) == 0 {
		return nil, ErrNoReissueTransaction
	}

	blinded := b.transaction.Blinded()

	sharesByEnvelope := make(map[[32]byte][]envelope.SignedEnvelopeShare)
	var masterPublicKey []byte

	for _, rs := range b.reissueShares {
		if !rs.DbcTransaction.Equal(blinded) {
			return nil, ErrReissueShareDbcTransactionMismatch
		}
		if len(rs.SignedEnvelopeShares) != len(b.transaction.Outputs) {
			return nil, ErrReissueShareMintNodeSignaturesLenMismatch
		}

		pubKeyBytes := rs.PublicKeySet.PublicKey().Serialize()
		if masterPublicKey == nil {
			masterPublicKey = pubKeyBytes
		} else if !bytes.Equal(masterPublicKey, pubKeyBytes) {
			return nil, ErrReissueSharePublicKeySetMismatch
		}

		for _, out := range b.transaction.Outputs {
			found := false
			for _, ses := range rs.SignedEnvelopeShares {
				if ses.Envelope.Equal(out.Envelope) {
					found = true
					break
				}
			}
			if !found {
				return nil, ErrReissueShareMintNodeSignatureNotFoundForInput
			}
		}

		for _, ses := range rs.SignedEnvelopeShares {
			key := ses.Envelope.Hash
			sharesByEnvelope[key] = append(sharesByEnvelope[key], ses)
		}
	}

	masterPKS := b.reissueShares[0].PublicKeySet

	outputDbcs := make([]dbc.Dbc, 0, len(b.transaction.Outputs))
	for _, out := range b.transaction.Outputs {
		hash := out.Hash()
		content, ok := b.outputsContent[hash]
		if !ok {
			return nil, ErrMissingOutputContent
		}
		bf, ok := b.outputsBlinding[hash]
		if !ok {
			return nil, ErrMissingOutputContent
		}

		childPKS, err := masterPKS.DeriveChild(out.Denomination.Bytes())
		if err != nil {
			return nil, fmt.Errorf("dbcbuilder: deriving output denomination key: %w", err)
		}

		shares := sharesByEnvelope[hash]
		sigShares := make([]blsthreshold.SignatureShare, 0, len(shares))
		for _, ses := range shares {
			sigShares = append(sigShares, ses.Share)
		}
		combined, err := blsthreshold.CombineSignatures(childPKS.Threshold(), sigShares)
		if err != nil {
			return nil, fmt.Errorf("dbcbuilder: combining output signature shares: %w", err)
		}

		outputDbcs = append(outputDbcs, dbc.Dbc{
			Content:        content,
			Envelope:       out.Envelope,
			BlindingFactor: bf,
			MintPublicKey:  childPKS.PublicKey(),
			MintSignature:  combined,
		})
	}

	sort.Slice(outputDbcs, func(i, j int) bool {
		a, b := outputDbcs[i].Name(), outputDbcs[j].Name()
		return bytes.Compare(a[:], b[:]) < 0
	})

	return outputDbcs, nil
}
