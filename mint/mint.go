// Package mint implements a single federated mint node: the reissue
// state machine that validates a ReissueRequest, records spent inputs, and
// blind-signs output envelopes with this node's share of the mint's
// threshold key.
package mint

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"

	"github.com/safenetwork-community/sn-dbc/blsthreshold"
	"github.com/safenetwork-community/sn-dbc/dbc"
	"github.com/safenetwork-community/sn-dbc/envelope"
	"github.com/safenetwork-community/sn-dbc/keymanager"
	"github.com/safenetwork-community/sn-dbc/ownerkey"
	"github.com/safenetwork-community/sn-dbc/spendbook"
	"github.com/safenetwork-community/sn-dbc/txn"
)

// Node is one mint participant: a key manager holding this node's share of
// the master threshold key, and a spend-book recording which input names
// have been consumed. Reissue verifies a request without holding mu, then
// serializes output signing, the double-spend check and the spend-book
// commit under mu so that no two concurrently-admitted requests can both
// record the same input name.
type Node struct {
	mu        sync.Mutex
	keys      keymanager.KeyManager
	spendBook spendbook.SpendBook
	logger    log.Logger
}

// NewNode constructs a mint node from its key manager and spend-book. A nil
// logger defaults to a no-op logger.
func NewNode(keys keymanager.KeyManager, spendBook spendbook.SpendBook, logger log.Logger) *Node {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Node{keys: keys, spendBook: spendBook, logger: logger}
}

// Reissue validates request against expectedInputNames and, if every check
// passes, atomically records all input names as spent and returns a
// ReissueShare carrying this node's signature share over each output.
func (n *Node) Reissue(request txn.ReissueRequest, expectedInputNames map[txn.Hash]struct{}) (txn.ReissueShare, error) {
	start := time.Now()
	tx := request.Transaction

	blinded := tx.Blinded()
	blindedHash, err := blinded.Hash()
	if err != nil {
		return txn.ReissueShare{}, fmt.Errorf("mint: hashing blinded transaction: %w", err)
	}
	logCtx := n.logger.With("blinded_tx_hash", hex.EncodeToString(blindedHash[:]))

	if err := checkShape(tx, expectedInputNames); err != nil {
		logCtx.Warn("reissue.rejected", "err", err.Error(), "elapsed", time.Since(start))
		return txn.ReissueShare{}, err
	}

	if err := tx.Validate(); err != nil {
		logCtx.Warn("reissue.rejected", "err", err.Error(), "elapsed", time.Since(start))
		return txn.ReissueShare{}, translateTxnError(err)
	}

	if err := n.verifyInputSignatures(tx); err != nil {
		logCtx.Warn("reissue.rejected", "err", err.Error(), "elapsed", time.Since(start))
		return txn.ReissueShare{}, err
	}

	if err := verifyOwnershipProofs(tx, request.InputOwnershipProofs, blindedHash); err != nil {
		logCtx.Warn("reissue.rejected", "err", err.Error(), "elapsed", time.Since(start))
		return txn.ReissueShare{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	// Outputs are signed before the commit so that a signing failure leaves
	// the spend-book untouched.
	shares, err := n.signOutputs(tx)
	if err != nil {
		logCtx.Warn("reissue.rejected", "err", err.Error(), "elapsed", time.Since(start))
		return txn.ReissueShare{}, err
	}

	if err := n.commitSpentInputs(tx); err != nil {
		logCtx.Warn("reissue.double_spend", "err", err.Error(), "elapsed", time.Since(start))
		return txn.ReissueShare{}, err
	}

	logCtx.Info("reissue.accepted", "elapsed", time.Since(start), "inputs", len(tx.Inputs), "outputs", len(tx.Outputs))

	return txn.ReissueShare{
		DbcTransaction:       blinded,
		SignedEnvelopeShares: shares,
		PublicKeySet:         n.keys.PublicKeySet(),
	}, nil
}

// checkShape implements step 1: expectedInputNames must exactly equal the
// set of input names the transaction actually carries.
func checkShape(tx txn.ReissueTransaction, expectedInputNames map[txn.Hash]struct{}) error {
	actual := make(map[txn.Hash]struct{}, len(tx.Inputs))
	for _, in := range tx.Inputs {
		actual[txn.Hash(in.Name())] = struct{}{}
	}
	if len(actual) != len(expectedInputNames) {
		return ErrFilteredInputNotPresent
	}
	for name := range expectedInputNames {
		if _, ok := actual[name]; !ok {
			return ErrFilteredInputNotPresent
		}
	}
	return nil
}

// translateTxnError maps a txn.ReissueTransaction.Validate error to its
// mint-level equivalent.
func translateTxnError(err error) error {
	switch {
	case errors.Is(err, txn.ErrEmptyTransaction):
		return ErrEmptyTransaction
	case errors.Is(err, txn.ErrValueMismatch):
		return ErrTransactionValueMismatch
	default:
		return err
	}
}

// verifyInputSignatures implements step 3: every input's embedded mint
// signature must verify under its embedded mint public key, and that key
// must be this mint's denomination-derived child key.
func (n *Node) verifyInputSignatures(tx txn.ReissueTransaction) error {
	masterPKS := n.keys.PublicKeySet()
	for _, in := range tx.Inputs {
		if err := in.Verify(masterPKS); err != nil {
			switch {
			case errors.Is(err, dbc.ErrUnrecognizedDenomination):
				return ErrUnrecognizedDenomination
			default:
				return ErrInvalidMintSignature
			}
		}
	}
	return nil
}

// verifyOwnershipProofs implements step 4: every input must have an
// ownership proof in the request, the proof's claimed owner key must match
// the input's committed owner key, and the proof's signature must verify
// against the blinded transaction hash.
func verifyOwnershipProofs(tx txn.ReissueTransaction, proofs map[txn.Hash]txn.OwnershipProof, blindedHash [32]byte) error {
	for _, in := range tx.Inputs {
		name := txn.Hash(in.Name())
		proof, ok := proofs[name]
		if !ok {
			return ErrMissingInputOwnerProof
		}
		ownerKey, err := ownerkey.PublicKeyFromBytes(proof.OwnerPublicKey)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFailedSignature, err)
		}
		committedKey, err := ownerkey.PublicKeyFromBytes(in.Content.OwnerPublicKey)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFailedSignature, err)
		}
		if !ownerKey.Equals(committedKey) {
			return ErrFailedSignature
		}
		if !ownerKey.Verify(blindedHash[:], proof.Signature) {
			return ErrFailedSignature
		}
	}
	return nil
}

// commitSpentInputs implements step 5: atomically check and record every
// input name. Must be called with n.mu held. If any input is already
// spent, the spend-book is left untouched for every input of this request.
func (n *Node) commitSpentInputs(tx txn.ReissueTransaction) error {
	names := make([]spendbook.Name, len(tx.Inputs))
	for i, in := range tx.Inputs {
		names[i] = spendbook.Name(in.Name())
	}
	for _, name := range names {
		spent, err := n.spendBook.Contains(name)
		if err != nil {
			return fmt.Errorf("mint: checking spend-book: %w", err)
		}
		if spent {
			return ErrDbcAlreadySpent
		}
	}
	for _, name := range names {
		if err := n.spendBook.Insert(name); err != nil {
			return fmt.Errorf("mint: recording spent input: %w", err)
		}
	}
	return nil
}

// signOutputs implements step 6: derive the child key for each output's
// denomination and produce a signature share over the output envelope's
// hash.
func (n *Node) signOutputs(tx txn.ReissueTransaction) ([]envelope.SignedEnvelopeShare, error) {
	shares := make([]envelope.SignedEnvelopeShare, len(tx.Outputs))
	for i, out := range tx.Outputs {
		share, err := n.keys.SignWithChildKey(out.Denomination.Bytes(), out.Hash()[:])
		if err != nil {
			return nil, fmt.Errorf("mint: signing output %d: %w", i, err)
		}
		shares[i] = envelope.SignedEnvelopeShare{Envelope: out.Envelope, Share: share}
	}
	return shares, nil
}

// SnapshotSpendbook returns an opaque deep copy of the spend-book state,
// usable later with ResetSpendbook.
func (n *Node) SnapshotSpendbook() (any, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.spendBook.Snapshot()
}

// ResetSpendbook replaces the spend-book state with a prior snapshot.
func (n *Node) ResetSpendbook(snapshot any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.spendBook.Reset(snapshot)
}

// PublicKeySet returns this node's view of the mint's master public key set,
// the key a client verifies combined reissue signatures against.
func (n *Node) PublicKeySet() blsthreshold.PublicKeySet {
	return n.keys.PublicKeySet()
}
