package spendbook

import (
	"fmt"

	dbm "github.com/cosmos/cosmos-db"
	ics23 "github.com/cosmos/ics23/go"

	"github.com/safenetwork-community/sn-dbc/store"
)

// iavlEmptyValue is stored for every spent name. The tree only needs to
// answer membership queries, so the value carries no information.
var iavlEmptyValue = []byte{1}

// IAVLSpendBook is a SpendBook backed by an IAVL versioned merkle tree,
// giving a mint node persistent storage, a restorable snapshot for every
// recorded version, and third-party-verifiable (non-)membership proofs via
// ics23 — none of which a plain in-memory set can offer.
type IAVLSpendBook struct {
	backing *store.IAVLStore
}

// NewIAVLSpendBook creates an IAVLSpendBook over db. Pass store.NewMemDB()
// for an ephemeral tree, or a real cosmos-db backend for persistence across
// process restarts.
func NewIAVLSpendBook(db dbm.DB, cacheSize int) (*IAVLSpendBook, error) {
	backing, err := store.NewIAVLStore(db, cacheSize)
	if err != nil {
		return nil, fmt.Errorf("spendbook: %w", err)
	}
	return &IAVLSpendBook{backing: backing}, nil
}

// Contains reports whether name has already been recorded as spent.
func (s *IAVLSpendBook) Contains(name Name) (bool, error) {
	ok, err := s.backing.Has(name[:])
	if err != nil {
		return false, fmt.Errorf("spendbook: %w", err)
	}
	return ok, nil
}

// Insert records name as spent and persists the new tree version.
func (s *IAVLSpendBook) Insert(name Name) error {
	if err := s.backing.Set(name[:], iavlEmptyValue); err != nil {
		return fmt.Errorf("spendbook: %w", err)
	}
	if _, _, err := s.backing.SaveVersion(); err != nil {
		return fmt.Errorf("spendbook: %w", err)
	}
	return nil
}

// Snapshot returns the tree's current version number.
func (s *IAVLSpendBook) Snapshot() (any, error) {
	return s.backing.Version(), nil
}

// Reset loads the tree version captured by an earlier Snapshot.
func (s *IAVLSpendBook) Reset(snapshot any) error {
	version, ok := snapshot.(int64)
	if !ok {
		return ErrSnapshotType
	}
	if err := s.backing.LoadVersion(version); err != nil {
		return fmt.Errorf("spendbook: %w", err)
	}
	return nil
}

// ProveUnspent returns a commitment proof against the tree's current root
// hash for name. A third party holding only the root hash can verify it
// with ics23.VerifyNonMembership (if name is unspent) or
// ics23.VerifyMembership (if it has since been spent) without trusting the
// mint node's word for it.
func (s *IAVLSpendBook) ProveUnspent(name Name) (*ics23.CommitmentProof, error) {
	proof, err := s.backing.GetProof(name[:])
	if err != nil {
		return nil, fmt.Errorf("spendbook: %w", err)
	}
	return proof, nil
}

var _ SpendBook = (*IAVLSpendBook)(nil)
