package spendbook

import "errors"

var (
	// ErrAlreadySpent is returned by Insert when name is already recorded.
	ErrAlreadySpent = errors.New("spendbook: name already recorded as spent")

	// ErrSnapshotType is returned by Reset when given a snapshot value that
	// did not originate from this implementation's Snapshot.
	ErrSnapshotType = errors.New("spendbook: snapshot value has the wrong type for this backend")
)
