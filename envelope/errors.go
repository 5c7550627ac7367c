package envelope

import "errors"

var (
	// ErrSealFailed is returned when a slip cannot be sealed into an envelope.
	ErrSealFailed = errors.New("envelope: failed to seal slip")

	// ErrUnblindFailed is returned when an envelope cannot be opened with the
	// supplied blinding factor, meaning either the factor or the sealed
	// content has been tampered with.
	ErrUnblindFailed = errors.New("envelope: failed to unblind, wrong factor or corrupted envelope")
)
