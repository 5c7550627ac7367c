package dbcbuilder

import "errors"

var (
	// ErrNoReissueShares is returned when Build is called before any
	// ReissueShare has been added.
	ErrNoReissueShares = errors.New("dbcbuilder: no reissue shares added")

	// ErrNoReissueTransaction is returned when Build is called before the
	// reissue transaction has been set.
	ErrNoReissueTransaction = errors.New("dbcbuilder: reissue transaction not set")

	// ErrReissueShareDbcTransactionMismatch is returned when a ReissueShare's
	// blinded transaction does not match the one this builder was set up
	// for, meaning it answers a different request than the one being built.
	ErrReissueShareDbcTransactionMismatch = errors.New("dbcbuilder: reissue share answers a different blinded transaction")

	// ErrReissueShareMintNodeSignaturesLenMismatch is returned when a
	// ReissueShare does not carry exactly one signature share per output.
	ErrReissueShareMintNodeSignaturesLenMismatch = errors.New("dbcbuilder: reissue share signature count does not match output count")

	// ErrReissueShareMintNodeSignatureNotFoundForInput is returned when an
	// output envelope in the transaction has no matching signature share in
	// some ReissueShare.
	ErrReissueShareMintNodeSignatureNotFoundForInput = errors.New("dbcbuilder: reissue share is missing a signature for an output envelope")

	// ErrReissueSharePublicKeySetMismatch is returned when the added
	// ReissueShares disagree about which master public key set signed them,
	// meaning they came from different mint deployments.
	ErrReissueSharePublicKeySetMismatch = errors.New("dbcbuilder: reissue shares disagree on mint public key set")

	// ErrMissingOutputContent is returned when an output envelope in the
	// transaction has no corresponding content registered with
	// AddOutputContent, so the finished Dbc cannot be assembled.
	ErrMissingOutputContent = errors.New("dbcbuilder: missing content for an output envelope")
)
