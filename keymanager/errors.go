package keymanager

import "errors"

var (
	// ErrShareNotFound is returned when a named secret share does not exist
	// in the store.
	ErrShareNotFound = errors.New("keymanager: secret share not found")

	// ErrShareExists is returned when storing a share under a name that
	// already has one.
	ErrShareExists = errors.New("keymanager: secret share already exists")

	// ErrShareNameMismatch is returned when the name argument to Store
	// disagrees with StoredShare.Name.
	ErrShareNameMismatch = errors.New("keymanager: share name does not match store argument")

	// ErrStoreClosed is returned by any operation on a closed store.
	ErrStoreClosed = errors.New("keymanager: store is closed")

	// ErrKeychainUnavailable is returned when the OS keychain-backed store
	// cannot reach its backend.
	ErrKeychainUnavailable = errors.New("keymanager: OS keychain unavailable")
)
