package domain

import "errors"

// Sentinel errors returned by the core. Each maps 1:1 to a transport status
// code in the API error handler; nothing in the core recovers from them.
var (
	// ErrUnauthenticated covers missing, malformed, expired and revoked tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is returned by login on unknown username or
	// password mismatch. Deliberately indistinguishable between the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden means the caller is authenticated but the access policy
	// denies the action.
	ErrForbidden = errors.New("access forbidden")
	// ErrValidation covers malformed or incomplete input.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidState is returned for an illegal status transition or any
	// mutation of a record that is no longer pending. Concurrent-transition
	// losers receive this error, so clients can tell "already decided" apart
	// from bad input.
	ErrInvalidState = errors.New("record is not in a valid state for this operation")

	ErrRecordNotFound = errors.New("record not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	// ErrAdminRequired guards the invariant that at least one admin always
	// exists: admin accounts cannot be deleted or demoted away entirely.
	ErrAdminRequired = errors.New("operation would remove the last admin")
)
