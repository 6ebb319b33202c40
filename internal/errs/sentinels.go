// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Storage-level sentinels returned by repositories.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrIDConflict indicates a primary key collision on insert.
	ErrIDConflict = errors.New("id conflict")
)

// Service-level sentinels. The HTTP layer maps each of them to a client-facing kind.
var (
	// ErrInvalidInput indicates a malformed or incomplete request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPasswordInsufficient indicates the password does not satisfy the policy.
	ErrPasswordInsufficient = errors.New("password insufficient")

	// ErrUsernameInUse indicates the username is already registered.
	ErrUsernameInUse = errors.New("username in use")

	// ErrIncorrectCredentials indicates an unknown username or a wrong password.
	ErrIncorrectCredentials = errors.New("incorrect credentials")

	// ErrMissingSessionToken indicates the caller presented no usable session token.
	ErrMissingSessionToken = errors.New("missing session token")

	// ErrSessionInvalid indicates a todo request whose session is absent or unknown.
	// Clients see it as an internal error, unlike ErrMissingSessionToken on logout.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrInternal indicates a failure whose details must not reach the client.
	ErrInternal = errors.New("internal error")
)
