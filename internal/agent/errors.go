package agent

import "errors"

var (
	// ErrInvalidRequest means the input was malformed or missing; storage is
	// never touched in that case.
	ErrInvalidRequest = errors.New("email and password are required")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, deliberately indistinguishable so login failures do not
	// reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEmail is returned when registering an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrDuplicateCode is returned when creating an account with an agent
	// code that is already taken.
	ErrDuplicateCode = errors.New("agent already exists")

	// ErrNotFound is returned when a lookup matches no account.
	ErrNotFound = errors.New("agent not found")
)
