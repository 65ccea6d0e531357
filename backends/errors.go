package backends

import "errors"

var (
	// ErrInvalidSecret is an exported constant or variable used by the bundled backends.
	ErrInvalidSecret = errors.New("invalid secret")
	// ErrSubjectNotFound is an exported constant or variable used by the bundled backends.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrCredentialBackend is an exported constant or variable used by the bundled backends.
	ErrCredentialBackend = errors.New("credential backend unavailable")
	// ErrChallengeNotFound is an exported constant or variable used by the bundled backends.
	ErrChallengeNotFound = errors.New("no pending challenge")
	// ErrChallengeExpired is an exported constant or variable used by the bundled backends.
	ErrChallengeExpired = errors.New("pending challenge expired")
	// ErrChallengeBackend is an exported constant or variable used by the bundled backends.
	ErrChallengeBackend = errors.New("challenge backend unavailable")
	// ErrChallengeDelivery is an exported constant or variable used by the bundled backends.
	ErrChallengeDelivery = errors.New("challenge delivery failed")
)
