package backends

import (
	"context"
	"crypto/subtle"
)

// Static validates a fixed shared secret per subject. It is intended for
// bootstrap credentials and tests; the secret map is copied at construction
// and never mutated afterwards.
type Static struct {
	secrets map[string]string
}

// NewStatic describes the newstatic operation and its observable behavior.
//
// NewStatic does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStatic(secrets map[string]string) *Static {
	copied := make(map[string]string, len(secrets))
	for subject, secret := range secrets {
		copied[subject] = secret
	}
	return &Static{secrets: copied}
}

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Static) Authenticate(_ context.Context, subjectID, secret string) error {
	expected, ok := s.secrets[subjectID]
	if !ok {
		// Burn a comparison so unknown subjects cost the same as wrong secrets.
		subtle.ConstantTimeCompare([]byte(secret), []byte(secret))
		return ErrInvalidSecret
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(expected)) != 1 {
		return ErrInvalidSecret
	}
	return nil
}
