package backends

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrEthical07/goStepAuth/password"
)

// CredentialStore is implemented by callers to let the password backend look
// up the stored Argon2id digest for a subject. A missing subject must be
// reported as [ErrSubjectNotFound].
type CredentialStore interface {
	PasswordHash(ctx context.Context, subjectID string) (string, error)
}

// Password verifies a plaintext secret against the Argon2id digest held in a
// [CredentialStore].
type Password struct {
	store  CredentialStore
	hasher *password.Hasher
}

// NewPassword describes the newpassword operation and its observable behavior.
//
// NewPassword may return an error when input validation, dependency calls, or security checks fail.
// NewPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewPassword(store CredentialStore, hasher *password.Hasher) (*Password, error) {
	if store == nil {
		return nil, errors.New("credential store required")
	}
	if hasher == nil {
		return nil, errors.New("password hasher required")
	}
	return &Password{store: store, hasher: hasher}, nil
}

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Password) Authenticate(ctx context.Context, subjectID, secret string) error {
	hash, err := p.store.PasswordHash(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return ErrInvalidSecret
		}
		return fmt.Errorf("%w: %v", ErrCredentialBackend, err)
	}

	ok, err := p.hasher.Verify(secret, hash)
	if err != nil || !ok {
		return ErrInvalidSecret
	}
	return nil
}

// MemoryCredentials is a mutex-guarded in-memory [CredentialStore] for tests
// and small deployments.
type MemoryCredentials struct {
	mu     sync.RWMutex
	hashes map[string]string
}

// NewMemoryCredentials describes the newmemorycredentials operation and its observable behavior.
//
// NewMemoryCredentials does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{hashes: make(map[string]string)}
}

// SetPasswordHash stores or replaces the digest for a subject.
func (m *MemoryCredentials) SetPasswordHash(subjectID, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[subjectID] = hash
}

// PasswordHash implements [CredentialStore].
func (m *MemoryCredentials) PasswordHash(_ context.Context, subjectID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hash, ok := m.hashes[subjectID]
	if !ok {
		return "", ErrSubjectNotFound
	}
	return hash, nil
}
