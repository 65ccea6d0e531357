package backends

import (
	"context"
	"sync"
	"time"
)

// PendingChallenge is the single outstanding challenge record kept per
// subject between issuance and consumption.
type PendingChallenge struct {
	ChallengeID string
	Code        string
	ExpiresAt   int64
}

// ChallengeStore persists at most one [PendingChallenge] per subject.
// Implementations must serialize issue and consume transitions so that a
// consumed challenge can never be observed again: Delete reports whether this
// caller removed the record, and only that caller may treat the code as spent.
type ChallengeStore interface {
	Save(ctx context.Context, subjectID string, record *PendingChallenge, ttl time.Duration) error
	Get(ctx context.Context, subjectID string) (*PendingChallenge, error)
	Delete(ctx context.Context, subjectID string) (bool, error)
}

type memoryEntry struct {
	record    PendingChallenge
	expiresAt time.Time
}

// MemoryChallengeStore is a mutex-serialized in-process [ChallengeStore].
type MemoryChallengeStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryChallengeStore describes the newmemorychallengestore operation and its observable behavior.
//
// NewMemoryChallengeStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{entries: make(map[string]memoryEntry)}
}

// Save implements [ChallengeStore].
func (s *MemoryChallengeStore) Save(_ context.Context, subjectID string, record *PendingChallenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[subjectID] = memoryEntry{
		record:    *record,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get implements [ChallengeStore].
func (s *MemoryChallengeStore) Get(_ context.Context, subjectID string) (*PendingChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[subjectID]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, subjectID)
		return nil, ErrChallengeExpired
	}

	record := entry.record
	return &record, nil
}

// Delete implements [ChallengeStore].
func (s *MemoryChallengeStore) Delete(_ context.Context, subjectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[subjectID]
	delete(s.entries, subjectID)
	return ok, nil
}
