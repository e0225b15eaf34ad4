package verification

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	code      string
	userID    int64
	expiresAt time.Time
}

// MemoryStore is a process-local Store backed by a mutex-guarded map. The
// mutex gives the single-writer-per-key guarantee; suitable for tests and
// single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Issue implements Store.
func (s *MemoryStore) Issue(_ context.Context, email string, userID int64) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[storageKey(email)] = memoryEntry{
		code:      code,
		userID:    userID,
		expiresAt: s.now().Add(Window),
	}
	return code, nil
}

// Consume implements Store.
func (s *MemoryStore) Consume(_ context.Context, email, code string) (int64, error) {
	key := storageKey(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return 0, ErrCodeNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return 0, ErrCodeExpired
	}
	if entry.code != code {
		return 0, ErrCodeMismatch
	}
	delete(s.entries, key)
	return entry.userID, nil
}

var _ Store = (*MemoryStore)(nil)
