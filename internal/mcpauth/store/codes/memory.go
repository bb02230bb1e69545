package codes

import (
	"context"
	"sync"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
)

// MemoryStore is a process-local code store for single-node deployments and
// tests. TakeOnce is atomic within the process because the mutex is held
// across the read and the delete.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// now is injectable for deterministic expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	record    domain.PendingAuthorization
	expiresAt time.Time
}

// NewMemoryStore returns an empty in-memory store. A nil now defaults to
// time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (s *MemoryStore) Put(_ context.Context, code string, record domain.PendingAuthorization, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[code] = memoryEntry{
		record:    record,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) TakeOnce(_ context.Context, code string) (domain.PendingAuthorization, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[code]
	if !ok {
		return domain.PendingAuthorization{}, false, nil
	}
	delete(s.entries, code)

	// An expired code is treated identically to an unknown one.
	if s.now().After(entry.expiresAt) {
		return domain.PendingAuthorization{}, false, nil
	}
	return entry.record, true, nil
}

func (s *MemoryStore) Discard(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, code)
	return nil
}
