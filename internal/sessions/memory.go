package sessions

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	vault     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store used by tests and local tooling
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) ([]byte, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[sessionID]
	if !ok || s.expired(e) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.vault...), nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID string, vault []byte, ttl time.Duration) error {
	if sessionID == "" {
		return ErrEmptySession
	}
	e := memoryEntry{vault: append([]byte(nil), vault...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[sessionID] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sessionIDs {
		delete(s.entries, id)
	}
	return nil
}

// Scan visits live sessions in id order. fn runs without the lock held, so it may call Delete.
func (s *MemoryStore) Scan(_ context.Context, fn func(sessionID string, vault []byte) error) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	snapshot := make(map[string][]byte, len(s.entries))
	for id, e := range s.entries {
		if s.expired(e) {
			continue
		}
		ids = append(ids, id)
		snapshot[id] = append([]byte(nil), e.vault...)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	for _, id := range ids {
		if err := fn(id, snapshot[id]); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of live sessions
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if !s.expired(e) {
			n++
		}
	}
	return n
}
