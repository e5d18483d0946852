package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore provides thread-safe in-process session storage
type MemoryStore struct {
	sessions map[string]Session
	mutex    sync.RWMutex
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Save stores a copy of s, replacing any session with the same hash
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mutex.Lock()
	m.sessions[s.TokenHash] = *s
	m.mutex.Unlock()
	return nil
}

// Get retrieves a session if present and not expired
func (m *MemoryStore) Get(_ context.Context, tokenHash string) (*Session, error) {
	m.mutex.RLock()
	s, found := m.sessions[tokenHash]
	m.mutex.RUnlock()

	if !found {
		return nil, ErrNotFound
	}
	if s.ExpiredAt(m.now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Delete removes a session. Deleting an unknown hash is not an error.
func (m *MemoryStore) Delete(_ context.Context, tokenHash string) error {
	m.mutex.Lock()
	delete(m.sessions, tokenHash)
	m.mutex.Unlock()
	return nil
}

// Sweep removes expired sessions and returns how many were dropped
func (m *MemoryStore) Sweep() int {
	now := m.now()
	removed := 0

	m.mutex.Lock()
	for hash, s := range m.sessions {
		if s.ExpiredAt(now) {
			delete(m.sessions, hash)
			removed++
		}
	}
	m.mutex.Unlock()

	return removed
}

// Len returns the number of stored sessions, expired or not
func (m *MemoryStore) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// RunSweeper calls Sweep every interval until ctx is done
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
