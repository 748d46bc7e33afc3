package session

import (
	"context"
	"sync"
	"time"
)

// Record is the server-side state of one refresh session.
type Record struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store keeps session records keyed by session id.
type Store interface {
	// Get returns the record and whether it exists.
	Get(ctx context.Context, sid string) (Record, bool, error)
	// Put stores rec; ttl is a hint for stores that expire keys themselves.
	Put(ctx context.Context, sid string, rec Record, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
}

// MemoryStore is a process-local Store. Sessions do not survive a restart
// and are not shared between instances.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Record)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, sid string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sid]
	return rec, ok, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, sid string, rec Record, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = rec
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
