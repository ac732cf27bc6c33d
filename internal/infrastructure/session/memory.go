package session

import (
	"context"
	"sync"
	"time"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
)

const DefaultTTL = 10 * time.Minute

// MemoryStore holds pending import sessions in a process-local map. Entries
// past their TTL read as not-found and are reaped by a background sweep.
// Process-local by construction: it does not survive restarts or scale
// horizontally; swap in the redis backend for that.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]domain.ImportSession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]domain.ImportSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, session domain.ImportSession) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.ImportSession, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.now().Sub(session.CreatedAt) > s.ttl {
		delete(s.sessions, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// StartJanitor sweeps expired sessions until ctx is cancelled.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
