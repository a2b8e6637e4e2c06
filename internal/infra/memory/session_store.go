package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"millionaire-service/internal/domain"
)

// sweepEvery bounds how often Save scans for expired sessions.
const sweepEvery = time.Minute

// SessionStore is an in-memory implementation of app.SessionRepository.
// Expired sessions are evicted by Save at most once per sweepEvery.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu        sync.RWMutex
	sessions  map[string]storedSession
	nextSweep time.Time
}

type storedSession struct {
	session   domain.WebSession
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

func NewSessionStoreWithClock(ttl time.Duration, clock func() time.Time) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[string]storedSession),
	}
}

func (s *SessionStore) Create(ctx context.Context, userID int64) (domain.WebSession, error) {
	session := domain.WebSession{ID: uuid.NewString(), UserID: userID}
	return session, s.Save(ctx, session)
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.WebSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.sessions[id]
	if !ok || stored.expired(s.clock()) {
		return domain.WebSession{}, domain.ErrSessionNotFound
	}
	return cloneSession(stored.session), nil
}

func (s *SessionStore) Save(_ context.Context, session domain.WebSession) error {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)
	stored := storedSession{session: cloneSession(session)}
	if lifetime := session.Lifetime(s.ttl); lifetime > 0 {
		stored.expiresAt = now.Add(lifetime)
	}
	s.sessions[session.ID] = stored
	return nil
}

// Len reports how many sessions are held, expired ones included until the next sweep.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// sweep must be called with mu held.
func (s *SessionStore) sweep(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(sweepEvery)
	for id, stored := range s.sessions {
		if stored.expired(now) {
			delete(s.sessions, id)
		}
	}
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s storedSession) expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !s.expiresAt.After(now)
}

func cloneSession(session domain.WebSession) domain.WebSession {
	if session.Flash == nil {
		return session
	}
	flash := make(map[string]string, len(session.Flash))
	for k, v := range session.Flash {
		flash[k] = v
	}
	session.Flash = flash
	return session
}
