package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"millionaire-service/internal/domain"
)

// SessionStore is a Redis implementation of app.SessionRepository.
// Sessions are JSON blobs under session:{id}; every save refreshes the TTL,
// so a session lives for ttl after its last use. Anonymous sessions
// expire after domain.AnonymousSessionTTL at most.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, userID int64) (domain.WebSession, error) {
	session := domain.WebSession{ID: uuid.NewString(), UserID: userID}
	return session, s.Save(ctx, session)
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.WebSession, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.WebSession{}, domain.ErrSessionNotFound
		}
		return domain.WebSession{}, fmt.Errorf("get session: %w", err)
	}
	var session domain.WebSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.WebSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Save(ctx context.Context, session domain.WebSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), raw, session.Lifetime(s.ttl)).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}
