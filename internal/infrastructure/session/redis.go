package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
)

// RedisStore keeps import sessions in redis under a TTL, letting the
// session map survive process restarts and serve multiple replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "import:session:" + sessionID
}

func (s *RedisStore) Create(ctx context.Context, session domain.ImportSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(redisSession{
		ID:        session.ID,
		UserID:    session.UserID,
		Rows:      session.Rows,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*domain.ImportSession, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	var stored redisSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.ImportSession{
		ID:        stored.ID,
		UserID:    stored.UserID,
		Rows:      stored.Rows,
		CreatedAt: stored.CreatedAt,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type redisSession struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Rows      []domain.ImportRow `json:"rows"`
	CreatedAt time.Time          `json:"created_at"`
}
