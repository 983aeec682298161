package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

// RedisStore keeps each session under session:<id> with the TTL applied by
// Redis itself.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (r *RedisStore) Create(ctx context.Context, userID string, role records.Role) (*Session, error) {
	s := newSession(userID, role, time.Now())

	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(s.ID), payload, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	return decodeSession(id, payload)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func decodeSession(id string, payload []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.UserID == "" {
		return nil, ErrNotFound
	}
	s.ID = id
	return &s, nil
}
