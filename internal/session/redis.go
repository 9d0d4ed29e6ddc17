// Package session stores login sessions in Redis so any service instance can
// verify or revoke them.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MikeMC777/decor-ecom/internal/auth"
)

const keyPrefix = "session:"

type record struct {
	Subject   string    `json:"subject"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func Connect(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStore(rdb), nil
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

func (s *RedisStore) Create(ctx context.Context, p auth.Principal) error {
	ttl := p.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", p.SessionID)
	}
	data, err := json.Marshal(record{Subject: p.Subject, Role: p.Role, CreatedAt: s.now(), ExpiresAt: p.ExpiresAt})
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}
	return s.rdb.Set(ctx, keyPrefix+p.SessionID, data, ttl).Err()
}

func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}

// Get returns the stored session, or false when it is gone.
func (s *RedisStore) Get(ctx context.Context, id string) (*auth.Principal, bool, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get session: %w", err)
	}
	var rec record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return &auth.Principal{Subject: rec.Subject, Role: rec.Role, SessionID: id, ExpiresAt: rec.ExpiresAt}, true, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

var _ auth.SessionStore = (*RedisStore)(nil)
