package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/redis/go-redis/v9"
)

// Store keeps cached users by session key, plus the keys of sessions that
// were logged out and must not be served again until the token expires.
type Store interface {
	Get(ctx context.Context, key string) (*model.User, bool, error)
	Set(ctx context.Context, key string, user *model.User, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Revoke(ctx context.Context, key string, ttl time.Duration) error
	Revoked(ctx context.Context, key string) (bool, error)
}

func revokedKey(key string) string {
	return "revoked:" + key
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*model.User, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(val, &user); err != nil {
		return nil, false, fmt.Errorf("decode cached user: %w", err)
	}
	return &user, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, user *model.User, ttl time.Duration) error {
	val, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}
	if err := s.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, revokedKey(key), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Revoked(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

type memoryEntry struct {
	user    model.User
	expires time.Time
}

// MemoryStore is used when Redis is disabled. Entries are still per session key.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, key)
		return nil, false, nil
	}
	user := e.user
	return &user, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, user *model.User, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{user: *user, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[key] = s.now().Add(ttl)
	return nil
}

func (s *MemoryStore) Revoked(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.revoked[key]
	if !ok {
		return false, nil
	}
	if !s.now().Before(expires) {
		delete(s.revoked, key)
		return false, nil
	}
	return true, nil
}

// Purge drops expired entries and revocations.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
			removed++
		}
	}
	for k, expires := range s.revoked {
		if !now.Before(expires) {
			delete(s.revoked, k)
			removed++
		}
	}
	return removed
}
