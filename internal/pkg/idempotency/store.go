// Package idempotency caches responses of retried POST requests in Redis,
// keyed by the client's Idempotency-Key header.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"

	defaultTTL     = 24 * time.Hour
	defaultLockTTL = 30 * time.Second
)

// Entry is a cached response.
type Entry struct {
	RequestHash string          `json:"request_hash"`
	StatusCode  int             `json:"status_code"`
	Body        json.RawMessage `json:"body"`
}

type Store struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewStore returns nil when rdb is nil; a nil *Store disables the guard.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl, lockTTL: defaultLockTTL}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func CacheKey(scope, key string) string {
	return fmt.Sprintf("idemp:%s:%s", scope, key)
}

func LockKey(scope, key string) string {
	return CacheKey(scope, key) + ":lock"
}

// Get returns the cached entry, or nil when none exists.
func (s *Store) Get(ctx context.Context, scope, key string) (*Entry, error) {
	val, err := s.rdb.Get(ctx, CacheKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency entry: %w", err)
	}
	return &entry, nil
}

// Lock claims the key for one in-flight request. It expires on its own so a
// crashed request cannot hold it forever.
func (s *Store) Lock(ctx context.Context, scope, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, LockKey(scope, key), "locked", s.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock idempotency key: %w", err)
	}
	return ok, nil
}

func (s *Store) Unlock(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, LockKey(scope, key)).Err()
}

func (s *Store) Save(ctx context.Context, scope, key string, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode idempotency entry: %w", err)
	}
	if err := s.rdb.Set(ctx, CacheKey(scope, key), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save idempotency entry: %w", err)
	}
	return nil
}
