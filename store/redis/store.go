// Package redis implements types.Store using Redis.
//
// This is the reference backend: SET NX with expiry gives an atomic
// conditional create, EXPIRE refreshes the leader lease, and SCAN enumerates
// heartbeat keys for cleanup.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	election, err := sovereign.New("api-1", s, &cfg)
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Traqueur-dev/Sovereign/types"
)

// Store implements types.Store backed by Redis. The caller owns the Redis
// client lifecycle.
type Store struct {
	client redis.Cmdable
}

// Compile-time assertion that Store implements types.Store.
var _ types.Store = (*Store)(nil)

// New creates a new Redis-backed store.
//
// Accepts redis.Cmdable so single-node clients, cluster clients, and ring
// clients all work.
func New(client redis.Cmdable) *Store {
	return &Store{client: client}
}

// Client returns the underlying Redis client.
func (s *Store) Client() redis.Cmdable { return s.client }

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// CreateIfAbsent atomically writes key=value with TTL via SET NX EX.
func (s *Store) CreateIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	created, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}

	return created, nil
}

// Get reads the value of a key; a missing key is not an error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}

	return val, true, nil
}

// SetWithTTL writes key=value unconditionally with TTL via SET EX.
func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return nil
}

// RefreshTTL resets the TTL of an existing key via EXPIRE.
func (s *Store) RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	existed, err := s.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("expire %s: %w", key, err)
	}

	return existed, nil
}

// Delete removes a key via DEL.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}

	return nil
}

// KeysWithPrefix lists keys matching prefix* using SCAN.
//
// SCAN is used instead of KEYS to avoid blocking the Redis server on large
// keyspaces.
func (s *Store) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s*: %w", prefix, err)
	}

	return keys, nil
}
