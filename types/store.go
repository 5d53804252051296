package types

import (
	"context"
	"time"
)

// Store is the coordination store adapter used for leader election.
//
// It is the minimal atomic key-value surface the election engine requires.
// Implementations wrap a shared external store (Redis, NATS JetStream KV,
// etcd, in-memory for tests) and must honor the atomicity of CreateIfAbsent:
// at most one concurrent caller may observe success for the same absent key.
//
// All operations take a context for timeout and cancellation. Values are
// plain strings; the engine stores the instance identity under the leader key
// and decimal epoch-millisecond timestamps under heartbeat keys.
//
// The election engine calls Store methods during:
//   - Election cycles (Get, CreateIfAbsent, RefreshTTL)
//   - Heartbeat cycles (SetWithTTL)
//   - Graceful release (Get, Delete)
//   - Post-election cleanup (KeysWithPrefix, Get, Delete)
type Store interface {
	// CreateIfAbsent atomically writes key=value with the given TTL only if
	// the key does not exist.
	//
	// Returns:
	//   - bool: true if the key was created, false if it already existed
	//   - error: Store communication error (nil for the already-exists case)
	CreateIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Get reads the value of a key.
	//
	// Returns:
	//   - string: The value (empty when absent)
	//   - bool: true if the key exists and has not expired
	//   - error: Store communication error
	Get(ctx context.Context, key string) (string, bool, error)

	// SetWithTTL writes key=value unconditionally with the given TTL.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// RefreshTTL resets the TTL of an existing key to the given duration.
	//
	// Returns:
	//   - bool: true if the key existed, false if it expired or was deleted
	//   - error: Store communication error
	RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// KeysWithPrefix lists all existing keys that start with prefix.
	KeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
}
