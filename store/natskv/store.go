// Package natskv implements types.Store using a NATS JetStream KeyValue bucket.
//
// JetStream KV enforces TTL at the bucket level, not per key, so the bucket
// used for election must be created with a TTL close to the configured lease
// duration. The per-operation TTL arguments are accepted for interface
// compatibility but the bucket TTL wins; writing a new revision of a key
// resets its age. EnsureBucket creates a suitably configured bucket, with
// retry logic for concurrent creation by multiple instances.
//
// JetStream KV restricts the key character set, so keys are mapped before
// use: every ':' becomes '/' ("sovereign:leader" → "sovereign/leader"). The
// mapping is applied symmetrically on reads, writes, and prefix scans, so it
// is invisible to the engine. Instance identities must therefore not contain
// ':' or '/' when this backend is used.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/Traqueur-dev/Sovereign/types"
)

// Store implements types.Store backed by a JetStream KeyValue bucket.
type Store struct {
	kv jetstream.KeyValue
}

// Compile-time assertion that Store implements types.Store.
var _ types.Store = (*Store)(nil)

// New creates a store over an existing KV bucket.
//
// The bucket should be configured with History: 1 and a TTL close to the
// election lease duration; see EnsureBucket.
func New(kv jetstream.KeyValue) *Store {
	return &Store{kv: kv}
}

// EnsureBucket creates or opens a KV bucket configured for election use.
//
// Handles the race where multiple instances create the same bucket
// concurrently by retrying the create/open sequence.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - bucket: Bucket name
//   - ttl: Bucket-level TTL (0 for no expiry)
//
// Returns:
//   - *Store: Store over the created or opened bucket
//   - error: Creation error after all retries
func EnsureBucket(ctx context.Context, js jetstream.JetStream, bucket string, ttl time.Duration) (*Store, error) {
	cfg := jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1,
	}
	if ttl > 0 {
		cfg.TTL = ttl
	}

	const maxRetries = 5

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, cfg)
		if err == nil {
			return New(kv), nil
		}
		lastErr = err

		// Another instance may have created it between our create and now.
		kv, err = js.KeyValue(ctx, bucket)
		if err == nil {
			return New(kv), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond * time.Duration(attempt+1)):
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s: %w", bucket, lastErr)
}

// CreateIfAbsent atomically creates a key using the KV Create operation.
//
// The ttl argument is ignored; expiry follows the bucket TTL.
func (s *Store) CreateIfAbsent(ctx context.Context, key, value string, _ time.Duration) (bool, error) {
	_, err := s.kv.Create(ctx, mapKey(key), []byte(value))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return false, nil
		}

		return false, fmt.Errorf("create %s: %w", key, err)
	}

	return true, nil
}

// Get reads the value of a key; missing and deleted keys are not errors.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.kv.Get(ctx, mapKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("get %s: %w", key, err)
	}

	return string(entry.Value()), true, nil
}

// SetWithTTL writes key=value via Put. The ttl argument is ignored; writing
// a new revision resets the key's age against the bucket TTL.
func (s *Store) SetWithTTL(ctx context.Context, key, value string, _ time.Duration) error {
	if _, err := s.kv.Put(ctx, mapKey(key), []byte(value)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	return nil
}

// RefreshTTL re-writes the current value with a revision check, resetting
// the key's age against the bucket TTL.
//
// The revision check makes the refresh conditional: if another instance
// replaced the key between our read and update, the refresh reports failure
// rather than resurrecting our claim.
func (s *Store) RefreshTTL(ctx context.Context, key string, _ time.Duration) (bool, error) {
	k := mapKey(key)

	entry, err := s.kv.Get(ctx, k)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return false, nil
		}

		return false, fmt.Errorf("get %s: %w", key, err)
	}

	_, err = s.kv.Update(ctx, k, entry.Value(), entry.Revision())
	if err != nil {
		// Lost a race with a concurrent writer; the key no longer holds
		// the revision we read.
		return false, nil
	}

	return true, nil
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, mapKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

// KeysWithPrefix lists live keys starting with prefix.
func (s *Store) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	mapped := mapKey(prefix)

	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	var keys []string
	for k := range lister.Keys() {
		if strings.HasPrefix(k, mapped) {
			keys = append(keys, unmapKey(k))
		}
	}

	return keys, nil
}

// mapKey rewrites a key into the JetStream KV allowed character set.
func mapKey(key string) string {
	return strings.ReplaceAll(key, ":", "/")
}

// unmapKey reverses mapKey for keys returned to the engine.
func unmapKey(key string) string {
	return strings.ReplaceAll(key, "/", ":")
}
