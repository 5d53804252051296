// Package etcd implements types.Store using etcd v3.
//
// Expiry is modelled with etcd leases: every TTL-bearing write grants a
// fresh lease and attaches the key to it. Conditional create uses a
// transaction comparing the key's create revision to zero, which is the
// standard etcd test-and-set for "key absent".
package etcd

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/Traqueur-dev/Sovereign/types"
)

// Store implements types.Store backed by an etcd cluster. The caller owns
// the client lifecycle.
type Store struct {
	client *clientv3.Client
}

// Compile-time assertion that Store implements types.Store.
var _ types.Store = (*Store)(nil)

// New creates a new etcd-backed store.
func New(client *clientv3.Client) *Store {
	return &Store{client: client}
}

// Client returns the underlying etcd client.
func (s *Store) Client() *clientv3.Client { return s.client }

// CreateIfAbsent writes key=value under a fresh lease, only if the key does
// not exist (create revision zero).
func (s *Store) CreateIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	lease, err := s.grant(ctx, ttl)
	if err != nil {
		return false, err
	}

	resp, err := s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, value, clientv3.WithLease(lease))).
		Commit()
	if err != nil {
		return false, fmt.Errorf("txn create %s: %w", key, err)
	}

	if !resp.Succeeded {
		// Lease unused; revoke to avoid accumulating short-lived leases.
		_, _ = s.client.Revoke(ctx, lease)
		return false, nil
	}

	return true, nil
}

// Get reads the value of a key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	resp, err := s.client.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}

	if len(resp.Kvs) == 0 {
		return "", false, nil
	}

	return string(resp.Kvs[0].Value), true, nil
}

// SetWithTTL writes key=value under a fresh lease.
func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	lease, err := s.grant(ctx, ttl)
	if err != nil {
		return err
	}

	if _, err := s.client.Put(ctx, key, value, clientv3.WithLease(lease)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	return nil
}

// RefreshTTL re-writes the current value under a fresh lease, resetting the
// key's expiry.
func (s *Store) RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	resp, err := s.client.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return false, nil
	}

	lease, err := s.grant(ctx, ttl)
	if err != nil {
		return false, err
	}

	// Guard against the key changing hands between our read and write: only
	// re-lease when the value is still the one we read.
	txn, err := s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.Value(key), "=", string(resp.Kvs[0].Value))).
		Then(clientv3.OpPut(key, string(resp.Kvs[0].Value), clientv3.WithLease(lease))).
		Commit()
	if err != nil {
		return false, fmt.Errorf("txn refresh %s: %w", key, err)
	}

	if !txn.Succeeded {
		_, _ = s.client.Revoke(ctx, lease)
		return false, nil
	}

	return true, nil
}

// Delete removes a key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

// KeysWithPrefix lists keys starting with prefix.
func (s *Store) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	resp, err := s.client.Get(ctx, prefix, clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, fmt.Errorf("get prefix %s: %w", prefix, err)
	}

	keys := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		keys = append(keys, string(kv.Key))
	}

	return keys, nil
}

// grant acquires a lease for ttl, rounding up to etcd's 1-second TTL
// granularity.
func (s *Store) grant(ctx context.Context, ttl time.Duration) (clientv3.LeaseID, error) {
	seconds := int64(ttl / time.Second)
	if ttl%time.Second != 0 || seconds < 1 {
		seconds++
	}

	resp, err := s.client.Grant(ctx, seconds)
	if err != nil {
		return 0, fmt.Errorf("lease grant: %w", err)
	}

	return resp.ID, nil
}
