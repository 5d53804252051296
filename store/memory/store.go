// Package memory implements types.Store with an in-process TTL map.
//
// Intended for tests and single-process experiments: it gives the election
// engine real conditional-create and expiry semantics without an external
// store. The clock is injectable so tests can advance time deterministically
// instead of sleeping through lease expiries.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Traqueur-dev/Sovereign/types"
)

// Option configures the Store.
type Option func(*Store)

// WithClock sets the time source used for TTL bookkeeping.
//
// Tests use this to simulate lease expiry without real waiting.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store implements types.Store backed by a mutex-guarded map.
//
// Expired entries are reaped lazily on access; there is no background
// janitor goroutine.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// Compile-time assertion that Store implements types.Store.
var _ types.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	return s
}

// CreateIfAbsent writes key=value with the given TTL only if the key is
// absent or expired.
func (s *Store) CreateIfAbsent(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.get(key); ok {
		return false, nil
	}

	s.entries[key] = entry{value: value, expiresAt: s.expiry(ttl)}

	return true, nil
}

// Get returns the value of a live key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.get(key)
	if !ok {
		return "", false, nil
	}

	return e.value, true, nil
}

// SetWithTTL writes key=value unconditionally with the given TTL.
func (s *Store) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, expiresAt: s.expiry(ttl)}

	return nil
}

// RefreshTTL resets the TTL of a live key.
func (s *Store) RefreshTTL(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.get(key)
	if !ok {
		return false, nil
	}

	e.expiresAt = s.expiry(ttl)
	s.entries[key] = e

	return true, nil
}

// Delete removes a key. Absent keys are not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)

	return nil
}

// KeysWithPrefix lists all live keys starting with prefix.
func (s *Store) KeysWithPrefix(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for k := range s.entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if _, ok := s.get(k); ok {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

// get returns a live entry, reaping it when expired. Caller holds the lock.
func (s *Store) get(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}

	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return entry{}, false
	}

	return e, true
}

func (s *Store) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}

	return s.now().Add(ttl)
}
