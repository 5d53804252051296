package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClockedStore() (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	return New(WithClock(clock.Now)), clock
}

func TestStore_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore()

	created, err := store.CreateIfAbsent(ctx, "leader", "api-1", time.Minute)
	require.NoError(t, err)
	require.True(t, created)

	// Second create loses while the key is alive.
	created, err = store.CreateIfAbsent(ctx, "leader", "api-2", time.Minute)
	require.NoError(t, err)
	require.False(t, created)

	value, ok, err := store.Get(ctx, "leader")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "api-1", value)

	// After expiry the key is claimable again.
	clock.Advance(2 * time.Minute)
	created, err = store.CreateIfAbsent(ctx, "leader", "api-2", time.Minute)
	require.NoError(t, err)
	require.True(t, created)
}

func TestStore_GetExpiry(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore()

	require.NoError(t, store.SetWithTTL(ctx, "key", "value", time.Minute))

	_, ok, err := store.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(time.Minute)
	_, ok, err = store.Get(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok, "key must expire exactly at its deadline")
}

func TestStore_NoExpiryWithZeroTTL(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore()

	require.NoError(t, store.SetWithTTL(ctx, "key", "value", 0))

	clock.Advance(24 * time.Hour)
	_, ok, err := store.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStore_RefreshTTL(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore()

	require.NoError(t, store.SetWithTTL(ctx, "leader", "api-1", time.Minute))

	clock.Advance(50 * time.Second)
	refreshed, err := store.RefreshTTL(ctx, "leader", time.Minute)
	require.NoError(t, err)
	require.True(t, refreshed)

	// The refresh reset the full TTL.
	clock.Advance(50 * time.Second)
	_, ok, err := store.Get(ctx, "leader")
	require.NoError(t, err)
	require.True(t, ok)

	// Refreshing an expired key reports it gone.
	clock.Advance(time.Minute)
	refreshed, err = store.RefreshTTL(ctx, "leader", time.Minute)
	require.NoError(t, err)
	require.False(t, refreshed)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.SetWithTTL(ctx, "key", "value", 0))
	require.NoError(t, store.Delete(ctx, "key"))

	_, ok, err := store.Get(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(ctx, "key"))
}

func TestStore_KeysWithPrefix(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore()

	require.NoError(t, store.SetWithTTL(ctx, "hb:api-1", "1", time.Minute))
	require.NoError(t, store.SetWithTTL(ctx, "hb:api-2", "2", time.Second))
	require.NoError(t, store.SetWithTTL(ctx, "leader", "api-1", time.Minute))

	keys, err := store.KeysWithPrefix(ctx, "hb:")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"hb:api-1", "hb:api-2"}, keys)

	// Expired keys drop out of the listing.
	clock.Advance(30 * time.Second)
	keys, err = store.KeysWithPrefix(ctx, "hb:")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"hb:api-1"}, keys)
}
