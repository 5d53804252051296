package natskv

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	sovtest "github.com/Traqueur-dev/Sovereign/testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	_, nc := sovtest.StartEmbeddedNATS(t)
	kv := sovtest.CreateJetStreamKV(t, nc, "election-test", 0)

	return New(kv)
}

func TestStore_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateIfAbsent(ctx, "sovereign:leader", "api-1", time.Minute)
	require.NoError(t, err)
	require.True(t, created)

	created, err = store.CreateIfAbsent(ctx, "sovereign:leader", "api-2", time.Minute)
	require.NoError(t, err)
	require.False(t, created, "create on an existing key must lose")

	value, ok, err := store.Get(ctx, "sovereign:leader")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "api-1", value)
}

func TestStore_GetAbsent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.Get(ctx, "sovereign:leader")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_SetAndRefresh(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SetWithTTL(ctx, "sovereign:heartbeat:api-1", "1700000000000", time.Minute))
	require.NoError(t, store.SetWithTTL(ctx, "sovereign:heartbeat:api-1", "1700000005000", time.Minute))

	value, ok, err := store.Get(ctx, "sovereign:heartbeat:api-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1700000005000", value)

	refreshed, err := store.RefreshTTL(ctx, "sovereign:heartbeat:api-1", time.Minute)
	require.NoError(t, err)
	require.True(t, refreshed)

	refreshed, err = store.RefreshTTL(ctx, "sovereign:absent", time.Minute)
	require.NoError(t, err)
	require.False(t, refreshed, "refreshing an absent key reports it gone")
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SetWithTTL(ctx, "sovereign:leader", "api-1", time.Minute))
	require.NoError(t, store.Delete(ctx, "sovereign:leader"))

	_, ok, err := store.Get(ctx, "sovereign:leader")
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(ctx, "sovereign:never-existed"))
}

func TestStore_KeysWithPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SetWithTTL(ctx, "sovereign:heartbeat:api-1", "1", time.Minute))
	require.NoError(t, store.SetWithTTL(ctx, "sovereign:heartbeat:api-2", "2", time.Minute))
	require.NoError(t, store.SetWithTTL(ctx, "sovereign:leader", "api-1", time.Minute))

	keys, err := store.KeysWithPrefix(ctx, "sovereign:heartbeat:")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"sovereign:heartbeat:api-1",
		"sovereign:heartbeat:api-2",
	}, keys, "keys must round-trip through the character mapping unchanged")
}

func TestEnsureBucket(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	_, nc := sovtest.StartEmbeddedNATS(t)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx := context.Background()

	store1, err := EnsureBucket(ctx, js, "election", 30*time.Second)
	require.NoError(t, err)

	// A second instance ensuring the same bucket opens it instead of failing.
	store2, err := EnsureBucket(ctx, js, "election", 30*time.Second)
	require.NoError(t, err)

	require.NoError(t, store1.SetWithTTL(ctx, "sovereign:leader", "api-1", 0))

	value, ok, err := store2.Get(ctx, "sovereign:leader")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "api-1", value)
}
