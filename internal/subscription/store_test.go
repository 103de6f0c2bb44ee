package subscription_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-dev/go-dining-bot/internal/subscription"
)

func newTestStore(t *testing.T) (*subscription.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "subscriptions.json")
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	return subscription.NewStore(path, logger), path
}

func TestStore_LoadMissingFileIsEmptySet(t *testing.T) {
	store, _ := newTestStore(t)

	subscribers, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, subscribers)
}

func TestStore_AddIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	added, err := store.Add(ctx, 123456)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Add(ctx, 123456)
	require.NoError(t, err)
	assert.False(t, added, "second subscribe reports already subscribed")

	subscribers, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, subscribers, 1)
	assert.True(t, subscribers[123456])
}

func TestStore_RemoveIsSymmetric(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	removed, err := store.Remove(ctx, 123456)
	require.NoError(t, err)
	assert.False(t, removed, "never subscribed id reports not subscribed")

	subscribers, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, subscribers)

	_, err = store.Add(ctx, 123456)
	require.NoError(t, err)

	removed, err = store.Remove(ctx, 123456)
	require.NoError(t, err)
	assert.True(t, removed)

	subscribers, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, subscribers)
}

func TestStore_MutationIsDurableBeforeAcknowledgement(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	added, err := store.Add(ctx, 99)
	require.NoError(t, err)
	require.True(t, added)

	// A fresh store over the same file simulates a restart right after the
	// mutation returned.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	reopened := subscription.NewStore(path, logger)

	subscribers, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.True(t, subscribers[99])

	// No temp files may survive the atomic rename.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_CorruptFileIsTreatedAsEmpty(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	subscribers, err := store.Load(ctx)
	require.NoError(t, err, "corrupt store must not be fatal")
	assert.Empty(t, subscribers)

	// The store stays usable after corruption.
	added, err := store.Add(ctx, 7)
	require.NoError(t, err)
	assert.True(t, added)
}

func TestStore_MalformedIDsAreSkipped(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(path, []byte(`{"123": true, "abc": true, "456": false}`), 0o600))

	subscribers, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{123: true}, subscribers)
}

func TestStore_ConcurrentMutationsDoNotLoseUpdates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := int64(1); i <= 20; i++ {
		wg.Add(1)

		go func(id int64) {
			defer wg.Done()

			_, err := store.Add(ctx, id)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	subscribers, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, subscribers, 20)
}
