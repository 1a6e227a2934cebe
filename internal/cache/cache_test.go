package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	return New(client, zerolog.Nop()), mini
}

func TestFetchReadsThrough(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) (string, error) {
		loads++
		return "value", nil
	}

	first, err := Fetch(ctx, store, "task:t-1", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, "value", first)

	second, err := Fetch(ctx, store, "task:t-1", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, "value", second)
	require.Equal(t, 1, loads)
}

func TestInvalidateForcesReload(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) (int, error) {
		loads++
		return loads, nil
	}

	_, err := Fetch(ctx, store, "course:c-1", time.Minute, load)
	require.NoError(t, err)

	store.Invalidate(ctx, "course:c-1")

	value, err := Fetch(ctx, store, "course:c-1", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, 2, value)
	require.Equal(t, 2, loads)
}

func TestRacingLoadIsNotWrittenBack(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	// Invalidation lands while the load is in flight; the result must be
	// served to the caller but not cached.
	stale, err := Fetch(ctx, store, "users:t-1", time.Minute, func(context.Context) (string, error) {
		store.Invalidate(ctx, "users:t-1")
		return "stale", nil
	})
	require.NoError(t, err)
	require.Equal(t, "stale", stale)

	fresh, err := Fetch(ctx, store, "users:t-1", time.Minute, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	require.Equal(t, "fresh", fresh)
}

func TestLoadErrorIsNotCached(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := Fetch(ctx, store, "boom", time.Minute, func(context.Context) (string, error) {
		return "", context.DeadlineExceeded
	})
	require.Error(t, err)

	value, err := Fetch(ctx, store, "boom", time.Minute, func(context.Context) (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	require.Equal(t, "recovered", value)
}

func TestNilStoreAlwaysLoads(t *testing.T) {
	var store *Store
	loads := 0
	for i := 0; i < 3; i++ {
		_, err := Fetch(context.Background(), store, "k", time.Minute, func(context.Context) (int, error) {
			loads++
			return loads, nil
		})
		require.NoError(t, err)
	}
	require.Equal(t, 3, loads)
}
