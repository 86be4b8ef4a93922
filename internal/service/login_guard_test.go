package service_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/dom/personal-blog/internal/logging"
	"github.com/dom/personal-blog/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisClientForTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return server, client
}

func TestLoginGuard_Stores(t *testing.T) {
	stores := map[string]func(t *testing.T) service.FailureStore{
		"memory": func(t *testing.T) service.FailureStore {
			store := service.NewMemoryFailureStore()
			t.Cleanup(store.Stop)
			return store
		},
		"redis": func(t *testing.T) service.FailureStore {
			_, client := newRedisClientForTest(t)
			return service.NewRedisFailureStore(client, "test:login")
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			guard := service.NewLoginGuard(newStore(t), 3, time.Minute, logging.Discard())
			ctx := context.Background()

			for i := 0; i < 3; i++ {
				assert.False(t, guard.Blocked(ctx, "alice", "10.0.0.1"), "attempt %d", i)
				guard.RecordFailure(ctx, "alice", "10.0.0.1")
			}
			assert.True(t, guard.Blocked(ctx, "alice", "10.0.0.1"))
			assert.True(t, guard.Blocked(ctx, " ALICE ", "10.0.0.1"), "usernames are normalized")

			assert.False(t, guard.Blocked(ctx, "alice", "10.0.0.2"), "other address")
			assert.False(t, guard.Blocked(ctx, "bob", "10.0.0.1"), "other user")

			guard.Reset(ctx, "alice", "10.0.0.1")
			assert.False(t, guard.Blocked(ctx, "alice", "10.0.0.1"))
		})
	}
}

func TestRedisFailureStore_WindowExpires(t *testing.T) {
	server, client := newRedisClientForTest(t)
	store := service.NewRedisFailureStore(client, "test:login")
	ctx := context.Background()

	count, err := store.Increment(ctx, "key", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.Increment(ctx, "key", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The window starts with the first failure and is not extended.
	server.FastForward(61 * time.Second)

	count, err = store.Count(ctx, "key")
	require.NoError(t, err)
	assert.Zero(t, count)

	for _, key := range server.Keys() {
		assert.NotContains(t, key, "key", "raw keys are never stored")
	}
}

func TestRedisFailureStore_EveryIncrementHasTTL(t *testing.T) {
	server, client := newRedisClientForTest(t)
	store := service.NewRedisFailureStore(client, "test:login")
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, err := store.Increment(ctx, "alice|10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)

		keys := server.Keys()
		require.Len(t, keys, 1)
		ttl := server.TTL(keys[0])
		assert.Greater(t, ttl, time.Duration(0), "increment %d", i)
		assert.LessOrEqual(t, ttl, time.Minute, "increment %d", i)
	}
}

func TestRedisFailureStore_RepairsKeyWithoutTTL(t *testing.T) {
	server, client := newRedisClientForTest(t)
	store := service.NewRedisFailureStore(client, "test:login")
	guard := service.NewLoginGuard(store, 3, time.Minute, logging.Discard())
	ctx := context.Background()

	guard.RecordFailure(ctx, "alice", "10.0.0.1")
	keys := server.Keys()
	require.Len(t, keys, 1)

	// A counter stranded without an expiry, e.g. after an interrupted write.
	require.NoError(t, client.Persist(ctx, keys[0]).Err())
	require.Zero(t, server.TTL(keys[0]))

	guard.RecordFailure(ctx, "alice", "10.0.0.1")
	guard.RecordFailure(ctx, "alice", "10.0.0.1")
	require.True(t, guard.Blocked(ctx, "alice", "10.0.0.1"))
	assert.Greater(t, server.TTL(keys[0]), time.Duration(0))

	server.FastForward(24 * time.Hour)
	assert.False(t, guard.Blocked(ctx, "alice", "10.0.0.1"))
}

func TestLoginGuard_FailsOpen(t *testing.T) {
	server, client := newRedisClientForTest(t)
	guard := service.NewLoginGuard(service.NewRedisFailureStore(client, ""), 1, time.Minute, logging.Discard())
	ctx := context.Background()

	guard.RecordFailure(ctx, "alice", "10.0.0.1")
	require.True(t, guard.Blocked(ctx, "alice", "10.0.0.1"))

	server.Close()
	assert.False(t, guard.Blocked(ctx, "alice", "10.0.0.1"))

	var nilGuard *service.LoginGuard
	assert.False(t, nilGuard.Blocked(ctx, "alice", "10.0.0.1"))
	nilGuard.RecordFailure(ctx, "alice", "10.0.0.1")
	nilGuard.Reset(ctx, "alice", "10.0.0.1")
}
