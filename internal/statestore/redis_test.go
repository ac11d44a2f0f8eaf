package statestore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelsmith/internal/statestore"
	"reelsmith/internal/testsupport"
	"reelsmith/internal/workflow"
)

func TestRedisBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := statestore.NewRedisBackend(client, "test:project")
	t.Cleanup(func() { _ = backend.Close() })

	_, err := backend.Read(ctx)
	require.ErrorIs(t, err, statestore.ErrNoSnapshot)

	require.NoError(t, backend.Write(ctx, []byte("one")))
	require.NoError(t, backend.Write(ctx, []byte("two")))

	stored, err := mr.Get("test:project")
	require.NoError(t, err)
	assert.Equal(t, "two", stored)

	data, err := backend.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)

	require.NoError(t, backend.Delete(ctx))
	assert.False(t, mr.Exists("test:project"))
}

func TestRedisStoreThroughConfig(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := testsupport.NewConfig(t, testsupport.WithRedis(mr.Addr()))

	store, err := statestore.Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	snap := sampleSnapshot()
	require.NoError(t, store.Save(ctx, snap))
	assert.True(t, mr.Exists(cfg.Persistence.RedisKey))

	loaded, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, workflow.StageImageGeneration, loaded.State.Current)
	assert.Equal(t, snap.State.Ideas, loaded.State.Ideas)

	require.NoError(t, store.Purge(ctx))
	_, ok = store.Load(ctx)
	assert.False(t, ok)
}

func TestOpenRedisFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := statestore.OpenRedis(context.Background(), statestore.RedisOptions{Addr: addr})
	require.Error(t, err)
}
