package configstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisStore(client, "gateway:provider:")
}

func TestRedisStore_ListStripsPrefix(t *testing.T) {
	mr, store := setupRedisStore(t)

	mr.Set("gateway:provider:google", `{"provider":"google"}`)
	mr.Set("gateway:provider:openai", `{"provider":"openai"}`)
	mr.Set("unrelated:key", "ignored")

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"google", "openai"}, ids)
}

func TestRedisStore_Get(t *testing.T) {
	mr, store := setupRedisStore(t)

	mr.Set("gateway:provider:google", `{"provider":"google"}`)

	val, ok, err := store.Get(context.Background(), "google")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"provider":"google"}`, val)
}

func TestRedisStore_GetAbsent(t *testing.T) {
	_, store := setupRedisStore(t)

	_, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ListUnreachable(t *testing.T) {
	mr, store := setupRedisStore(t)
	mr.Close()

	_, err := store.List(context.Background())
	assert.Error(t, err)
}
