package keystore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupKeystore(t *testing.T) (*miniredis.Miniredis, *RedisKeystore) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisKeystore(client, "gateway:api_keys", zap.NewNop())
}

func TestIsAuthorized_KnownKey(t *testing.T) {
	mr, ks := setupKeystore(t)

	_, err := mr.SAdd("gateway:api_keys", HashKey("sk-valid"))
	require.NoError(t, err)

	assert.True(t, ks.IsAuthorized(context.Background(), "sk-valid"))
}

func TestIsAuthorized_UnknownKey(t *testing.T) {
	_, ks := setupKeystore(t)
	assert.False(t, ks.IsAuthorized(context.Background(), "sk-unknown"))
}

func TestIsAuthorized_EmptyKey(t *testing.T) {
	_, ks := setupKeystore(t)
	assert.False(t, ks.IsAuthorized(context.Background(), ""))
}

func TestIsAuthorized_FailsClosedWhenStoreDown(t *testing.T) {
	mr, ks := setupKeystore(t)

	_, err := mr.SAdd("gateway:api_keys", HashKey("sk-valid"))
	require.NoError(t, err)
	mr.Close()

	assert.False(t, ks.IsAuthorized(context.Background(), "sk-valid"))
}

func TestStatic(t *testing.T) {
	ks := NewStatic([]string{"sk-dev"})

	assert.True(t, ks.IsAuthorized(context.Background(), "sk-dev"))
	assert.False(t, ks.IsAuthorized(context.Background(), "sk-other"))
}
