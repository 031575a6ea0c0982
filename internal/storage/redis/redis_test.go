package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, ttl), mr
}

func TestStorage_SetGet(t *testing.T) {
	s, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, storage.KeyWishlist, `[{"id":"w1"}]`))

	got, err := mr.Get("storefront:" + storage.KeyWishlist)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"w1"}]`, got)

	v, ok, err := s.Get(ctx, storage.KeyWishlist)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"w1"}]`, v)
}

func TestStorage_GetMissing(t *testing.T) {
	s, _ := setupTestRedis(t, 0)

	v, ok, err := s.Get(context.Background(), storage.KeyCartItems)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestStorage_TTLExpiresKeys(t *testing.T) {
	s, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, storage.KeyCartItems, "[]"))
	assert.Equal(t, time.Hour, mr.TTL("storefront:"+storage.KeyCartItems))

	mr.FastForward(2 * time.Hour)

	_, ok, err := s.Get(ctx, storage.KeyCartItems)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_Remove(t *testing.T) {
	s, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, storage.KeyAuthToken, "tok"))
	require.NoError(t, s.Remove(ctx, storage.KeyAuthToken))
	assert.False(t, mr.Exists("storefront:"+storage.KeyAuthToken))

	require.NoError(t, s.Remove(ctx, storage.KeyAuthToken))
}

func TestStorage_NamespacedUsers(t *testing.T) {
	s, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, storage.Namespaced(s, "user:u1").Set(ctx, storage.KeyCartItems, "[]"))
	assert.True(t, mr.Exists("storefront:user:u1:"+storage.KeyCartItems))
}

func TestStorage_ConnectionError(t *testing.T) {
	s, mr := setupTestRedis(t, 0)
	mr.Close()

	err := s.Set(context.Background(), storage.KeyTheme, "dark")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")
	assert.Error(t, s.Ping(context.Background()))
}
