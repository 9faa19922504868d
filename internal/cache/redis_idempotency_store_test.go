package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisIdempotencyStore(rdb, ttl), mr
}

func TestRedisIdempotencyStore_LockAndRelease(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t, time.Hour)

	ok, err := s.TryLock(ctx, "u1", "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, mr.TTL("idemp:u1:k1"))

	ok, err = s.TryLock(ctx, "u1", "k1")
	require.NoError(t, err)
	assert.False(t, ok, "second lock on the same key")

	ok, err = s.TryLock(ctx, "u2", "k1")
	require.NoError(t, err)
	assert.True(t, ok, "keys are scoped per user")

	require.NoError(t, s.Release(ctx, "u1", "k1"))
	ok, err = s.TryLock(ctx, "u1", "k1")
	require.NoError(t, err)
	assert.True(t, ok, "released key can be locked again")
}

func TestRedisIdempotencyStore_RememberRecall(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t, time.Minute)

	_, found, err := s.Recall(ctx, "u1", "k1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Remember(ctx, "u1", "k1", `{"orderId":"o1"}`))
	assert.Equal(t, time.Minute, mr.TTL("idemp:map:u1:k1"))

	got, found, err := s.Recall(ctx, "u1", "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"orderId":"o1"}`, got)

	_, found, err = s.Recall(ctx, "u2", "k1")
	require.NoError(t, err)
	assert.False(t, found)

	mr.FastForward(2 * time.Minute)
	_, found, err = s.Recall(ctx, "u1", "k1")
	require.NoError(t, err)
	assert.False(t, found, "result expires with the ttl")
}

func TestRedisIdempotencyStore_ServerDown(t *testing.T) {
	s, mr := newStore(t, time.Minute)
	mr.Close()

	_, _, err := s.Recall(context.Background(), "u1", "k1")
	assert.Error(t, err)
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := Dial(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	_ = rdb.Close()

	mr.Close()
	_, err = Dial(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}
