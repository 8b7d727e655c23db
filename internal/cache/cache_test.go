package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counts struct {
	Followers int `json:"followers"`
}

func TestCache_Aside(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := New(rdb)
	ctx := context.Background()
	key := ProfileCountsKey("u1")

	calls := 0
	fetch := func(dest *counts) func() error {
		return func() error {
			calls++
			dest.Followers = 7
			return nil
		}
	}

	var first counts
	require.NoError(t, c.Aside(ctx, key, &first, time.Minute, fetch(&first)))
	assert.Equal(t, 7, first.Followers)
	assert.True(t, mr.Exists(key))

	var second counts
	require.NoError(t, c.Aside(ctx, key, &second, time.Minute, fetch(&second)))
	assert.Equal(t, 7, second.Followers)
	assert.Equal(t, 1, calls, "second read is served from cache")

	c.Invalidate(ctx, key)
	assert.False(t, mr.Exists(key))

	var third counts
	require.NoError(t, c.Aside(ctx, key, &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestCache_FetchErrorIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	boom := errors.New("boom")
	var dest counts
	err := c.Aside(context.Background(), "k", &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestCache_NilClientPassesThrough(t *testing.T) {
	c := New(nil)
	var dest counts
	err := c.Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest.Followers = 3
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, dest.Followers)
	c.Invalidate(context.Background(), "k")
}

func TestNewRedisClient_Errors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "redis://bad url")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(context.Background(), addr)
	assert.Error(t, err)
}
