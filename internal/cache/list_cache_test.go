package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageKey(t *testing.T) {
	assert.Equal(t, "listcache:properties:v3:page=2&type=villa", pageKey("properties", 3, "page=2&type=villa"))
	assert.Equal(t, "listcache:blog:version", versionKey("blog"))
}

func newTestCache(t *testing.T) (*ListCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(rdb) })
	return NewListCache(rdb, time.Minute), mr
}

func TestListCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	var got []int
	found, v, err := c.Get(ctx, "properties", "type=villa", &got)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, c.Set(ctx, "properties", "type=villa", v, []int{1, 2}))

	found, _, err = c.Get(ctx, "properties", "type=villa", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int{1, 2}, got)

	require.NoError(t, c.Invalidate(ctx, "properties"))
	found, v, err = c.Get(ctx, "properties", "type=villa", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(1), v)
}

func TestListCacheWriteAfterInvalidateIsNotServed(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	// A reader misses, a writer invalidates, then the reader stores the page
	// it fetched before the write.
	var got []int
	found, v, err := c.Get(ctx, "blog", "", &got)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Invalidate(ctx, "blog"))
	require.NoError(t, c.Set(ctx, "blog", "", v, []int{1}))

	found, _, err = c.Get(ctx, "blog", "", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListCacheEntriesExpire(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "properties", "", 0, []int{1}))
	mr.FastForward(2 * time.Minute)

	var got []int
	found, _, err := c.Get(ctx, "properties", "", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOptions(t *testing.T) {
	opt, err := Options("localhost:6379", "pw", 2)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)

	opt, err = Options("redis://:secret@cache.internal:6380/4", "ignored", 0)
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 4, opt.DB)
	assert.Equal(t, 5*time.Second, opt.DialTimeout)

	_, err = Options("redis://host:notaport/x", "", 0)
	assert.Error(t, err)
}
