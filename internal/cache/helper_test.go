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

type cachedPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	found, err := GetJSON(ctx, PostKey(1), &cachedPost{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, PostKey(1), cachedPost{ID: 1, Title: "hello"}, time.Minute))

	var got cachedPost
	found, err = GetJSON(ctx, PostKey(1), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", got.Title)
}

func TestAside(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			calls++
			dest.ID = 9
			dest.Title = "from db"
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey(9), &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "from db", first.Title)

	// Second read is served from cache.
	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey(9), &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "from db", second.Title)
}

func TestAside_NilClientFallsThrough(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	calls := 0
	var dest cachedPost
	require.NoError(t, Aside(ctx, PostKey(2), &dest, time.Minute, func() error {
		calls++
		dest.Title = "direct"
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "direct", dest.Title)
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(3), cachedPost{ID: 3}, time.Minute))
	Invalidate(ctx, PostKey(3))
	assert.False(t, mr.Exists(PostKey(3)))
}

func TestInvalidateFeed(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, FeedKey(1, 10), []cachedPost{{ID: 1}}, time.Minute))
	require.NoError(t, SetJSON(ctx, FeedKey(2, 10), []cachedPost{{ID: 2}}, time.Minute))
	InvalidateFeed(ctx)
	assert.False(t, mr.Exists(FeedKey(1, 10)))
	assert.False(t, mr.Exists(FeedKey(2, 10)))
}
