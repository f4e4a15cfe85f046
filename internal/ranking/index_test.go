package ranking

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *RedisIndex {
	t.Helper()
	mr := miniredis.RunT(t)
	index := NewRedisIndex(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "ranking:test")
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestRedisIndexMatchesCompute(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	entries := []Entry{
		{PlayerID: "c", Level: 3},
		{PlayerID: "a", Level: 3},
		{PlayerID: "d", Level: 1},
		{PlayerID: "b", Level: 7},
	}
	require.NoError(t, index.Rebuild(ctx, entries))

	for _, e := range Compute(entries) {
		rank, err := index.Rank(ctx, e.PlayerID)
		require.NoError(t, err)
		assert.Equal(t, e.Rank, rank, e.PlayerID)
	}
}

func TestRedisIndexIncrementalUpdates(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	require.NoError(t, index.SetLevel(ctx, "a", 1))
	require.NoError(t, index.SetLevel(ctx, "b", 2))

	rank, err := index.Rank(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	require.NoError(t, index.SetLevel(ctx, "a", 5))
	rank, err = index.Rank(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	require.NoError(t, index.Remove(ctx, "a"))
	_, err = index.Rank(ctx, "a")
	assert.ErrorIs(t, err, ErrNotIndexed)
}

func TestRedisIndexRebuildReplacesContents(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	require.NoError(t, index.SetLevel(ctx, "gone", 9))
	require.NoError(t, index.Rebuild(ctx, []Entry{{PlayerID: "a", Level: 1}}))

	_, err := index.Rank(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotIndexed)

	require.NoError(t, index.Rebuild(ctx, nil))
	_, err = index.Rank(ctx, "a")
	assert.ErrorIs(t, err, ErrNotIndexed)
}
