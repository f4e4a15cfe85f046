package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID      string   `bson:"_id"`
	Name    string   `bson:"name"`
	Level   int      `bson:"level"`
	Tags    []string `bson:"tags"`
	Version int64    `bson:"version"`
}

func TestMemoryStoreGetPutDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got doc
	assert.ErrorIs(t, s.Get(ctx, "docs", "a", &got), ErrNotFound)

	require.NoError(t, s.Put(ctx, "docs", "a", doc{Name: "Ana", Level: 2}))
	require.NoError(t, s.Get(ctx, "docs", "a", &got))
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "Ana", got.Name)

	got.Name = "changed"
	var again doc
	require.NoError(t, s.Get(ctx, "docs", "a", &again))
	assert.Equal(t, "Ana", again.Name, "callers must not share memory with the store")

	require.NoError(t, s.Delete(ctx, "docs", "a"))
	assert.ErrorIs(t, s.Delete(ctx, "docs", "a"), ErrNotFound)
}

func TestMemoryStoreCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "docs", "a", doc{Level: 0}))

	require.NoError(t, s.CompareAndSwap(ctx, "docs", "a", 0, Fields{"level": 1}))
	assert.ErrorIs(t, s.CompareAndSwap(ctx, "docs", "a", 0, Fields{"level": 9}), ErrVersionConflict)
	assert.ErrorIs(t, s.CompareAndSwap(ctx, "docs", "missing", 0, Fields{"level": 1}), ErrNotFound)

	var got doc
	require.NoError(t, s.Get(ctx, "docs", "a", &got))
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, int64(1), got.Version)
}

func TestMemoryStoreUpdateKeepsVersion(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "docs", "a", doc{Version: 3}))

	require.NoError(t, s.Update(ctx, "docs", "a", Fields{"name": "Ana"}))
	assert.ErrorIs(t, s.Update(ctx, "docs", "missing", Fields{"name": "x"}), ErrNotFound)

	var got doc
	require.NoError(t, s.Get(ctx, "docs", "a", &got))
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, int64(3), got.Version)
}

func TestMemoryStoreQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "docs", "b", doc{Name: "Ben", Level: 1, Tags: []string{"x", "y"}}))
	require.NoError(t, s.Put(ctx, "docs", "a", doc{Name: "Ana", Level: 1, Tags: []string{"y"}}))
	require.NoError(t, s.Put(ctx, "docs", "c", doc{Name: "Cal", Level: 2}))

	var byLevel []doc
	require.NoError(t, s.Query(ctx, "docs", Filter{"level": 1}, &byLevel))
	require.Len(t, byLevel, 2)
	assert.Equal(t, "a", byLevel[0].ID, "results are ordered by id")
	assert.Equal(t, "b", byLevel[1].ID)

	var byTag []doc
	require.NoError(t, s.Query(ctx, "docs", Filter{"tags": "x"}, &byTag))
	require.Len(t, byTag, 1)
	assert.Equal(t, "Ben", byTag[0].Name)

	var none []doc
	require.NoError(t, s.Query(ctx, "docs", Filter{"name": "Zed"}, &none))
	assert.Empty(t, none)

	var all []doc
	require.NoError(t, s.ListAll(ctx, "docs", &all))
	assert.Len(t, all, 3)
}

func TestMemoryStoreBatchUpdateSkipsMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "docs", "a", doc{}))

	err := s.BatchUpdate(ctx, "docs", []BatchOp{
		{ID: "gone", Fields: Fields{"level": 5}},
		{ID: "a", Fields: Fields{"level": 4}},
	})
	require.NoError(t, err)

	var got doc
	require.NoError(t, s.Get(ctx, "docs", "a", &got))
	assert.Equal(t, 4, got.Level)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Put(ctx, "docs", "a", doc{}), context.Canceled)
}

func TestMemoryStoreUniqueIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(UniqueIndex{Collection: "docs", Fields: []string{"name"}})

	require.NoError(t, s.Put(ctx, "docs", "a", doc{Name: "Ana"}))
	assert.ErrorIs(t, s.Put(ctx, "docs", "b", doc{Name: "Ana"}), ErrDuplicate)
	require.NoError(t, s.Put(ctx, "docs", "a", doc{Name: "Ana", Level: 2}), "rewriting the same document is not a duplicate")

	require.NoError(t, s.Put(ctx, "docs", "b", doc{Name: "Ben"}))
	assert.ErrorIs(t, s.Update(ctx, "docs", "b", Fields{"name": "Ana"}), ErrDuplicate)
	assert.ErrorIs(t, s.CompareAndSwap(ctx, "docs", "b", 0, Fields{"name": "Ana"}), ErrDuplicate)

	var got doc
	require.NoError(t, s.Get(ctx, "docs", "b", &got))
	assert.Equal(t, "Ben", got.Name)
	assert.Equal(t, int64(0), got.Version)

	// Other collections are unaffected.
	require.NoError(t, s.Put(ctx, "other", "x", doc{Name: "Ana"}))
	require.NoError(t, s.Put(ctx, "other", "y", doc{Name: "Ana"}))
}

func TestMemoryStorePartialUniqueIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(UniqueIndex{
		Collection: "docs",
		Fields:     []string{"name"},
		Partial:    Filter{"level": 0},
	})

	require.NoError(t, s.Put(ctx, "docs", "a", doc{Name: "Ana", Level: 0}))
	require.NoError(t, s.Put(ctx, "docs", "b", doc{Name: "Ana", Level: 1}))
	assert.ErrorIs(t, s.Put(ctx, "docs", "c", doc{Name: "Ana", Level: 0}), ErrDuplicate)

	// Leaving the partial filter frees the key.
	require.NoError(t, s.Update(ctx, "docs", "a", Fields{"level": 3}))
	require.NoError(t, s.Put(ctx, "docs", "c", doc{Name: "Ana", Level: 0}))
}

func TestMemoryStoreUniqueIndexUnderConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(UniqueIndex{Collection: "docs", Fields: []string{"name"}})

	const writers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	stored := 0
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Put(ctx, "docs", fmt.Sprintf("id-%d", i), doc{Name: "Ana"})
			if err == nil {
				mu.Lock()
				stored++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrDuplicate)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, stored)
	var all []doc
	require.NoError(t, s.ListAll(ctx, "docs", &all))
	assert.Len(t, all, 1)
}
