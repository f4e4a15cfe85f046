package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNotIndexed is returned when a player has no entry in the index.
var ErrNotIndexed = errors.New("player not in ranking index")

// Index keeps ranks up to date incrementally as levels change.
type Index interface {
	SetLevel(ctx context.Context, playerID string, level int) error
	Remove(ctx context.Context, playerID string) error
	Rank(ctx context.Context, playerID string) (int, error)
	Rebuild(ctx context.Context, entries []Entry) error
}

// RedisIndex stores levels in a Redis sorted set.
//
// Members are scored with the negated level so that ZRANK walks levels from
// highest to lowest, and Redis orders members with equal scores
// lexicographically, which matches the player ID tie-break used by Compute.
type RedisIndex struct {
	client *redis.Client
	key    string
}

// NewRedisIndex creates a RedisIndex using key for the sorted set.
func NewRedisIndex(client *redis.Client, key string) *RedisIndex {
	return &RedisIndex{client: client, key: key}
}

// SetLevel records a player's level.
func (i *RedisIndex) SetLevel(ctx context.Context, playerID string, level int) error {
	err := i.client.ZAdd(ctx, i.key, redis.Z{
		Score:  -float64(level),
		Member: playerID,
	}).Err()
	if err != nil {
		return fmt.Errorf("setting level: %w", err)
	}
	return nil
}

// Remove drops a player from the index.
func (i *RedisIndex) Remove(ctx context.Context, playerID string) error {
	if err := i.client.ZRem(ctx, i.key, playerID).Err(); err != nil {
		return fmt.Errorf("removing player: %w", err)
	}
	return nil
}

// Rank returns the 1-based rank of a player.
func (i *RedisIndex) Rank(ctx context.Context, playerID string) (int, error) {
	rank, err := i.client.ZRank(ctx, i.key, playerID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotIndexed
	}
	if err != nil {
		return 0, fmt.Errorf("getting rank: %w", err)
	}
	return int(rank) + 1, nil
}

// Rebuild replaces the whole index with entries in one transaction.
func (i *RedisIndex) Rebuild(ctx context.Context, entries []Entry) error {
	members := make([]redis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, redis.Z{Score: -float64(e.Level), Member: e.PlayerID})
	}

	_, err := i.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, i.key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, i.key, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (i *RedisIndex) Close() error {
	return i.client.Close()
}
