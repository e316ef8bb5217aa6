// Package index maintains the public listing: a sorted set of poll ids scored
// by creation time in milliseconds. Entries are removed lazily by readers once
// the poll they point at is gone or no longer public.
package index

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pollcast/internal/poll/models"
)

// RedisStore keeps the public index in a Redis sorted set.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed index store.
func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Insert records pollID with createdAt as its score.
func (s *RedisStore) Insert(ctx context.Context, pollID string, createdAt time.Time) error {
	err := s.client.ZAdd(ctx, models.PublicIndexKey, redis.Z{
		Score:  float64(createdAt.UnixMilli()),
		Member: pollID,
	}).Err()
	if err != nil {
		return fmt.Errorf("index poll %s: %w", pollID, err)
	}
	return nil
}

// Range returns up to count ids, newest first, starting at offset.
func (s *RedisStore) Range(ctx context.Context, offset, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	ids, err := s.client.ZRevRange(ctx, models.PublicIndexKey, int64(offset), int64(offset+count-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("range public index: %w", err)
	}
	return ids, nil
}

// Remove drops ids from the index.
func (s *RedisStore) Remove(ctx context.Context, pollIDs ...string) error {
	if len(pollIDs) == 0 {
		return nil
	}
	members := make([]any, len(pollIDs))
	for i, id := range pollIDs {
		members[i] = id
	}
	if err := s.client.ZRem(ctx, models.PublicIndexKey, members...).Err(); err != nil {
		return fmt.Errorf("prune public index: %w", err)
	}
	return nil
}

// RemoveCreatedBefore drops every entry scored before cutoff. Such polls have
// outlived the poll lifetime and can no longer resolve.
func (s *RedisStore) RemoveCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	bound := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)
	n, err := s.client.ZRemRangeByScore(ctx, models.PublicIndexKey, "-inf", bound).Result()
	if err != nil {
		return 0, fmt.Errorf("trim public index: %w", err)
	}
	return n, nil
}
