package index

import (
	"context"
	"time"

	"pollcast/internal/platform/memkv"
	"pollcast/internal/poll/models"
)

// InMemoryStore keeps the public index in a memkv sorted set.
type InMemoryStore struct {
	kv *memkv.Store
}

// NewInMemory constructs an in-memory index store over kv.
func NewInMemory(kv *memkv.Store) *InMemoryStore {
	return &InMemoryStore{kv: kv}
}

func (s *InMemoryStore) Insert(_ context.Context, pollID string, createdAt time.Time) error {
	return s.kv.Update(func(tx *memkv.Tx) error {
		tx.ZAdd(models.PublicIndexKey, pollID, float64(createdAt.UnixMilli()))
		return nil
	})
}

func (s *InMemoryStore) Range(_ context.Context, offset, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	var ids []string
	err := s.kv.Update(func(tx *memkv.Tx) error {
		ids = tx.ZRevRange(models.PublicIndexKey, offset, offset+count-1)
		return nil
	})
	return ids, err
}

func (s *InMemoryStore) Remove(_ context.Context, pollIDs ...string) error {
	return s.kv.Update(func(tx *memkv.Tx) error {
		tx.ZRem(models.PublicIndexKey, pollIDs...)
		return nil
	})
}

func (s *InMemoryStore) RemoveCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int
	err := s.kv.Update(func(tx *memkv.Tx) error {
		// memkv ranges are inclusive; step below the cutoff to keep it exclusive.
		n = tx.ZRemRangeByScore(models.PublicIndexKey, float64(cutoff.UnixMilli()-1))
		return nil
	})
	return int64(n), err
}
