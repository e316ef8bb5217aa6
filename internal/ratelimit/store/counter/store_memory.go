package counter

import (
	"context"
	"time"

	"pollcast/internal/platform/memkv"
)

// InMemoryCounterStore implements fixed-window counters on the in-process substrate.
type InMemoryCounterStore struct {
	kv *memkv.Store
}

// NewInMemory creates a counter store sharing kv with the other in-memory stores.
func NewInMemory(kv *memkv.Store) *InMemoryCounterStore {
	return &InMemoryCounterStore{kv: kv}
}

// Increment bumps the counter at key and arms the window on first touch.
func (s *InMemoryCounterStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	var count int64
	err := s.kv.Update(func(tx *memkv.Tx) error {
		count = tx.Incr(key)
		if ttl, _ := tx.TTL(key); count == 1 || ttl == 0 {
			tx.Expire(key, window)
		}
		return nil
	})
	return count, err
}
