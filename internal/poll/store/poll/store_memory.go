package poll

import (
	"context"
	"fmt"
	"time"

	"pollcast/internal/platform/memkv"
	"pollcast/internal/poll/models"
	ratelimitModels "pollcast/internal/ratelimit/models"
	"pollcast/pkg/platform/sentinel"
)

var lockMarker = []byte("1")

// InMemoryStore keeps poll documents and vote locks in a memkv.Store. It runs
// the same vote sequence as the Redis script inside one memkv transaction.
type InMemoryStore struct {
	kv *memkv.Store
}

// NewInMemory constructs an in-memory poll store over kv.
func NewInMemory(kv *memkv.Store) *InMemoryStore {
	return &InMemoryStore{kv: kv}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Poll, ttl time.Duration) error {
	data, err := encodePoll(p)
	if err != nil {
		return err
	}
	return s.kv.Update(func(tx *memkv.Tx) error {
		if !tx.SetNX(models.PollKey(p.ID), data, ttl) {
			return fmt.Errorf("save poll %s: %w", p.ID, sentinel.ErrConflict)
		}
		return nil
	})
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*models.Poll, error) {
	var data []byte
	err := s.kv.Update(func(tx *memkv.Tx) error {
		v, ok := tx.Get(models.PollKey(id))
		if !ok {
			return fmt.Errorf("poll %s: %w", id, sentinel.ErrNotFound)
		}
		data = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decodePoll(data)
}

func (s *InMemoryStore) IDAvailable(_ context.Context, id string) (bool, error) {
	available := false
	_ = s.kv.Update(func(tx *memkv.Tx) error {
		available = !tx.Exists(models.PollKey(id))
		return nil
	})
	return available, nil
}

func (s *InMemoryStore) HasVoted(_ context.Context, pollID, originHash, fingerprintHash string) (bool, error) {
	voted := false
	_ = s.kv.Update(func(tx *memkv.Tx) error {
		voted = tx.Exists(models.OriginLockKey(pollID, originHash)) ||
			tx.Exists(models.FingerprintLockKey(pollID, fingerprintHash))
		return nil
	})
	return voted, nil
}

func (s *InMemoryStore) ApplyVote(_ context.Context, cmd models.VoteCommand) (*models.Poll, error) {
	var updated *models.Poll
	err := s.kv.Update(func(tx *memkv.Tx) error {
		pollKey := models.PollKey(cmd.PollID)
		raw, ok := tx.Get(pollKey)
		if !ok {
			return fmt.Errorf("poll %s: %w", cmd.PollID, sentinel.ErrNotFound)
		}

		rateKey := ratelimitModels.VoteKey(cmd.PollID, cmd.OriginHash)
		attempts := tx.Incr(rateKey)
		if ttl, _ := tx.TTL(rateKey); attempts == 1 || ttl == 0 {
			window := time.Duration(max(cmd.AttemptWindow, 1)) * time.Second
			tx.Expire(rateKey, window)
		}
		if attempts > int64(cmd.MaxAttempts) {
			return fmt.Errorf("vote on %s: %w", cmd.PollID, sentinel.ErrLimitExceeded)
		}

		originKey := models.OriginLockKey(cmd.PollID, cmd.OriginHash)
		fingerprintKey := models.FingerprintLockKey(cmd.PollID, cmd.FingerprintHash)
		if tx.Exists(originKey) || tx.Exists(fingerprintKey) {
			return fmt.Errorf("vote on %s: %w", cmd.PollID, sentinel.ErrAlreadyUsed)
		}

		p, err := decodePoll(raw)
		if err != nil {
			return err
		}
		option, ok := p.Option(cmd.OptionID)
		if !ok {
			return fmt.Errorf("poll %s: %w", cmd.PollID, models.ErrOptionNotFound)
		}
		option.Votes++
		p.TotalVotes++

		data, err := encodePoll(p)
		if err != nil {
			return err
		}
		remaining, _ := tx.TTL(pollKey)
		tx.SetKeepTTL(pollKey, data)
		tx.SetNX(originKey, lockMarker, remaining)
		tx.SetNX(fingerprintKey, lockMarker, remaining)
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
