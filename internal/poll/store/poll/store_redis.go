package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pollcast/internal/poll/models"
	ratelimitModels "pollcast/internal/ratelimit/models"
	"pollcast/pkg/platform/sentinel"
)

// RedisStore keeps poll documents and vote locks in Redis. Votes run through
// a Lua script so concurrent instances see one consistent sequence.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed poll store.
func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Create writes a new poll document with the given lifetime. It never
// overwrites: an existing key yields sentinel.ErrConflict.
func (s *RedisStore) Create(ctx context.Context, p *models.Poll, ttl time.Duration) error {
	data, err := encodePoll(p)
	if err != nil {
		return err
	}
	written, err := s.client.SetNX(ctx, models.PollKey(p.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: save poll %s: %v", sentinel.ErrUnavailable, p.ID, err)
	}
	if !written {
		return fmt.Errorf("save poll %s: %w", p.ID, sentinel.ErrConflict)
	}
	return nil
}

// Get loads and validates a poll document.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Poll, error) {
	data, err := s.client.Get(ctx, models.PollKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("poll %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get poll %s: %w", id, err)
	}
	return decodePoll(data)
}

// IDAvailable reports whether no document is stored under id.
func (s *RedisStore) IDAvailable(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, models.PollKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("check poll id %s: %w", id, err)
	}
	return n == 0, nil
}

// HasVoted reports whether either identity namespace holds a lock for the poll.
func (s *RedisStore) HasVoted(ctx context.Context, pollID, originHash, fingerprintHash string) (bool, error) {
	n, err := s.client.Exists(ctx,
		models.OriginLockKey(pollID, originHash),
		models.FingerprintLockKey(pollID, fingerprintHash),
	).Result()
	if err != nil {
		return false, fmt.Errorf("check vote locks for %s: %w", pollID, err)
	}
	return n > 0, nil
}

// ApplyVote executes the vote transaction and returns the updated poll.
func (s *RedisStore) ApplyVote(ctx context.Context, cmd models.VoteCommand) (*models.Poll, error) {
	keys := []string{
		models.PollKey(cmd.PollID),
		ratelimitModels.VoteKey(cmd.PollID, cmd.OriginHash),
		models.OriginLockKey(cmd.PollID, cmd.OriginHash),
		models.FingerprintLockKey(cmd.PollID, cmd.FingerprintHash),
	}
	window := cmd.AttemptWindow
	if window < 1 {
		window = 1
	}
	reply, err := voteScript.Run(ctx, s.client, keys, cmd.OptionID, cmd.MaxAttempts, window).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("%w: vote on %s: %v", sentinel.ErrUnavailable, cmd.PollID, err)
	}
	if len(reply) == 0 {
		return nil, fmt.Errorf("%w: vote on %s: empty reply", sentinel.ErrUnavailable, cmd.PollID)
	}
	if err := voteStatusError(reply[0], cmd.PollID); err != nil {
		return nil, err
	}
	if len(reply) < 2 {
		return nil, fmt.Errorf("%w: vote on %s: missing document", sentinel.ErrUnavailable, cmd.PollID)
	}
	return decodePoll([]byte(reply[1]))
}

func voteStatusError(status, pollID string) error {
	switch status {
	case voteStatusOK:
		return nil
	case voteStatusPollNotFound:
		return fmt.Errorf("poll %s: %w", pollID, sentinel.ErrNotFound)
	case voteStatusRateLimited:
		return fmt.Errorf("vote on %s: %w", pollID, sentinel.ErrLimitExceeded)
	case voteStatusAlreadyVoted:
		return fmt.Errorf("vote on %s: %w", pollID, sentinel.ErrAlreadyUsed)
	case voteStatusOptionNotFound:
		return fmt.Errorf("poll %s: %w", pollID, models.ErrOptionNotFound)
	default:
		return fmt.Errorf("%w: vote on %s: unexpected status %q", sentinel.ErrUnavailable, pollID, status)
	}
}
