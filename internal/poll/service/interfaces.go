package service

import (
	"context"
	"time"

	"pollcast/internal/poll/models"
	ratelimitModels "pollcast/internal/ratelimit/models"
	"pollcast/pkg/platform/audit"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks PollStore,IndexStore,RateLimiter,Announcer,AuditPublisher

// PollStore persists poll documents and runs the vote transaction.
type PollStore interface {
	Create(ctx context.Context, p *models.Poll, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.Poll, error)
	IDAvailable(ctx context.Context, id string) (bool, error)
	HasVoted(ctx context.Context, pollID, originHash, fingerprintHash string) (bool, error)
	ApplyVote(ctx context.Context, cmd models.VoteCommand) (*models.Poll, error)
}

// IndexStore is the time-ordered public listing.
type IndexStore interface {
	Insert(ctx context.Context, pollID string, createdAt time.Time) error
	Range(ctx context.Context, offset, count int) ([]string, error)
	Remove(ctx context.Context, pollIDs ...string) error
	RemoveCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RateLimiter checks the creation policy and records outcomes of the vote
// policy, which the vote transaction evaluates itself.
type RateLimiter interface {
	CheckCreate(ctx context.Context, originHash string, policy ratelimitModels.Policy) (*ratelimitModels.RateLimitResult, error)
	Record(ctx context.Context, policy ratelimitModels.Policy, key string, allowed bool)
}

// Announcer pushes changes to live viewers. Calls never fail the caller.
type Announcer interface {
	AnnounceVote(ctx context.Context, p *models.Poll)
	AnnouncePublicListChange(ctx context.Context, pollID, reason string)
}

// AuditPublisher receives activity events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
