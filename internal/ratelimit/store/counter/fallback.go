package counter

import (
	"context"
	"log/slog"
	"time"

	"pollcast/pkg/platform/circuit"
)

// Incrementer is a fixed-window counter backend.
type Incrementer interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// FallbackStore keeps creation limits enforced through a shared-store outage.
// Every call tries the primary; once the breaker opens, failed calls are
// counted per instance in the fallback instead of surfacing an error.
type FallbackStore struct {
	primary  Incrementer
	fallback Incrementer
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type FallbackOption func(*FallbackStore)

func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(s *FallbackStore) {
		s.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) FallbackOption {
	return func(s *FallbackStore) {
		s.breaker = b
	}
}

func NewFallback(primary, fallback Incrementer, opts ...FallbackOption) *FallbackStore {
	s := &FallbackStore{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("ratelimit-counter"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FallbackStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.primary.Increment(ctx, key, window)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "rate limit counters recovered", "breaker", s.breaker.Name())
		}
		return count, nil
	}

	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "rate limit counters degraded to local fallback",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}
	if !useFallback {
		return 0, err
	}
	return s.fallback.Increment(ctx, key, window)
}
