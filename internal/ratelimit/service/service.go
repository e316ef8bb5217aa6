// Package service applies fixed-window rate-limit policies to counter keys.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pollcast/internal/ratelimit/metrics"
	"pollcast/internal/ratelimit/models"
	"pollcast/pkg/requestcontext"
)

// CounterStore is the persistence interface for fixed-window counters.
type CounterStore interface {
	// Increment atomically bumps the counter at key, arming a window expiry on
	// first touch, and returns the post-increment value.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Service struct {
	counters CounterStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(counters CounterStore, opts ...Option) (*Service, error) {
	if counters == nil {
		return nil, errors.New("counter store is required")
	}
	svc := &Service{counters: counters}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check counts one attempt against key under policy. The increment is never
// rolled back: attempts, not successes, are what the policy bounds.
func (s *Service) Check(ctx context.Context, key string, policy models.Policy) (*models.RateLimitResult, error) {
	count, err := s.counters.Increment(ctx, key, policy.Window)
	if err != nil {
		return nil, fmt.Errorf("check %s rate limit: %w", policy.Name, err)
	}
	allowed := !policy.Exceeded(count)
	s.Record(ctx, policy, key, allowed)
	return &models.RateLimitResult{Allowed: allowed, Count: count, Limit: policy.Max}, nil
}

// CheckCreate applies the creation policy to an origin hash.
func (s *Service) CheckCreate(ctx context.Context, originHash string, policy models.Policy) (*models.RateLimitResult, error) {
	return s.Check(ctx, models.CreateKey(originHash), policy)
}

// Record reports the outcome of a check evaluated elsewhere (the vote
// transaction evaluates its own policy inside the store).
func (s *Service) Record(ctx context.Context, policy models.Policy, key string, allowed bool) {
	if s.metrics != nil {
		s.metrics.RecordCheck(string(policy.Name), allowed)
	}
	if !allowed && s.logger != nil {
		s.logger.WarnContext(ctx, "rate limit exceeded",
			"policy", policy.Name,
			"key", anonymize(key),
			"limit", policy.Max,
			"window_seconds", policy.WindowSeconds(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// anonymize keeps only a short prefix of the hash segment so logs can
// correlate bursts without carrying the full identity hash.
func anonymize(key string) string {
	i := strings.LastIndexByte(key, ':')
	hash := key[i+1:]
	if len(hash) > 8 {
		hash = hash[:8] + "…"
	}
	return key[:i+1] + hash
}
