// Package service implements the four poll operations: create, list, view
// and vote. Stores report infrastructure facts with sentinel errors; this
// package translates them into coded domain errors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pollcast/internal/platform/config"
	"pollcast/internal/poll/metrics"
	"pollcast/internal/poll/observability"
	ratelimitModels "pollcast/internal/ratelimit/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50
	maxIDAttempts    = 4
	maxListRounds    = 5
)

var tracer = otel.Tracer("pollcast/internal/poll/service")

type Service struct {
	polls     PollStore
	index     IndexStore
	limiter   RateLimiter
	announcer Announcer

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics

	pollTTL      time.Duration
	createPolicy ratelimitModels.Policy
	votePolicy   ratelimitModels.Policy
	listDefault  int
	listMax      int
	newID        func() (string, error)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPollTTL sets the lifetime of new polls.
func WithPollTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.pollTTL = ttl
		}
	}
}

func WithCreatePolicy(p ratelimitModels.Policy) Option {
	return func(s *Service) {
		s.createPolicy = p
	}
}

func WithVotePolicy(p ratelimitModels.Policy) Option {
	return func(s *Service) {
		s.votePolicy = p
	}
}

// WithListLimits sets the default and maximum public listing sizes.
func WithListLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 {
			s.listDefault = defaultLimit
		}
		if maxLimit > 0 {
			s.listMax = maxLimit
		}
	}
}

// WithIDGenerator replaces the random poll id source.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func New(polls PollStore, index IndexStore, limiter RateLimiter, announcer Announcer, opts ...Option) (*Service, error) {
	if polls == nil {
		return nil, errors.New("poll store is required")
	}
	if index == nil {
		return nil, errors.New("index store is required")
	}
	if limiter == nil {
		return nil, errors.New("rate limiter is required")
	}
	if announcer == nil {
		return nil, errors.New("announcer is required")
	}
	s := &Service{
		polls:        polls,
		index:        index,
		limiter:      limiter,
		announcer:    announcer,
		logger:       slog.Default(),
		pollTTL:      config.DefaultPollTTL,
		createPolicy: ratelimitModels.DefaultCreatePolicy,
		votePolicy:   ratelimitModels.DefaultVotePolicy,
		listDefault:  defaultListLimit,
		listMax:      maxListLimit,
		newID:        randomID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.listDefault > s.listMax {
		s.listDefault = s.listMax
	}
	return s, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	observability.LogAudit(ctx, s.logger, s.auditPublisher, event, attrs...)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
