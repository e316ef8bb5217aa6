package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"pollcast/internal/platform/memkv"
	"pollcast/internal/ratelimit/metrics"
	"pollcast/internal/ratelimit/models"
	"pollcast/internal/ratelimit/store/counter"
)

type failingCounters struct{}

func (failingCounters) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

type RateLimitServiceSuite struct {
	suite.Suite
	metrics *metrics.Metrics
	service *Service
	ctx     context.Context
}

func TestRateLimitServiceSuite(t *testing.T) {
	suite.Run(t, new(RateLimitServiceSuite))
}

func (s *RateLimitServiceSuite) SetupTest() {
	s.metrics = metrics.New(prometheus.NewRegistry())
	svc, err := New(
		counter.NewInMemory(memkv.New()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
	s.service = svc
	s.ctx = context.Background()
}

func (s *RateLimitServiceSuite) TestNew() {
	_, err := New(nil)
	s.Error(err)
	s.Contains(err.Error(), "counter store is required")
}

func (s *RateLimitServiceSuite) TestCheckCreate() {
	s.Run("allows up to max then rejects", func() {
		for i := 1; i <= models.DefaultCreatePolicy.Max; i++ {
			res, err := s.service.CheckCreate(s.ctx, "origin-a", models.DefaultCreatePolicy)
			s.Require().NoError(err)
			s.True(res.Allowed, "attempt %d", i)
		}
		res, err := s.service.CheckCreate(s.ctx, "origin-a", models.DefaultCreatePolicy)
		s.Require().NoError(err)
		s.False(res.Allowed)
		s.EqualValues(models.DefaultCreatePolicy.Max+1, res.Count)
	})

	s.Run("rejected attempts keep counting", func() {
		res, err := s.service.CheckCreate(s.ctx, "origin-a", models.DefaultCreatePolicy)
		s.Require().NoError(err)
		s.False(res.Allowed)
		s.EqualValues(models.DefaultCreatePolicy.Max+2, res.Count)
	})

	s.Run("other origins are independent", func() {
		res, err := s.service.CheckCreate(s.ctx, "origin-b", models.DefaultCreatePolicy)
		s.Require().NoError(err)
		s.True(res.Allowed)
	})

	s.Equal(2.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("create")))
}

func (s *RateLimitServiceSuite) TestStoreErrorPropagates() {
	svc, err := New(failingCounters{})
	s.Require().NoError(err)

	_, err = svc.CheckCreate(s.ctx, "origin-a", models.DefaultCreatePolicy)
	s.Error(err)
	s.Contains(err.Error(), "store down")
}

func TestAnonymize(t *testing.T) {
	assert.Equal(t, "poll:rate:create:0123abcd…", anonymize("poll:rate:create:0123abcdef987654"))
	assert.Equal(t, "poll:rate:vote:p1:short", anonymize("poll:rate:vote:p1:short"))
}
