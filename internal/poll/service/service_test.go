package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"pollcast/internal/platform/memkv"
	"pollcast/internal/poll/fanout"
	"pollcast/internal/poll/metrics"
	"pollcast/internal/poll/models"
	"pollcast/internal/poll/service/mocks"
	"pollcast/internal/poll/store/index"
	pollstore "pollcast/internal/poll/store/poll"
	ratelimitModels "pollcast/internal/ratelimit/models"
	ratelimitService "pollcast/internal/ratelimit/service"
	"pollcast/internal/ratelimit/store/counter"
	dErrors "pollcast/pkg/domain-errors"
	"pollcast/pkg/platform/audit"
	"pollcast/pkg/platform/audit/store/memory"
	"pollcast/pkg/platform/sentinel"
	"pollcast/pkg/requestcontext"
)

const testTTL = time.Hour

type PollServiceSuite struct {
	suite.Suite
	now       time.Time
	kv        *memkv.Store
	polls     *pollstore.InMemoryStore
	index     *index.InMemoryStore
	announcer *mocks.MockAnnouncer
	audit     *memory.InMemoryStore
	metrics   *metrics.Metrics
	service   *Service
	nextID    int
}

func TestPollServiceSuite(t *testing.T) {
	suite.Run(t, new(PollServiceSuite))
}

func (s *PollServiceSuite) SetupTest() {
	s.now = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	s.kv = memkv.New(memkv.WithClock(func() time.Time { return s.now }))
	s.polls = pollstore.NewInMemory(s.kv)
	s.index = index.NewInMemory(s.kv)
	s.audit = memory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.nextID = 0

	limiter, err := ratelimitService.New(counter.NewInMemory(s.kv))
	s.Require().NoError(err)

	ctrl := gomock.NewController(s.T())
	s.announcer = mocks.NewMockAnnouncer(ctrl)
	s.service = s.newService(limiter)
}

func (s *PollServiceSuite) newService(limiter RateLimiter, opts ...Option) *Service {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(publisherFunc(s.audit.Append)),
		WithMetrics(s.metrics),
		WithPollTTL(testTTL),
		WithIDGenerator(s.sequentialID),
	}
	svc, err := New(s.polls, s.index, limiter, s.announcer, append(base, opts...)...)
	s.Require().NoError(err)
	return svc
}

type publisherFunc func(ctx context.Context, event audit.Event) error

func (f publisherFunc) Emit(ctx context.Context, event audit.Event) error {
	return f(ctx, event)
}

func (s *PollServiceSuite) sequentialID() (string, error) {
	s.nextID++
	return fmt.Sprintf("poll%04d", s.nextID), nil
}

func (s *PollServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *PollServiceSuite) allowAnnouncements() {
	s.announcer.EXPECT().AnnounceVote(gomock.Any(), gomock.Any()).AnyTimes()
	s.announcer.EXPECT().AnnouncePublicListChange(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
}

func actor(n int) models.Actor {
	return models.Actor{
		OriginHash:      fmt.Sprintf("origin-%d", n),
		FingerprintHash: fmt.Sprintf("fingerprint-%d", n),
	}
}

func (s *PollServiceSuite) create(title string, visibility string, options ...string) *models.CreatePollResult {
	res, err := s.service.CreatePoll(s.ctx(), actor(0), models.CreatePollRequest{
		Title:      title,
		Options:    options,
		Visibility: visibility,
	})
	s.Require().NoError(err)
	return res
}

func (s *PollServiceSuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.True(dErrors.Is(err, code), "expected %s, got %v", code, err)
}

func (s *PollServiceSuite) TestCreatePoll() {
	s.Run("public poll is stored, indexed and announced", func() {
		s.announcer.EXPECT().AnnouncePublicListChange(gomock.Any(), "poll0001", fanout.ReasonPollCreated).Times(1)

		res := s.create("  Best pizza topping?  ", "", "Mushroom", "Pepperoni", "Pineapple")

		s.Equal("/p/poll0001", res.PollPath)
		s.Equal("Best pizza topping?", res.Poll.Title)
		s.Equal(models.VisibilityPublic, res.Poll.Visibility)
		s.Require().Len(res.Poll.Options, 3)
		for i, o := range res.Poll.Options {
			s.Equal(models.OptionID(i), o.ID)
			s.Zero(o.Votes)
			s.Zero(o.Percent)
		}
		s.True(res.Poll.ExpiresAt.Equal(s.now.Add(testTTL)))

		ids, err := s.index.Range(s.ctx(), 0, 10)
		s.Require().NoError(err)
		s.Equal([]string{"poll0001"}, ids)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.PollsCreated))

		events, err := s.audit.ListByPoll(s.ctx(), "poll0001")
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventPollCreated), events[0].Action)
	})

	s.Run("private poll is neither indexed nor announced", func() {
		res := s.create("Team offsite city", "private", "Lisbon", "Porto")
		s.Equal(models.VisibilityPrivate, res.Poll.Visibility)

		ids, err := s.index.Range(s.ctx(), 0, 10)
		s.Require().NoError(err)
		s.NotContains(ids, res.Poll.ID)
	})
}

func (s *PollServiceSuite) TestCreatePollDeduplicatesOptions() {
	s.allowAnnouncements()

	res := s.create("Do you agree?", "public", "Yes", "yes ", "YES", "  ", "No")
	s.Require().Len(res.Poll.Options, 2)
	s.Equal("Yes", res.Poll.Options[0].Text)
	s.Equal("No", res.Poll.Options[1].Text)

	_, err := s.service.CreatePoll(s.ctx(), actor(1), models.CreatePollRequest{
		Title:   "Do you agree?",
		Options: []string{"Yes", "yes ", "YES"},
	})
	s.requireCode(err, dErrors.CodeInvalidOptions)
}

func (s *PollServiceSuite) TestCreatePollValidation() {
	tooMany := make([]string, models.MaxOptions+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("choice %d", i)
	}
	tests := []struct {
		name string
		req  models.CreatePollRequest
		code dErrors.Code
	}{
		{"short title", models.CreatePollRequest{Title: " abc ", Options: []string{"a", "b"}}, dErrors.CodeInvalidTitle},
		{"long title", models.CreatePollRequest{Title: strings.Repeat("t", models.TitleMaxLen+1), Options: []string{"a", "b"}}, dErrors.CodeInvalidTitle},
		{"one option", models.CreatePollRequest{Title: "Valid title", Options: []string{"only"}}, dErrors.CodeInvalidOptions},
		{"too many options", models.CreatePollRequest{Title: "Valid title", Options: tooMany}, dErrors.CodeInvalidOptions},
		{"oversized option", models.CreatePollRequest{Title: "Valid title", Options: []string{"a", strings.Repeat("o", models.OptionMaxLen+1)}}, dErrors.CodeInvalidOptions},
		{"unknown visibility", models.CreatePollRequest{Title: "Valid title", Options: []string{"a", "b"}, Visibility: "secret"}, dErrors.CodeInvalidOptions},
	}
	for i, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreatePoll(s.ctx(), actor(100+i), tt.req)
			s.requireCode(err, tt.code)
		})
	}
}

func (s *PollServiceSuite) TestCreatePollRateLimited() {
	s.allowAnnouncements()
	for i := range ratelimitModels.DefaultCreatePolicy.Max {
		_, err := s.service.CreatePoll(s.ctx(), actor(7), models.CreatePollRequest{
			Title:   fmt.Sprintf("Question %d", i),
			Options: []string{"a", "b"},
		})
		s.Require().NoError(err)
	}
	_, err := s.service.CreatePoll(s.ctx(), actor(7), models.CreatePollRequest{
		Title:   "One too many",
		Options: []string{"a", "b"},
	})
	s.requireCode(err, dErrors.CodeRateLimited)

	_, err = s.service.CreatePoll(s.ctx(), actor(8), models.CreatePollRequest{
		Title:   "Another origin",
		Options: []string{"a", "b"},
	})
	s.NoError(err)
}

func (s *PollServiceSuite) TestCreatePollIDCollisions() {
	s.allowAnnouncements()
	s.create("Existing poll", "", "a", "b") // poll0001

	s.Run("gives up after four taken ids", func() {
		limiter, err := ratelimitService.New(counter.NewInMemory(s.kv))
		s.Require().NoError(err)
		svc := s.newService(limiter, WithIDGenerator(func() (string, error) { return "poll0001", nil }))

		_, err = svc.CreatePoll(s.ctx(), actor(2), models.CreatePollRequest{Title: "Collides", Options: []string{"a", "b"}})
		s.requireCode(err, dErrors.CodeIDGenerationFailed)
	})

	s.Run("succeeds when a later draw is free", func() {
		limiter, err := ratelimitService.New(counter.NewInMemory(s.kv))
		s.Require().NoError(err)
		draws := []string{"poll0001", "poll0001", "poll0001", "fresh001"}
		svc := s.newService(limiter, WithIDGenerator(func() (string, error) {
			id := draws[0]
			draws = draws[1:]
			return id, nil
		}))

		res, err := svc.CreatePoll(s.ctx(), actor(3), models.CreatePollRequest{Title: "Eventually", Options: []string{"a", "b"}})
		s.Require().NoError(err)
		s.Equal("fresh001", res.Poll.ID)
	})
}

func (s *PollServiceSuite) TestCreatePollStoreFailure() {
	ctrl := gomock.NewController(s.T())
	polls := mocks.NewMockPollStore(ctrl)
	limiter := mocks.NewMockRateLimiter(ctrl)
	limiter.EXPECT().CheckCreate(gomock.Any(), "origin-1", gomock.Any()).
		Return(&ratelimitModels.RateLimitResult{Allowed: true, Count: 1, Limit: 8}, nil)
	polls.EXPECT().IDAvailable(gomock.Any(), "poll0001").Return(true, nil)
	polls.EXPECT().Create(gomock.Any(), gomock.Any(), testTTL).Return(sentinel.ErrUnavailable)

	svc, err := New(polls, s.index, limiter, s.announcer, WithPollTTL(testTTL), WithIDGenerator(s.sequentialID))
	s.Require().NoError(err)

	_, err = svc.CreatePoll(s.ctx(), actor(1), models.CreatePollRequest{Title: "Will fail", Options: []string{"a", "b"}})
	s.requireCode(err, dErrors.CodePollSaveFailed)
}

func (s *PollServiceSuite) TestCreatePollSurvivesIndexFailure() {
	ctrl := gomock.NewController(s.T())
	idx := mocks.NewMockIndexStore(ctrl)
	idx.EXPECT().Insert(gomock.Any(), "poll0001", gomock.Any()).Return(errors.New("index down"))
	s.announcer.EXPECT().AnnouncePublicListChange(gomock.Any(), "poll0001", fanout.ReasonPollCreated)

	limiter, err := ratelimitService.New(counter.NewInMemory(s.kv))
	s.Require().NoError(err)
	svc, err := New(s.polls, idx, limiter, s.announcer, WithPollTTL(testTTL), WithIDGenerator(s.sequentialID))
	s.Require().NoError(err)

	res, err := svc.CreatePoll(s.ctx(), actor(1), models.CreatePollRequest{Title: "Still created", Options: []string{"a", "b"}})
	s.Require().NoError(err)
	_, err = s.polls.Get(s.ctx(), res.Poll.ID)
	s.NoError(err)
}

func (s *PollServiceSuite) TestSubmitVote() {
	s.announcer.EXPECT().AnnouncePublicListChange(gomock.Any(), "poll0001", fanout.ReasonPollCreated)
	s.create("Coffee or tea?", "", "Coffee", "Tea")

	s.announcer.EXPECT().AnnounceVote(gomock.Any(), gomock.Any()).Do(func(_ context.Context, p *models.Poll) {
		s.EqualValues(1, p.TotalVotes)
	})
	s.announcer.EXPECT().AnnouncePublicListChange(gomock.Any(), "poll0001", fanout.ReasonPollUpdated)

	view, err := s.service.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0001", OptionID: "o2"})
	s.Require().NoError(err)
	s.True(view.HasVoted)
	s.EqualValues(1, view.TotalVotes)
	s.Equal(100, view.Options[1].Percent)
	s.Equal(0, view.Options[0].Percent)

	_, err = s.service.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0001", OptionID: "o1"})
	s.requireCode(err, dErrors.CodeAlreadyVoted)

	changedNetwork := models.Actor{OriginHash: "origin-elsewhere", FingerprintHash: actor(1).FingerprintHash}
	_, err = s.service.SubmitVote(s.ctx(), changedNetwork, models.VoteRequest{PollID: "poll0001", OptionID: "o1"})
	s.requireCode(err, dErrors.CodeAlreadyVoted)

	events, err := s.audit.ListByPoll(s.ctx(), "poll0001")
	s.Require().NoError(err)
	actions := make([]string, len(events))
	for i, e := range events {
		actions[i] = e.Action
	}
	s.Equal([]string{"poll_created", "vote_counted", "vote_rejected", "vote_rejected"}, actions)
}

func (s *PollServiceSuite) TestSubmitVoteRequestErrors() {
	s.allowAnnouncements()
	s.create("Pick a number", "", "One", "Two")

	_, err := s.service.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "../etc", OptionID: "o1"})
	s.requireCode(err, dErrors.CodeInvalidPollID)

	_, err = s.service.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0001", OptionID: "first"})
	s.requireCode(err, dErrors.CodeInvalidVote)

	_, err = s.service.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0001", OptionID: "o9"})
	s.requireCode(err, dErrors.CodeOptionNotFound)

	_, err = s.service.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "nothere1", OptionID: "o1"})
	s.requireCode(err, dErrors.CodePollNotFound)
}

func (s *PollServiceSuite) TestConcurrentVotesFromOneIdentity() {
	s.allowAnnouncements()
	s.create("Double click?", "", "Yes", "No")

	const attempts = 15
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for range attempts {
		wg.Go(func() {
			_, err := s.service.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0001", OptionID: "o1"})
			errs <- err
		})
	}
	wg.Wait()
	close(errs)

	accepted, duplicates := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			accepted++
		case dErrors.Is(err, dErrors.CodeAlreadyVoted):
			duplicates++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, accepted)
	s.Equal(attempts-1, duplicates)

	view, err := s.service.GetPollForViewer(s.ctx(), actor(2), "poll0001")
	s.Require().NoError(err)
	s.EqualValues(1, view.TotalVotes)
}

func (s *PollServiceSuite) TestTotalsStayConsistentAcrossIdentities() {
	s.allowAnnouncements()
	s.create("Many voters", "", "A", "B", "C")

	var wg sync.WaitGroup
	for i := range 30 {
		wg.Go(func() {
			_, err := s.service.SubmitVote(s.ctx(), actor(i+1), models.VoteRequest{PollID: "poll0001", OptionID: models.OptionID(i % 3)})
			s.NoError(err)
		})
	}
	wg.Wait()

	p, err := s.polls.Get(s.ctx(), "poll0001")
	s.Require().NoError(err)
	s.EqualValues(30, p.TotalVotes)
	var sum int64
	for _, o := range p.Options {
		sum += o.Votes
	}
	s.Equal(p.TotalVotes, sum)
}

func (s *PollServiceSuite) TestPercentages() {
	s.allowAnnouncements()
	s.create("A or B?", "", "A", "B")

	view, err := s.service.GetPollForViewer(s.ctx(), actor(1), "poll0001")
	s.Require().NoError(err)
	for _, o := range view.Options {
		s.Zero(o.Percent)
	}

	for i, option := range []string{"o1", "o1", "o1", "o2"} {
		_, err := s.service.SubmitVote(s.ctx(), actor(i+10), models.VoteRequest{PollID: "poll0001", OptionID: option})
		s.Require().NoError(err)
	}

	view, err = s.service.GetPollForViewer(s.ctx(), actor(1), "poll0001")
	s.Require().NoError(err)
	s.False(view.HasVoted)
	s.EqualValues(3, view.Options[0].Votes)
	s.Equal(75, view.Options[0].Percent)
	s.EqualValues(1, view.Options[1].Votes)
	s.Equal(25, view.Options[1].Percent)

	view, err = s.service.GetPollForViewer(s.ctx(), actor(10), "poll0001")
	s.Require().NoError(err)
	s.True(view.HasVoted)
}

func (s *PollServiceSuite) TestVoteAttemptsAreRateLimited() {
	s.allowAnnouncements()
	limiter, err := ratelimitService.New(counter.NewInMemory(s.kv))
	s.Require().NoError(err)
	policy, err := ratelimitModels.NewPolicy(ratelimitModels.PolicyVote, 3, time.Minute)
	s.Require().NoError(err)
	svc := s.newService(limiter, WithVotePolicy(policy))
	_, err = svc.CreatePoll(s.ctx(), actor(0), models.CreatePollRequest{Title: "Rate me", Options: []string{"a", "b"}})
	s.Require().NoError(err)

	for range policy.Max {
		_, err := svc.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0001", OptionID: "o7"})
		s.requireCode(err, dErrors.CodeOptionNotFound)
	}
	_, err = svc.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0001", OptionID: "o1"})
	s.requireCode(err, dErrors.CodeRateLimited)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.VoteRejections.WithLabelValues("RATE_LIMITED")))

	s.now = s.now.Add(time.Minute)
	_, err = svc.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0001", OptionID: "o1"})
	s.NoError(err)
}

func (s *PollServiceSuite) TestLocksExpireWithPoll() {
	s.allowAnnouncements()
	s.create("Short lived", "", "a", "b")
	_, err := s.service.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0001", OptionID: "o1"})
	s.Require().NoError(err)

	s.now = s.now.Add(testTTL)

	_, err = s.service.GetPollForViewer(s.ctx(), actor(1), "poll0001")
	s.requireCode(err, dErrors.CodePollNotFound)
	voted, err := s.polls.HasVoted(s.ctx(), "poll0001", actor(1).OriginHash, actor(1).FingerprintHash)
	s.Require().NoError(err)
	s.False(voted)
}

func (s *PollServiceSuite) TestListPublicPolls() {
	s.allowAnnouncements()
	s.create("Oldest question", "", "a", "b") // poll0001
	s.now = s.now.Add(time.Minute)
	s.create("Hidden question", "private", "a", "b") // poll0002
	s.now = s.now.Add(time.Minute)
	s.create("Middle question", "", "a", "b") // poll0003
	s.now = s.now.Add(time.Minute)
	s.create("Newest question", "", "a", "b") // poll0004

	_, err := s.service.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: "poll0002", OptionID: "o1"})
	s.Require().NoError(err)

	s.Run("newest first, private excluded", func() {
		list, err := s.service.ListPublicPolls(s.ctx(), 0)
		s.Require().NoError(err)
		s.Equal([]string{"poll0004", "poll0003", "poll0001"}, summaryIDs(list))
	})

	s.Run("limit is honoured", func() {
		list, err := s.service.ListPublicPolls(s.ctx(), 2)
		s.Require().NoError(err)
		s.Equal([]string{"poll0004", "poll0003"}, summaryIDs(list))
	})

	s.Run("stale and non-public entries are pruned", func() {
		s.Require().NoError(s.index.Insert(s.ctx(), "poll0002", s.now))
		s.Require().NoError(s.polls.Create(s.ctx(), models.NewPoll("gone0001", "Expired soon", models.VisibilityPublic, []string{"a", "b"}, s.now, time.Second), time.Second))
		s.Require().NoError(s.index.Insert(s.ctx(), "gone0001", s.now.Add(time.Second)))
		s.now = s.now.Add(2 * time.Second)

		list, err := s.service.ListPublicPolls(s.ctx(), 10)
		s.Require().NoError(err)
		s.Equal([]string{"poll0004", "poll0003", "poll0001"}, summaryIDs(list))

		ids, err := s.index.Range(s.ctx(), 0, 10)
		s.Require().NoError(err)
		s.Equal([]string{"poll0004", "poll0003", "poll0001"}, ids)
	})
}

func (s *PollServiceSuite) TestListPublicPollsClampsLimit() {
	s.allowAnnouncements()
	for i := range 60 {
		_, err := s.service.CreatePoll(s.ctx(), actor(i), models.CreatePollRequest{
			Title:   fmt.Sprintf("Question number %d", i),
			Options: []string{"a", "b"},
		})
		s.Require().NoError(err)
		s.now = s.now.Add(time.Second)
	}

	list, err := s.service.ListPublicPolls(s.ctx(), 500)
	s.Require().NoError(err)
	s.Len(list, maxListLimit)

	list, err = s.service.ListPublicPolls(s.ctx(), -1)
	s.Require().NoError(err)
	s.Len(list, defaultListLimit)
	s.Equal("poll0060", list[0].ID)
}

func (s *PollServiceSuite) TestAnnouncementFailureDoesNotFailVote() {
	broker := fanout.NewMemoryBroker()
	s.Require().NoError(broker.Close())
	bridge, err := fanout.NewBridge(broker, fanout.NewHub(), fanout.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)

	limiter, err := ratelimitService.New(counter.NewInMemory(s.kv))
	s.Require().NoError(err)
	svc, err := New(s.polls, s.index, limiter, bridge, WithPollTTL(testTTL), WithIDGenerator(s.sequentialID))
	s.Require().NoError(err)

	res, err := svc.CreatePoll(s.ctx(), actor(0), models.CreatePollRequest{Title: "Offline fanout", Options: []string{"a", "b"}})
	s.Require().NoError(err)
	view, err := svc.SubmitVote(s.ctx(), actor(1), models.VoteRequest{PollID: res.Poll.ID, OptionID: "o1"})
	s.Require().NoError(err)
	s.EqualValues(1, view.TotalVotes)
}

func (s *PollServiceSuite) TestNewRequiresDependencies() {
	limiter, err := ratelimitService.New(counter.NewInMemory(s.kv))
	s.Require().NoError(err)

	_, err = New(nil, s.index, limiter, s.announcer)
	s.Error(err)
	_, err = New(s.polls, nil, limiter, s.announcer)
	s.Error(err)
	_, err = New(s.polls, s.index, nil, s.announcer)
	s.Error(err)
	_, err = New(s.polls, s.index, limiter, nil)
	s.Error(err)
}

func summaryIDs(list []models.PollSummary) []string {
	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	return ids
}
