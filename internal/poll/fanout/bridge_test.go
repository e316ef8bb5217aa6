package fanout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"pollcast/internal/poll/models"
	"pollcast/pkg/requestcontext"
)

// countingBroker counts Subscribe calls and can fail or stall them.
type countingBroker struct {
	*MemoryBroker
	calls    atomic.Int32
	failNext atomic.Bool
	gate     chan struct{}
}

func (b *countingBroker) Subscribe(ctx context.Context, patterns ...string) (Subscription, error) {
	b.calls.Add(1)
	if b.gate != nil {
		<-b.gate
	}
	if b.failNext.CompareAndSwap(true, false) {
		return nil, errors.New("broker unavailable")
	}
	return b.MemoryBroker.Subscribe(ctx, patterns...)
}

type BridgeSuite struct {
	suite.Suite
	broker *countingBroker
	bridge *Bridge
	ctx    context.Context
}

func TestBridgeSuite(t *testing.T) {
	suite.Run(t, new(BridgeSuite))
}

func (s *BridgeSuite) SetupTest() {
	s.broker = &countingBroker{MemoryBroker: NewMemoryBroker()}
	bridge, err := NewBridge(s.broker, NewHub())
	s.Require().NoError(err)
	s.bridge = bridge
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
}

func (s *BridgeSuite) TearDownTest() {
	s.NoError(s.bridge.Close())
}

func samplePoll() *models.Poll {
	p := models.NewPoll("live0001", "Tabs or spaces?", models.VisibilityPublic, []string{"tabs", "spaces"}, time.Now(), time.Hour)
	p.Options[0].Votes = 3
	p.Options[1].Votes = 1
	p.TotalVotes = 4
	return p
}

func (s *BridgeSuite) TestVoteUpdateReachesPollViewers() {
	viewer, other := &recordingViewer{}, &recordingViewer{}
	s.Require().NoError(s.bridge.Attach(s.ctx, PollTarget("live0001"), viewer))
	s.Require().NoError(s.bridge.Attach(s.ctx, PollTarget("elsewhere"), other))

	s.bridge.AnnounceVote(s.ctx, samplePoll())

	s.Require().Eventually(func() bool { return len(viewer.received()) == 1 }, time.Second, 5*time.Millisecond)
	var got VoteUpdate
	s.Require().NoError(json.Unmarshal([]byte(viewer.received()[0]), &got))
	s.Equal(EventVoteUpdate, got.Type)
	s.Equal("live0001", got.PollID)
	s.EqualValues(4, got.TotalVotes)
	s.Equal([]OptionTally{{ID: "o1", Votes: 3, Percent: 75}, {ID: "o2", Votes: 1, Percent: 25}}, got.Options)
	s.Empty(other.received())
}

func (s *BridgeSuite) TestListChangeReachesPublicViewers() {
	feed := &recordingViewer{}
	s.Require().NoError(s.bridge.Attach(s.ctx, PublicTarget(), feed))

	s.bridge.AnnouncePublicListChange(s.ctx, "live0001", ReasonPollCreated)

	s.Require().Eventually(func() bool { return len(feed.received()) == 1 }, time.Second, 5*time.Millisecond)
	var got PublicListChange
	s.Require().NoError(json.Unmarshal([]byte(feed.received()[0]), &got))
	s.Equal(PublicListChange{
		Type:   EventPollListChanged,
		PollID: "live0001",
		Reason: ReasonPollCreated,
		At:     time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}, got)
}

func (s *BridgeSuite) TestDetachedViewerReceivesNothing() {
	viewer, witness := &recordingViewer{}, &recordingViewer{}
	s.Require().NoError(s.bridge.Attach(s.ctx, PollTarget("live0001"), viewer))
	s.Require().NoError(s.bridge.Attach(s.ctx, PollTarget("live0001"), witness))
	s.bridge.Detach(PollTarget("live0001"), viewer)

	s.bridge.AnnounceVote(s.ctx, samplePoll())

	s.Require().Eventually(func() bool { return len(witness.received()) == 1 }, time.Second, 5*time.Millisecond)
	s.Empty(viewer.received())
}

func (s *BridgeSuite) TestInvalidPayloadsAreDropped() {
	viewer := &recordingViewer{}
	s.Require().NoError(s.bridge.Attach(s.ctx, PollTarget("live0001"), viewer))

	channel := models.PollEventsChannel("live0001")
	s.Require().NoError(s.broker.Publish(s.ctx, channel, []byte("not json")))
	s.Require().NoError(s.broker.Publish(s.ctx, channel, []byte(`{"type":"vote_update","pollId":"live0001","totalVotes":9,"options":[{"id":"o1","votes":1,"percent":100}]}`)))
	mismatched := NewVoteUpdate(samplePoll(), time.Now())
	mismatched.PollID = "someone-else"
	payload, err := json.Marshal(mismatched)
	s.Require().NoError(err)
	s.Require().NoError(s.broker.Publish(s.ctx, channel, payload))
	s.bridge.AnnounceVote(s.ctx, samplePoll())

	s.Require().Eventually(func() bool { return len(viewer.received()) == 1 }, time.Second, 5*time.Millisecond)
	var got VoteUpdate
	s.Require().NoError(json.Unmarshal([]byte(viewer.received()[0]), &got))
	s.EqualValues(4, got.TotalVotes)
}

func (s *BridgeSuite) TestSubscriptionStartsOnce() {
	s.broker.gate = make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Go(func() {
			errs <- s.bridge.EnsureStarted(s.ctx)
		})
	}
	s.Eventually(func() bool { return s.broker.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(s.broker.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	s.NoError(s.bridge.EnsureStarted(s.ctx))
	s.EqualValues(1, s.broker.calls.Load())
}

func (s *BridgeSuite) TestFailedStartIsRetried() {
	s.broker.failNext.Store(true)

	s.Error(s.bridge.EnsureStarted(s.ctx))
	s.NoError(s.bridge.EnsureStarted(s.ctx))
	s.EqualValues(2, s.broker.calls.Load())
}

func (s *BridgeSuite) TestClosedBridgeRefusesAttach() {
	s.Require().NoError(s.bridge.EnsureStarted(s.ctx))
	s.Require().NoError(s.bridge.Close())

	err := s.bridge.Attach(s.ctx, PublicTarget(), &recordingViewer{})
	s.ErrorIs(err, ErrBridgeClosed)
}

func (s *BridgeSuite) TestRestartsAfterSubscriptionEnds() {
	s.Require().NoError(s.bridge.EnsureStarted(s.ctx))
	s.Require().NoError(s.broker.Close())
	s.broker.MemoryBroker = NewMemoryBroker()

	s.Eventually(func() bool {
		running, _ := s.bridge.running()
		return !running
	}, time.Second, time.Millisecond)
	s.NoError(s.bridge.EnsureStarted(s.ctx))
	s.EqualValues(2, s.broker.calls.Load())
}

func TestVoteUpdateValidate(t *testing.T) {
	valid := NewVoteUpdate(samplePoll(), time.Now())
	require.NoError(t, valid.Validate())

	broken := valid
	broken.TotalVotes = 99
	assert.Error(t, broken.Validate())

	broken = valid
	broken.Type = EventPollListChanged
	assert.Error(t, broken.Validate())

	assert.Error(t, PublicListChange{Type: EventPollListChanged, PollID: "x", Reason: "deleted"}.Validate())
}
