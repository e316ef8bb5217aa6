//go:build integration

package fanout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pollcast/internal/poll/models"
	"pollcast/pkg/testutil/containers"
)

type RedisBrokerSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisBrokerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBrokerSuite))
}

func (s *RedisBrokerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisBrokerSuite) TestPatternSubscription() {
	ctx := context.Background()
	broker := NewRedisBroker(s.redis.Client)
	sub, err := broker.Subscribe(ctx, "poll:events:*")
	s.Require().NoError(err)
	defer sub.Close()

	s.Require().NoError(broker.Publish(ctx, "poll:events:abcd1234", []byte(`{"n":1}`)))
	s.Require().NoError(broker.Publish(ctx, models.PublicListChannel, []byte(`{"n":2}`)))

	select {
	case msg := <-sub.Messages():
		s.Equal("poll:events:abcd1234", msg.Channel)
		s.Equal(`{"n":1}`, string(msg.Payload))
	case <-time.After(5 * time.Second):
		s.Fail("no message received")
	}
}

// Two bridges stand in for two server instances sharing one Redis.
func (s *RedisBrokerSuite) TestVoteReachesViewersOnOtherInstance() {
	ctx := context.Background()
	publisher, err := NewBridge(NewRedisBroker(s.redis.Client), NewHub())
	s.Require().NoError(err)
	subscriber, err := NewBridge(NewRedisBroker(s.redis.Client), NewHub())
	s.Require().NoError(err)
	defer subscriber.Close()

	viewer := &recordingViewer{}
	s.Require().NoError(subscriber.Attach(ctx, PollTarget("abcd1234"), viewer))

	p := models.NewPoll("abcd1234", "Cross instance?", models.VisibilityPublic, []string{"yes", "no"}, time.Now().UTC(), time.Hour)
	p.Options[0].Votes, p.TotalVotes = 1, 1
	publisher.AnnounceVote(ctx, p)

	s.Eventually(func() bool { return len(viewer.received()) == 1 }, 5*time.Second, 20*time.Millisecond)
	s.Contains(viewer.received()[0], `"pollId":"abcd1234"`)
}
