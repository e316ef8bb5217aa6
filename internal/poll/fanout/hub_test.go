package fanout

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollcast/internal/poll/metrics"
)

type recordingViewer struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
}

func (v *recordingViewer) Send(payload []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.fail {
		return errors.New("connection gone")
	}
	v.payloads = append(v.payloads, payload)
	return nil
}

func (v *recordingViewer) received() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.payloads))
	for i, p := range v.payloads {
		out[i] = string(p)
	}
	return out
}

func TestHubAttachDeliverDetach(t *testing.T) {
	hub := NewHub()
	a, b, feed := &recordingViewer{}, &recordingViewer{}, &recordingViewer{}

	require.NoError(t, hub.Attach(PollTarget("p1"), a))
	require.NoError(t, hub.Attach(PollTarget("p2"), b))
	require.NoError(t, hub.Attach(PublicTarget(), feed))

	hub.DeliverPoll("p1", []byte("one"))
	hub.DeliverPublic([]byte("list"))

	assert.Equal(t, []string{"one"}, a.received())
	assert.Empty(t, b.received())
	assert.Equal(t, []string{"list"}, feed.received())

	hub.Detach(PollTarget("p1"), a)
	hub.DeliverPoll("p1", []byte("two"))
	assert.Equal(t, []string{"one"}, a.received())
	assert.Equal(t, 0, hub.Count(PollTarget("p1")))
	assert.Equal(t, 1, hub.WatchedPolls(), "empty poll sets are pruned")
}

func TestHubRejectsInvalidTargets(t *testing.T) {
	hub := NewHub()
	assert.ErrorIs(t, hub.Attach(Target{Mode: ModePoll}, &recordingViewer{}), ErrInvalidTarget)
	assert.ErrorIs(t, hub.Attach(Target{Mode: "other"}, &recordingViewer{}), ErrInvalidTarget)
	assert.ErrorIs(t, hub.Attach(PublicTarget(), nil), ErrInvalidTarget)
}

func TestHubEvictsFailedViewers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	hub := NewHub(WithHubMetrics(m))
	healthy, broken := &recordingViewer{}, &recordingViewer{fail: true}

	require.NoError(t, hub.Attach(PollTarget("p1"), healthy))
	require.NoError(t, hub.Attach(PollTarget("p1"), broken))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConnectedViewers.WithLabelValues("poll")))

	hub.DeliverPoll("p1", []byte("update"))

	assert.Equal(t, []string{"update"}, healthy.received())
	assert.Equal(t, 1, hub.Count(PollTarget("p1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvictedViewers.WithLabelValues("poll")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectedViewers.WithLabelValues("poll")))

	broken.fail = false
	hub.DeliverPoll("p1", []byte("again"))
	assert.Empty(t, broken.received(), "evicted viewers get nothing further")
}

func TestHubConcurrentAttachDeliver(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	viewers := make([]*recordingViewer, 50)
	for i := range viewers {
		viewers[i] = &recordingViewer{}
	}
	for _, v := range viewers {
		wg.Go(func() {
			_ = hub.Attach(PollTarget("busy"), v)
			hub.DeliverPoll("busy", []byte("x"))
			hub.Detach(PollTarget("busy"), v)
		})
	}
	wg.Wait()
	assert.Equal(t, 0, hub.WatchedPolls())
}
