package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the poll core and its live fanout. A nil *Metrics records
// nothing, so components can run without a registry in tests.
type Metrics struct {
	PollsCreated      prometheus.Counter
	VotesCounted      prometheus.Counter
	VoteRejections    *prometheus.CounterVec
	VoteDuration      prometheus.Histogram
	Deliveries        *prometheus.CounterVec
	EvictedViewers    *prometheus.CounterVec
	ConnectedViewers  *prometheus.GaugeVec
	PublishFailures   *prometheus.CounterVec
	DroppedEvents     *prometheus.CounterVec
	IndexPrunedTotal  prometheus.Counter
	SubscriptionStart *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PollsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pollcast_polls_created_total",
			Help: "Total number of polls created",
		}),
		VotesCounted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pollcast_votes_counted_total",
			Help: "Total number of votes accepted by the vote transaction",
		}),
		VoteRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pollcast_vote_rejections_total",
			Help: "Total number of rejected votes by error code",
		}, []string{"code"}),
		VoteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pollcast_vote_transaction_duration_ms",
			Help:    "Latency of the vote transaction in milliseconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pollcast_fanout_deliveries_total",
			Help: "Total number of payloads delivered to viewers by mode",
		}, []string{"mode"}),
		EvictedViewers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pollcast_fanout_evicted_viewers_total",
			Help: "Total number of viewers removed after a failed send",
		}, []string{"mode"}),
		ConnectedViewers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pollcast_fanout_connected_viewers",
			Help: "Number of attached viewers by mode",
		}, []string{"mode"}),
		PublishFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pollcast_fanout_publish_failures_total",
			Help: "Total number of announcements that could not be published",
		}, []string{"event"}),
		DroppedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pollcast_fanout_dropped_events_total",
			Help: "Total number of inbound payloads dropped by reason",
		}, []string{"reason"}),
		IndexPrunedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pollcast_public_index_pruned_total",
			Help: "Total number of stale public index entries removed",
		}),
		SubscriptionStart: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pollcast_fanout_subscription_starts_total",
			Help: "Total number of subscription start attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncPollsCreated() {
	if m == nil {
		return
	}
	m.PollsCreated.Inc()
}

func (m *Metrics) IncVotesCounted() {
	if m == nil {
		return
	}
	m.VotesCounted.Inc()
}

func (m *Metrics) IncVoteRejection(code string) {
	if m == nil {
		return
	}
	m.VoteRejections.WithLabelValues(code).Inc()
}

func (m *Metrics) ObserveVoteDuration(start time.Time) {
	if m == nil {
		return
	}
	m.VoteDuration.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

func (m *Metrics) AddDeliveries(mode string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Deliveries.WithLabelValues(mode).Add(float64(n))
}

func (m *Metrics) IncEvicted(mode string) {
	if m == nil {
		return
	}
	m.EvictedViewers.WithLabelValues(mode).Inc()
}

func (m *Metrics) SetViewers(mode string, n int) {
	if m == nil {
		return
	}
	m.ConnectedViewers.WithLabelValues(mode).Set(float64(n))
}

func (m *Metrics) IncPublishFailure(event string) {
	if m == nil {
		return
	}
	m.PublishFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) IncDropped(reason string) {
	if m == nil {
		return
	}
	m.DroppedEvents.WithLabelValues(reason).Inc()
}

func (m *Metrics) AddIndexPruned(n int) {
	if m == nil || n == 0 {
		return
	}
	m.IndexPrunedTotal.Add(float64(n))
}

func (m *Metrics) IncSubscriptionStart(outcome string) {
	if m == nil {
		return
	}
	m.SubscriptionStart.WithLabelValues(outcome).Inc()
}
