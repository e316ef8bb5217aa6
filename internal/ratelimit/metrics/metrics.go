package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Checks     *prometheus.CounterVec
	Rejections *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pollcast_ratelimit_checks_total",
			Help: "Total number of rate limit checks by policy",
		}, []string{"policy"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pollcast_ratelimit_rejections_total",
			Help: "Total number of attempts rejected by a rate limit policy",
		}, []string{"policy"}),
	}
}

func (m *Metrics) RecordCheck(policy string, allowed bool) {
	m.Checks.WithLabelValues(policy).Inc()
	if !allowed {
		m.Rejections.WithLabelValues(policy).Inc()
	}
}
