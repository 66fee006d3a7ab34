package tenanttx

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCommitted     = "committed"
	outcomeRolledBack    = "rolled_back"
	outcomeCommitFailed  = "commit_failed"
	outcomeBeginFailed   = "begin_failed"
	outcomePoolExhausted = "pool_exhausted"
)

type metrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var getMetrics = sync.OnceValue(func() *metrics {
	return &metrics{
		outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldops",
			Subsystem: "tenant_tx",
			Name:      "outcomes_total",
			Help:      "Terminal outcomes of tenant transactions.",
		}, []string{"outcome"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fieldops",
			Subsystem: "tenant_tx",
			Name:      "duration_seconds",
			Help:      "Time from connection acquire to the terminal action of a tenant transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
})

func (m *metrics) record(outcome string, start time.Time) {
	m.outcomes.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
