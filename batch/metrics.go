package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request kinds used as metric labels.
const (
	kindChat      = "chat"
	kindEmbedding = "embedding"
)

// Request outcomes used as metric labels.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metrics holds the batching collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	retries       *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec
	pacingSleeps  prometheus.Counter
	batchDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmbatch_requests_total",
			Help: "Provider requests by kind and outcome, after retries.",
		}, []string{"kind", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmbatch_retries_total",
			Help: "Retried provider attempts by kind.",
		}, []string{"kind"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmbatch_cache_hits_total",
			Help: "Inputs answered from the result cache by kind.",
		}, []string{"kind"}),
		pacingSleeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmbatch_pacing_sleeps_total",
			Help: "Sleeps taken between full chat batches.",
		}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llmbatch_batch_duration_seconds",
			Help:    "Wall time of a whole Chat or Embed call.",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
		}, []string{"kind"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.requests, m.retries, m.cacheHits, m.pacingSleeps, m.batchDuration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observeRequest(kind string, err error) {
	if m == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	m.requests.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) observeRetry(kind string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeCacheHits(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.cacheHits.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) observePacingSleep() {
	if m == nil {
		return
	}
	m.pacingSleeps.Inc()
}

func (m *Metrics) observeBatch(kind string, start time.Time) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
