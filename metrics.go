package pubcorpus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "pubcorpus"

// Reload outcomes used as the "result" label.
const (
	reloadOK       = "ok"
	reloadRejected = "rejected"
	reloadFailed   = "error"
)

type metrics struct {
	posts          prometheus.Gauge
	problems       prometheus.Gauge
	warnings       prometheus.Gauge
	staleDates     prometheus.Gauge
	reloads        *prometheus.CounterVec
	reloadDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		posts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "posts",
			Help:      "Number of posts in the served corpus",
		}),
		problems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "problems",
			Help:      "Number of problems reported by the last accepted load",
		}),
		warnings: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "warnings",
			Help:      "Number of warnings reported by the last accepted load",
		}),
		staleDates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "stale_dates",
			Help:      "Posts whose body changed without a lastUpdatedDate bump in the last sync",
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reloads_total",
			Help:      "Total number of corpus reloads",
		}, []string{"result"}),
		reloadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "reload_duration_seconds",
			Help:      "Duration of corpus reloads in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *metrics) recordReload(result string, took time.Duration) {
	m.reloads.WithLabelValues(result).Inc()
	m.reloadDuration.Observe(took.Seconds())
}

func (m *metrics) recordSnapshot(s *Snapshot) {
	m.posts.Set(float64(s.Corpus.Len()))
	m.problems.Set(float64(len(s.Corpus.Problems)))
	m.warnings.Set(float64(len(s.Corpus.Warnings)))
	m.staleDates.Set(float64(len(s.Sync.Stale)))
}
