package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics is the Prometheus implementation of cache.Metrics.
type CacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
}

// NewCacheMetrics creates collectors for one named cache, e.g. "response".
// Returns nil when metrics are disabled; a nil receiver is a no-op.
func NewCacheMetrics(name string) *CacheMetrics {
	if !IsEnabled() {
		return nil
	}
	reg := GetRegistry()
	labels := prometheus.Labels{"cache": name}

	return &CacheMetrics{
		hits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "lexicon_cache_hits_total",
			Help:        "Total cache lookups that returned a live entry",
			ConstLabels: labels,
		}),
		misses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "lexicon_cache_misses_total",
			Help:        "Total cache lookups that missed or hit an expired entry",
			ConstLabels: labels,
		}),
		evictions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "lexicon_cache_evictions_total",
			Help:        "Total entries evicted to make room at capacity",
			ConstLabels: labels,
		}),
		size: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "lexicon_cache_entries",
			Help:        "Current number of live cache entries",
			ConstLabels: labels,
		}),
	}
}

func (m *CacheMetrics) RecordHit() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

func (m *CacheMetrics) RecordMiss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

func (m *CacheMetrics) RecordEviction() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *CacheMetrics) RecordSize(n int) {
	if m == nil {
		return
	}
	m.size.Set(float64(n))
}
