// Package observability exposes Prometheus metrics for the sync core: cache
// effectiveness per domain and remote call volume/latency.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the client. Each Collector owns
// its registry; nothing is auto-registered globally, so tests can construct
// a fresh one per test.
type Collector struct {
	registry *prometheus.Registry

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	RemoteRequests *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec
}

// NewCollector creates a collector under the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	cacheHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Fresh cache hits per data domain",
		},
		[]string{"domain"},
	)
	cacheMisses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses (absent or stale) per data domain",
		},
		[]string{"domain"},
	)
	remoteRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Remote API requests by method and outcome",
		},
		[]string{"method", "path", "outcome"},
	)
	remoteDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Remote API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(cacheHits, cacheMisses, remoteRequests, remoteDuration)

	return &Collector{
		registry:       registry,
		CacheHits:      cacheHits,
		CacheMisses:    cacheMisses,
		RemoteRequests: remoteRequests,
		RemoteDuration: remoteDuration,
	}
}

// Registry returns the collector's registry for scraping.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveRemote records one remote call.
func (c *Collector) ObserveRemote(method, path, outcome string, elapsed time.Duration) {
	c.RemoteRequests.WithLabelValues(method, path, outcome).Inc()
	c.RemoteDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// DomainRecorder adapts the collector to the cache.Recorder interface for
// one data domain.
type DomainRecorder struct {
	hits   prometheus.Counter
	misses prometheus.Counter
}

// Recorder returns a hit/miss recorder labelled with the given domain.
func (c *Collector) Recorder(domain string) *DomainRecorder {
	return &DomainRecorder{
		hits:   c.CacheHits.WithLabelValues(domain),
		misses: c.CacheMisses.WithLabelValues(domain),
	}
}

func (r *DomainRecorder) CacheHit()  { r.hits.Inc() }
func (r *DomainRecorder) CacheMiss() { r.misses.Inc() }
