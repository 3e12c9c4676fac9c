// Package metrics provides Prometheus metric collection and exposition.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the service layer records against.
type Recorder interface {
	RecordCacheHit(family string)
	RecordCacheMiss(family string)
	RecordLockAcquired()
	RecordLockContended()
	RecordBorrow()
	RecordReturn()
	RecordBorrowLatency(duration time.Duration)
}

// Collector implements Recorder over a Prometheus registry.
type Collector struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	lockAcquired  prometheus.Counter
	lockContended prometheus.Counter
	borrows       prometheus.Counter
	returns       prometheus.Counter
	borrowLatency prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookhaven_cache_hits_total",
			Help: "Read-model cache hits by key family",
		}, []string{"family"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookhaven_cache_misses_total",
			Help: "Read-model cache misses by key family",
		}, []string{"family"}),
		lockAcquired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookhaven_lock_acquired_total",
			Help: "Borrow locks granted",
		}),
		lockContended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookhaven_lock_contended_total",
			Help: "Borrow lock attempts rejected because the lock was held",
		}),
		borrows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookhaven_borrows_total",
			Help: "Books successfully borrowed",
		}),
		returns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookhaven_returns_total",
			Help: "Books successfully returned",
		}),
		borrowLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookhaven_borrow_latency_seconds",
			Help:    "Latency of borrow and return transitions in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.cacheHits,
		c.cacheMisses,
		c.lockAcquired,
		c.lockContended,
		c.borrows,
		c.returns,
		c.borrowLatency,
	)

	return c
}

// RecordCacheHit counts one cache hit for a key family ("books", "authors").
func (c *Collector) RecordCacheHit(family string) {
	c.cacheHits.WithLabelValues(family).Inc()
}

// RecordCacheMiss counts one cache miss for a key family.
func (c *Collector) RecordCacheMiss(family string) {
	c.cacheMisses.WithLabelValues(family).Inc()
}

// RecordLockAcquired counts one granted borrow lock.
func (c *Collector) RecordLockAcquired() {
	c.lockAcquired.Inc()
}

// RecordLockContended counts one borrow lock attempt lost to contention.
func (c *Collector) RecordLockContended() {
	c.lockContended.Inc()
}

// RecordBorrow counts one completed borrow.
func (c *Collector) RecordBorrow() {
	c.borrows.Inc()
}

// RecordReturn counts one completed return.
func (c *Collector) RecordReturn() {
	c.returns.Inc()
}

// RecordBorrowLatency observes how long a borrow or return transition took.
func (c *Collector) RecordBorrowLatency(duration time.Duration) {
	c.borrowLatency.Observe(duration.Seconds())
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop is a Recorder that discards everything. Used in tests.
type Noop struct{}

// RecordCacheHit is a no-op.
func (Noop) RecordCacheHit(string) {}

// RecordCacheMiss is a no-op.
func (Noop) RecordCacheMiss(string) {}

// RecordLockAcquired is a no-op.
func (Noop) RecordLockAcquired() {}

// RecordLockContended is a no-op.
func (Noop) RecordLockContended() {}

// RecordBorrow is a no-op.
func (Noop) RecordBorrow() {}

// RecordReturn is a no-op.
func (Noop) RecordReturn() {}

// RecordBorrowLatency is a no-op.
func (Noop) RecordBorrowLatency(time.Duration) {}
