// control/prometheus.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus export of buffer instrumentation.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/momentics/hioload-buffer/api"
)

const namespace = "hiobuf"

// PrometheusTracker is an api.Tracker that records into a registry.
type PrometheusTracker struct {
	allocBytes prometheus.Counter
	freeBytes  prometheus.Counter
	liveBytes  prometheus.Gauge
	crcCache   *prometheus.CounterVec
	contiguous prometheus.Counter
}

// NewPrometheusTracker registers the buffer metrics with reg. A nil reg
// creates unregistered collectors.
func NewPrometheusTracker(reg prometheus.Registerer) *PrometheusTracker {
	f := promauto.With(reg)
	return &PrometheusTracker{
		allocBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocated_bytes_total",
			Help:      "Bytes allocated by raw segments.",
		}),
		freeBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freed_bytes_total",
			Help:      "Bytes released by dropped raw segments.",
		}),
		liveBytes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_bytes",
			Help:      "Bytes held by raw segments that are still referenced.",
		}),
		crcCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crc_cache_hits_total",
			Help:      "Checksums served from the per-segment cache.",
		}, []string{"kind"}),
		contiguous: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contiguous_accesses_total",
			Help:      "Requests for a contiguous view of a list.",
		}),
	}
}

func (p *PrometheusTracker) Alloc(n int) {
	p.allocBytes.Add(float64(n))
	p.liveBytes.Add(float64(n))
}

func (p *PrometheusTracker) Free(n int) {
	p.freeBytes.Add(float64(n))
	p.liveBytes.Sub(float64(n))
}

func (p *PrometheusTracker) CachedCRC()         { p.crcCache.WithLabelValues("exact").Inc() }
func (p *PrometheusTracker) CachedCRCAdjusted() { p.crcCache.WithLabelValues("adjusted").Inc() }
func (p *PrometheusTracker) ContiguousAccess()  { p.contiguous.Inc() }

var _ api.Tracker = (*PrometheusTracker)(nil)
