package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-fabric/internal/protocol/flood"
	"github.com/dep2p/go-fabric/internal/protocol/forwarding"
	"github.com/dep2p/go-fabric/internal/routing"
)

const namespace = "fabric"

var (
	_ forwarding.Recorder = (*Collector)(nil)
	_ flood.Recorder      = (*Collector)(nil)
	_ routing.Recorder    = (*Collector)(nil)
)

// Collector Prometheus 指标集合
type Collector struct {
	dispatched *prometheus.CounterVec
	failed     *prometheus.CounterVec
	queueDepth prometheus.Gauge

	duplicates   prometheus.Counter
	evicted      prometheus.Counter
	cacheEntries prometheus.Gauge

	paths          *prometheus.CounterVec
	decodeFailures prometheus.Counter
}

// NewCollector 创建并注册指标，reg 为 nil 时只创建不注册
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forwarding",
			Name:      "dispatched_total",
			Help:      "Outbound messages dispatched successfully",
		}, []string{"action"}),

		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forwarding",
			Name:      "failed_total",
			Help:      "Outbound messages dropped after a failed dispatch",
		}, []string{"action"}),

		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "forwarding",
			Name:      "queue_depth",
			Help:      "Current outbound queue length",
		}),

		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flood",
			Name:      "duplicates_total",
			Help:      "Flooded messages suppressed as duplicates",
		}),

		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flood",
			Name:      "evicted_total",
			Help:      "Dedup cache entries removed by the expiry sweep",
		}),

		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "flood",
			Name:      "cache_entries",
			Help:      "Dedup cache entries after the last sweep",
		}),

		paths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "paths_total",
			Help:      "Shortest path lookups by result",
		}, []string{"result"}),

		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "decode_failures_total",
			Help:      "Routing states that could not be reconstructed from the wire",
		}),
	}

	if reg == nil {
		return c, nil
	}
	for _, col := range c.collectors() {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.dispatched, c.failed, c.queueDepth,
		c.duplicates, c.evicted, c.cacheEntries,
		c.paths, c.decodeFailures,
	}
}

// ============================================================================
//                              forwarding.Recorder
// ============================================================================

// Dispatched 实现 forwarding.Recorder
func (c *Collector) Dispatched(action string) { c.dispatched.WithLabelValues(action).Inc() }

// Failed 实现 forwarding.Recorder
func (c *Collector) Failed(action string) { c.failed.WithLabelValues(action).Inc() }

// QueueDepth 实现 forwarding.Recorder
func (c *Collector) QueueDepth(n int) { c.queueDepth.Set(float64(n)) }

// ============================================================================
//                              flood.Recorder
// ============================================================================

// Duplicate 实现 flood.Recorder
func (c *Collector) Duplicate() { c.duplicates.Inc() }

// Evicted 实现 flood.Recorder
func (c *Collector) Evicted(n int) {
	if n > 0 {
		c.evicted.Add(float64(n))
	}
}

// Size 实现 flood.Recorder
func (c *Collector) Size(n int) { c.cacheEntries.Set(float64(n)) }

// ============================================================================
//                              routing.Recorder
// ============================================================================

// PathComputed 实现 routing.Recorder
func (c *Collector) PathComputed(result string) { c.paths.WithLabelValues(result).Inc() }

// DecodeFailed 实现 routing.Recorder
func (c *Collector) DecodeFailed() { c.decodeFailures.Inc() }
