// Package metrics exposes shotwatch counters in Prometheus format.
//
// All methods are safe on a nil *Metrics so components can be built
// without metrics in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shotwatch"

// Metrics holds the process collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	filesDetected    prometheus.Counter
	framesDelivered  prometheus.Counter
	deliveryFailures prometheus.Counter
	sweeps           *prometheus.CounterVec
}

// New registers every collector. subscribers reports the current number of
// connected clients when scraped; it may be nil.
func New(subscribers func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		filesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_detected_total",
			Help:      "Files detected in the watched folder.",
		}),
		framesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_delivered_total",
			Help:      "Frames written successfully to a subscriber.",
		}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Frame writes that failed and dropped the subscriber.",
		}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Retention deletions by outcome.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.filesDetected,
		m.framesDelivered,
		m.deliveryFailures,
		m.sweeps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if subscribers != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Currently connected streaming clients.",
		}, func() float64 {
			return float64(subscribers())
		}))
	}
	return m
}

// FileDetected counts one detected file.
func (m *Metrics) FileDetected() {
	if m == nil {
		return
	}
	m.filesDetected.Inc()
}

// FrameDelivered counts one successful frame write.
func (m *Metrics) FrameDelivered() {
	if m == nil {
		return
	}
	m.framesDelivered.Inc()
}

// DeliveryFailed counts one failed frame write.
func (m *Metrics) DeliveryFailed() {
	if m == nil {
		return
	}
	m.deliveryFailures.Inc()
}

// SweepCompleted counts one retention attempt; err nil means deleted.
func (m *Metrics) SweepCompleted(err error) {
	if m == nil {
		return
	}
	result := "deleted"
	if err != nil {
		result = "failed"
	}
	m.sweeps.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
