// Package metric defines the prometheus collectors shared by the dispatch
// pipeline.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "handlink"

// Metrics contains the dispatch counters. A Metrics that is never registered
// still counts; it is just not exported.
type Metrics struct {
	FramesReceived    *prometheus.CounterVec
	FramesMalformed   prometheus.Counter
	FramesUnroutable  *prometheus.CounterVec
	FramesSent        *prometheus.CounterVec
	Enqueued          *prometheus.CounterVec
	Rejected          *prometheus.CounterVec
	Resolved          *prometheus.CounterVec
	QueueDepth        *prometheus.GaugeVec
	PluginFaults      *prometheus.CounterVec
	ActionsSuppressed *prometheus.CounterVec
	ActionsDelivered  prometheus.Counter
	ActionsMalformed  prometheus.Counter
	StateTransitions  *prometheus.CounterVec
	StateInvalid      *prometheus.CounterVec
	Connected         prometheus.Gauge
}

// New creates an unregistered Metrics.
func New() *Metrics {
	return &Metrics{
		FramesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "received_total",
				Help:      "Frames decoded from the service, by action",
			},
			[]string{"action"},
		),

		FramesMalformed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "malformed_total",
				Help:      "Frames that failed to decode",
			},
		),

		FramesUnroutable: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "unroutable_total",
				Help:      "Decoded frames no receiver accepts, by action",
			},
			[]string{"action"},
		),

		FramesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "sent_total",
				Help:      "Frames written to the service, by action",
			},
			[]string{"action"},
		),

		Enqueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "receiver",
				Name:      "enqueued_total",
				Help:      "Messages queued, by receiver",
			},
			[]string{"receiver"},
		),

		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "receiver",
				Name:      "rejected_total",
				Help:      "Messages refused because the receiver does not accept their action",
			},
			[]string{"receiver", "action"},
		),

		Resolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "receiver",
				Name:      "resolved_total",
				Help:      "Drained messages, by receiver and result",
			},
			[]string{"receiver", "result"},
		),

		QueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "receiver",
				Name:      "queue_depth",
				Help:      "Messages waiting to be drained",
			},
			[]string{"receiver"},
		),

		PluginFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "plugin_faults_total",
				Help:      "Samples dropped because a plugin failed",
			},
			[]string{"plugin"},
		),

		ActionsSuppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "suppressed_total",
				Help:      "Samples suppressed by a plugin",
			},
			[]string{"plugin"},
		),

		ActionsDelivered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "delivered_total",
				Help:      "Input actions delivered to consumers",
			},
		),

		ActionsMalformed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "malformed_total",
				Help:      "Input actions dropped because their content failed to decode",
			},
		),

		StateTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "transitions_total",
				Help:      "State changes, by category and new value",
			},
			[]string{"category", "state"},
		),

		StateInvalid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "invalid_total",
				Help:      "State events dropped for carrying an unknown value, by category",
			},
			[]string{"category"},
		),

		Connected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "connection",
				Name:      "connected",
				Help:      "Transport status (0=disconnected, 1=connected)",
			},
		),
	}
}

// Collectors returns every collector in m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FramesReceived,
		m.FramesMalformed,
		m.FramesUnroutable,
		m.FramesSent,
		m.Enqueued,
		m.Rejected,
		m.Resolved,
		m.QueueDepth,
		m.PluginFaults,
		m.ActionsSuppressed,
		m.ActionsDelivered,
		m.ActionsMalformed,
		m.StateTransitions,
		m.StateInvalid,
		m.Connected,
	}
}

// Registry bundles a private prometheus registry with the dispatch metrics.
type Registry struct {
	prom    *prometheus.Registry
	Metrics *Metrics
}

// NewRegistry creates a registry holding the dispatch metrics and the Go
// runtime collectors.
func NewRegistry() *Registry {
	r := &Registry{
		prom:    prometheus.NewRegistry(),
		Metrics: New(),
	}
	r.prom.MustRegister(r.Metrics.Collectors()...)
	r.prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Prometheus returns the underlying registry, used by the /metrics handler.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.prom
}
