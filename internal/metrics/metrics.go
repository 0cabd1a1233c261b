// Package metrics exposes Prometheus metrics for the detection
// pipeline. All metrics are registered on a custom registry so the
// /metrics endpoint serves only what the process itself reports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "mudra"
	subsystem = "pipeline"
)

// Manager holds all Prometheus metrics for the process.
type Manager struct {
	registry prometheus.Registerer

	framesProcessed prometheus.Counter
	framesDiscarded prometheus.Counter
	handPresent     prometheus.Gauge
	captureFPS      prometheus.Gauge
	tickLatency     prometheus.Histogram
	gestureEvents   *prometheus.CounterVec
	triggerRuns     *prometheus.CounterVec
	triggerErrors   *prometheus.CounterVec
	trackerRestarts prometheus.Counter
	wsClients       prometheus.Gauge
}

var globalManager *Manager

var customRegistry = prometheus.NewRegistry()

func init() {
	globalManager = NewManager(customRegistry)
}

// NewManager creates a manager registering on the given registry.
func NewManager(reg prometheus.Registerer) *Manager {
	auto := promauto.With(reg)
	m := &Manager{registry: reg}

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_processed_total",
		Help:      "Total number of camera frames run through the detection session",
	})

	m.framesDiscarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_discarded_total",
		Help:      "Total number of frames with degenerate or missing landmark geometry",
	})

	m.handPresent = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "hand_present",
		Help:      "Whether a hand is currently tracked (1) or not (0)",
	})

	m.captureFPS = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "capture_fps",
		Help:      "Current capture rate in frames per second",
	})

	m.tickLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "tick_latency_milliseconds",
		Help:      "Latency of one full tick: capture, tracking, and recognition",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	m.gestureEvents = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gesture_events_total",
			Help:      "Total number of emitted gesture events by kind",
		},
		[]string{"kind"},
	)

	m.triggerRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "trigger_runs_total",
			Help:      "Total number of trigger executions by trigger name",
		},
		[]string{"trigger"},
	)

	m.triggerErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "trigger_errors_total",
			Help:      "Total number of failed trigger executions by trigger name",
		},
		[]string{"trigger"},
	)

	m.trackerRestarts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "tracker_restarts_total",
		Help:      "Total number of hand tracker subprocess restarts",
	})

	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "websocket_clients",
		Help:      "Number of connected event stream clients",
	})

	return m
}

// RecordFrameProcessed increments the processed frame counter.
func RecordFrameProcessed() {
	globalManager.framesProcessed.Inc()
}

// RecordFrameDiscarded increments the degenerate frame counter.
func RecordFrameDiscarded() {
	globalManager.framesDiscarded.Inc()
}

// SetHandPresent reports whether a hand is currently tracked.
func SetHandPresent(present bool) {
	if present {
		globalManager.handPresent.Set(1)
	} else {
		globalManager.handPresent.Set(0)
	}
}

// SetCaptureFPS reports the current capture rate.
func SetCaptureFPS(fps float64) {
	globalManager.captureFPS.Set(fps)
}

// RecordTickLatency records one tick's latency in milliseconds.
func RecordTickLatency(ms float64) {
	globalManager.tickLatency.Observe(ms)
}

// RecordGestureEvent increments the event counter for a gesture kind.
func RecordGestureEvent(kind string) {
	globalManager.gestureEvents.WithLabelValues(kind).Inc()
}

// RecordTriggerRun increments the execution counter for a trigger.
func RecordTriggerRun(trigger string) {
	globalManager.triggerRuns.WithLabelValues(trigger).Inc()
}

// RecordTriggerError increments the failure counter for a trigger.
func RecordTriggerError(trigger string) {
	globalManager.triggerErrors.WithLabelValues(trigger).Inc()
}

// RecordTrackerRestart increments the tracker restart counter.
func RecordTrackerRestart() {
	globalManager.trackerRestarts.Inc()
}

// SetWSClients reports the number of connected event stream clients.
func SetWSClients(n int) {
	globalManager.wsClients.Set(float64(n))
}

// Registry returns the registry served by the /metrics endpoint.
func Registry() *prometheus.Registry {
	return customRegistry
}
