// Package rulermetrics records game and service metrics.
package rulermetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RulerMetrics is the metrics contract used by the ruler service and handlers.
type RulerMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordPlay(ctx context.Context, outcome string, delta int)
	RecordCommand(ctx context.Context, command string)
}

const namespace = "ruler"

// PrometheusMetrics implements RulerMetrics with Prometheus collectors.
type PrometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	plays     *prometheus.CounterVec
	deltas    prometheus.Histogram
	commands  *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_success_total",
			Help:      "Service operations finished without an infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failure_total",
			Help:      "Service operations finished with an infrastructure error or panic.",
		}, []string{"operation", "service"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		plays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plays_total",
			Help:      "Play attempts by outcome.",
		}, []string{"outcome"}),
		deltas: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "play_delta",
			Help:      "Size deltas drawn by successful plays.",
			Buckets:   prometheus.LinearBuckets(-10, 2, 11),
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Chat commands received.",
		}, []string{"command"}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.successes, m.failures, m.duration, m.plays, m.deltas, m.commands} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordPlay(_ context.Context, outcome string, delta int) {
	m.plays.WithLabelValues(outcome).Inc()
	if delta != 0 {
		m.deltas.Observe(float64(delta))
	}
}

func (m *PrometheusMetrics) RecordCommand(_ context.Context, command string) {
	m.commands.WithLabelValues(command).Inc()
}

// NoOpMetrics discards every measurement.
type NoOpMetrics struct{}

// NewNoop returns a RulerMetrics that records nothing.
func NewNoop() RulerMetrics { return &NoOpMetrics{} }

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*NoOpMetrics) RecordPlay(context.Context, string, int)                                {}
func (*NoOpMetrics) RecordCommand(context.Context, string)                                  {}

var (
	_ RulerMetrics = (*PrometheusMetrics)(nil)
	_ RulerMetrics = (*NoOpMetrics)(nil)
)
