// Package metrics exposes Prometheus instrumentation for the isis type layer.
// It counts scalar and bulk conversions per type pair, range check outcomes
// and the lifetime of shared array buffers.
//
// # Basic Usage
//
//	// Count a scalar conversion and its range check outcome
//	metrics.RecordConversion("double", "u8bit", "in_range")
//
//	// Count converted elements of a bulk conversion and time it
//	timer := metrics.NewTimer()
//	n := convert(src, dst)
//	metrics.RecordArrayConversion("double", "u8bit", n, timer.Stop())
//
// All metrics are registered with the default registry on package load, so
// any HTTP exporter mounted with promhttp picks them up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversions counts scalar conversions.
	// Labels: from, to (canonical type names), result (in_range,
	// positive_overflow, negative_overflow, unknown_conversion)
	Conversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isis_conversions_total",
			Help: "Total number of scalar conversions by type pair and result",
		},
		[]string{"from", "to", "result"},
	)

	// ElementsConverted counts elements written by bulk array conversions.
	ElementsConverted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isis_array_elements_converted_total",
			Help: "Total number of array elements converted by type pair",
		},
		[]string{"from", "to"},
	)

	// ConversionLatency tracks bulk conversion latency in seconds.
	ConversionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "isis_array_conversion_seconds",
			Help:    "Bulk array conversion latency in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 8), // 1µs .. 10s
		},
		[]string{"from", "to"},
	)

	// BuffersLive tracks shared array allocations that have not been
	// released yet.
	BuffersLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "isis_array_buffers_live",
			Help: "Number of shared array buffers currently referenced",
		},
	)

	// SoftFailures counts failures that were logged and answered with a
	// default value instead of an error.
	SoftFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isis_soft_failures_total",
			Help: "Failures answered with a default value, by error type",
		},
		[]string{"type"},
	)
)

// RecordConversion counts one scalar conversion.
func RecordConversion(from, to, result string) {
	Conversions.WithLabelValues(from, to, result).Inc()
}

// RecordArrayConversion counts a bulk conversion of n elements.
func RecordArrayConversion(from, to string, n int, took time.Duration) {
	ElementsConverted.WithLabelValues(from, to).Add(float64(n))
	ConversionLatency.WithLabelValues(from, to).Observe(took.Seconds())
}

// RecordSoftFailure counts a failure that degraded to a default value.
func RecordSoftFailure(errType string) {
	SoftFailures.WithLabelValues(errType).Inc()
}

// Timer measures the duration of one operation.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called
// repeatedly.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
