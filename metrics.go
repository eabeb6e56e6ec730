package embark

import (
	"sync/atomic"
	"time"

	"github.com/kgelab/embark/pipeline"
)

// MetricsCollector receives training progress events.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector = pipeline.MetricsCollector

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector = pipeline.NoopMetricsCollector

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EpochCount      atomic.Int64
	EpochTotalNanos atomic.Int64
	BatchCount      atomic.Int64
	BatchErrors     atomic.Int64
	BatchItems      atomic.Int64
	EvalCount       atomic.Int64
	EvalErrors      atomic.Int64
	EvalTotalNanos  atomic.Int64
}

// RecordEpoch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEpoch(_ int, _ float64, duration time.Duration) {
	b.EpochCount.Add(1)
	b.EpochTotalNanos.Add(duration.Nanoseconds())
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(size int, _ time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(size))
	if err != nil {
		b.BatchErrors.Add(1)
	}
}

// RecordEvaluation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluation(_ string, duration time.Duration, err error) {
	b.EvalCount.Add(1)
	b.EvalTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EvalErrors.Add(1)
	}
}
