package embark

import (
	"github.com/kgelab/embark/codec"
	"github.com/kgelab/embark/registry"
	"github.com/kgelab/embark/resource"
	"github.com/kgelab/embark/results"
)

type options struct {
	registry *registry.Registry
	logger   *Logger
	metrics  MetricsCollector
	store    results.Store
	codec    codec.Codec
	ctrl     *resource.Controller
	seed     int64
	seedSet  bool
}

// Option configures a Run invocation.
type Option func(*options)

// WithRegistry sets the component registry resolved against during assembly.
// Without it, the built-in registry is used.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithLogger sets the structured logger. Nil is ignored.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector configures a collector for progress events.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c != nil {
			o.metrics = c
		}
	}
}

// WithResultStore sets the reproducibility log's backing store. Without it,
// results are recorded into a fresh in-memory store and discarded with it.
func WithResultStore(s results.Store) Option {
	return func(o *options) {
		if s != nil {
			o.store = s
		}
	}
}

// WithCodec configures the codec used for result records.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithResourceController bounds batch-scoring parallelism and results-log IO.
func WithResourceController(ctrl *resource.Controller) Option {
	return func(o *options) { o.ctrl = ctrl }
}

// WithSeed fixes the run-level random seed, making component initialization,
// sampling and shuffling reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seedSet = true
	}
}
