package embark

import (
	"context"
	"time"

	"github.com/kgelab/embark/config"
	"github.com/kgelab/embark/pipeline"
	"github.com/kgelab/embark/registry"
	"github.com/kgelab/embark/results"
)

// Run validates the configuration, assembles the pipeline, executes it and
// records the outcome: the full lifecycle of one experiment.
//
// Validation and assembly errors abort before any training; training
// failures and cancellation still flush a partial record into the configured
// result store.
func Run(ctx context.Context, cfg *config.ExperimentConfig, optFns ...Option) (*results.RunResult, error) {
	o := applyOptions(optFns)

	if _, err := config.Validate(cfg, o.registry); err != nil {
		return nil, err
	}

	asm := pipeline.NewAssembler(o.registry, pipeline.WithSeed(o.seed))
	p, err := asm.Assemble(cfg)
	if err != nil {
		return nil, err
	}

	recorder := results.NewRecorder(o.store,
		results.WithCodec(o.codec),
		results.WithResourceController(o.ctrl),
	)

	runner := pipeline.NewRunner(p,
		pipeline.WithLogger(o.logger.Logger),
		pipeline.WithMetricsCollector(o.metrics),
		pipeline.WithResourceController(o.ctrl),
		pipeline.WithRecorder(recorder),
		pipeline.WithShuffleSeed(o.seed),
	)
	return runner.Run(ctx)
}

// RunDocument parses a raw YAML experiment document and runs it.
func RunDocument(ctx context.Context, doc []byte, optFns ...Option) (*results.RunResult, error) {
	cfg, err := config.Parse(doc)
	if err != nil {
		return nil, err
	}
	return Run(ctx, cfg, optFns...)
}

// RunFile loads an experiment document from a YAML file and runs it.
func RunFile(ctx context.Context, path string, optFns ...Option) (*results.RunResult, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return Run(ctx, cfg, optFns...)
}

func applyOptions(optFns []Option) options {
	o := options{
		registry: registry.Builtin(),
		logger:   NoopLogger(),
		metrics:  NoopMetricsCollector{},
		codec:    nil, // recorder falls back to codec.Default
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.store == nil {
		o.store = results.NewMemoryStore()
	}
	if !o.seedSet {
		o.seed = time.Now().UnixNano()
	}
	return o
}
