// Package pipeline assembles validated experiment configurations into live
// component graphs and drives them through training and evaluation.
package pipeline

import (
	"fmt"

	"github.com/kgelab/embark/config"
	"github.com/kgelab/embark/dataset"
	"github.com/kgelab/embark/evaluation"
	"github.com/kgelab/embark/loss"
	"github.com/kgelab/embark/model"
	"github.com/kgelab/embark/optimizer"
	"github.com/kgelab/embark/registry"
	"github.com/kgelab/embark/regularizer"
	"github.com/kgelab/embark/sampling"
	"github.com/kgelab/embark/stopper"
)

// AssemblyError indicates an unsatisfiable dependency between components.
// It is surfaced before any training starts.
//
// The underlying error can be accessed via errors.Unwrap.
type AssemblyError struct {
	Component string
	cause     error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembling %s: %v", e.Component, e.cause)
}

func (e *AssemblyError) Unwrap() error { return e.cause }

// Pipeline is the instantiated object graph of one run. The assembler owns
// it until a Runner takes over; components are not shared between pipelines.
type Pipeline struct {
	Config      *config.ExperimentConfig
	Dataset     dataset.Dataset
	Model       model.Model
	Loss        loss.Loss
	Optimizer   optimizer.Optimizer
	Sampler     sampling.NegativeSampler
	Regularizer regularizer.Regularizer
	Evaluator   *evaluation.RankBased
	Stopper     stopper.Stopper // nil when not configured
}

// Assembler resolves component specs against a registry.
type Assembler struct {
	reg  *registry.Registry
	seed int64
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithSeed sets the run-level random seed handed to component factories.
func WithSeed(seed int64) AssemblerOption {
	return func(a *Assembler) { a.seed = seed }
}

// NewAssembler creates an assembler over the given registry. The registry is
// consulted only during Assemble; later registrations do not affect
// pipelines that were already assembled.
func NewAssembler(reg *registry.Registry, opts ...AssemblerOption) *Assembler {
	a := &Assembler{reg: reg}
	for _, fn := range opts {
		fn(a)
	}
	return a
}

// Assemble instantiates the configured components in dependency order:
// dataset first, then the model over its vocabulary, then loss, regularizer,
// optimizer, negative sampler, training loop and evaluator. All runtime
// state (embeddings, optimizer moments) is allocated here; no training step
// is performed.
//
// The configuration must already be validated; Assemble reports wiring
// failures as *AssemblyError.
func (a *Assembler) Assemble(cfg *config.ExperimentConfig) (*Pipeline, error) {
	if cfg == nil {
		return nil, &AssemblyError{Component: "pipeline", cause: fmt.Errorf("configuration is nil")}
	}

	p := &Pipeline{Config: cfg}
	bc := registry.BuildContext{Seed: a.seed}

	ds, err := resolve[dataset.Dataset](a.reg, registry.CategoryDataset, &cfg.Pipeline.Dataset, bc)
	if err != nil {
		return nil, err
	}
	p.Dataset = ds
	bc.Dataset = ds

	if len(ds.Triples(dataset.SplitTrain)) == 0 {
		return nil, &AssemblyError{
			Component: "dataset/" + cfg.Pipeline.Dataset.Name,
			cause:     fmt.Errorf("dataset has no training triples"),
		}
	}

	m, err := resolve[model.Model](a.reg, registry.CategoryModel, &cfg.Pipeline.Model, bc)
	if err != nil {
		return nil, err
	}
	p.Model = m
	bc.Model = m

	if p.Loss, err = resolve[loss.Loss](a.reg, registry.CategoryLoss, &cfg.Pipeline.Loss, bc); err != nil {
		return nil, err
	}

	if cfg.Pipeline.Regularizer != nil {
		if p.Regularizer, err = resolve[regularizer.Regularizer](a.reg, registry.CategoryRegularizer, cfg.Pipeline.Regularizer, bc); err != nil {
			return nil, err
		}
	} else {
		p.Regularizer = regularizer.NewNone()
	}

	if p.Optimizer, err = resolve[optimizer.Optimizer](a.reg, registry.CategoryOptimizer, &cfg.Pipeline.Optimizer, bc); err != nil {
		return nil, err
	}

	if p.Sampler, err = resolve[sampling.NegativeSampler](a.reg, registry.CategoryNegativeSampler, &cfg.Pipeline.NegativeSampler, bc); err != nil {
		return nil, err
	}

	// The training loop id resolves to a marker only; the Runner realizes it.
	if _, err = resolve[string](a.reg, registry.CategoryTrainingLoop, &cfg.Pipeline.TrainingLoop, bc); err != nil {
		return nil, err
	}

	if p.Evaluator, err = resolve[*evaluation.RankBased](a.reg, registry.CategoryEvaluator, &cfg.Pipeline.Evaluation, bc); err != nil {
		return nil, err
	}

	if cfg.Pipeline.Stopper != nil {
		if p.Stopper, err = resolve[stopper.Stopper](a.reg, registry.CategoryStopper, cfg.Pipeline.Stopper, bc); err != nil {
			return nil, err
		}
		if len(ds.Triples(dataset.SplitValidation)) == 0 {
			return nil, &AssemblyError{
				Component: "stopper/" + cfg.Pipeline.Stopper.Name,
				cause:     fmt.Errorf("early stopping requires a validation split"),
			}
		}
	}

	return p, nil
}

// resolve looks up a component, runs its factory and asserts the result into
// the category's interface.
func resolve[T any](reg *registry.Registry, cat registry.Category, spec *config.ComponentSpec, bc registry.BuildContext) (T, error) {
	var zero T

	entry, err := reg.Lookup(cat, spec.Name)
	if err != nil {
		return zero, &AssemblyError{Component: string(cat) + "/" + spec.Name, cause: err}
	}

	// Declared schema defaults are the single source for absent kwargs.
	v, err := entry.New(bc, entry.Schema.WithDefaults(registry.Params(spec.Kwargs)))
	if err != nil {
		return zero, &AssemblyError{Component: string(cat) + "/" + spec.Name, cause: err}
	}

	typed, ok := v.(T)
	if !ok {
		return zero, &AssemblyError{
			Component: string(cat) + "/" + spec.Name,
			cause:     fmt.Errorf("factory produced %T, which does not satisfy the %s contract", v, cat),
		}
	}
	return typed, nil
}
