// Package config defines the declarative experiment document, its loader and
// its validator.
//
// An experiment is described by a YAML document with three top-level keys:
//
//	metadata:            # free-form title/comments
//	pipeline:            # required; what to train and how
//	results:             # optional reference metrics for reproducibility
//
// Documents are loaded with koanf (file + env providers), then validated
// structurally (go-playground/validator) and against the component registry's
// declared parameter schemas before a pipeline is assembled.
package config

import (
	"fmt"
)

// Error indicates a malformed or out-of-range configuration. The run never
// starts when validation fails.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type Error struct {
	Field      string
	Constraint string
	cause      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration: field %q: %s", e.Field, e.Constraint)
}

func (e *Error) Unwrap() error { return e.cause }

// Metadata carries free-form descriptive fields; none are interpreted.
type Metadata struct {
	Title    string `koanf:"title" json:"title,omitempty"`
	Comments string `koanf:"comments" json:"comments,omitempty"`
}

// ComponentSpec names a registered component and its keyword arguments.
type ComponentSpec struct {
	Name   string         `koanf:"name" json:"name"`
	Kwargs map[string]any `koanf:"kwargs" json:"kwargs,omitempty"`
}

// TrainingSpec holds the training-loop parameters.
type TrainingSpec struct {
	NumEpochs  int `koanf:"num_epochs" json:"num_epochs" validate:"required,gt=0"`
	BatchSize  int `koanf:"batch_size" json:"batch_size" validate:"required,gt=0"`
	NumWorkers int `koanf:"num_workers" json:"num_workers,omitempty" validate:"gte=0"`
}

// PipelineSpec declares every component of a run.
type PipelineSpec struct {
	Dataset         ComponentSpec  `koanf:"dataset" json:"dataset"`
	Model           ComponentSpec  `koanf:"model" json:"model"`
	Optimizer       ComponentSpec  `koanf:"optimizer" json:"optimizer"`
	Loss            ComponentSpec  `koanf:"loss" json:"loss"`
	TrainingLoop    ComponentSpec  `koanf:"training_loop" json:"training_loop"`
	NegativeSampler ComponentSpec  `koanf:"negative_sampler" json:"negative_sampler"`
	Regularizer     *ComponentSpec `koanf:"regularizer" json:"regularizer,omitempty"`
	Stopper         *ComponentSpec `koanf:"stopper" json:"stopper,omitempty"`
	Training        TrainingSpec   `koanf:"training" json:"training"`
	Evaluation      ComponentSpec  `koanf:"evaluation" json:"evaluation"`
}

// ReferenceMetrics are previously recorded metrics kept with a configuration
// for reproducibility. They are carried through, never interpreted.
type ReferenceMetrics struct {
	HitsAtK  map[string]float64 `koanf:"hits_at_k" json:"hits_at_k,omitempty"`
	MeanRank float64            `koanf:"mean_rank" json:"mean_rank,omitempty"`
}

// ExperimentConfig is one parsed experiment document. It is immutable by
// convention: validation returns it unchanged and assembly consumes it.
type ExperimentConfig struct {
	Metadata Metadata                    `koanf:"metadata" json:"metadata"`
	Pipeline PipelineSpec                `koanf:"pipeline" json:"pipeline" validate:"required"`
	Results  map[string]ReferenceMetrics `koanf:"results" json:"results,omitempty"`
}

// applyDefaults fills the component names the document may omit.
func (c *ExperimentConfig) applyDefaults() {
	if c.Pipeline.TrainingLoop.Name == "" {
		c.Pipeline.TrainingLoop.Name = "slcwa"
	}
	if c.Pipeline.NegativeSampler.Name == "" {
		c.Pipeline.NegativeSampler.Name = "basic"
	}
	if c.Pipeline.Evaluation.Name == "" {
		c.Pipeline.Evaluation.Name = "rankbased"
	}
}
