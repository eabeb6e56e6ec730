package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgelab/embark/registry"
)

func validConfig() *ExperimentConfig {
	return &ExperimentConfig{
		Pipeline: PipelineSpec{
			Dataset: ComponentSpec{Name: "synthetic"},
			Model: ComponentSpec{Name: "TransE", Kwargs: map[string]any{
				"embedding_dim":    50,
				"scoring_fct_norm": 1,
			}},
			Optimizer:       ComponentSpec{Name: "SGD", Kwargs: map[string]any{"lr": 0.01}},
			Loss:            ComponentSpec{Name: "MarginRankingLoss", Kwargs: map[string]any{"margin": 1.0}},
			TrainingLoop:    ComponentSpec{Name: "slcwa"},
			NegativeSampler: ComponentSpec{Name: "basic"},
			Training:        TrainingSpec{NumEpochs: 1, BatchSize: 32},
			Evaluation:      ComponentSpec{Name: "rankbased"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	out, err := Validate(cfg, registry.Builtin())
	require.NoError(t, err)
	assert.Same(t, cfg, out, "validation returns the config unchanged")
}

func TestValidate_NilInputs(t *testing.T) {
	_, err := Validate(nil, registry.Builtin())
	assert.Error(t, err)

	_, err = Validate(validConfig(), nil)
	assert.Error(t, err)
}

func TestValidate_StructuralConstraints(t *testing.T) {
	t.Run("zero batch size", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pipeline.Training.BatchSize = 0

		_, err := Validate(cfg, registry.Builtin())
		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "pipeline.training.batch_size", cerr.Field)
	})

	t.Run("negative epochs", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pipeline.Training.NumEpochs = -1

		_, err := Validate(cfg, registry.Builtin())
		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "pipeline.training.num_epochs", cerr.Field)
	})

	t.Run("negative workers", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pipeline.Training.NumWorkers = -2

		_, err := Validate(cfg, registry.Builtin())
		var cerr *Error
		assert.True(t, errors.As(err, &cerr))
	})
}

func TestValidate_UnknownComponent(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Model.Name = "ComplEx"

	_, err := Validate(cfg, registry.Builtin())
	var unknown *registry.UnknownComponentError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, registry.CategoryModel, unknown.Category)
	assert.Equal(t, "ComplEx", unknown.Name)
}

func TestValidate_KwargsAgainstSchema(t *testing.T) {
	t.Run("missing required kwarg", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pipeline.Model.Kwargs = map[string]any{"scoring_fct_norm": 1}

		_, err := Validate(cfg, registry.Builtin())
		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "pipeline.model.kwargs", cerr.Field)
		assert.Contains(t, cerr.Error(), "embedding_dim")
	})

	t.Run("unknown kwarg", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pipeline.Optimizer.Kwargs = map[string]any{"lr": 0.01, "warmup": 10}

		_, err := Validate(cfg, registry.Builtin())
		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.Contains(t, cerr.Error(), "warmup")
	})

	t.Run("non-positive kwarg", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pipeline.Optimizer.Kwargs = map[string]any{"lr": -0.01}

		_, err := Validate(cfg, registry.Builtin())
		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.Contains(t, cerr.Error(), "lr")
	})
}

func TestValidate_OptionalComponents(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Regularizer = &ComponentSpec{Name: "lp", Kwargs: map[string]any{"weight": 0.1}}
	cfg.Pipeline.Stopper = &ComponentSpec{Name: "early", Kwargs: map[string]any{"patience": 3}}

	_, err := Validate(cfg, registry.Builtin())
	require.NoError(t, err)

	cfg.Pipeline.Stopper = &ComponentSpec{Name: "plateau"}
	_, err = Validate(cfg, registry.Builtin())
	var unknown *registry.UnknownComponentError
	assert.True(t, errors.As(err, &unknown))
}

func TestValidate_MissingComponentName(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Loss.Name = ""

	_, err := Validate(cfg, registry.Builtin())
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "pipeline.loss.name", cerr.Field)
}
