package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kgelab/embark/registry"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its structural constraints and
// the registry's component schemas. It returns the config unchanged on
// success and has no side effects.
//
// Failures are *Error for malformed or out-of-range fields, or
// *registry.UnknownComponentError when a referenced component id is not
// registered.
func Validate(cfg *ExperimentConfig, reg *registry.Registry) (*ExperimentConfig, error) {
	if cfg == nil {
		return nil, &Error{Field: "(document)", Constraint: "configuration is nil"}
	}
	if reg == nil {
		return nil, &Error{Field: "(registry)", Constraint: "component registry is nil"}
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			return nil, &Error{
				Field:      fieldPath(ve.Namespace()),
				Constraint: constraintText(ve),
				cause:      err,
			}
		}
		return nil, &Error{Field: "(document)", Constraint: "structural validation failed", cause: err}
	}

	checks := []struct {
		path     string
		category registry.Category
		spec     *ComponentSpec
		required bool
	}{
		{"pipeline.dataset", registry.CategoryDataset, &cfg.Pipeline.Dataset, true},
		{"pipeline.model", registry.CategoryModel, &cfg.Pipeline.Model, true},
		{"pipeline.optimizer", registry.CategoryOptimizer, &cfg.Pipeline.Optimizer, true},
		{"pipeline.loss", registry.CategoryLoss, &cfg.Pipeline.Loss, true},
		{"pipeline.training_loop", registry.CategoryTrainingLoop, &cfg.Pipeline.TrainingLoop, true},
		{"pipeline.negative_sampler", registry.CategoryNegativeSampler, &cfg.Pipeline.NegativeSampler, true},
		{"pipeline.regularizer", registry.CategoryRegularizer, cfg.Pipeline.Regularizer, false},
		{"pipeline.stopper", registry.CategoryStopper, cfg.Pipeline.Stopper, false},
		{"pipeline.evaluation", registry.CategoryEvaluator, &cfg.Pipeline.Evaluation, true},
	}

	for _, c := range checks {
		if c.spec == nil {
			continue
		}
		if c.spec.Name == "" {
			if !c.required {
				continue
			}
			return nil, &Error{Field: c.path + ".name", Constraint: "component name missing"}
		}
		entry, err := reg.Lookup(c.category, c.spec.Name)
		if err != nil {
			// Unknown ids surface as-is so callers can errors.As on them.
			return nil, err
		}
		if err := entry.Schema.Check(registry.Params(c.spec.Kwargs)); err != nil {
			return nil, &Error{
				Field:      c.path + ".kwargs",
				Constraint: err.Error(),
				cause:      err,
			}
		}
	}

	return cfg, nil
}

// fieldPath converts a validator namespace like
// "ExperimentConfig.Pipeline.Training.NumEpochs" into the document path
// "pipeline.training.num_epochs".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // drop the root struct name
	}
	for i, p := range parts {
		parts[i] = snakeCase(p)
	}
	return strings.Join(parts, ".")
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func constraintText(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required field missing or zero"
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	default:
		return fmt.Sprintf("violates %q constraint", ve.Tag())
	}
}
