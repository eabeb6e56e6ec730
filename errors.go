package embark

import (
	"errors"

	"github.com/kgelab/embark/config"
	"github.com/kgelab/embark/pipeline"
	"github.com/kgelab/embark/registry"
)

// The error taxonomy lives in the packages that produce the errors; the
// aliases keep the whole surface importable from the root package.
type (
	// ConfigError indicates a malformed or out-of-range configuration.
	ConfigError = config.Error
	// UnknownComponentError indicates an unregistered component id.
	UnknownComponentError = registry.UnknownComponentError
	// AssemblyError indicates an unsatisfiable component dependency.
	AssemblyError = pipeline.AssemblyError
	// TrainingError indicates a numerical or resource failure during training.
	TrainingError = pipeline.TrainingError
)

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsUnknownComponent reports whether err is (or wraps) an unknown-component
// lookup failure.
func IsUnknownComponent(err error) bool {
	var ue *UnknownComponentError
	return errors.As(err, &ue)
}

// IsAssemblyError reports whether err is (or wraps) an assembly failure.
func IsAssemblyError(err error) bool {
	var ae *AssemblyError
	return errors.As(err, &ae)
}

// IsTrainingError reports whether err is (or wraps) a training failure.
func IsTrainingError(err error) bool {
	var te *TrainingError
	return errors.As(err, &te)
}
