package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides. EMBARK_PIPELINE_MODEL_NAME
// overrides pipeline.model.name. Underscore-separated key segments map to
// document nesting, so keys whose own name contains an underscore cannot be
// overridden from the environment.
const EnvPrefix = "EMBARK_"

const delim = "."

// topLevelKeys is the closed set of accepted document roots.
var topLevelKeys = map[string]struct{}{
	"metadata": {},
	"pipeline": {},
	"results":  {},
}

// pipelineKeys is the closed set of accepted pipeline sub-keys.
var pipelineKeys = map[string]struct{}{
	"dataset":          {},
	"model":            {},
	"optimizer":        {},
	"loss":             {},
	"training_loop":    {},
	"negative_sampler": {},
	"regularizer":      {},
	"stopper":          {},
	"training":         {},
	"evaluation":       {},
}

// Load reads and parses an experiment document from a YAML file, applying
// environment overrides.
func Load(path string) (*ExperimentConfig, error) {
	k := koanf.New(delim)
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, &Error{Field: "(document)", Constraint: "unreadable or malformed YAML", cause: err}
	}
	return finishLoad(k)
}

// Parse parses an experiment document from raw YAML bytes, applying
// environment overrides.
func Parse(doc []byte) (*ExperimentConfig, error) {
	k := koanf.New(delim)
	if err := k.Load(rawbytes.Provider(doc), yaml.Parser()); err != nil {
		return nil, &Error{Field: "(document)", Constraint: "malformed YAML", cause: err}
	}
	return finishLoad(k)
}

func finishLoad(k *koanf.Koanf) (*ExperimentConfig, error) {
	if err := k.Load(env.Provider(EnvPrefix, delim, func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", delim)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	// Env overrides merge before the closed-set check so an injected key
	// cannot smuggle in an unknown section.
	if err := rejectUnknownKeys(k); err != nil {
		return nil, err
	}

	var cfg ExperimentConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &Error{Field: "(document)", Constraint: "does not match the experiment schema", cause: err}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// rejectUnknownKeys enforces the closed key sets at the document root and
// below pipeline. Component kwargs are checked later against the registry
// schemas, not here.
func rejectUnknownKeys(k *koanf.Koanf) error {
	raw := k.Raw()
	for _, key := range sortedKeys(raw) {
		if _, ok := topLevelKeys[key]; !ok {
			return &Error{Field: key, Constraint: "unknown top-level key"}
		}
	}
	pipeline, ok := raw["pipeline"].(map[string]any)
	if !ok {
		return &Error{Field: "pipeline", Constraint: "required section missing"}
	}
	for _, key := range sortedKeys(pipeline) {
		if _, ok := pipelineKeys[key]; !ok {
			return &Error{Field: "pipeline." + key, Constraint: "unknown pipeline key"}
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
