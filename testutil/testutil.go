package testutil

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/kgelab/embark/config"
	"github.com/kgelab/embark/dataset"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [minVal, maxVal).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*span
	}
}

// Triples generates n random triples over the given entity and relation
// counts.
func (r *RNG) Triples(n, numEntities, numRelations int) []dataset.Triple {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dataset.Triple, n)
	for i := range out {
		out[i] = dataset.Triple{
			Head:     r.rand.Intn(numEntities),
			Relation: r.rand.Intn(numRelations),
			Tail:     r.rand.Intn(numEntities),
		}
	}
	return out
}

// Dataset builds a small deterministic synthetic dataset with numTriples
// training triples plus validation and test splits.
func Dataset(t *testing.T, numTriples int) *dataset.TriplesFactory {
	t.Helper()

	opts := dataset.DefaultSyntheticOptions
	opts.NumTriples = numTriples
	opts.Seed = 42
	ds, err := dataset.NewSynthetic(opts)
	if err != nil {
		t.Fatalf("building synthetic dataset: %v", err)
	}
	return ds
}

// Config returns a complete, valid experiment configuration: TransE with a
// 1-norm on a 64-triple synthetic dataset, one epoch of SGD with margin
// ranking loss. Small enough that a full run finishes in milliseconds.
func Config() *config.ExperimentConfig {
	return &config.ExperimentConfig{
		Metadata: config.Metadata{Title: "transe synthetic smoke"},
		Pipeline: config.PipelineSpec{
			Dataset: config.ComponentSpec{
				Name: "synthetic",
				Kwargs: map[string]any{
					"num_entities":  16,
					"num_relations": 4,
					"num_triples":   64,
					"seed":          42,
				},
			},
			Model: config.ComponentSpec{
				Name: "TransE",
				Kwargs: map[string]any{
					"embedding_dim":    50,
					"scoring_fct_norm": 1,
				},
			},
			Optimizer: config.ComponentSpec{
				Name:   "SGD",
				Kwargs: map[string]any{"lr": 0.01},
			},
			Loss: config.ComponentSpec{
				Name:   "MarginRankingLoss",
				Kwargs: map[string]any{"margin": 1.0, "reduction": "mean"},
			},
			TrainingLoop: config.ComponentSpec{Name: "slcwa"},
			NegativeSampler: config.ComponentSpec{
				Name:   "basic",
				Kwargs: map[string]any{"num_negs_per_pos": 1},
			},
			Training: config.TrainingSpec{
				NumEpochs: 1,
				BatchSize: 32,
			},
			Evaluation: config.ComponentSpec{Name: "rankbased"},
		},
	}
}

// ConfigWith returns the canonical configuration after applying mutations.
func ConfigWith(mutate func(*config.ExperimentConfig)) *config.ExperimentConfig {
	cfg := Config()
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

// ConfigYAML is the canonical configuration as a YAML document, for loader
// round trips.
const ConfigYAML = `metadata:
  title: transe synthetic smoke
pipeline:
  dataset:
    name: synthetic
    kwargs:
      num_entities: 16
      num_relations: 4
      num_triples: 64
      seed: 42
  model:
    name: TransE
    kwargs:
      embedding_dim: 50
      scoring_fct_norm: 1
  optimizer:
    name: SGD
    kwargs:
      lr: 0.01
  loss:
    name: MarginRankingLoss
    kwargs:
      margin: 1.0
      reduction: mean
  training_loop:
    name: slcwa
  negative_sampler:
    name: basic
    kwargs:
      num_negs_per_pos: 1
  training:
    num_epochs: 1
    batch_size: 32
  evaluation:
    name: rankbased
`
