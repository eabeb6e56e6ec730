// Package sampling generates corrupted (negative) triples to contrast against
// observed positives during training.
package sampling

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/kgelab/embark/dataset"
)

// NegativeSampler corrupts a positive triple into synthetic negatives.
//
// Implementations must return exactly NumNegsPerPos negatives per call and be
// safe for concurrent use.
type NegativeSampler interface {
	// Corrupt returns negatives derived from the positive triple.
	Corrupt(pos dataset.Triple) []dataset.Triple

	// NumNegsPerPos returns the configured negatives-per-positive ratio.
	NumNegsPerPos() int

	Name() string
}

// BasicOptions configures the uniform corruption sampler.
type BasicOptions struct {
	NumNegsPerPos  int
	Seed           int64
	CorruptionRate float64 // probability of corrupting the head; rest corrupt the tail. Zero means 0.5.
}

// Basic corrupts head or tail uniformly at random with a replacement entity
// drawn uniformly from the vocabulary.
type Basic struct {
	numEntities int
	k           int
	headProb    float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBasic creates a uniform negative sampler for the dataset's vocabulary.
func NewBasic(ds dataset.Dataset, opts BasicOptions) (*Basic, error) {
	if opts.NumNegsPerPos <= 0 {
		return nil, fmt.Errorf("num_negs_per_pos must be positive, got %d", opts.NumNegsPerPos)
	}
	headProb := opts.CorruptionRate
	if headProb == 0 {
		headProb = 0.5
	}
	return &Basic{
		numEntities: ds.NumEntities(),
		k:           opts.NumNegsPerPos,
		headProb:    headProb,
		rng:         rand.New(rand.NewSource(opts.Seed)),
	}, nil
}

// Name implements NegativeSampler.
func (s *Basic) Name() string { return "basic" }

// NumNegsPerPos implements NegativeSampler.
func (s *Basic) NumNegsPerPos() int { return s.k }

// Corrupt implements NegativeSampler.
func (s *Basic) Corrupt(pos dataset.Triple) []dataset.Triple {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]dataset.Triple, s.k)
	for i := range out {
		out[i] = corrupt(s.rng, pos, s.numEntities, s.rng.Float64() < s.headProb)
	}
	return out
}

// BernoulliOptions configures the relation-aware corruption sampler.
type BernoulliOptions struct {
	NumNegsPerPos int
	Seed          int64
}

// Bernoulli picks the corruption side per relation following Wang et al.:
// relations with many tails per head are corrupted on the head side with
// higher probability, reducing false negatives.
type Bernoulli struct {
	numEntities int
	k           int
	headProb    []float64 // per relation

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBernoulli creates a Bernoulli sampler from the dataset's corruption
// statistics. The dataset must be a *dataset.TriplesFactory (or expose the
// same statistics); plain Dataset implementations fall back to 0.5.
func NewBernoulli(ds dataset.Dataset, opts BernoulliOptions) (*Bernoulli, error) {
	if opts.NumNegsPerPos <= 0 {
		return nil, fmt.Errorf("num_negs_per_pos must be positive, got %d", opts.NumNegsPerPos)
	}

	headProb := make([]float64, ds.NumRelations())
	for i := range headProb {
		headProb[i] = 0.5
	}
	if tf, ok := ds.(*dataset.TriplesFactory); ok {
		tph, hpt := tf.CorruptionStats()
		for r := range headProb {
			if denom := tph[r] + hpt[r]; denom > 0 {
				headProb[r] = tph[r] / denom
			}
		}
	}

	return &Bernoulli{
		numEntities: ds.NumEntities(),
		k:           opts.NumNegsPerPos,
		headProb:    headProb,
		rng:         rand.New(rand.NewSource(opts.Seed)),
	}, nil
}

// Name implements NegativeSampler.
func (s *Bernoulli) Name() string { return "bernoulli" }

// NumNegsPerPos implements NegativeSampler.
func (s *Bernoulli) NumNegsPerPos() int { return s.k }

// Corrupt implements NegativeSampler.
func (s *Bernoulli) Corrupt(pos dataset.Triple) []dataset.Triple {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]dataset.Triple, s.k)
	for i := range out {
		out[i] = corrupt(s.rng, pos, s.numEntities, s.rng.Float64() < s.headProb[pos.Relation])
	}
	return out
}

// corrupt replaces head or tail with a random entity different from the
// original, so a corruption never reproduces the positive itself.
func corrupt(rng *rand.Rand, pos dataset.Triple, numEntities int, head bool) dataset.Triple {
	neg := pos
	if head {
		for {
			neg.Head = rng.Intn(numEntities)
			if neg.Head != pos.Head || numEntities == 1 {
				break
			}
		}
	} else {
		for {
			neg.Tail = rng.Intn(numEntities)
			if neg.Tail != pos.Tail || numEntities == 1 {
				break
			}
		}
	}
	return neg
}
