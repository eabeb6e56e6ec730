package dataset

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyTriples is returned when a factory is built from zero triples.
var ErrEmptyTriples = errors.New("triples factory requires at least one triple")

// LabeledTriple is a (head, relation, tail) statement over string labels,
// before index mapping.
type LabeledTriple struct {
	Head     string
	Relation string
	Tail     string
}

// TriplesFactory is an in-memory Dataset built from labeled triples.
//
// Labels are mapped to dense indices in sorted label order, so two factories
// built from the same triples produce identical mappings.
type TriplesFactory struct {
	name         string
	entityToID   map[string]int
	relationToID map[string]int
	entities     []string
	relations    []string
	splits       map[Split][]Triple
	known        *KnownSet

	// relation corruption statistics, lazily derived for Bernoulli sampling
	tailsPerHead []float64
	headsPerTail []float64
}

// FactoryOption configures a TriplesFactory.
type FactoryOption func(*factoryOptions)

type factoryOptions struct {
	validationFraction float64
	testFraction       float64
}

// WithSplitFractions sets the fraction of triples held out for validation and
// test. The remainder trains. Fractions must be non-negative and sum to < 1.
func WithSplitFractions(validation, test float64) FactoryOption {
	return func(o *factoryOptions) {
		o.validationFraction = validation
		o.testFraction = test
	}
}

// NewTriplesFactory index-maps labeled triples and partitions them into
// train/validation/test splits. The split is deterministic: triples are taken
// in input order, test from the tail end, validation just before it.
func NewTriplesFactory(name string, triples []LabeledTriple, opts ...FactoryOption) (*TriplesFactory, error) {
	if len(triples) == 0 {
		return nil, ErrEmptyTriples
	}

	o := factoryOptions{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.validationFraction < 0 || o.testFraction < 0 || o.validationFraction+o.testFraction >= 1 {
		return nil, fmt.Errorf("invalid split fractions: validation=%v test=%v", o.validationFraction, o.testFraction)
	}

	entitySet := make(map[string]struct{})
	relationSet := make(map[string]struct{})
	for _, t := range triples {
		entitySet[t.Head] = struct{}{}
		entitySet[t.Tail] = struct{}{}
		relationSet[t.Relation] = struct{}{}
	}

	f := &TriplesFactory{
		name:         name,
		entityToID:   make(map[string]int, len(entitySet)),
		relationToID: make(map[string]int, len(relationSet)),
		entities:     sortedKeys(entitySet),
		relations:    sortedKeys(relationSet),
		splits:       make(map[Split][]Triple, 3),
	}
	for i, e := range f.entities {
		f.entityToID[e] = i
	}
	for i, r := range f.relations {
		f.relationToID[r] = i
	}

	mapped := make([]Triple, len(triples))
	for i, t := range triples {
		mapped[i] = Triple{
			Head:     f.entityToID[t.Head],
			Relation: f.relationToID[t.Relation],
			Tail:     f.entityToID[t.Tail],
		}
	}

	numTest := int(float64(len(mapped)) * o.testFraction)
	numValidation := int(float64(len(mapped)) * o.validationFraction)
	numTrain := len(mapped) - numTest - numValidation
	f.splits[SplitTrain] = mapped[:numTrain]
	f.splits[SplitValidation] = mapped[numTrain : numTrain+numValidation]
	f.splits[SplitTest] = mapped[numTrain+numValidation:]

	f.known = NewKnownSet(len(f.entities), len(f.relations))
	for _, t := range mapped {
		f.known.Add(t)
	}

	return f, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Name implements Dataset.
func (f *TriplesFactory) Name() string { return f.name }

// NumEntities implements Dataset.
func (f *TriplesFactory) NumEntities() int { return len(f.entities) }

// NumRelations implements Dataset.
func (f *TriplesFactory) NumRelations() int { return len(f.relations) }

// Triples implements Dataset.
func (f *TriplesFactory) Triples(s Split) []Triple { return f.splits[s] }

// Known implements Dataset.
func (f *TriplesFactory) Known() *KnownSet { return f.known }

// EntityID resolves an entity label, reporting whether it is in vocabulary.
func (f *TriplesFactory) EntityID(label string) (int, bool) {
	id, ok := f.entityToID[label]
	return id, ok
}

// RelationID resolves a relation label, reporting whether it is in vocabulary.
func (f *TriplesFactory) RelationID(label string) (int, bool) {
	id, ok := f.relationToID[label]
	return id, ok
}

// EntityLabel returns the label for an entity index.
func (f *TriplesFactory) EntityLabel(id int) string { return f.entities[id] }

// RelationLabel returns the label for a relation index.
func (f *TriplesFactory) RelationLabel(id int) string { return f.relations[id] }

// MapTriples index-maps labeled triples against this factory's vocabulary.
// Triples mentioning out-of-vocabulary labels produce an error.
func (f *TriplesFactory) MapTriples(triples []LabeledTriple) ([]Triple, error) {
	out := make([]Triple, len(triples))
	for i, t := range triples {
		h, ok := f.entityToID[t.Head]
		if !ok {
			return nil, fmt.Errorf("unknown entity label %q", t.Head)
		}
		r, ok := f.relationToID[t.Relation]
		if !ok {
			return nil, fmt.Errorf("unknown relation label %q", t.Relation)
		}
		tl, ok := f.entityToID[t.Tail]
		if !ok {
			return nil, fmt.Errorf("unknown entity label %q", t.Tail)
		}
		out[i] = Triple{Head: h, Relation: r, Tail: tl}
	}
	return out, nil
}

// CorruptionStats returns, per relation, the mean number of distinct tails per
// head and heads per tail over the training split. Used by relation-aware
// negative samplers to pick the corruption side.
func (f *TriplesFactory) CorruptionStats() (tailsPerHead, headsPerTail []float64) {
	if f.tailsPerHead != nil {
		return f.tailsPerHead, f.headsPerTail
	}

	type pairSet map[[2]int]struct{}
	headTails := make(pairSet) // (relation, head) seen
	tailHeads := make(pairSet) // (relation, tail) seen
	tailCount := make([]int, len(f.relations))
	headCount := make([]int, len(f.relations))

	for _, t := range f.splits[SplitTrain] {
		headTails[[2]int{t.Relation, t.Head}] = struct{}{}
		tailHeads[[2]int{t.Relation, t.Tail}] = struct{}{}
		tailCount[t.Relation]++
		headCount[t.Relation]++
	}

	distinctHeads := make([]int, len(f.relations))
	distinctTails := make([]int, len(f.relations))
	for k := range headTails {
		distinctHeads[k[0]]++
	}
	for k := range tailHeads {
		distinctTails[k[0]]++
	}

	f.tailsPerHead = make([]float64, len(f.relations))
	f.headsPerTail = make([]float64, len(f.relations))
	for r := range f.relations {
		if distinctHeads[r] > 0 {
			f.tailsPerHead[r] = float64(tailCount[r]) / float64(distinctHeads[r])
		}
		if distinctTails[r] > 0 {
			f.headsPerTail[r] = float64(headCount[r]) / float64(distinctTails[r])
		}
	}
	return f.tailsPerHead, f.headsPerTail
}
