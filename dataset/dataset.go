// Package dataset provides knowledge-graph triple storage for training and
// evaluation.
//
// A Dataset exposes entity/relation counts and train/validation/test splits of
// index-mapped triples. The canonical implementation is TriplesFactory, which
// maps string labels to dense indices and tracks the set of all known-true
// triples for filtered evaluation.
package dataset

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Split names a partition of a dataset's triples.
type Split string

const (
	// SplitTrain is the partition used for parameter updates.
	SplitTrain Split = "train"
	// SplitValidation is the partition used for early stopping.
	SplitValidation Split = "validation"
	// SplitTest is the held-out partition used for final evaluation.
	SplitTest Split = "test"
)

// Triple is an index-mapped (head, relation, tail) statement.
type Triple struct {
	Head     int
	Relation int
	Tail     int
}

// Dataset exposes the triples and vocabulary sizes a pipeline trains against.
//
// Implementations must be safe for concurrent reads after construction.
type Dataset interface {
	// Name returns the dataset identifier.
	Name() string

	// NumEntities returns the size of the entity vocabulary.
	NumEntities() int

	// NumRelations returns the size of the relation vocabulary.
	NumRelations() int

	// Triples returns the triples of the given split. The returned slice must
	// not be mutated. An unknown split yields an empty slice.
	Triples(s Split) []Triple

	// Known returns the set of all true triples across every split, used to
	// exclude known answers from filtered rankings.
	Known() *KnownSet
}

// KnownSet is a compact membership set over triples, backed by a roaring
// bitmap keyed on the dense triple index.
//
// Safe for concurrent reads after sealing (no Add calls).
type KnownSet struct {
	bm           *roaring64.Bitmap
	numEntities  uint64
	numRelations uint64
}

// NewKnownSet creates an empty set for a vocabulary of the given size.
func NewKnownSet(numEntities, numRelations int) *KnownSet {
	return &KnownSet{
		bm:           roaring64.New(),
		numEntities:  uint64(numEntities),
		numRelations: uint64(numRelations),
	}
}

func (k *KnownSet) encode(t Triple) uint64 {
	return (uint64(t.Head)*k.numRelations+uint64(t.Relation))*k.numEntities + uint64(t.Tail)
}

// Add inserts a triple into the set.
func (k *KnownSet) Add(t Triple) {
	k.bm.Add(k.encode(t))
}

// Contains reports whether the triple is a known-true statement.
func (k *KnownSet) Contains(t Triple) bool {
	return k.bm.Contains(k.encode(t))
}

// Cardinality returns the number of distinct triples in the set.
func (k *KnownSet) Cardinality() uint64 {
	return k.bm.GetCardinality()
}

// Batches partitions triples into consecutive batches of at most batchSize.
// The last batch may be short; every triple appears in exactly one batch.
func Batches(triples []Triple, batchSize int) ([][]Triple, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	n := (len(triples) + batchSize - 1) / batchSize
	out := make([][]Triple, 0, n)
	for start := 0; start < len(triples); start += batchSize {
		end := start + batchSize
		if end > len(triples) {
			end = len(triples)
		}
		out = append(out, triples[start:end])
	}
	return out, nil
}
