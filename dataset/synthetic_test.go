package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSynthetic(t *testing.T) {
	opts := DefaultSyntheticOptions
	opts.NumTriples = 64
	opts.Seed = 7

	ds, err := NewSynthetic(opts)
	require.NoError(t, err)

	assert.LessOrEqual(t, ds.NumEntities(), opts.NumEntities)
	assert.LessOrEqual(t, ds.NumRelations(), opts.NumRelations)

	total := len(ds.Triples(SplitTrain)) + len(ds.Triples(SplitValidation)) + len(ds.Triples(SplitTest))
	assert.Equal(t, 64, total)
	assert.NotEmpty(t, ds.Triples(SplitValidation))
	assert.NotEmpty(t, ds.Triples(SplitTest))

	for _, split := range []Split{SplitTrain, SplitValidation, SplitTest} {
		for _, tr := range ds.Triples(split) {
			assert.True(t, ds.Known().Contains(tr))
			assert.NotEqual(t, tr.Head, tr.Tail, "generator never emits self-loops")
		}
	}
}

func TestNewSynthetic_Deterministic(t *testing.T) {
	opts := DefaultSyntheticOptions
	opts.Seed = 42

	a, err := NewSynthetic(opts)
	require.NoError(t, err)
	b, err := NewSynthetic(opts)
	require.NoError(t, err)

	assert.Equal(t, a.Triples(SplitTrain), b.Triples(SplitTrain))
	assert.Equal(t, a.Triples(SplitTest), b.Triples(SplitTest))

	opts.Seed = 43
	c, err := NewSynthetic(opts)
	require.NoError(t, err)
	assert.NotEqual(t, a.Triples(SplitTrain), c.Triples(SplitTrain))
}

func TestNewSynthetic_InvalidShape(t *testing.T) {
	for _, opts := range []SyntheticOptions{
		{NumEntities: 1, NumRelations: 2, NumTriples: 10},
		{NumEntities: 4, NumRelations: 0, NumTriples: 10},
		{NumEntities: 4, NumRelations: 2, NumTriples: 0},
	} {
		_, err := NewSynthetic(opts)
		assert.Error(t, err)
	}
}
