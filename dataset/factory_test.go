package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTriples() []LabeledTriple {
	return []LabeledTriple{
		{Head: "alice", Relation: "knows", Tail: "bob"},
		{Head: "bob", Relation: "knows", Tail: "carol"},
		{Head: "carol", Relation: "likes", Tail: "alice"},
		{Head: "alice", Relation: "likes", Tail: "carol"},
	}
}

func TestNewTriplesFactory(t *testing.T) {
	f, err := NewTriplesFactory("toy", testTriples())
	require.NoError(t, err)

	assert.Equal(t, "toy", f.Name())
	assert.Equal(t, 3, f.NumEntities())
	assert.Equal(t, 2, f.NumRelations())

	// Indices follow sorted label order.
	id, ok := f.EntityID("alice")
	require.True(t, ok)
	assert.Equal(t, 0, id)
	assert.Equal(t, "alice", f.EntityLabel(0))

	id, ok = f.RelationID("likes")
	require.True(t, ok)
	assert.Equal(t, 1, id)

	_, ok = f.EntityID("dave")
	assert.False(t, ok)

	// Without split fractions everything trains.
	assert.Len(t, f.Triples(SplitTrain), 4)
	assert.Empty(t, f.Triples(SplitValidation))
	assert.Empty(t, f.Triples(SplitTest))

	// Every input triple is known.
	assert.Equal(t, uint64(4), f.Known().Cardinality())
}

func TestNewTriplesFactory_Deterministic(t *testing.T) {
	a, err := NewTriplesFactory("a", testTriples())
	require.NoError(t, err)
	b, err := NewTriplesFactory("b", testTriples())
	require.NoError(t, err)

	assert.Equal(t, a.Triples(SplitTrain), b.Triples(SplitTrain))
}

func TestNewTriplesFactory_Empty(t *testing.T) {
	_, err := NewTriplesFactory("empty", nil)
	assert.ErrorIs(t, err, ErrEmptyTriples)
}

func TestNewTriplesFactory_SplitFractions(t *testing.T) {
	triples := make([]LabeledTriple, 10)
	for i := range triples {
		triples[i] = LabeledTriple{
			Head:     string(rune('a' + i)),
			Relation: "r",
			Tail:     string(rune('a' + (i+1)%10)),
		}
	}

	f, err := NewTriplesFactory("split", triples, WithSplitFractions(0.2, 0.1))
	require.NoError(t, err)

	assert.Len(t, f.Triples(SplitTrain), 7)
	assert.Len(t, f.Triples(SplitValidation), 2)
	assert.Len(t, f.Triples(SplitTest), 1)

	_, err = NewTriplesFactory("bad", triples, WithSplitFractions(0.6, 0.5))
	assert.Error(t, err)

	_, err = NewTriplesFactory("bad", triples, WithSplitFractions(-0.1, 0))
	assert.Error(t, err)
}

func TestMapTriples(t *testing.T) {
	f, err := NewTriplesFactory("toy", testTriples())
	require.NoError(t, err)

	mapped, err := f.MapTriples([]LabeledTriple{
		{Head: "bob", Relation: "likes", Tail: "alice"},
	})
	require.NoError(t, err)
	require.Len(t, mapped, 1)

	bob, _ := f.EntityID("bob")
	likes, _ := f.RelationID("likes")
	alice, _ := f.EntityID("alice")
	assert.Equal(t, Triple{Head: bob, Relation: likes, Tail: alice}, mapped[0])

	_, err = f.MapTriples([]LabeledTriple{{Head: "dave", Relation: "knows", Tail: "bob"}})
	assert.ErrorContains(t, err, "dave")

	_, err = f.MapTriples([]LabeledTriple{{Head: "bob", Relation: "hates", Tail: "bob"}})
	assert.ErrorContains(t, err, "hates")
}

func TestCorruptionStats(t *testing.T) {
	// Relation "r" links one head to three tails: 3 tails per head, 1 head
	// per tail.
	triples := []LabeledTriple{
		{Head: "h", Relation: "r", Tail: "t1"},
		{Head: "h", Relation: "r", Tail: "t2"},
		{Head: "h", Relation: "r", Tail: "t3"},
	}
	f, err := NewTriplesFactory("stats", triples)
	require.NoError(t, err)

	tph, hpt := f.CorruptionStats()
	require.Len(t, tph, 1)
	assert.InDelta(t, 3.0, tph[0], 1e-12)
	assert.InDelta(t, 1.0, hpt[0], 1e-12)

	// Second call returns the cached slices.
	tph2, hpt2 := f.CorruptionStats()
	assert.Equal(t, tph, tph2)
	assert.Equal(t, hpt, hpt2)
}
