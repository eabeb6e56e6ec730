package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatches(t *testing.T) {
	triples := make([]Triple, 64)
	for i := range triples {
		triples[i] = Triple{Head: i, Relation: 0, Tail: i + 1}
	}

	tests := []struct {
		name      string
		size      int
		batchSize int
		want      int
		lastLen   int
	}{
		{name: "even split", size: 64, batchSize: 32, want: 2, lastLen: 32},
		{name: "short tail", size: 64, batchSize: 48, want: 2, lastLen: 16},
		{name: "single batch", size: 64, batchSize: 128, want: 1, lastLen: 64},
		{name: "batch of one", size: 3, batchSize: 1, want: 3, lastLen: 1},
		{name: "empty input", size: 0, batchSize: 8, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches, err := Batches(triples[:tt.size], tt.batchSize)
			require.NoError(t, err)
			require.Len(t, batches, tt.want)

			// Every triple appears exactly once, in order.
			flat := make([]Triple, 0, tt.size)
			for _, b := range batches {
				assert.NotEmpty(t, b)
				flat = append(flat, b...)
			}
			assert.Equal(t, triples[:tt.size], flat)

			if tt.want > 0 {
				assert.Len(t, batches[tt.want-1], tt.lastLen)
			}
		})
	}
}

func TestBatches_InvalidSize(t *testing.T) {
	_, err := Batches([]Triple{{}}, 0)
	assert.Error(t, err)

	_, err = Batches([]Triple{{}}, -4)
	assert.Error(t, err)
}

func TestKnownSet(t *testing.T) {
	ks := NewKnownSet(10, 3)
	a := Triple{Head: 1, Relation: 2, Tail: 3}
	b := Triple{Head: 3, Relation: 2, Tail: 1}

	ks.Add(a)
	assert.True(t, ks.Contains(a))
	assert.False(t, ks.Contains(b), "inverse triple must encode differently")
	assert.Equal(t, uint64(1), ks.Cardinality())

	ks.Add(a)
	assert.Equal(t, uint64(1), ks.Cardinality(), "re-adding is idempotent")

	ks.Add(b)
	assert.Equal(t, uint64(2), ks.Cardinality())
}

func TestKnownSet_EncodingDisambiguates(t *testing.T) {
	// Triples differing in a single position never collide.
	ks := NewKnownSet(5, 5)
	ks.Add(Triple{Head: 1, Relation: 1, Tail: 1})

	assert.False(t, ks.Contains(Triple{Head: 2, Relation: 1, Tail: 1}))
	assert.False(t, ks.Contains(Triple{Head: 1, Relation: 2, Tail: 1}))
	assert.False(t, ks.Contains(Triple{Head: 1, Relation: 1, Tail: 2}))
}
