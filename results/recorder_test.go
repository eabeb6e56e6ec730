package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgelab/embark/codec"
	"github.com/kgelab/embark/config"
)

func sampleRecord() *Record {
	return &Record{
		Result: RunResult{
			RunID:       "run-1",
			StartedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			FinishedAt:  time.Date(2024, 5, 1, 12, 3, 0, 0, time.UTC),
			Status:      StatusCompleted,
			LastEpoch:   5,
			EpochLosses: []float64{0.9, 0.7, 0.6, 0.55, 0.52},
		},
		Config: config.ExperimentConfig{
			Pipeline: config.PipelineSpec{
				Model: config.ComponentSpec{Name: "TransE"},
			},
		},
	}
}

func TestRecorder_RecordAndRead(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(NewMemoryStore())

	key, err := r.Record(ctx, sampleRecord())
	require.NoError(t, err)
	assert.Contains(t, key, "run-1-")

	out, err := r.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, codec.Default.Name(), out.Codec)
	assert.Equal(t, StatusCompleted, out.Result.Status)
	assert.Equal(t, "TransE", out.Config.Pipeline.Model.Name)
	assert.Equal(t, []float64{0.9, 0.7, 0.6, 0.55, 0.52}, out.Result.EpochLosses)
}

func TestRecorder_AppendOnlyDuplicates(t *testing.T) {
	// Recording the same result twice yields two distinct entries, both
	// readable: the log deduplicates nothing.
	ctx := context.Background()
	r := NewRecorder(NewMemoryStore())

	rec := sampleRecord()
	k1, err := r.Record(ctx, rec)
	require.NoError(t, err)
	k2, err := r.Record(ctx, rec)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)

	keys, err := r.Keys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	for _, k := range []string{k1, k2} {
		out, err := r.Read(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, "run-1", out.Result.RunID)
	}
}

func TestRecorder_CodecSelection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Write with the stdlib codec, read back with a recorder defaulting to
	// go-json: the self-describing record picks the right decoder.
	writer := NewRecorder(store, WithCodec(codec.JSON{}))
	key, err := writer.Record(ctx, sampleRecord())
	require.NoError(t, err)

	reader := NewRecorder(store)
	out, err := reader.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "json", out.Codec)
	assert.Equal(t, "run-1", out.Result.RunID)
}

func TestRecorder_NilRecord(t *testing.T) {
	r := NewRecorder(NewMemoryStore())
	_, err := r.Record(context.Background(), nil)
	assert.Error(t, err)
}
