package embark

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgelab/embark/config"
	"github.com/kgelab/embark/registry"
	"github.com/kgelab/embark/results"
	"github.com/kgelab/embark/testutil"
)

func TestRun(t *testing.T) {
	res, err := Run(context.Background(), testutil.Config(), WithSeed(1))
	require.NoError(t, err)

	assert.Equal(t, results.StatusCompleted, res.Status)
	assert.Equal(t, 1, res.LastEpoch)
	require.NotNil(t, res.Metrics["test"])
	assert.Positive(t, res.Metrics["test"].MeanRank)
	for _, k := range []int{1, 3, 10} {
		assert.Contains(t, res.Metrics["test"].HitsAt, k)
	}
}

func TestRun_ValidationFailsFirst(t *testing.T) {
	// batch_size 0 never reaches assembly or training.
	cfg := testutil.ConfigWith(func(c *config.ExperimentConfig) {
		c.Pipeline.Training.BatchSize = 0
	})

	_, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "pipeline.training.batch_size", cerr.Field)
}

func TestRun_UnknownComponent(t *testing.T) {
	cfg := testutil.ConfigWith(func(c *config.ExperimentConfig) {
		c.Pipeline.Optimizer.Name = "LBFGS"
	})

	_, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, IsUnknownComponent(err))
	assert.False(t, IsConfigError(err))
}

func TestRun_CustomRegistry(t *testing.T) {
	// A registry missing the referenced model makes the run fail up front.
	reg := registry.New()
	_, err := Run(context.Background(), testutil.Config(), WithRegistry(reg))
	require.Error(t, err)
	assert.True(t, IsUnknownComponent(err))
}

func TestRun_ResultStore(t *testing.T) {
	store := results.NewMemoryStore()

	res, err := Run(context.Background(), testutil.Config(),
		WithSeed(1),
		WithResultStore(store),
	)
	require.NoError(t, err)

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], res.RunID)
}

func TestRun_SeedReproducibility(t *testing.T) {
	store1 := results.NewMemoryStore()
	store2 := results.NewMemoryStore()

	res1, err := Run(context.Background(), testutil.Config(), WithSeed(42), WithResultStore(store1))
	require.NoError(t, err)
	res2, err := Run(context.Background(), testutil.Config(), WithSeed(42), WithResultStore(store2))
	require.NoError(t, err)

	assert.Equal(t, res1.EpochLosses, res2.EpochLosses)
	assert.Equal(t, res1.Metrics["test"].MeanRank, res2.Metrics["test"].MeanRank)
}

func TestRunDocument(t *testing.T) {
	res, err := RunDocument(context.Background(), []byte(testutil.ConfigYAML), WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, results.StatusCompleted, res.Status)
}

func TestRunDocument_MalformedYAML(t *testing.T) {
	_, err := RunDocument(context.Background(), []byte("pipeline: ["))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testutil.ConfigYAML), 0o600))

	res, err := RunFile(context.Background(), path, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, results.StatusCompleted, res.Status)

	_, err = RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, IsConfigError(err))
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, testutil.Config(), WithSeed(1))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res, "a partial result is returned")
	assert.Equal(t, results.StatusCancelled, res.Status)
}

func TestBasicMetricsCollector(t *testing.T) {
	collector := &BasicMetricsCollector{}

	_, err := Run(context.Background(), testutil.Config(),
		WithSeed(1),
		WithMetricsCollector(collector),
	)
	require.NoError(t, err)

	assert.Equal(t, int64(1), collector.EpochCount.Load())
	assert.Equal(t, int64(2), collector.BatchCount.Load())
	assert.Equal(t, int64(52), collector.BatchItems.Load())
	assert.Zero(t, collector.BatchErrors.Load())
	assert.Equal(t, int64(1), collector.EvalCount.Load())
}
