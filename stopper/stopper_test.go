package stopper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsImprovement(t *testing.T) {
	tests := []struct {
		name           string
		best, current  float64
		largerIsBetter bool
		relativeDelta  float64
		want           bool
	}{
		{name: "smaller is better, improved", best: 10, current: 8, want: true},
		{name: "smaller is better, worse", best: 8, current: 10, want: false},
		{name: "equal is not improvement", best: 8, current: 8, want: false},
		{name: "larger is better, improved", best: 0.3, current: 0.4, largerIsBetter: true, want: true},
		{name: "larger is better, worse", best: 0.4, current: 0.3, largerIsBetter: true, want: false},
		{name: "within relative delta", best: 100, current: 99.5, relativeDelta: 0.01, want: false},
		{name: "beyond relative delta", best: 100, current: 90, relativeDelta: 0.01, want: true},
		{name: "unset best accepts first metric", best: math.Inf(1), current: 100, relativeDelta: 0.1, want: true},
		{name: "unset best, larger is better", best: math.Inf(-1), current: 0.1, largerIsBetter: true, relativeDelta: 0.1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsImprovement(tt.best, tt.current, tt.largerIsBetter, tt.relativeDelta)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEarly_Defaults(t *testing.T) {
	e := NewEarly(EarlyOptions{})
	assert.Equal(t, "early", e.Name())
	assert.True(t, e.ShouldEvaluate(1))
	assert.True(t, e.ShouldEvaluate(2))
	assert.True(t, math.IsInf(e.BestMetric(), 1), "smaller-is-better starts at +inf")

	e = NewEarly(EarlyOptions{LargerIsBetter: true})
	assert.True(t, math.IsInf(e.BestMetric(), -1))
}

func TestEarly_Frequency(t *testing.T) {
	e := NewEarly(EarlyOptions{Frequency: 5})

	assert.False(t, e.ShouldEvaluate(1))
	assert.False(t, e.ShouldEvaluate(4))
	assert.True(t, e.ShouldEvaluate(5))
	assert.False(t, e.ShouldEvaluate(6))
	assert.True(t, e.ShouldEvaluate(10))
}

func TestEarly_StopsAfterPatience(t *testing.T) {
	e := NewEarly(EarlyOptions{Patience: 2})

	assert.False(t, e.Report(1, 10)) // improvement over +inf
	assert.False(t, e.Report(2, 11)) // worse, patience 1 left
	assert.True(t, e.Report(3, 12))  // worse, patience exhausted

	assert.Equal(t, 1, e.BestEpoch())
	assert.InDelta(t, 10, e.BestMetric(), 1e-12)
}

func TestEarly_ImprovementResetsPatience(t *testing.T) {
	e := NewEarly(EarlyOptions{Patience: 2})

	assert.False(t, e.Report(1, 10))
	assert.False(t, e.Report(2, 11)) // no improvement
	assert.False(t, e.Report(3, 9))  // improvement, patience restored
	assert.False(t, e.Report(4, 9.5))
	assert.True(t, e.Report(5, 9.5))

	assert.Equal(t, 3, e.BestEpoch())
}

func TestEarly_RelativeDelta(t *testing.T) {
	// Improvements smaller than 10% relative count as stagnation.
	e := NewEarly(EarlyOptions{Patience: 2, RelativeDelta: 0.1})

	assert.False(t, e.Report(1, 100))
	assert.False(t, e.Report(2, 95)) // only 5% better
	assert.True(t, e.Report(3, 94))

	assert.Equal(t, 1, e.BestEpoch())
}

func TestEarly_RelativeDeltaRecordsFirstReport(t *testing.T) {
	// The first report always becomes the best; a later genuine improvement
	// must not count toward patience.
	e := NewEarly(EarlyOptions{Patience: 2, RelativeDelta: 0.1})

	assert.False(t, e.Report(1, 100))
	assert.Equal(t, 1, e.BestEpoch())
	assert.InDelta(t, 100, e.BestMetric(), 1e-12)

	assert.False(t, e.Report(2, 50)) // 50% better, patience restored
	assert.Equal(t, 2, e.BestEpoch())
	assert.InDelta(t, 50, e.BestMetric(), 1e-12)
}

func TestEarly_LargerIsBetter(t *testing.T) {
	e := NewEarly(EarlyOptions{Patience: 1, LargerIsBetter: true})

	assert.False(t, e.Report(1, 0.2))
	assert.False(t, e.Report(2, 0.3))
	assert.True(t, e.Report(3, 0.25))

	assert.Equal(t, 2, e.BestEpoch())
	assert.InDelta(t, 0.3, e.BestMetric(), 1e-12)
}
