// Package stopper implements early stopping on validation metrics.
package stopper

import (
	"math"
)

// Stopper decides whether training should stop based on periodically
// reported validation metrics.
type Stopper interface {
	// ShouldEvaluate reports whether the stopper wants a validation metric
	// for the given (1-based) epoch.
	ShouldEvaluate(epoch int) bool

	// Report feeds the validation metric for an epoch and returns true when
	// training should stop.
	Report(epoch int, metric float64) bool

	Name() string
}

// IsImprovement decides whether current improves on best by more than
// relativeDelta.
func IsImprovement(best, current float64, largerIsBetter bool, relativeDelta float64) bool {
	var better bool
	if largerIsBetter {
		better = current > best
	} else {
		better = current < best
	}
	// An infinite best means nothing has been recorded yet; any finite
	// metric on the right side counts.
	if math.IsInf(best, 0) {
		return better
	}
	return better && !almostEqual(current, best, relativeDelta)
}

func almostEqual(a, b, relTol float64) bool {
	return math.Abs(a-b) <= relTol*math.Max(math.Abs(a), math.Abs(b))
}

// EarlyOptions configures an Early stopper.
type EarlyOptions struct {
	// Frequency is the epoch interval between validation evaluations.
	// Zero means every epoch.
	Frequency int

	// Patience is the number of evaluations without improvement tolerated
	// before stopping. Zero means 2.
	Patience int

	// RelativeDelta is the minimum relative improvement counted as progress.
	RelativeDelta float64

	// LargerIsBetter states the metric's direction. Mean rank wants false,
	// hits@k and MRR want true.
	LargerIsBetter bool
}

// Early stops training after Patience evaluations without sufficient
// improvement of the tracked metric.
type Early struct {
	opts EarlyOptions

	bestMetric        float64
	bestEpoch         int
	remainingPatience int
}

// NewEarly creates an early stopper.
func NewEarly(opts EarlyOptions) *Early {
	if opts.Frequency <= 0 {
		opts.Frequency = 1
	}
	if opts.Patience <= 0 {
		opts.Patience = 2
	}
	best := math.Inf(1)
	if opts.LargerIsBetter {
		best = math.Inf(-1)
	}
	return &Early{
		opts:              opts,
		bestMetric:        best,
		remainingPatience: opts.Patience,
	}
}

// Name implements Stopper.
func (e *Early) Name() string { return "early" }

// ShouldEvaluate implements Stopper.
func (e *Early) ShouldEvaluate(epoch int) bool {
	return epoch%e.opts.Frequency == 0
}

// Report implements Stopper.
func (e *Early) Report(epoch int, metric float64) bool {
	if IsImprovement(e.bestMetric, metric, e.opts.LargerIsBetter, e.opts.RelativeDelta) {
		e.bestMetric = metric
		e.bestEpoch = epoch
		e.remainingPatience = e.opts.Patience
		return false
	}
	e.remainingPatience--
	return e.remainingPatience <= 0
}

// BestEpoch returns the epoch of the best metric seen so far.
func (e *Early) BestEpoch() int { return e.bestEpoch }

// BestMetric returns the best metric seen so far.
func (e *Early) BestMetric() float64 { return e.bestMetric }
