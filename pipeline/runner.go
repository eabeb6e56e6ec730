package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kgelab/embark/dataset"
	"github.com/kgelab/embark/evaluation"
	"github.com/kgelab/embark/model"
	"github.com/kgelab/embark/resource"
	"github.com/kgelab/embark/results"
)

// TrainingError indicates numerical instability or resource exhaustion
// during training. Batch-local occurrences are logged and the batch is
// skipped; run-fatal occurrences (an epoch with no usable batch) move the
// Runner to the Failed state.
//
// The underlying error can be accessed via errors.Unwrap.
type TrainingError struct {
	Epoch int
	Batch int
	cause error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training failed at epoch %d, batch %d: %v", e.Epoch, e.Batch, e.cause)
}

func (e *TrainingError) Unwrap() error { return e.cause }

// MetricsCollector receives training progress events.
// Implement it to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordEpoch is called after each completed epoch with its mean loss.
	RecordEpoch(epoch int, meanLoss float64, duration time.Duration)

	// RecordBatch is called after each batch attempt; err is nil on success.
	RecordBatch(size int, duration time.Duration, err error)

	// RecordEvaluation is called after an evaluation pass over a split.
	RecordEvaluation(split string, duration time.Duration, err error)
}

// NoopMetricsCollector discards all progress events.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEpoch(int, float64, time.Duration)       {}
func (NoopMetricsCollector) RecordBatch(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordEvaluation(string, time.Duration, error) {}

// Runner drives an assembled pipeline through training and evaluation.
//
// A Runner exclusively owns its pipeline's parameter and optimizer state for
// the run's duration. It is single-use: Run may be called once.
type Runner struct {
	p        *Pipeline
	logger   *slog.Logger
	metrics  MetricsCollector
	ctrl     *resource.Controller
	recorder *results.Recorder
	rng      *rand.Rand

	state atomic.Int32
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's structured logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetricsCollector sets a collector for progress events.
func WithMetricsCollector(c MetricsCollector) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.metrics = c
		}
	}
}

// WithResourceController bounds the runner's batch-scoring parallelism.
func WithResourceController(ctrl *resource.Controller) RunnerOption {
	return func(r *Runner) { r.ctrl = ctrl }
}

// WithRecorder makes the runner flush its result (including partial results
// of failed or cancelled runs) into the reproducibility log.
func WithRecorder(rec *results.Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// WithShuffleSeed seeds the epoch shuffling. Without it the wall clock is
// used.
func WithShuffleSeed(seed int64) RunnerOption {
	return func(r *Runner) { r.rng = rand.New(rand.NewSource(seed)) }
}

// NewRunner creates a runner over an assembled pipeline.
func NewRunner(p *Pipeline, opts ...RunnerOption) *Runner {
	r := &Runner{
		p:       p,
		logger:  slog.Default(),
		metrics: NoopMetricsCollector{},
	}
	for _, fn := range opts {
		fn(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	// Evaluation draws from the same worker budget as batch scoring.
	p.Evaluator.SetResourceController(r.ctrl)
	return r
}

// State returns the runner's current lifecycle state.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Run executes the configured number of epochs followed by an evaluation
// pass over the test split, and returns the run's result. Cancellation is
// honored at batch boundaries; a cancelled or failed run still flushes a
// partial record when a recorder is configured.
func (r *Runner) Run(ctx context.Context) (*results.RunResult, error) {
	if !r.state.CompareAndSwap(int32(StateInitialized), int32(StateTraining)) {
		return nil, fmt.Errorf("runner already used (state %s)", r.State())
	}

	training := r.p.Config.Pipeline.Training
	res := &results.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Metrics:   make(map[string]*evaluation.Result),
	}
	logger := r.logger.With("run_id", res.RunID, "model", r.p.Model.Name(), "dataset", r.p.Dataset.Name())

	train := append([]dataset.Triple(nil), r.p.Dataset.Triples(dataset.SplitTrain)...)

	for epoch := 1; epoch <= training.NumEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, res, StateCancelled, err)
		}

		epochStart := time.Now()
		r.p.Regularizer.Reset()
		r.rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })

		batches, err := dataset.Batches(train, training.BatchSize)
		if err != nil {
			return r.finish(ctx, res, StateFailed, &TrainingError{Epoch: epoch, cause: err})
		}

		var epochLoss float64
		completed := 0
		for bi, batch := range batches {
			if err := ctx.Err(); err != nil {
				return r.finish(ctx, res, StateCancelled, err)
			}

			batchStart := time.Now()
			batchLoss, err := r.trainBatch(ctx, batch)
			r.metrics.RecordBatch(len(batch), time.Since(batchStart), err)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return r.finish(ctx, res, StateCancelled, err)
				}
				// Transient: skip the batch, keep the epoch going.
				logger.Warn("skipping batch", "epoch", epoch, "batch", bi, "error", err)
				res.SkippedBatches++
				continue
			}
			epochLoss += batchLoss
			completed++
		}

		if completed == 0 {
			err := &TrainingError{Epoch: epoch, cause: fmt.Errorf("no batch of the epoch produced a finite loss")}
			return r.finish(ctx, res, StateFailed, err)
		}

		meanLoss := epochLoss / float64(completed)
		res.EpochLosses = append(res.EpochLosses, meanLoss)
		res.LastEpoch = epoch
		r.metrics.RecordEpoch(epoch, meanLoss, time.Since(epochStart))
		logger.Debug("epoch completed", "epoch", epoch, "mean_loss", meanLoss, "skipped", res.SkippedBatches)

		if stop, err := r.checkStopper(ctx, res, epoch, logger); err != nil {
			return r.finish(ctx, res, StateCancelled, err)
		} else if stop {
			logger.Info("early stopping", "epoch", epoch)
			break
		}
	}

	r.state.Store(int32(StateEvaluating))
	evalStart := time.Now()
	evalRes, err := r.p.Evaluator.Evaluate(ctx, r.p.Model, r.p.Dataset.Triples(dataset.SplitTest))
	r.metrics.RecordEvaluation(string(dataset.SplitTest), time.Since(evalStart), err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return r.finish(ctx, res, StateCancelled, err)
		}
		return r.finish(ctx, res, StateFailed, err)
	}
	res.Metrics[string(dataset.SplitTest)] = evalRes

	return r.finish(ctx, res, StateCompleted, nil)
}

// checkStopper evaluates the validation split when the stopper asks for it
// and reports whether training should stop. Mean rank is the tracked metric.
func (r *Runner) checkStopper(ctx context.Context, res *results.RunResult, epoch int, logger *slog.Logger) (bool, error) {
	if r.p.Stopper == nil || !r.p.Stopper.ShouldEvaluate(epoch) {
		return false, nil
	}

	start := time.Now()
	valRes, err := r.p.Evaluator.Evaluate(ctx, r.p.Model, r.p.Dataset.Triples(dataset.SplitValidation))
	r.metrics.RecordEvaluation(string(dataset.SplitValidation), time.Since(start), err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		// Validation troubles should not kill the run; training continues.
		logger.Warn("validation evaluation failed", "epoch", epoch, "error", err)
		return false, nil
	}
	res.Metrics[string(dataset.SplitValidation)] = valRes

	return r.p.Stopper.Report(epoch, valRes.MeanRank), nil
}

// contribution is one positive triple's scored contrast, produced by a
// read-only scoring worker and consumed by the single gradient applier.
type contribution struct {
	pos   dataset.Triple
	negs  []dataset.Triple
	loss  float64
	dPos  float64
	dNegs []float64
}

// trainBatch scores the batch, accumulates gradients and applies one
// optimizer step.
//
// Scoring is read-only over the model parameters and runs across workers;
// gradient accumulation and the parameter update happen afterwards on this
// goroutine only, so scoring workers always observe a consistent parameter
// snapshot and there is exactly one writer.
func (r *Runner) trainBatch(ctx context.Context, batch []dataset.Triple) (float64, error) {
	contributions := make([]contribution, len(batch))

	// Negatives are drawn serially so a seeded sampler yields the same
	// corruptions regardless of worker scheduling.
	for i, pos := range batch {
		negs := r.p.Sampler.Corrupt(pos)
		if want := r.p.Sampler.NumNegsPerPos(); len(negs) != want {
			return 0, fmt.Errorf("sampler %s produced %d negatives, want %d", r.p.Sampler.Name(), len(negs), want)
		}
		contributions[i] = contribution{pos: pos, negs: negs}
	}

	limit := r.ctrl.MaxWorkers()
	if nw := r.p.Config.Pipeline.Training.NumWorkers; nw > 0 && nw < limit {
		limit = nw
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range contributions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := r.ctrl.AcquireWorker(gctx); err != nil {
				return err
			}
			defer r.ctrl.ReleaseWorker()

			pos, negs := contributions[i].pos, contributions[i].negs
			posScore := r.p.Model.Score(pos.Head, pos.Relation, pos.Tail)
			negScores := make([]float64, len(negs))
			for j, neg := range negs {
				negScores[j] = r.p.Model.Score(neg.Head, neg.Relation, neg.Tail)
			}

			lossVal, dPos, dNegs := r.p.Loss.Forward(posScore, negScores)
			if math.IsNaN(lossVal) || math.IsInf(lossVal, 0) {
				return fmt.Errorf("non-finite loss %v for triple %v", lossVal, pos)
			}

			contributions[i].loss = lossVal
			contributions[i].dPos = dPos
			contributions[i].dNegs = dNegs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	// Single-writer section: accumulate mean gradients and step.
	params := r.p.Model.Params()
	inv := 1 / float64(len(batch))
	var batchLoss float64
	for _, c := range contributions {
		batchLoss += c.loss * inv
		r.p.Model.AccumulateGradients(c.pos.Head, c.pos.Relation, c.pos.Tail, c.dPos*inv)
		for j, neg := range c.negs {
			r.p.Model.AccumulateGradients(neg.Head, neg.Relation, neg.Tail, c.dNegs[j]*inv)
		}
	}
	batchLoss += r.p.Regularizer.Penalty(params)

	r.p.Optimizer.Step(params)
	for _, p := range params {
		p.ZeroGrad()
	}
	if n, ok := r.p.Model.(model.Normalizer); ok {
		n.PostParameterUpdate()
	}

	return batchLoss, nil
}

// finish moves the runner to a terminal state, stamps the result and flushes
// it to the recorder. Flushing uses a context that survives cancellation so
// partial progress is never silently discarded.
func (r *Runner) finish(ctx context.Context, res *results.RunResult, state State, cause error) (*results.RunResult, error) {
	r.state.Store(int32(state))
	res.FinishedAt = time.Now().UTC()
	switch state {
	case StateCompleted:
		res.Status = results.StatusCompleted
	case StateCancelled:
		res.Status = results.StatusCancelled
		if cause != nil {
			res.Failure = cause.Error()
		}
	default:
		res.Status = results.StatusFailed
		if cause != nil {
			res.Failure = cause.Error()
		}
	}

	if r.recorder != nil {
		rec := &results.Record{Result: *res, Config: *r.p.Config}
		if _, err := r.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
			r.logger.Error("flushing run record failed", "run_id", res.RunID, "error", err)
			if cause == nil {
				cause = err
			}
		}
	}

	if cause != nil {
		return res, cause
	}
	return res, nil
}
