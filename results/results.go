// Package results records run outcomes alongside their originating
// configuration in an append-only reproducibility log.
package results

import (
	"time"

	"github.com/kgelab/embark/config"
	"github.com/kgelab/embark/evaluation"
)

// Status is the terminal state of a run.
type Status string

const (
	// StatusCompleted marks a run that trained and evaluated fully.
	StatusCompleted Status = "completed"
	// StatusFailed marks a run aborted by an unrecoverable error; the record
	// still carries the last-known metrics.
	StatusFailed Status = "failed"
	// StatusCancelled marks a run stopped by caller cancellation; partial
	// progress is flushed rather than discarded.
	StatusCancelled Status = "cancelled"
)

// RunResult is the immutable outcome of one run.
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     Status    `json:"status"`

	// LastEpoch is the last fully completed epoch (0 if none).
	LastEpoch int `json:"last_epoch"`

	// EpochLosses holds the mean training loss per completed epoch.
	EpochLosses []float64 `json:"epoch_losses,omitempty"`

	// SkippedBatches counts batches dropped for transient errors.
	SkippedBatches int `json:"skipped_batches,omitempty"`

	// Failure describes the fatal error of a failed run.
	Failure string `json:"failure,omitempty"`

	// Metrics maps a dataset-split label to its evaluation metrics.
	Metrics map[string]*evaluation.Result `json:"metrics,omitempty"`
}

// Record couples a run result with a copy of the configuration that produced
// it, so any log entry is independently reproducible.
type Record struct {
	Codec  string                  `json:"codec"`
	Result RunResult               `json:"result"`
	Config config.ExperimentConfig `json:"config"`
}
