package pipeline

// State is the Runner's lifecycle state.
type State int32

const (
	// StateInitialized is the state before Run is called.
	StateInitialized State = iota
	// StateTraining covers the epoch loop.
	StateTraining
	// StateEvaluating covers the final evaluation pass.
	StateEvaluating
	// StateCompleted is the successful terminal state.
	StateCompleted
	// StateFailed is the terminal state after an unrecoverable error.
	StateFailed
	// StateCancelled is the terminal state after caller cancellation.
	StateCancelled
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "Initialized"
	case StateTraining:
		return "Training"
	case StateEvaluating:
		return "Evaluating"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}
