// Package regularizer implements weighted parameter penalties added to the
// training loss.
//
// Whether a penalty applies every batch or once per epoch is a property of
// the regularizer itself, not of the training loop: the loop asks for a
// penalty at every batch and calls Reset at each epoch boundary, and a
// regularizer configured with ApplyOnlyOnce contributes only on its first
// call of the epoch.
package regularizer

import (
	"fmt"
	"math"

	"github.com/kgelab/embark/model"
)

// Regularizer contributes a penalty term and its gradients.
type Regularizer interface {
	// Penalty returns the weighted penalty value and accumulates its
	// gradients into the parameters.
	Penalty(params []*model.Param) float64

	// Reset marks an epoch boundary.
	Reset()

	Name() string
}

// None is the no-op regularizer.
type None struct{}

// NewNone creates a regularizer that contributes nothing.
func NewNone() *None { return &None{} }

// Name implements Regularizer.
func (*None) Name() string { return "none" }

// Penalty implements Regularizer.
func (*None) Penalty([]*model.Param) float64 { return 0 }

// Reset implements Regularizer.
func (*None) Reset() {}

// LpOptions configures an Lp regularizer.
type LpOptions struct {
	Weight        float64
	P             int // 1 or 2
	ApplyOnlyOnce bool
}

// Lp penalizes the Lp norm of all trainable parameters, scaled by Weight.
// With P = 2 the squared norm is used.
type Lp struct {
	opts    LpOptions
	applied bool
}

// NewLp creates an Lp regularizer.
func NewLp(opts LpOptions) (*Lp, error) {
	if opts.Weight <= 0 {
		return nil, fmt.Errorf("regularization weight must be positive, got %v", opts.Weight)
	}
	if opts.P != 1 && opts.P != 2 {
		return nil, fmt.Errorf("norm order must be 1 or 2, got %d", opts.P)
	}
	return &Lp{opts: opts}, nil
}

// Name implements Regularizer.
func (l *Lp) Name() string { return "lp" }

// Reset implements Regularizer.
func (l *Lp) Reset() { l.applied = false }

// Penalty implements Regularizer.
func (l *Lp) Penalty(params []*model.Param) float64 {
	if l.opts.ApplyOnlyOnce && l.applied {
		return 0
	}
	l.applied = true

	var value float64
	for _, p := range params {
		for i, v := range p.Data {
			if l.opts.P == 1 {
				value += math.Abs(v)
				if v > 0 {
					p.Grad[i] += l.opts.Weight
				} else if v < 0 {
					p.Grad[i] -= l.opts.Weight
				}
			} else {
				value += v * v
				p.Grad[i] += 2 * l.opts.Weight * v
			}
		}
	}
	return l.opts.Weight * value
}
