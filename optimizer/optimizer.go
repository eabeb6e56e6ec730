// Package optimizer implements gradient-descent parameter update rules.
package optimizer

import (
	"fmt"
	"math"

	"github.com/kgelab/embark/model"
)

// Optimizer applies accumulated gradients to a parameter set.
//
// Step consumes the gradients currently held by the parameters; callers zero
// gradients between accumulation rounds. Optimizers keep per-parameter state
// (momentum, moment estimates) keyed by position, so the parameter slice must
// be the same across calls.
type Optimizer interface {
	Step(params []*model.Param)
	Name() string
}

// SGDOptions configures stochastic gradient descent.
type SGDOptions struct {
	LR          float64
	Momentum    float64
	Dampening   float64
	WeightDecay float64
	Nesterov    bool
}

// SGD is stochastic gradient descent with optional momentum, dampening,
// weight decay and Nesterov acceleration.
type SGD struct {
	opts       SGDOptions
	velocities [][]float64
}

// NewSGD creates an SGD optimizer.
func NewSGD(opts SGDOptions) (*SGD, error) {
	if opts.LR <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %v", opts.LR)
	}
	return &SGD{opts: opts}, nil
}

// Name implements Optimizer.
func (s *SGD) Name() string { return "SGD" }

// Step implements Optimizer.
func (s *SGD) Step(params []*model.Param) {
	if s.velocities == nil {
		s.velocities = make([][]float64, len(params))
		for i, p := range params {
			s.velocities[i] = make([]float64, len(p.Data))
		}
	}
	for i, p := range params {
		v := s.velocities[i]
		for j := range p.Data {
			grad := p.Grad[j]
			if s.opts.WeightDecay != 0 {
				grad += s.opts.WeightDecay * p.Data[j]
			}
			if s.opts.Momentum != 0 {
				v[j] = s.opts.Momentum*v[j] + (1-s.opts.Dampening)*grad
				if s.opts.Nesterov {
					grad += s.opts.Momentum * v[j]
				} else {
					grad = v[j]
				}
			}
			p.Data[j] -= s.opts.LR * grad
		}
	}
}

// AdamOptions configures an Adam optimizer.
type AdamOptions struct {
	LR          float64
	Beta1       float64
	Beta2       float64
	Epsilon     float64
	WeightDecay float64
}

// Adam is adaptive moment estimation.
type Adam struct {
	opts AdamOptions
	m    [][]float64
	v    [][]float64
	t    int
}

// NewAdam creates an Adam optimizer. Zero betas/epsilon default to the usual
// 0.9 / 0.999 / 1e-8.
func NewAdam(opts AdamOptions) (*Adam, error) {
	if opts.LR <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %v", opts.LR)
	}
	if opts.Beta1 == 0 {
		opts.Beta1 = 0.9
	}
	if opts.Beta2 == 0 {
		opts.Beta2 = 0.999
	}
	if opts.Epsilon == 0 {
		opts.Epsilon = 1e-8
	}
	return &Adam{opts: opts}, nil
}

// Name implements Optimizer.
func (a *Adam) Name() string { return "Adam" }

// Step implements Optimizer.
func (a *Adam) Step(params []*model.Param) {
	if a.m == nil {
		a.m = make([][]float64, len(params))
		a.v = make([][]float64, len(params))
		for i, p := range params {
			a.m[i] = make([]float64, len(p.Data))
			a.v[i] = make([]float64, len(p.Data))
		}
	}
	a.t++
	bc1 := 1 - math.Pow(a.opts.Beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.opts.Beta2, float64(a.t))

	for i, p := range params {
		m, v := a.m[i], a.v[i]
		for j := range p.Data {
			grad := p.Grad[j]
			if a.opts.WeightDecay != 0 {
				grad += a.opts.WeightDecay * p.Data[j]
			}
			m[j] = a.opts.Beta1*m[j] + (1-a.opts.Beta1)*grad
			v[j] = a.opts.Beta2*v[j] + (1-a.opts.Beta2)*grad*grad
			mHat := m[j] / bc1
			vHat := v[j] / bc2
			p.Data[j] -= a.opts.LR * mHat / (math.Sqrt(vHat) + a.opts.Epsilon)
		}
	}
}

// AdagradOptions configures an Adagrad optimizer.
type AdagradOptions struct {
	LR      float64
	Epsilon float64
}

// Adagrad scales the learning rate per coordinate by the inverse square root
// of the accumulated squared gradients.
type Adagrad struct {
	opts AdagradOptions
	acc  [][]float64
}

// NewAdagrad creates an Adagrad optimizer.
func NewAdagrad(opts AdagradOptions) (*Adagrad, error) {
	if opts.LR <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %v", opts.LR)
	}
	if opts.Epsilon == 0 {
		opts.Epsilon = 1e-10
	}
	return &Adagrad{opts: opts}, nil
}

// Name implements Optimizer.
func (a *Adagrad) Name() string { return "Adagrad" }

// Step implements Optimizer.
func (a *Adagrad) Step(params []*model.Param) {
	if a.acc == nil {
		a.acc = make([][]float64, len(params))
		for i, p := range params {
			a.acc[i] = make([]float64, len(p.Data))
		}
	}
	for i, p := range params {
		acc := a.acc[i]
		for j := range p.Data {
			grad := p.Grad[j]
			acc[j] += grad * grad
			p.Data[j] -= a.opts.LR * grad / (math.Sqrt(acc[j]) + a.opts.Epsilon)
		}
	}
}
