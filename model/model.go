// Package model defines the scoring-model contract and the built-in
// translational and bilinear interaction models.
//
// Models score index-mapped triples: a larger score means the model considers
// the statement more plausible. Training works without autodiff: the loss
// produces d(loss)/d(score) per triple, and the model accumulates
// d(score)/d(param) scaled by that upstream value into its parameter
// gradients.
package model

import (
	"fmt"
	"math/rand"
)

// Param is a named, dense parameter matrix with its gradient buffer.
type Param struct {
	Name string
	Rows int
	Cols int
	Data []float64
	Grad []float64
}

// NewParam allocates a zeroed rows×cols parameter.
func NewParam(name string, rows, cols int) *Param {
	return &Param{
		Name: name,
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
		Grad: make([]float64, rows*cols),
	}
}

// Row returns the i-th row of the parameter as a mutable slice view.
func (p *Param) Row(i int) []float64 { return p.Data[i*p.Cols : (i+1)*p.Cols] }

// GradRow returns the i-th row of the gradient buffer.
func (p *Param) GradRow(i int) []float64 { return p.Grad[i*p.Cols : (i+1)*p.Cols] }

// ZeroGrad clears the gradient buffer.
func (p *Param) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// Model scores triples and exposes its trainable parameters.
//
// Score and AccumulateGradients are called from a single goroutine at a time
// per accumulation barrier; implementations need not lock.
type Model interface {
	// Name returns the model identifier.
	Name() string

	// Dim returns the entity embedding dimension.
	Dim() int

	// Score returns the plausibility score of (h, r, t); larger is better.
	Score(h, r, t int) float64

	// AccumulateGradients adds upstream * d(score)/d(param) into the
	// parameter gradients for the triple (h, r, t).
	AccumulateGradients(h, r, t int, upstream float64)

	// Params returns the trainable parameters in a stable order.
	Params() []*Param
}

// Normalizer is an optional interface for models that constrain parameters
// after each optimizer step (e.g. unit-norm entity embeddings).
type Normalizer interface {
	PostParameterUpdate()
}

// Initializer fills a parameter row-wise from the given source.
type Initializer func(rng *rand.Rand, p *Param)

// InitializerByName returns a built-in initializer by its stable name.
func InitializerByName(name string) (Initializer, error) {
	switch name {
	case "xavier_uniform":
		return XavierUniform, nil
	case "normal":
		return Normal(0, 1), nil
	case "uniform":
		return Uniform(-1, 1), nil
	case "zeros":
		return Zeros, nil
	default:
		return nil, fmt.Errorf("unknown initializer %q", name)
	}
}
