package model

import (
	"math"
	"math/rand"
)

// XavierUniform fills the parameter with U(-a, a) where a = sqrt(6/(rows+cols)).
func XavierUniform(rng *rand.Rand, p *Param) {
	a := math.Sqrt(6 / float64(p.Rows+p.Cols))
	for i := range p.Data {
		p.Data[i] = (rng.Float64()*2 - 1) * a
	}
}

// Normal returns an initializer drawing from N(mean, std²).
func Normal(mean, std float64) Initializer {
	return func(rng *rand.Rand, p *Param) {
		for i := range p.Data {
			p.Data[i] = rng.NormFloat64()*std + mean
		}
	}
}

// Uniform returns an initializer drawing from U(lo, hi).
func Uniform(lo, hi float64) Initializer {
	return func(rng *rand.Rand, p *Param) {
		for i := range p.Data {
			p.Data[i] = lo + rng.Float64()*(hi-lo)
		}
	}
}

// Zeros fills the parameter with zeros.
func Zeros(_ *rand.Rand, p *Param) {
	for i := range p.Data {
		p.Data[i] = 0
	}
}
