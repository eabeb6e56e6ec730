package model

import (
	"fmt"
	"math"
	"math/rand"
)

// MuREOptions configures a MuRE model.
type MuREOptions struct {
	EmbeddingDim int
	P            int // norm order, 1 or 2
	Seed         int64
}

// MuRE represents entities as vectors with separate head/tail scalar biases,
// and relations by a translation vector plus a diagonal transformation matrix.
// The score of (h, r, t) is
//
//	-‖R_r ∘ h + r - t‖_p^p + b_h + b_t
//
// using the p-th power of the norm, which is differentiable around zero.
type MuRE struct {
	dim int
	p   int

	ent      *Param // entity vectors
	headBias *Param // per-entity scalar bias in head role
	tailBias *Param // per-entity scalar bias in tail role
	relVec   *Param // relation translation
	relMat   *Param // diagonal relation transformation
}

// NewMuRE allocates and initializes a MuRE model. Entity and relation vectors
// start near zero (std 1e-3) and the diagonal matrices from U(-1, 1), the
// reference initialization.
func NewMuRE(numEntities, numRelations int, opts MuREOptions) (*MuRE, error) {
	if opts.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", opts.EmbeddingDim)
	}
	p := opts.P
	if p == 0 {
		p = 2
	}
	if p != 1 && p != 2 {
		return nil, fmt.Errorf("norm order must be 1 or 2, got %d", p)
	}

	m := &MuRE{
		dim:      opts.EmbeddingDim,
		p:        p,
		ent:      NewParam("entity_embeddings", numEntities, opts.EmbeddingDim),
		headBias: NewParam("entity_head_bias", numEntities, 1),
		tailBias: NewParam("entity_tail_bias", numEntities, 1),
		relVec:   NewParam("relation_offsets", numRelations, opts.EmbeddingDim),
		relMat:   NewParam("relation_matrices", numRelations, opts.EmbeddingDim),
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	Normal(0, 1e-3)(rng, m.ent)
	Zeros(rng, m.headBias)
	Zeros(rng, m.tailBias)
	Normal(0, 1e-3)(rng, m.relVec)
	Uniform(-1, 1)(rng, m.relMat)

	return m, nil
}

// Name implements Model.
func (m *MuRE) Name() string { return "MuRE" }

// Dim implements Model.
func (m *MuRE) Dim() int { return m.dim }

// Params implements Model.
func (m *MuRE) Params() []*Param {
	return []*Param{m.ent, m.headBias, m.tailBias, m.relVec, m.relMat}
}

// Score implements Model.
func (m *MuRE) Score(h, r, t int) float64 {
	he, te := m.ent.Row(h), m.ent.Row(t)
	rv, rm := m.relVec.Row(r), m.relMat.Row(r)

	var norm float64
	for i := range he {
		d := rm[i]*he[i] + rv[i] - te[i]
		if m.p == 1 {
			norm += math.Abs(d)
		} else {
			norm += d * d
		}
	}
	return -norm + m.headBias.Data[h] + m.tailBias.Data[t]
}

// AccumulateGradients implements Model.
func (m *MuRE) AccumulateGradients(h, r, t int, upstream float64) {
	he, te := m.ent.Row(h), m.ent.Row(t)
	rv, rm := m.relVec.Row(r), m.relMat.Row(r)
	gh, gt := m.ent.GradRow(h), m.ent.GradRow(t)
	grv, grm := m.relVec.GradRow(r), m.relMat.GradRow(r)

	for i := range he {
		d := rm[i]*he[i] + rv[i] - te[i]
		var dd float64 // d(score)/d(d_i)
		if m.p == 1 {
			dd = -sign(d)
		} else {
			dd = -2 * d
		}
		g := upstream * dd
		gh[i] += g * rm[i]
		grm[i] += g * he[i]
		grv[i] += g
		gt[i] -= g
	}
	m.headBias.Grad[h] += upstream
	m.tailBias.Grad[t] += upstream
}
