package model

import (
	"fmt"
	"math/rand"
)

// DistMultOptions configures a DistMult model.
type DistMultOptions struct {
	EmbeddingDim int
	Seed         int64

	EntityInitializer   Initializer
	RelationInitializer Initializer
}

// DistMult scores a triple with the trilinear product sum_i h_i * r_i * t_i.
// The relation acts as a diagonal bilinear form, so DistMult treats every
// relation as symmetric.
type DistMult struct {
	dim int
	ent *Param
	rel *Param
}

// NewDistMult allocates and initializes a DistMult model.
func NewDistMult(numEntities, numRelations int, opts DistMultOptions) (*DistMult, error) {
	if opts.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", opts.EmbeddingDim)
	}

	m := &DistMult{
		dim: opts.EmbeddingDim,
		ent: NewParam("entity_embeddings", numEntities, opts.EmbeddingDim),
		rel: NewParam("relation_embeddings", numRelations, opts.EmbeddingDim),
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	entInit := opts.EntityInitializer
	if entInit == nil {
		entInit = XavierUniform
	}
	relInit := opts.RelationInitializer
	if relInit == nil {
		relInit = XavierUniform
	}
	entInit(rng, m.ent)
	relInit(rng, m.rel)

	return m, nil
}

// Name implements Model.
func (m *DistMult) Name() string { return "DistMult" }

// Dim implements Model.
func (m *DistMult) Dim() int { return m.dim }

// Params implements Model.
func (m *DistMult) Params() []*Param { return []*Param{m.ent, m.rel} }

// Score implements Model.
func (m *DistMult) Score(h, r, t int) float64 {
	he, re, te := m.ent.Row(h), m.rel.Row(r), m.ent.Row(t)
	var s float64
	for i := range he {
		s += he[i] * re[i] * te[i]
	}
	return s
}

// AccumulateGradients implements Model.
func (m *DistMult) AccumulateGradients(h, r, t int, upstream float64) {
	he, re, te := m.ent.Row(h), m.rel.Row(r), m.ent.Row(t)
	gh, gr, gt := m.ent.GradRow(h), m.rel.GradRow(r), m.ent.GradRow(t)
	for i := range he {
		gh[i] += upstream * re[i] * te[i]
		gr[i] += upstream * he[i] * te[i]
		gt[i] += upstream * he[i] * re[i]
	}
}
