package model

import (
	"fmt"
	"math"
	"math/rand"
)

const normEps = 1e-12

// TransEOptions configures a TransE model.
type TransEOptions struct {
	EmbeddingDim   int
	ScoringFctNorm int // 1 or 2
	Seed           int64

	EntityInitializer   Initializer
	RelationInitializer Initializer
}

// TransE interprets a relation as a translation in embedding space and scores
// a triple by the negative p-norm of h + r - t.
type TransE struct {
	dim int
	p   int
	ent *Param
	rel *Param
}

// NewTransE allocates and initializes a TransE model for the given vocabulary.
func NewTransE(numEntities, numRelations int, opts TransEOptions) (*TransE, error) {
	if opts.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", opts.EmbeddingDim)
	}
	if opts.ScoringFctNorm != 1 && opts.ScoringFctNorm != 2 {
		return nil, fmt.Errorf("scoring function norm must be 1 or 2, got %d", opts.ScoringFctNorm)
	}

	m := &TransE{
		dim: opts.EmbeddingDim,
		p:   opts.ScoringFctNorm,
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
	m.PostParameterUpdate()

	return m, nil
}

// Name implements Model.
func (m *TransE) Name() string { return "TransE" }

// Dim implements Model.
func (m *TransE) Dim() int { return m.dim }

// Params implements Model.
func (m *TransE) Params() []*Param { return []*Param{m.ent, m.rel} }

// Score implements Model.
func (m *TransE) Score(h, r, t int) float64 {
	he, re, te := m.ent.Row(h), m.rel.Row(r), m.ent.Row(t)
	var norm float64
	if m.p == 1 {
		for i := range he {
			norm += math.Abs(he[i] + re[i] - te[i])
		}
	} else {
		for i := range he {
			d := he[i] + re[i] - te[i]
			norm += d * d
		}
		norm = math.Sqrt(norm)
	}
	return -norm
}

// AccumulateGradients implements Model.
func (m *TransE) AccumulateGradients(h, r, t int, upstream float64) {
	he, re, te := m.ent.Row(h), m.rel.Row(r), m.ent.Row(t)
	gh, gr, gt := m.ent.GradRow(h), m.rel.GradRow(r), m.ent.GradRow(t)

	if m.p == 1 {
		for i := range he {
			d := he[i] + re[i] - te[i]
			g := -upstream * sign(d)
			gh[i] += g
			gr[i] += g
			gt[i] -= g
		}
		return
	}

	var norm float64
	for i := range he {
		d := he[i] + re[i] - te[i]
		norm += d * d
	}
	norm = math.Sqrt(norm) + normEps
	for i := range he {
		d := he[i] + re[i] - te[i]
		g := -upstream * d / norm
		gh[i] += g
		gr[i] += g
		gt[i] -= g
	}
}

// PostParameterUpdate renormalizes entity embeddings to unit L2 norm, the
// usual TransE constraint.
func (m *TransE) PostParameterUpdate() {
	for i := 0; i < m.ent.Rows; i++ {
		row := m.ent.Row(i)
		var norm float64
		for _, v := range row {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm < normEps {
			continue
		}
		for j := range row {
			row[j] /= norm
		}
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
