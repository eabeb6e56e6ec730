// Package loss implements training criteria over positive and negative
// triple scores.
//
// A Loss evaluates one positive score against its generated negatives and
// returns the loss value together with the gradients with respect to each
// score, which the model turns into parameter gradients.
package loss

import (
	"fmt"
	"math"
)

// Loss scores a positive/negative contrast.
type Loss interface {
	// Forward returns the loss value, the gradient w.r.t. the positive score,
	// and the gradient w.r.t. each negative score.
	Forward(pos float64, negs []float64) (value, dPos float64, dNegs []float64)
	Name() string
}

// MarginRanking is the pairwise hinge loss
//
//	mean_i max(0, margin - pos + neg_i)
//
// which pushes each positive score above every negative by at least margin.
type MarginRanking struct {
	Margin float64
}

// NewMarginRanking creates a margin ranking loss.
func NewMarginRanking(margin float64) (*MarginRanking, error) {
	if margin <= 0 {
		return nil, fmt.Errorf("margin must be positive, got %v", margin)
	}
	return &MarginRanking{Margin: margin}, nil
}

// Name implements Loss.
func (l *MarginRanking) Name() string { return "MarginRankingLoss" }

// Forward implements Loss.
func (l *MarginRanking) Forward(pos float64, negs []float64) (float64, float64, []float64) {
	dNegs := make([]float64, len(negs))
	if len(negs) == 0 {
		return 0, 0, dNegs
	}
	var value, dPos float64
	inv := 1 / float64(len(negs))
	for i, neg := range negs {
		if v := l.Margin - pos + neg; v > 0 {
			value += v * inv
			dPos -= inv
			dNegs[i] = inv
		}
	}
	return value, dPos, dNegs
}

// Softplus is the pointwise criterion
//
//	softplus(-pos) + mean_i softplus(neg_i)
//
// treating scores as logits of triple truth.
type Softplus struct{}

// NewSoftplus creates a softplus loss.
func NewSoftplus() *Softplus { return &Softplus{} }

// Name implements Loss.
func (l *Softplus) Name() string { return "SoftplusLoss" }

// Forward implements Loss.
func (l *Softplus) Forward(pos float64, negs []float64) (float64, float64, []float64) {
	value := softplus(-pos)
	dPos := -sigmoid(-pos)
	dNegs := make([]float64, len(negs))
	if len(negs) > 0 {
		inv := 1 / float64(len(negs))
		for i, neg := range negs {
			value += softplus(neg) * inv
			dNegs[i] = sigmoid(neg) * inv
		}
	}
	return value, dPos, dNegs
}

// BCEWithLogits is binary cross entropy over score logits with targets 1 for
// the positive and 0 for each negative.
type BCEWithLogits struct{}

// NewBCEWithLogits creates a binary cross entropy loss.
func NewBCEWithLogits() *BCEWithLogits { return &BCEWithLogits{} }

// Name implements Loss.
func (l *BCEWithLogits) Name() string { return "BCEWithLogitsLoss" }

// Forward implements Loss.
func (l *BCEWithLogits) Forward(pos float64, negs []float64) (float64, float64, []float64) {
	n := float64(1 + len(negs))
	value := softplus(-pos) / n
	dPos := (sigmoid(pos) - 1) / n
	dNegs := make([]float64, len(negs))
	for i, neg := range negs {
		value += softplus(neg) / n
		dNegs[i] = sigmoid(neg) / n
	}
	return value, dPos, dNegs
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// softplus computes log(1+exp(x)) without overflow for large x.
func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}
