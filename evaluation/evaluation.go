// Package evaluation computes rank-based link-prediction metrics.
//
// For every evaluated triple the true head and true tail are ranked against
// all candidate replacements. In filtered mode, candidates that form other
// known-true triples are excluded from the ranking pool so that correct
// alternate answers are not counted as errors.
package evaluation

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kgelab/embark/dataset"
	"github.com/kgelab/embark/model"
	"github.com/kgelab/embark/resource"
)

// DefaultKs are the hits@k cutoffs reported when none are configured.
var DefaultKs = []int{1, 3, 10}

// Result holds the metrics of one evaluation pass over a split.
type Result struct {
	MeanRank           float64         `json:"mean_rank"`
	MeanReciprocalRank float64         `json:"mean_reciprocal_rank"`
	HitsAt             map[int]float64 `json:"hits_at_k"`
	NumTriples         int             `json:"num_triples"`
}

// Options configures a RankBased evaluator.
type Options struct {
	Filtered bool
	Ks       []int
}

// RankBased is the standard entity-ranking evaluator.
type RankBased struct {
	filtered bool
	ks       []int
	known    *dataset.KnownSet
	num      int
	ctrl     *resource.Controller
}

// NewRankBased creates an evaluator over the dataset's vocabulary. The
// dataset's known-true set drives filtering when opts.Filtered is set.
func NewRankBased(ds dataset.Dataset, opts Options) (*RankBased, error) {
	ks := opts.Ks
	if len(ks) == 0 {
		ks = DefaultKs
	}
	for _, k := range ks {
		if k <= 0 {
			return nil, fmt.Errorf("hits@k cutoff must be positive, got %d", k)
		}
	}
	sorted := append([]int(nil), ks...)
	sort.Ints(sorted)

	return &RankBased{
		filtered: opts.Filtered,
		ks:       sorted,
		known:    ds.Known(),
		num:      ds.NumEntities(),
	}, nil
}

// Name returns the evaluator identifier.
func (e *RankBased) Name() string { return "rankbased" }

// SetResourceController bounds the scoring workers by a shared controller.
// A nil controller means GOMAXPROCS workers and no shared budget.
func (e *RankBased) SetResourceController(ctrl *resource.Controller) { e.ctrl = ctrl }

// Filtered reports whether known-true triples are excluded from rankings.
func (e *RankBased) Filtered() bool { return e.filtered }

// Evaluate ranks both head and tail predictions for every triple and averages
// the two sides. Triples are scored in parallel by workers drawn from the
// resource controller; scoring only reads the model, the reduction is serial.
func (e *RankBased) Evaluate(ctx context.Context, m model.Model, triples []dataset.Triple) (*Result, error) {
	if len(triples) == 0 {
		return nil, fmt.Errorf("evaluation split is empty")
	}

	type sideRanks struct {
		tail, head int
	}
	ranked := make([]sideRanks, len(triples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.ctrl.MaxWorkers())
	for i := range triples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := e.ctrl.AcquireWorker(gctx); err != nil {
				return err
			}
			defer e.ctrl.ReleaseWorker()

			ranked[i] = sideRanks{
				tail: e.rank(m, triples[i], false),
				head: e.rank(m, triples[i], true),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var sumRank, sumRR float64
	hits := make(map[int]int, len(e.ks))
	ranks := 0
	for _, sr := range ranked {
		for _, rank := range []int{sr.tail, sr.head} {
			sumRank += float64(rank)
			sumRR += 1 / float64(rank)
			for _, k := range e.ks {
				if rank <= k {
					hits[k]++
				}
			}
			ranks++
		}
	}

	res := &Result{
		MeanRank:           sumRank / float64(ranks),
		MeanReciprocalRank: sumRR / float64(ranks),
		HitsAt:             make(map[int]float64, len(e.ks)),
		NumTriples:         len(triples),
	}
	for _, k := range e.ks {
		res.HitsAt[k] = float64(hits[k]) / float64(ranks)
	}
	return res, nil
}

// rank computes the realistic rank of the true entity: one plus the number of
// candidates scoring strictly higher, plus half the candidates scoring equal.
func (e *RankBased) rank(m model.Model, t dataset.Triple, head bool) int {
	trueScore := m.Score(t.Head, t.Relation, t.Tail)

	better, equal := 0, 0
	for c := 0; c < e.num; c++ {
		cand := t
		if head {
			if c == t.Head {
				continue
			}
			cand.Head = c
		} else {
			if c == t.Tail {
				continue
			}
			cand.Tail = c
		}
		if e.filtered && e.known.Contains(cand) {
			continue
		}
		s := m.Score(cand.Head, cand.Relation, cand.Tail)
		switch {
		case s > trueScore:
			better++
		case s == trueScore:
			equal++
		}
	}
	return 1 + better + equal/2
}
