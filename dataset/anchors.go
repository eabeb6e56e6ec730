package dataset

import (
	"math/rand"
	"sort"
)

// AnchorSelection picks a set of representative entities from a dataset's
// training graph, e.g. for anchor-based entity tokenization.
type AnchorSelection interface {
	// Select returns up to k entity ids, most preferred first. Fewer than k
	// are returned when the graph has fewer entities.
	Select(ds Dataset, k int) []int
	Name() string
}

// DegreeAnchorSelection ranks entities by their undirected degree over the
// training split.
type DegreeAnchorSelection struct{}

// Name implements AnchorSelection.
func (DegreeAnchorSelection) Name() string { return "degree" }

// Select implements AnchorSelection.
func (DegreeAnchorSelection) Select(ds Dataset, k int) []int {
	degree := make([]int, ds.NumEntities())
	for _, t := range ds.Triples(SplitTrain) {
		degree[t.Head]++
		degree[t.Tail]++
	}
	return topK(degree, k)
}

// PageRankAnchorSelection ranks entities by power-iteration PageRank over the
// undirected training graph.
type PageRankAnchorSelection struct {
	// Alpha is the damping factor. Zero means the usual 0.85.
	Alpha float64
	// Iterations bounds the power iteration. Zero means 20.
	Iterations int
}

// Name implements AnchorSelection.
func (PageRankAnchorSelection) Name() string { return "pagerank" }

// Select implements AnchorSelection.
func (p PageRankAnchorSelection) Select(ds Dataset, k int) []int {
	alpha := p.Alpha
	if alpha == 0 {
		alpha = 0.85
	}
	iters := p.Iterations
	if iters == 0 {
		iters = 20
	}

	n := ds.NumEntities()
	adj := make([][]int, n)
	for _, t := range ds.Triples(SplitTrain) {
		adj[t.Head] = append(adj[t.Head], t.Tail)
		adj[t.Tail] = append(adj[t.Tail], t.Head)
	}

	rank := make([]float64, n)
	next := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / float64(n)
	}
	for iter := 0; iter < iters; iter++ {
		base := (1 - alpha) / float64(n)
		for i := range next {
			next[i] = base
		}
		for u, neighbors := range adj {
			if len(neighbors) == 0 {
				continue
			}
			share := alpha * rank[u] / float64(len(neighbors))
			for _, v := range neighbors {
				next[v] += share
			}
		}
		rank, next = next, rank
	}

	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(a, b int) bool { return rank[ids[a]] > rank[ids[b]] })
	if k < len(ids) {
		ids = ids[:k]
	}
	return ids
}

// RandomAnchorSelection picks entities uniformly without replacement.
type RandomAnchorSelection struct {
	Seed int64
}

// Name implements AnchorSelection.
func (RandomAnchorSelection) Name() string { return "random" }

// Select implements AnchorSelection.
func (r RandomAnchorSelection) Select(ds Dataset, k int) []int {
	rng := rand.New(rand.NewSource(r.Seed))
	ids := rng.Perm(ds.NumEntities())
	if k < len(ids) {
		ids = ids[:k]
	}
	return ids
}

func topK(score []int, k int) []int {
	ids := make([]int, len(score))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(a, b int) bool { return score[ids[a]] > score[ids[b]] })
	if k < len(ids) {
		ids = ids[:k]
	}
	return ids
}
