package astar

import (
	"context"

	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/similarity"
)

// Heuristic selects which future-cost estimate f = g + h uses.
type Heuristic int

const (
	// HeuristicH2 is the admissible upper bound of §4.6: each remaining
	// element is optimistically matched to its single best partner in
	// the case, ignoring legality and injectivity. This is the default
	// and MUST be used unless a caller explicitly asks for H1.
	HeuristicH2 Heuristic = iota
	// HeuristicH1 is the coarser baseline |remaining|/denom, permitted
	// only for comparison runs.
	HeuristicH1
)

// g is the past-reward term: the similarity already secured by the
// mapping committed so far.
func g(s *searchNode) float64 {
	return s.mapping.Similarity()
}

// h1 is the baseline heuristic of §4.6.
func h1(s *searchNode, denom int) float64 {
	if denom == 0 {
		return 0
	}
	return float64(len(s.remainingNodes)+len(s.remainingEdges)) / float64(denom)
}

// h2 is the admissible heuristic of §4.6: for every remaining element,
// the best achievable similarity against any case candidate, summed and
// normalised by the query's fixed size.
func h2(ctx context.Context, kernel *similarity.Kernel, s *searchNode, caseGraph *argmodel.Graph, denom int) (float64, error) {
	if denom == 0 {
		return 0, nil
	}

	var total float64

	for _, x := range s.remainingNodes {
		candidates := candidatesForNode(x, caseGraph)
		best, err := bestSim(ctx, kernel, x, nodesToAny(candidates))
		if err != nil {
			return 0, err
		}
		total += best
	}

	for _, x := range s.remainingEdges {
		candidates := candidatesForEdge(caseGraph)
		best, err := bestEdgeSim(ctx, kernel, s, caseGraph, x, candidates)
		if err != nil {
			return 0, err
		}
		total += best
	}

	return total / float64(denom), nil
}

func nodesToAny(nodes []argmodel.Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

// bestSim computes max_y sim(x, y) over candidates, batched through a
// single Kernel.Sims call (candidates(x,C) can include every atom or
// scheme node in the case, so batching keeps this from paying for one
// provider round trip per candidate).
func bestSim(ctx context.Context, kernel *similarity.Kernel, x argmodel.Node, candidates []any) (float64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	pairs := make([][2]any, len(candidates))
	for i, c := range candidates {
		pairs[i] = [2]any{x, c}
	}
	sims, err := kernel.Sims(ctx, pairs)
	if err != nil {
		return 0, err
	}
	return maxOf(sims), nil
}

// bestEdgeSim computes max_y sim(x, y) for an edge x over every case
// edge y, using the search node's query graph and the case graph to resolve each edge's
// endpoint nodes (the kernel itself is graph-agnostic, per
// internal/similarity's SimEdgeNodes contract).
func bestEdgeSim(ctx context.Context, kernel *similarity.Kernel, s *searchNode, caseGraph *argmodel.Graph, x *argmodel.Edge, candidates []*argmodel.Edge) (float64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	queryGraph := s.queryGraph
	if queryGraph == nil {
		return 0, nil
	}
	xSrc, xTgt := queryGraph.Nodes[x.Source], queryGraph.Nodes[x.Target]
	best := 0.0
	for _, y := range candidates {
		ySrc, yTgt := caseGraph.Nodes[y.Source], caseGraph.Nodes[y.Target]
		sim, err := kernel.SimEdgeNodes(ctx, xSrc, xTgt, ySrc, yTgt)
		if err != nil {
			return 0, err
		}
		if sim > best {
			best = sim
		}
	}
	return best, nil
}

func maxOf(xs []float64) float64 {
	best := 0.0
	for i, x := range xs {
		if i == 0 || x > best {
			best = x
		}
	}
	return best
}
