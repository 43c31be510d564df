package isomorphism

import (
	"sort"

	"github.com/casegraph/argfac/internal/argmodel"
)

// candidateGraph is the label-abstracted adjacency view VF2 matches
// against: node ids paired with their label, and an adjacency index for
// O(1) edge-existence checks during feasibility testing.
type candidateGraph struct {
	nodeIDs []argmodel.NodeID
	labels  map[argmodel.NodeID]string
	hasEdge map[[2]argmodel.NodeID]bool
}

func buildCandidateGraph(g *argmodel.Graph) *candidateGraph {
	cg := &candidateGraph{
		labels:  make(map[argmodel.NodeID]string, len(g.Nodes)),
		hasEdge: make(map[[2]argmodel.NodeID]bool, len(g.Edges)),
	}
	for id, n := range g.Nodes {
		cg.nodeIDs = append(cg.nodeIDs, id)
		cg.labels[id] = label(n)
	}
	sort.Slice(cg.nodeIDs, func(i, j int) bool { return cg.nodeIDs[i] < cg.nodeIDs[j] })
	for _, e := range g.Edges {
		cg.hasEdge[[2]argmodel.NodeID{e.Source, e.Target}] = true
	}
	return cg
}

// enumerateMonomorphisms finds every total injective mapping from
// pattern's nodes to target's nodes that preserves node labels and edge
// adjacency (a subgraph monomorphism of pattern into target), stopping
// early once maxMatches have been found (0 = unbounded). Node ids in
// pattern are visited in sorted order so results are deterministic.
func enumerateMonomorphisms(pattern, target *candidateGraph, maxMatches int) [][]nodePair {
	var results [][]nodePair
	used := make(map[argmodel.NodeID]bool, len(target.nodeIDs))
	current := make([]nodePair, 0, len(pattern.nodeIDs))

	var backtrack func(i int) bool
	backtrack = func(i int) bool {
		if i == len(pattern.nodeIDs) {
			results = append(results, append([]nodePair(nil), current...))
			return maxMatches > 0 && len(results) >= maxMatches
		}
		p := pattern.nodeIDs[i]
		for _, t := range target.nodeIDs {
			if used[t] || target.labels[t] != pattern.labels[p] {
				continue
			}
			if !feasible(pattern, target, current, p, t) {
				continue
			}
			used[t] = true
			current = append(current, nodePair{pattern: p, target: t})

			stop := backtrack(i + 1)

			current = current[:len(current)-1]
			used[t] = false

			if stop {
				return true
			}
		}
		return false
	}

	backtrack(0)
	return results
}

type nodePair struct {
	pattern argmodel.NodeID
	target  argmodel.NodeID
}

// feasible checks that extending current with (p, t) preserves every
// pattern edge already covered by the partial mapping: for each already
// mapped pattern node q, if pattern has an edge p->q or q->p, target must
// have the corresponding edge t->mapped(q) or mapped(q)->t.
func feasible(pattern, target *candidateGraph, current []nodePair, p, t argmodel.NodeID) bool {
	for _, pair := range current {
		if pattern.hasEdge[[2]argmodel.NodeID{p, pair.pattern}] && !target.hasEdge[[2]argmodel.NodeID{t, pair.target}] {
			return false
		}
		if pattern.hasEdge[[2]argmodel.NodeID{pair.pattern, p}] && !target.hasEdge[[2]argmodel.NodeID{pair.target, t}] {
			return false
		}
	}
	return true
}
