// Package isomorphism implements the alternative, non-core mapping
// algorithm of §4.6's "Alternative algorithm" paragraph (component C6b):
// VF2-style subgraph monomorphism over label-abstracted graphs, retained
// for benchmarking and selectable via the request's mapping_algorithm
// field.
package isomorphism

import (
	"context"
	"fmt"

	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/mapping"
	"github.com/casegraph/argfac/internal/similarity"
)

// DefaultMaxMatches bounds how many monomorphisms a single (query,case)
// search enumerates before picking the best seen so far, keeping worst
// case behaviour bounded on graphs with many symmetric label classes.
const DefaultMaxMatches = 2000

// Result is one (query,case) isomorphism search's outcome: the best
// monomorphism found (by mean atom-node similarity) and its score.
type Result struct {
	NodePairs []mapping.NodePair
	Score     float64
}

// Search finds every subgraph monomorphism of query into caseGraph (up
// to maxMatches; 0 uses DefaultMaxMatches) and returns the one
// maximising mean atom-node similarity, per §4.6: "Among all
// monomorphisms found, pick the one maximising the mean atom-node
// similarity."
func Search(ctx context.Context, kernel *similarity.Kernel, query, caseGraph *argmodel.Graph, maxMatches int) (*Result, error) {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}

	patternGraph := buildCandidateGraph(query)
	targetGraph := buildCandidateGraph(caseGraph)

	monos := enumerateMonomorphisms(patternGraph, targetGraph, maxMatches)
	if len(monos) == 0 {
		return &Result{Score: 0}, nil
	}

	atomCount := len(query.AtomNodes)
	var best *Result

	for _, mono := range monos {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		pairs := make([]mapping.NodePair, 0, len(mono))
		var sum float64
		for _, pair := range mono {
			qNode := query.Nodes[pair.pattern]
			cNode := caseGraph.Nodes[pair.target]
			if _, isAtom := qNode.(*argmodel.AtomNode); !isAtom {
				continue
			}
			sim, err := kernel.Sim(ctx, qNode, cNode)
			if err != nil {
				return nil, fmt.Errorf("isomorphism search: %w", err)
			}
			sum += sim
			pairs = append(pairs, mapping.NodePair{Query: pair.pattern, Case: pair.target, Sim: sim})
		}

		score := 0.0
		if atomCount > 0 {
			score = sum / float64(atomCount)
		}

		if best == nil || score > best.Score {
			best = &Result{NodePairs: pairs, Score: score}
		}
	}

	return best, nil
}

// Run runs Search across every case, mirroring mac.Run's shape so the
// dispatcher can treat both mapping algorithms uniformly.
func Run(ctx context.Context, kernel *similarity.Kernel, cases map[string]*argmodel.Graph, query *argmodel.Graph, maxMatches int) (map[string]*Result, error) {
	out := make(map[string]*Result, len(cases))
	for id, c := range cases {
		r, err := Search(ctx, kernel, query, c, maxMatches)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", id, err)
		}
		out[id] = r
	}
	return out, nil
}
