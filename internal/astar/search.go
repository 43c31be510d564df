// Package astar implements the bounded-beam A* structural search of
// §4.6 (component C6): the core of FAC. Given a query graph and one case
// graph, Search returns the best legal mapping found when the frontier's
// best state has nothing left to map.
package astar

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/zeebo/blake3"

	"github.com/casegraph/argfac/internal/argerrors"
	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/mapping"
	"github.com/casegraph/argfac/internal/similarity"
)

// Options configures one Search call.
type Options struct {
	// QueueLimit bounds the frontier (Q_max in §4.6). 0 selects the
	// default of 10000; Search has no unbounded setting.
	QueueLimit int
	// Heuristic selects h1 or h2; zero value is HeuristicH2, the
	// required default.
	Heuristic Heuristic
}

const defaultQueueLimit = 10000

// Seed derives a deterministic PRNG seed from a (query, case) id pair,
// per §4.6 "the random element selection is seedable for reproducibility"
// and §5's requirement that parallel and sequential runs produce
// identical results.
func Seed(queryID, caseID string) int64 {
	sum := blake3.Sum256([]byte(queryID + "\x00" + caseID))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Search runs bounded-beam A* for one (query, case) pair and returns the
// best mapping found at termination. It never returns an error for
// "no mapping found" — per §4.6's failure semantics, A* always returns
// some (possibly partial) mapping; errors here indicate a violated
// invariant or cooperative cancellation.
func Search(ctx context.Context, kernel *similarity.Kernel, query, caseGraph *argmodel.Graph, queryID, caseID string, opts Options) (*mapping.Mapping, error) {
	if opts.QueueLimit == 0 {
		opts.QueueLimit = defaultQueueLimit
	}

	m0 := mapping.New(kernel, query.NodeCount(), query.EdgeCount())
	start := newStartNode(m0, query)

	fr := &frontier{items: []*searchNode{start}}
	rng := rand.New(rand.NewSource(Seed(queryID, caseID)))

	for !fr.tail().isGoal() {
		select {
		case <-ctx.Done():
			return nil, argerrors.Cancelled(ctx.Err())
		default:
		}

		if err := expand(ctx, kernel, fr, query, caseGraph, rng, opts); err != nil {
			return nil, fmt.Errorf("case %q: %w", caseID, err)
		}
	}

	return fr.tail().mapping, nil
}

// expand implements §4.6's expansion step.
func expand(ctx context.Context, kernel *similarity.Kernel, fr *frontier, query, caseGraph *argmodel.Graph, rng *rand.Rand, opts Options) error {
	s := fr.tail()
	sel := selectQueryObject(rng, s)

	denom := query.NodeCount() + query.EdgeCount()
	mappedAny := false

	if sel.isNode {
		for _, c := range candidatesForNode(sel.node, caseGraph) {
			if !s.mapping.IsLegalNode(sel.node, c) {
				continue
			}
			succ := s.clone()
			if err := succ.mapping.ExtendNode(ctx, sel.node, c); err != nil {
				return err
			}
			succ.removeNode(sel.node)
			if err := setPriority(ctx, kernel, succ, caseGraph, denom, opts.Heuristic); err != nil {
				return err
			}
			fr.insert(succ)
			mappedAny = true
		}
		if mappedAny {
			fr.removeIdentity(s)
		} else {
			s.removeNode(sel.node)
		}
	} else {
		for _, c := range candidatesForEdge(caseGraph) {
			if !s.mapping.IsLegalEdge(query, caseGraph, sel.edge, c) {
				continue
			}
			succ := s.clone()
			if err := succ.mapping.ExtendEdge(ctx, query, caseGraph, sel.edge, c); err != nil {
				return err
			}
			succ.removeEdge(sel.edge)
			if err := setPriority(ctx, kernel, succ, caseGraph, denom, opts.Heuristic); err != nil {
				return err
			}
			fr.insert(succ)
			mappedAny = true
		}
		if mappedAny {
			fr.removeIdentity(s)
		} else {
			s.removeEdge(sel.edge)
		}
	}

	fr.trim(opts.QueueLimit)
	return nil
}

func setPriority(ctx context.Context, kernel *similarity.Kernel, s *searchNode, caseGraph *argmodel.Graph, denom int, heuristic Heuristic) error {
	var hVal float64
	var err error
	if heuristic == HeuristicH1 {
		hVal = h1(s, denom)
	} else {
		hVal, err = h2(ctx, kernel, s, caseGraph, denom)
		if err != nil {
			return err
		}
	}
	s.f = g(s) + hVal
	return nil
}
