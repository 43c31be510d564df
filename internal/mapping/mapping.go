// Package mapping implements the partial injective mapping of §4.5: the
// state A* branches on, extends, and ultimately scores.
package mapping

import (
	"context"
	"fmt"

	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/similarity"
)

// NodePair records one committed (query, case) node pair together with
// the similarity computed for it at extension time — per §9's resolved
// Open Question, this is never recomputed afterwards.
type NodePair struct {
	Query argmodel.NodeID
	Case  argmodel.NodeID
	Sim   float64
}

// EdgePair records one committed (query, case) edge pair.
type EdgePair struct {
	Query argmodel.EdgeID
	Case  argmodel.EdgeID
	Sim   float64
}

// Mapping is a partial injective mapping between a query graph and one
// case graph. availableNodes/availableEdges are fixed at construction to
// the query's totals (§4.5 "the denominator is fixed at construction to
// the query's totals"), so a Mapping's Similarity is always comparable
// across differently-sized partial mappings of the same query.
type Mapping struct {
	kernel *similarity.Kernel

	availableNodes int
	availableEdges int

	nodePairs []NodePair
	edgePairs []EdgePair

	mappedCaseNodes map[argmodel.NodeID]bool
	mappedCaseEdges map[argmodel.EdgeID]bool

	sumSim float64
}

// New builds an empty Mapping for a query with the given node/edge
// totals.
func New(kernel *similarity.Kernel, availableNodes, availableEdges int) *Mapping {
	return &Mapping{
		kernel:          kernel,
		availableNodes:  availableNodes,
		availableEdges:  availableEdges,
		mappedCaseNodes: make(map[argmodel.NodeID]bool),
		mappedCaseEdges: make(map[argmodel.EdgeID]bool),
	}
}

// Clone returns an independent copy so a SearchNode can branch into
// several successors without one mutating another's history (§4.6
// "branching creates a new Mapping").
func (m *Mapping) Clone() *Mapping {
	c := &Mapping{
		kernel:          m.kernel,
		availableNodes:  m.availableNodes,
		availableEdges:  m.availableEdges,
		nodePairs:       append([]NodePair(nil), m.nodePairs...),
		edgePairs:       append([]EdgePair(nil), m.edgePairs...),
		mappedCaseNodes: make(map[argmodel.NodeID]bool, len(m.mappedCaseNodes)),
		mappedCaseEdges: make(map[argmodel.EdgeID]bool, len(m.mappedCaseEdges)),
		sumSim:          m.sumSim,
	}
	for k, v := range m.mappedCaseNodes {
		c.mappedCaseNodes[k] = v
	}
	for k, v := range m.mappedCaseEdges {
		c.mappedCaseEdges[k] = v
	}
	return c
}

func sameVariant(q, c argmodel.Node) bool {
	switch q.(type) {
	case *argmodel.AtomNode:
		_, ok := c.(*argmodel.AtomNode)
		return ok
	case *argmodel.SchemeNode:
		_, ok := c.(*argmodel.SchemeNode)
		return ok
	default:
		return false
	}
}

// IsLegalNode implements §4.5's node legality: same variant (Atom/Scheme)
// and the case node not already mapped. The query side's injectivity is
// enforced structurally by the search always drawing q from a shrinking
// "remaining" set, not by a check here (see internal/astar).
func (m *Mapping) IsLegalNode(q, c argmodel.Node) bool {
	if m.mappedCaseNodes[c.NodeID()] {
		return false
	}
	return sameVariant(q, c)
}

// IsLegalEdge implements §4.5/§9's resolved permissive policy: the case
// edge isn't already mapped, and each endpoint pair is legal as a node
// mapping — "legal or already-mapped", not "must already be mapped".
func (m *Mapping) IsLegalEdge(queryGraph, caseGraph *argmodel.Graph, q, c *argmodel.Edge) bool {
	if m.mappedCaseEdges[c.ID] {
		return false
	}
	qSrc, qTgt := queryGraph.Nodes[q.Source], queryGraph.Nodes[q.Target]
	cSrc, cTgt := caseGraph.Nodes[c.Source], caseGraph.Nodes[c.Target]
	if qSrc == nil || qTgt == nil || cSrc == nil || cTgt == nil {
		return false
	}
	endpointLegal := func(qn, cn argmodel.Node) bool {
		for _, p := range m.nodePairs {
			if p.Query == qn.NodeID() {
				return p.Case == cn.NodeID()
			}
		}
		return m.IsLegalNode(qn, cn)
	}
	return endpointLegal(qSrc, cSrc) && endpointLegal(qTgt, cTgt)
}

// ExtendNode adds a (q,c) node pair. Precondition: IsLegalNode(q,c).
func (m *Mapping) ExtendNode(ctx context.Context, q, c argmodel.Node) error {
	sim, err := m.kernel.Sim(ctx, q, c)
	if err != nil {
		return fmt.Errorf("extend node mapping: %w", err)
	}
	m.nodePairs = append(m.nodePairs, NodePair{Query: q.NodeID(), Case: c.NodeID(), Sim: sim})
	m.mappedCaseNodes[c.NodeID()] = true
	m.sumSim += sim
	return nil
}

// ExtendEdge adds a (q,c) edge pair. Precondition:
// IsLegalEdge(queryGraph, caseGraph, q, c).
func (m *Mapping) ExtendEdge(ctx context.Context, queryGraph, caseGraph *argmodel.Graph, q, c *argmodel.Edge) error {
	qSrc, qTgt := queryGraph.Nodes[q.Source], queryGraph.Nodes[q.Target]
	cSrc, cTgt := caseGraph.Nodes[c.Source], caseGraph.Nodes[c.Target]
	sim, err := m.kernel.SimEdgeNodes(ctx, qSrc, qTgt, cSrc, cTgt)
	if err != nil {
		return fmt.Errorf("extend edge mapping: %w", err)
	}
	m.edgePairs = append(m.edgePairs, EdgePair{Query: q.ID, Case: c.ID, Sim: sim})
	m.mappedCaseEdges[c.ID] = true
	m.sumSim += sim
	return nil
}

// Similarity implements §4.5's similarity contract: the sum of every
// committed pair's similarity, divided by the fixed query-size
// denominator. An empty mapping (or a zero-sized query) is 0.
func (m *Mapping) Similarity() float64 {
	denom := m.availableNodes + m.availableEdges
	if denom == 0 {
		return 0
	}
	return m.sumSim / float64(denom)
}

// NodePairs returns the committed node pairs.
func (m *Mapping) NodePairs() []NodePair { return m.nodePairs }

// EdgePairs returns the committed edge pairs.
func (m *Mapping) EdgePairs() []EdgePair { return m.edgePairs }

// NodeCount and EdgeCount report how many pairs are committed so far.
func (m *Mapping) NodeCount() int { return len(m.nodePairs) }
func (m *Mapping) EdgeCount() int { return len(m.edgePairs) }
