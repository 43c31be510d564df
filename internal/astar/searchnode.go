package astar

import (
	"math/rand"
	"sort"

	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/mapping"
)

// searchNode is the A* state of §4.6: the query elements still to be
// mapped, the mapping committed so far, and this state's priority f.
type searchNode struct {
	remainingNodes []argmodel.Node
	remainingEdges []*argmodel.Edge
	mapping        *mapping.Mapping
	f              float64

	// queryGraph lets h2 resolve an edge's endpoint nodes without
	// threading the query graph through every heuristic call.
	queryGraph *argmodel.Graph
}

func newStartNode(m *mapping.Mapping, query *argmodel.Graph) *searchNode {
	nodes := make([]argmodel.Node, 0, len(query.Nodes))
	for _, n := range query.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].NodeID() < nodes[j].NodeID() })

	edges := make([]*argmodel.Edge, 0, len(query.Edges))
	for _, e := range query.Edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	return &searchNode{
		remainingNodes: nodes,
		remainingEdges: edges,
		mapping:        m,
		f:              1.0, // optimistic upper bound, per §4.6 start state
		queryGraph:     query,
	}
}

// clone produces a successor with its own copies of the remaining slices
// and a cloned Mapping, so removing an element from the successor leaves
// the parent's state untouched.
func (s *searchNode) clone() *searchNode {
	return &searchNode{
		remainingNodes: append([]argmodel.Node(nil), s.remainingNodes...),
		remainingEdges: append([]*argmodel.Edge(nil), s.remainingEdges...),
		mapping:        s.mapping.Clone(),
		f:              s.f,
		queryGraph:     s.queryGraph,
	}
}

func (s *searchNode) isGoal() bool {
	return len(s.remainingNodes) == 0 && len(s.remainingEdges) == 0
}

// removeNode drops a query node from remainingNodes by node id.
func (s *searchNode) removeNode(q argmodel.Node) {
	for i, n := range s.remainingNodes {
		if n.NodeID() == q.NodeID() {
			s.remainingNodes = append(s.remainingNodes[:i], s.remainingNodes[i+1:]...)
			return
		}
	}
}

// removeEdge drops a query edge from remainingEdges by edge id.
func (s *searchNode) removeEdge(q *argmodel.Edge) {
	for i, e := range s.remainingEdges {
		if e.ID == q.ID {
			s.remainingEdges = append(s.remainingEdges[:i], s.remainingEdges[i+1:]...)
			return
		}
	}
}

// selection is what select1 in the reference implementation returns: the
// one query element chosen this expansion. Its case-side candidates are
// computed separately by candidatesForNode/candidatesForEdge.
type selection struct {
	node   argmodel.Node // set iff isNode
	edge   *argmodel.Edge
	isNode bool
}

// selectQueryObject implements §4.6's select rule: if any query nodes
// remain, pick one uniformly at random; else pick a random remaining
// edge. Nodes are exhausted before edges so that, per §4.6's rationale,
// edge endpoint legality is usually already satisfied by the time an
// edge is attempted.
func selectQueryObject(rng *rand.Rand, s *searchNode) selection {
	if len(s.remainingNodes) > 0 {
		return selection{node: s.remainingNodes[rng.Intn(len(s.remainingNodes))], isNode: true}
	}
	return selection{edge: s.remainingEdges[rng.Intn(len(s.remainingEdges))]}
}

// candidatesForNode returns the case-side nodes a query node of the same
// variant could legally map onto, per §4.6's candidates(x,C) definition.
func candidatesForNode(q argmodel.Node, caseGraph *argmodel.Graph) []argmodel.Node {
	var pool map[argmodel.NodeID]*argmodel.AtomNode
	var schemePool map[argmodel.NodeID]*argmodel.SchemeNode
	switch q.(type) {
	case *argmodel.AtomNode:
		pool = caseGraph.AtomNodes
	case *argmodel.SchemeNode:
		schemePool = caseGraph.SchemeNodes
	}

	var ids []argmodel.NodeID
	for id := range pool {
		ids = append(ids, id)
	}
	for id := range schemePool {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]argmodel.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := pool[id]; ok {
			out = append(out, n)
		} else {
			out = append(out, schemePool[id])
		}
	}
	return out
}

// candidatesForEdge returns every case edge, per §4.6's candidates(x,C)
// definition for edges.
func candidatesForEdge(caseGraph *argmodel.Graph) []*argmodel.Edge {
	ids := make([]argmodel.EdgeID, 0, len(caseGraph.Edges))
	for id := range caseGraph.Edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*argmodel.Edge, 0, len(ids))
	for _, id := range ids {
		out = append(out, caseGraph.Edges[id])
	}
	return out
}
