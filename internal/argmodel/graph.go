package argmodel

import (
	"sort"
	"strings"
)

// Graph is the immutable, typed directed multigraph of §3. Once built by
// FromWire it is never mutated again: "Graphs are created from an external
// in-memory representation at request entry and are immutable thereafter."
type Graph struct {
	ID   string
	Name string

	Nodes       map[NodeID]Node
	AtomNodes   map[NodeID]*AtomNode
	SchemeNodes map[NodeID]*SchemeNode
	Edges       map[EdgeID]*Edge

	// Text is the graph's MAC-level text representation: the id-sorted,
	// space-joined concatenation of atom-node texts (§4.3).
	Text string
}

// NodeCount returns the number of nodes, used as part of the fixed
// denominator in Mapping.similarity (§3).
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// graphText computes the id-sorted, space-joined atom text used both for
// Graph.Text and for on-the-fly (Graph, string) comparisons in the kernel.
func graphText(atoms map[NodeID]*AtomNode) string {
	ids := make([]NodeID, 0, len(atoms))
	for id := range atoms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, atoms[id].Text)
	}
	return strings.Join(parts, " ")
}
