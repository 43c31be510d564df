package argmodel

import (
	"github.com/casegraph/argfac/internal/argerrors"
)

// WireScheme is the external serialised form of a SchemeValue.
type WireScheme struct {
	Kind     string `json:"kind,omitempty"`
	Taxonomy string `json:"taxonomy,omitempty"`
}

// WireNode is the external serialised form of a single node. Exactly one
// of Text (atom) or Scheme should be set; Variant disambiguates
// explicitly rather than relying on field presence, mirroring how a real
// wire format (protobuf oneof) would tag the case.
type WireNode struct {
	ID      string      `json:"id"`
	Variant string      `json:"variant"` // "atom" | "scheme"
	Text    string      `json:"text,omitempty"`
	Scheme  *WireScheme `json:"scheme,omitempty"`
}

// WireEdge is the external serialised form of an edge.
type WireEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// WireGraph is the external serialised form of a whole graph, as it
// arrives in a request's `cases`/`queries` map or from the case-base store.
type WireGraph struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Nodes []WireNode `json:"nodes"`
	Edges []WireEdge `json:"edges"`
}

func parseSchemeKind(s string) SchemeKind {
	switch s {
	case "support", "Support", "SUPPORT":
		return SchemeSupport
	case "attack", "Attack", "ATTACK":
		return SchemeAttack
	case "rephrase", "Rephrase", "REPHRASE":
		return SchemeRephrase
	case "preference", "Preference", "PREFERENCE":
		return SchemePreference
	default:
		return SchemeUnspecified
	}
}

// FromWire builds an immutable Graph from its external representation,
// enforcing the invariants of §3: every edge's endpoints are present
// among the nodes, atom/scheme node sets partition the node set, and node
// ids are unique. Any violation is reported as a MalformedGraph error so
// the caller can decide (per §7) whether to drop a case or fail a query.
func FromWire(w WireGraph) (*Graph, error) {
	nodes := make(map[NodeID]Node, len(w.Nodes))
	atoms := make(map[NodeID]*AtomNode)
	schemes := make(map[NodeID]*SchemeNode)

	for _, wn := range w.Nodes {
		id := NodeID(wn.ID)
		if id == "" {
			return nil, argerrors.MalformedGraph("node with empty id in graph %q", w.ID)
		}
		if _, dup := nodes[id]; dup {
			return nil, argerrors.MalformedGraph("duplicate node id %q in graph %q", id, w.ID)
		}

		switch wn.Variant {
		case "atom":
			n := &AtomNode{ID: id, Text: wn.Text}
			nodes[id] = n
			atoms[id] = n
		case "scheme":
			var sv *SchemeValue
			if wn.Scheme != nil {
				sv = &SchemeValue{
					Kind:     parseSchemeKind(wn.Scheme.Kind),
					Taxonomy: wn.Scheme.Taxonomy,
				}
			}
			n := &SchemeNode{ID: id, Scheme: sv}
			nodes[id] = n
			schemes[id] = n
		default:
			return nil, argerrors.MalformedGraph("node %q in graph %q has unknown variant %q", id, w.ID, wn.Variant)
		}
	}

	edges := make(map[EdgeID]*Edge, len(w.Edges))
	for _, we := range w.Edges {
		id := EdgeID(we.ID)
		if id == "" {
			return nil, argerrors.MalformedGraph("edge with empty id in graph %q", w.ID)
		}
		if _, dup := edges[id]; dup {
			return nil, argerrors.MalformedGraph("duplicate edge id %q in graph %q", id, w.ID)
		}

		src, tgt := NodeID(we.Source), NodeID(we.Target)
		if _, ok := nodes[src]; !ok {
			return nil, argerrors.MalformedGraph("edge %q references missing source node %q", id, src)
		}
		if _, ok := nodes[tgt]; !ok {
			return nil, argerrors.MalformedGraph("edge %q references missing target node %q", id, tgt)
		}

		edges[id] = &Edge{ID: id, Source: src, Target: tgt}
	}

	return &Graph{
		ID:          w.ID,
		Name:        w.Name,
		Nodes:       nodes,
		AtomNodes:   atoms,
		SchemeNodes: schemes,
		Edges:       edges,
		Text:        graphText(atoms),
	}, nil
}
