package isomorphism

import (
	"context"
	"strings"
	"testing"

	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/embedding"
	"github.com/casegraph/argfac/internal/similarity"
)

type fakeProvider struct{}

func (fakeProvider) Vectors(_ context.Context, texts []string, _ embedding.Level, _ embedding.Config) ([]embedding.Vector, error) {
	out := make([]embedding.Vector, len(texts))
	for i, t := range texts {
		v := make([]float64, 26)
		for _, r := range strings.ToLower(t) {
			if r >= 'a' && r <= 'z' {
				v[r-'a']++
			}
		}
		out[i] = embedding.Vector{Document: v}
	}
	return out, nil
}

func buildGraph(t *testing.T, w argmodel.WireGraph) *argmodel.Graph {
	t.Helper()
	g, err := argmodel.FromWire(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestLabelDistinguishesAtomAndScheme(t *testing.T) {
	atom := &argmodel.AtomNode{ID: "a"}
	if got := label(atom); got != "atom" {
		t.Errorf("label(atom) = %q, want \"atom\"", got)
	}

	bareScheme := &argmodel.SchemeNode{ID: "s"}
	if got := label(bareScheme); got != "scheme" {
		t.Errorf("label(bare scheme) = %q, want \"scheme\"", got)
	}

	taxed := &argmodel.SchemeNode{ID: "s2", Scheme: &argmodel.SchemeValue{Kind: argmodel.SchemeSupport, Taxonomy: "expert opinion"}}
	if got := label(taxed); got != "scheme:support:expert opinion" {
		t.Errorf("label(taxed scheme) = %q", got)
	}
}

func TestBuildCandidateGraphIndexesEdgesAndSortsNodes(t *testing.T) {
	g := buildGraph(t, argmodel.WireGraph{
		ID: "g",
		Nodes: []argmodel.WireNode{
			{ID: "b", Variant: "atom", Text: "b"},
			{ID: "a", Variant: "atom", Text: "a"},
		},
		Edges: []argmodel.WireEdge{
			{ID: "e1", Source: "a", Target: "b"},
		},
	})
	cg := buildCandidateGraph(g)

	if cg.nodeIDs[0] != "a" || cg.nodeIDs[1] != "b" {
		t.Errorf("nodeIDs not sorted: %v", cg.nodeIDs)
	}
	if !cg.hasEdge[[2]argmodel.NodeID{"a", "b"}] {
		t.Errorf("expected hasEdge[a,b] true")
	}
	if cg.hasEdge[[2]argmodel.NodeID{"b", "a"}] {
		t.Errorf("expected hasEdge[b,a] false")
	}
}

func TestEnumerateMonomorphismsFindsIdentityOnIdenticalGraphs(t *testing.T) {
	g := buildGraph(t, argmodel.WireGraph{
		ID: "g",
		Nodes: []argmodel.WireNode{
			{ID: "n1", Variant: "atom", Text: "x"},
			{ID: "n2", Variant: "atom", Text: "y"},
		},
		Edges: []argmodel.WireEdge{
			{ID: "e1", Source: "n1", Target: "n2"},
		},
	})
	cg := buildCandidateGraph(g)

	monos := enumerateMonomorphisms(cg, cg, 0)
	if len(monos) == 0 {
		t.Fatalf("expected at least one monomorphism")
	}
	for _, mono := range monos {
		if len(mono) != 2 {
			t.Errorf("len(mono) = %d, want 2", len(mono))
		}
	}
}

func TestEnumerateMonomorphismsRespectsMaxMatches(t *testing.T) {
	g := buildGraph(t, argmodel.WireGraph{
		ID: "g",
		Nodes: []argmodel.WireNode{
			{ID: "n1", Variant: "atom", Text: "x"},
			{ID: "n2", Variant: "atom", Text: "y"},
		},
	})
	cg := buildCandidateGraph(g)

	monos := enumerateMonomorphisms(cg, cg, 1)
	if len(monos) != 1 {
		t.Errorf("len(monos) = %d, want 1 (bounded by maxMatches)", len(monos))
	}
}

func TestFeasibleRejectsBrokenAdjacency(t *testing.T) {
	pattern := buildGraph(t, argmodel.WireGraph{
		ID: "p",
		Nodes: []argmodel.WireNode{
			{ID: "p1", Variant: "atom", Text: "x"},
			{ID: "p2", Variant: "atom", Text: "y"},
		},
		Edges: []argmodel.WireEdge{
			{ID: "pe1", Source: "p1", Target: "p2"},
		},
	})
	target := buildGraph(t, argmodel.WireGraph{
		ID: "t",
		Nodes: []argmodel.WireNode{
			{ID: "t1", Variant: "atom", Text: "x"},
			{ID: "t2", Variant: "atom", Text: "y"},
		},
		// no edges: t1 -> t2 absent
	})
	pcg, tcg := buildCandidateGraph(pattern), buildCandidateGraph(target)

	current := []nodePair{{pattern: "p1", target: "t1"}}
	if feasible(pcg, tcg, current, "p2", "t2") {
		t.Errorf("expected feasible to reject mapping missing the required edge")
	}
}

func TestSearchOnIdenticalGraphsScoresOne(t *testing.T) {
	k := similarity.NewKernel(fakeProvider{}, nil, similarity.SchemeUnspecified, embedding.Config{})
	g := buildGraph(t, argmodel.WireGraph{
		ID: "g",
		Nodes: []argmodel.WireNode{
			{ID: "n1", Variant: "atom", Text: "rain falls"},
			{ID: "n2", Variant: "atom", Text: "ground is wet"},
		},
		Edges: []argmodel.WireEdge{
			{ID: "e1", Source: "n1", Target: "n2"},
		},
	})

	result, err := Search(context.Background(), k, g, g, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("Score = %v, want 1 (graph matched against itself)", result.Score)
	}
	if len(result.NodePairs) != 2 {
		t.Errorf("len(NodePairs) = %d, want 2", len(result.NodePairs))
	}
}

func TestSearchNoMatchesReturnsZeroScore(t *testing.T) {
	k := similarity.NewKernel(fakeProvider{}, nil, similarity.SchemeUnspecified, embedding.Config{})
	pattern := buildGraph(t, argmodel.WireGraph{
		ID: "p",
		Nodes: []argmodel.WireNode{
			{ID: "p1", Variant: "scheme"},
		},
	})
	target := buildGraph(t, argmodel.WireGraph{
		ID: "t",
		Nodes: []argmodel.WireNode{
			{ID: "t1", Variant: "atom", Text: "x"},
		},
	})

	result, err := Search(context.Background(), k, pattern, target, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 (no label-compatible candidates)", result.Score)
	}
}

func TestRunCoversEveryCase(t *testing.T) {
	k := similarity.NewKernel(fakeProvider{}, nil, similarity.SchemeUnspecified, embedding.Config{})
	query := buildGraph(t, argmodel.WireGraph{
		ID: "q",
		Nodes: []argmodel.WireNode{
			{ID: "n1", Variant: "atom", Text: "x"},
		},
	})
	cases := map[string]*argmodel.Graph{
		"c1": query,
		"c2": buildGraph(t, argmodel.WireGraph{ID: "c2", Nodes: []argmodel.WireNode{{ID: "m1", Variant: "atom", Text: "y"}}}),
	}

	results, err := Run(context.Background(), k, cases, query, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
}
