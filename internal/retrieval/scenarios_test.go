package retrieval

import (
	"context"
	"testing"

	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/similarity"
)

// TestScenarioIdentity matches a case base containing exactly the query
// graph against itself: both rankings should put the sole case first with
// a perfect score, and the structural mapping should be complete.
func TestScenarioIdentity(t *testing.T) {
	g := buildGraph(t, argmodel.WireGraph{
		ID: "q",
		Nodes: []argmodel.WireNode{
			{ID: "n1", Variant: "atom", Text: "rain falls"},
			{ID: "n2", Variant: "atom", Text: "ground is wet"},
		},
		Edges: []argmodel.WireEdge{{ID: "e1", Source: "n1", Target: "n2"}},
	})
	cases := map[string]*argmodel.Graph{"c1": g}
	query := Query{ID: "q", Graph: g}

	d := NewDispatcher(newFakeProvider, nil)
	opts := Options{
		SemanticRetrieval:   true,
		StructuralRetrieval: true,
		Limit:               1,
		MappingAlgorithm:    AlgorithmAStar,
		SchemeHandling:      similarity.SchemeBinary,
		Debug:               true,
	}

	result, err := d.Retrieve(context.Background(), cases, query, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.SemanticRanking) != 1 || result.SemanticRanking[0].CaseID != "c1" || result.SemanticRanking[0].Score != 1 {
		t.Fatalf("SemanticRanking = %v, want [(c1, 1.0)]", result.SemanticRanking)
	}
	if len(result.StructuralRanking) != 1 || result.StructuralRanking[0].CaseID != "c1" || result.StructuralRanking[0].Score != 1 {
		t.Fatalf("StructuralRanking = %v, want [(c1, 1.0)]", result.StructuralRanking)
	}
	mapping := result.StructuralMappings["c1"]
	if len(mapping) != g.NodeCount()+g.EdgeCount() {
		t.Fatalf("len(mapping) = %d, want %d", len(mapping), g.NodeCount()+g.EdgeCount())
	}
	for _, pair := range mapping {
		if pair.Similarity != 1 {
			t.Errorf("pair %+v has similarity %v, want 1.0", pair, pair.Similarity)
		}
	}
}

// TestScenarioEmptyCaseBase matches an empty case base: both rankings
// should come back empty with no error.
func TestScenarioEmptyCaseBase(t *testing.T) {
	query := testQuery(t)
	d := NewDispatcher(newFakeProvider, nil)
	opts := Options{SemanticRetrieval: true, StructuralRetrieval: true, MappingAlgorithm: AlgorithmAStar, Debug: true}

	result, err := d.Retrieve(context.Background(), map[string]*argmodel.Graph{}, query, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.SemanticRanking) != 0 {
		t.Errorf("SemanticRanking = %v, want empty", result.SemanticRanking)
	}
	if len(result.StructuralRanking) != 0 {
		t.Errorf("StructuralRanking = %v, want empty", result.StructuralRanking)
	}
}

// TestScenarioTypeProhibitsMapping matches a query built entirely of atom
// nodes against a case built entirely of scheme nodes: no node pair is ever
// legal, so the mapping should stay empty with score 0 and no error.
func TestScenarioTypeProhibitsMapping(t *testing.T) {
	query := buildGraph(t, argmodel.WireGraph{
		ID: "q",
		Nodes: []argmodel.WireNode{
			{ID: "q1", Variant: "atom", Text: "a"},
			{ID: "q2", Variant: "atom", Text: "b"},
		},
	})
	caseGraph := buildGraph(t, argmodel.WireGraph{
		ID: "c",
		Nodes: []argmodel.WireNode{
			{ID: "c1", Variant: "scheme"},
			{ID: "c2", Variant: "scheme"},
		},
	})
	cases := map[string]*argmodel.Graph{"c1": caseGraph}

	d := NewDispatcher(newFakeProvider, nil)
	opts := Options{StructuralRetrieval: true, MappingAlgorithm: AlgorithmAStar, Debug: true}

	result, err := d.Retrieve(context.Background(), cases, Query{ID: "q", Graph: query}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.StructuralRanking) != 1 || result.StructuralRanking[0].Score != 0 {
		t.Fatalf("StructuralRanking = %v, want score 0", result.StructuralRanking)
	}
	if len(result.StructuralMappings["c1"]) != 0 {
		t.Errorf("expected an empty mapping, got %v", result.StructuralMappings["c1"])
	}
}

// TestScenarioQueueLimitConvergence matches two identical 4-atom-node
// graphs with the A* frontier bounded to a single state: even this tight a
// queue limit must still converge on the perfect mapping, since the greedy
// path through identical texts never needs to backtrack.
func TestScenarioQueueLimitConvergence(t *testing.T) {
	build := func(id string) *argmodel.Graph {
		return buildGraph(t, argmodel.WireGraph{
			ID: id,
			Nodes: []argmodel.WireNode{
				{ID: "a1", Variant: "atom", Text: "alpha"},
				{ID: "a2", Variant: "atom", Text: "beta"},
				{ID: "a3", Variant: "atom", Text: "gamma"},
				{ID: "a4", Variant: "atom", Text: "delta"},
			},
		})
	}
	query := build("q")
	caseGraph := build("c1")
	cases := map[string]*argmodel.Graph{"c1": caseGraph}

	d := NewDispatcher(newFakeProvider, nil)
	opts := Options{
		StructuralRetrieval: true,
		MappingAlgorithm:    AlgorithmAStar,
		AstarQueueLimit:     1,
		Debug:               true,
	}

	result, err := d.Retrieve(context.Background(), cases, Query{ID: "q", Graph: query}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.StructuralRanking) != 1 || result.StructuralRanking[0].Score != 1 {
		t.Fatalf("StructuralRanking = %v, want score 1.0 even with queue_limit=1", result.StructuralRanking)
	}
}
