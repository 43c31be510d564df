package rpcapi

import (
	"testing"

	"github.com/casegraph/argfac/internal/argerrors"
	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/embedding"
	"github.com/casegraph/argfac/internal/retrieval"
	"github.com/casegraph/argfac/internal/similarity"
)

func TestBoolOr(t *testing.T) {
	truthy := true
	if !boolOr(&truthy, false) {
		t.Errorf("boolOr(&true, false) = false, want true")
	}
	if !boolOr(nil, true) {
		t.Errorf("boolOr(nil, true) = false, want true")
	}
}

func TestParseMappingAlgorithm(t *testing.T) {
	cases := map[string]retrieval.Algorithm{
		"":              retrieval.AlgorithmAStar,
		"astar":         retrieval.AlgorithmAStar,
		"A_STAR":        retrieval.AlgorithmAStar,
		"isomorphism":   retrieval.AlgorithmIsomorphism,
		"Monomorphism":  retrieval.AlgorithmIsomorphism,
	}
	for in, want := range cases {
		got, err := parseMappingAlgorithm(in)
		if err != nil {
			t.Fatalf("parseMappingAlgorithm(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("parseMappingAlgorithm(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := parseMappingAlgorithm("bogus"); !argerrors.Is(err, argerrors.KindInvalidRequest) {
		t.Errorf("expected InvalidRequest for unknown algorithm")
	}
}

func TestParseSchemeHandling(t *testing.T) {
	cases := map[string]similarity.SchemeHandling{
		"":          similarity.SchemeUnspecified,
		"binary":    similarity.SchemeBinary,
		"TAXONOMY":  similarity.SchemeTaxonomy,
		"exact":     similarity.SchemeExact,
	}
	for in, want := range cases {
		got, err := parseSchemeHandling(in)
		if err != nil {
			t.Fatalf("parseSchemeHandling(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("parseSchemeHandling(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseSchemeHandling("bogus"); !argerrors.Is(err, argerrors.KindInvalidRequest) {
		t.Errorf("expected InvalidRequest for unknown scheme handling")
	}
}

func TestParseSimilarityMethod(t *testing.T) {
	got, err := parseSimilarityMethod("dynamax_jaccard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != embedding.MethodDynamaxJaccard {
		t.Errorf("parseSimilarityMethod = %v, want MethodDynamaxJaccard", got)
	}
	if _, err := parseSimilarityMethod("nope"); !argerrors.Is(err, argerrors.KindInvalidRequest) {
		t.Errorf("expected InvalidRequest for unknown similarity method")
	}
}

func TestToOptionsDefaultsBooleansToTrue(t *testing.T) {
	opts, err := toOptions(Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.SemanticRetrieval || !opts.StructuralRetrieval {
		t.Errorf("expected both retrieval flags to default true, got %+v", opts)
	}
}

func TestToOptionsPropagatesExtras(t *testing.T) {
	req := Request{
		Extras: WireExtras{AstarQueueLimit: 42, Workers: 3, Debug: true},
	}
	opts, err := toOptions(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.AstarQueueLimit != 42 || opts.Workers != 3 || !opts.Debug {
		t.Errorf("extras not propagated: %+v", opts)
	}
}

func TestToOptionsRejectsInvalidAlgorithm(t *testing.T) {
	_, err := toOptions(Request{MappingAlgorithm: "bogus"})
	if !argerrors.Is(err, argerrors.KindInvalidRequest) {
		t.Errorf("expected InvalidRequest, got %v", err)
	}
}

func sampleWireGraph() argmodel.WireGraph {
	return argmodel.WireGraph{
		ID: "g1",
		Nodes: []argmodel.WireNode{
			{ID: "n1", Variant: "atom", Text: "x"},
		},
	}
}

func TestToCasesParsesEveryEntry(t *testing.T) {
	wire := map[string]argmodel.WireGraph{"c1": sampleWireGraph()}
	cases, err := toCases(wire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("len(cases) = %d, want 1", len(cases))
	}
}

func TestToCasesReportsMalformedGraph(t *testing.T) {
	bad := sampleWireGraph()
	bad.Nodes = append(bad.Nodes, argmodel.WireNode{ID: "n1", Variant: "atom", Text: "dup"})
	wire := map[string]argmodel.WireGraph{"c1": bad}

	_, err := toCases(wire)
	if !argerrors.Is(err, argerrors.KindMalformedGraph) {
		t.Errorf("expected MalformedGraph, got %v", err)
	}
}

func TestToQueryRequiresGraphOrText(t *testing.T) {
	_, err := toQuery(WireQuery{ID: "q1"})
	if !argerrors.Is(err, argerrors.KindInvalidRequest) {
		t.Errorf("expected InvalidRequest for empty query, got %v", err)
	}
}

func TestToQueryAcceptsTextOnly(t *testing.T) {
	q, err := toQuery(WireQuery{ID: "q1", Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Graph != nil || q.Text != "hello" {
		t.Errorf("unexpected query: %+v", q)
	}
}

func TestToQueryParsesGraph(t *testing.T) {
	g := sampleWireGraph()
	q, err := toQuery(WireQuery{ID: "q1", Graph: &g})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Graph == nil || q.Graph.NodeCount() != 1 {
		t.Errorf("unexpected query graph: %+v", q.Graph)
	}
}

func TestFromRankingNilStaysNil(t *testing.T) {
	if got := fromRanking(nil); got != nil {
		t.Errorf("fromRanking(nil) = %v, want nil", got)
	}
}

func TestFromResultTranslatesMappings(t *testing.T) {
	r := &retrieval.QueryResult{
		SemanticRanking: []retrieval.ScoredCase{{CaseID: "c1", Score: 0.9}},
		StructuralMappings: map[string][]retrieval.NodeMappingEntry{
			"c1": {{QueryNodeID: "q1", CaseNodeID: "n1", Similarity: 1}},
		},
	}
	resp := fromResult(r)
	if len(resp.SemanticRanking) != 1 || resp.SemanticRanking[0].CaseID != "c1" {
		t.Errorf("unexpected semantic ranking: %v", resp.SemanticRanking)
	}
	if len(resp.StructuralMappings["c1"]) != 1 {
		t.Errorf("unexpected structural mappings: %v", resp.StructuralMappings)
	}
}
