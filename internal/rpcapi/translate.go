package rpcapi

import (
	"strings"

	"github.com/casegraph/argfac/internal/argerrors"
	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/embedding"
	"github.com/casegraph/argfac/internal/retrieval"
	"github.com/casegraph/argfac/internal/similarity"
)

// boolOr returns *p if p is non-nil, else def.
func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func parseMappingAlgorithm(s string) (retrieval.Algorithm, error) {
	switch strings.ToLower(s) {
	case "", "astar", "a_star", "a*":
		return retrieval.AlgorithmAStar, nil
	case "isomorphism", "monomorphism":
		return retrieval.AlgorithmIsomorphism, nil
	default:
		return 0, argerrors.InvalidRequest("unknown mapping_algorithm %q", s)
	}
}

func parseSchemeHandling(s string) (similarity.SchemeHandling, error) {
	switch strings.ToLower(s) {
	case "", "unspecified":
		return similarity.SchemeUnspecified, nil
	case "binary":
		return similarity.SchemeBinary, nil
	case "taxonomy":
		return similarity.SchemeTaxonomy, nil
	case "exact":
		return similarity.SchemeExact, nil
	default:
		return 0, argerrors.InvalidRequest("unknown scheme_handling %q", s)
	}
}

func parseSimilarityMethod(s string) (embedding.SimilarityMethod, error) {
	switch strings.ToLower(s) {
	case "", "cosine":
		return embedding.MethodCosine, nil
	case "dynamax_dice":
		return embedding.MethodDynamaxDice, nil
	case "dynamax_jaccard":
		return embedding.MethodDynamaxJaccard, nil
	case "maxpool_jaccard":
		return embedding.MethodMaxpoolJaccard, nil
	case "dynamax_otsuka":
		return embedding.MethodDynamaxOtsuka, nil
	default:
		return 0, argerrors.InvalidRequest("unknown similarity_method %q", s)
	}
}

// toOptions translates a Request's shared settings into retrieval.Options.
// Per-query values (cases, queries) are translated separately since they
// vary per entry in req.Queries.
func toOptions(req Request) (retrieval.Options, error) {
	algo, err := parseMappingAlgorithm(req.MappingAlgorithm)
	if err != nil {
		return retrieval.Options{}, err
	}
	handling, err := parseSchemeHandling(req.SchemeHandling)
	if err != nil {
		return retrieval.Options{}, err
	}
	method, err := parseSimilarityMethod(req.NLPConfig.SimilarityMethod)
	if err != nil {
		return retrieval.Options{}, err
	}

	return retrieval.Options{
		Limit:               req.Limit,
		SemanticRetrieval:   boolOr(req.SemanticRetrieval, true),
		StructuralRetrieval: boolOr(req.StructuralRetrieval, true),
		MappingAlgorithm:    algo,
		SchemeHandling:      handling,
		EmbeddingConfig: embedding.Config{
			Language:         req.NLPConfig.Language,
			Model:            req.NLPConfig.Model,
			SimilarityMethod: method,
		},
		AstarQueueLimit:       req.Extras.AstarQueueLimit,
		IsomorphismMaxMatches: req.Extras.IsomorphismMaxMatches,
		Workers:               req.Extras.Workers,
		Debug:                 req.Extras.Debug,
	}, nil
}

// toCases parses a Request's inline case map into argmodel.Graphs, keyed
// by case id. Malformed cases are reported as §7 MalformedGraph errors
// naming the offending case id.
func toCases(wire map[string]argmodel.WireGraph) (map[string]*argmodel.Graph, error) {
	out := make(map[string]*argmodel.Graph, len(wire))
	for id, w := range wire {
		g, err := argmodel.FromWire(w)
		if err != nil {
			return nil, argerrors.MalformedGraph("case %q: %v", id, err)
		}
		out[id] = g
	}
	return out, nil
}

// toQuery parses one WireQuery into a retrieval.Query.
func toQuery(wq WireQuery) (retrieval.Query, error) {
	q := retrieval.Query{ID: wq.ID, Text: wq.Text}
	if wq.Graph != nil {
		g, err := argmodel.FromWire(*wq.Graph)
		if err != nil {
			return retrieval.Query{}, argerrors.MalformedGraph("query %q: %v", wq.ID, err)
		}
		q.Graph = g
	}
	if q.Graph == nil && q.Text == "" {
		return retrieval.Query{}, argerrors.InvalidRequest("query %q has neither graph nor text", wq.ID)
	}
	return q, nil
}

func fromResult(r *retrieval.QueryResult) QueryResponse {
	resp := QueryResponse{
		SemanticRanking:    fromRanking(r.SemanticRanking),
		StructuralRanking:  fromRanking(r.StructuralRanking),
		StructuralMappings: make(map[string][]MappedNodePair, len(r.StructuralMappings)),
	}
	for caseID, entries := range r.StructuralMappings {
		pairs := make([]MappedNodePair, 0, len(entries))
		for _, e := range entries {
			pairs = append(pairs, MappedNodePair{
				QueryNodeID: e.QueryNodeID,
				CaseNodeID:  e.CaseNodeID,
				Similarity:  e.Similarity,
			})
		}
		resp.StructuralMappings[caseID] = pairs
	}
	return resp
}

func fromRanking(ranking []retrieval.ScoredCase) []RankedCase {
	if ranking == nil {
		return nil
	}
	out := make([]RankedCase, 0, len(ranking))
	for _, sc := range ranking {
		out = append(out, RankedCase{CaseID: sc.CaseID, Score: sc.Score})
	}
	return out
}
