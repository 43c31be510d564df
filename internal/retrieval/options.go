// Package retrieval implements the per-query dispatcher of §4.7
// (component C7): MAC prefilter, parallel FAC over the post-MAC
// candidate set, and final ranking/merging.
package retrieval

import (
	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/embedding"
	"github.com/casegraph/argfac/internal/similarity"
)

// Algorithm selects the structural mapping algorithm (§6
// mapping_algorithm).
type Algorithm int

const (
	AlgorithmAStar Algorithm = iota
	AlgorithmIsomorphism
)

// Query is one query's input: a parsed graph, raw text, or both. A
// text-only query (Graph == nil) can only drive MAC, never FAC (§6:
// "or raw text for MAC-only queries").
type Query struct {
	ID    string
	Graph *argmodel.Graph
	Text  string
}

// macInput returns the value mac.Run should compare every case against:
// the graph if present, else the raw text.
func (q Query) macInput() any {
	if q.Graph != nil {
		return q.Graph
	}
	return q.Text
}

// Options carries one request's retrieval configuration (§6).
type Options struct {
	Limit                 int // 0 = unlimited
	SemanticRetrieval     bool
	StructuralRetrieval   bool
	MappingAlgorithm      Algorithm
	SchemeHandling        similarity.SchemeHandling
	EmbeddingConfig       embedding.Config
	AstarQueueLimit       int // extras.astar_queue_limit, 0 -> astar package default
	IsomorphismMaxMatches int // 0 -> isomorphism package default

	// Workers bounds the FAC worker pool size; 0 auto-detects from
	// available CPUs (§4.7).
	Workers int
	// Debug forces sequential execution in the calling goroutine,
	// producing identical results to the parallel path (§4.7, §5).
	Debug bool
}

// ProviderFactory builds a fresh, per-worker embedding Provider so that
// each FAC worker holds its own client with no shared mutable state
// (§4.7, §5 "Shared resources").
type ProviderFactory func() embedding.Provider
