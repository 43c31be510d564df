package retrieval

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/casegraph/argfac/internal/argerrors"
	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/astar"
	"github.com/casegraph/argfac/internal/isomorphism"
	"github.com/casegraph/argfac/internal/mac"
	"github.com/casegraph/argfac/internal/mapping"
	"github.com/casegraph/argfac/internal/similarity"
	"github.com/casegraph/argfac/internal/taxonomy"
)

// NodeMappingEntry is one row of a structural mapping result (§6
// response: "for each top structural result, a list of
// {query_node_id, case_node_id, similarity}").
type NodeMappingEntry struct {
	QueryNodeID string
	CaseNodeID  string
	Similarity  float64
}

// QueryResult is one query's full response (§6).
type QueryResult struct {
	SemanticRanking    []ScoredCase
	StructuralRanking  []ScoredCase
	StructuralMappings map[string][]NodeMappingEntry
}

// Dispatcher runs MAC/FAC for one request's worth of queries against a
// shared case base (§4.7).
type Dispatcher struct {
	NewProvider ProviderFactory
	Taxonomy    *taxonomy.Taxonomy
}

// NewDispatcher builds a Dispatcher. newProvider is called once per
// worker (FAC) and once for the sequential MAC pass, each getting its
// own client (§5 "Embedding provider: accessed via a per-worker client").
func NewDispatcher(newProvider ProviderFactory, tax *taxonomy.Taxonomy) *Dispatcher {
	return &Dispatcher{NewProvider: newProvider, Taxonomy: tax}
}

// Retrieve implements §4.7's four-step algorithm for one query.
func (d *Dispatcher) Retrieve(ctx context.Context, cases map[string]*argmodel.Graph, q Query, opts Options) (*QueryResult, error) {
	result := &QueryResult{StructuralMappings: make(map[string][]NodeMappingEntry)}

	facCases := cases

	if opts.SemanticRetrieval {
		macKernel := similarity.NewKernel(d.NewProvider(), d.Taxonomy, opts.SchemeHandling, opts.EmbeddingConfig)
		scores, err := mac.Run(ctx, macKernel, cases, q.macInput())
		if err != nil {
			return nil, err
		}
		ranked := rank(scores, opts.Limit)
		result.SemanticRanking = ranked

		select {
		case <-ctx.Done():
			return nil, argerrors.Cancelled(ctx.Err())
		default:
		}

		if opts.StructuralRetrieval {
			facCases = make(map[string]*argmodel.Graph, len(ranked))
			for _, sc := range ranked {
				facCases[sc.CaseID] = cases[sc.CaseID]
			}
		}
	}

	if !opts.StructuralRetrieval {
		return result, nil
	}
	if q.Graph == nil {
		return nil, argerrors.InvalidRequest("structural_retrieval requires a query graph, got text-only query %q", q.ID)
	}

	facScores, outcomes, err := d.runFAC(ctx, facCases, q.Graph, opts)
	if err != nil {
		return nil, err
	}

	structuralRanking := rank(facScores, opts.Limit)
	result.StructuralRanking = structuralRanking

	for _, sc := range structuralRanking {
		outcome, ok := outcomes[sc.CaseID]
		if !ok {
			continue
		}
		entries := make([]NodeMappingEntry, 0, len(outcome.NodePairs))
		for _, np := range outcome.NodePairs {
			entries = append(entries, NodeMappingEntry{
				QueryNodeID: string(np.Query),
				CaseNodeID:  string(np.Case),
				Similarity:  np.Sim,
			})
		}
		result.StructuralMappings[sc.CaseID] = entries
	}

	return result, nil
}

// facOutcome normalises the two mapping algorithms' results down to what
// the dispatcher needs: a score and the node pairs it mapped.
type facOutcome struct {
	Score     float64
	NodePairs []mapping.NodePair
}

// runFAC runs FAC across facCases, in parallel workers or sequentially
// in debug mode, returning identical results either way (§4.7, §5).
func (d *Dispatcher) runFAC(ctx context.Context, facCases map[string]*argmodel.Graph, query *argmodel.Graph, opts Options) (map[string]float64, map[string]*facOutcome, error) {
	if opts.Debug {
		return d.runFACSequential(ctx, facCases, query, opts)
	}
	return d.runFACParallel(ctx, facCases, query, opts)
}

func (d *Dispatcher) runFACSequential(ctx context.Context, facCases map[string]*argmodel.Graph, query *argmodel.Graph, opts Options) (map[string]float64, map[string]*facOutcome, error) {
	kernel := similarity.NewKernel(d.NewProvider(), d.Taxonomy, opts.SchemeHandling, opts.EmbeddingConfig)
	scores := make(map[string]float64, len(facCases))
	outcomes := make(map[string]*facOutcome, len(facCases))

	for caseID, caseGraph := range facCases {
		select {
		case <-ctx.Done():
			return nil, nil, argerrors.Cancelled(ctx.Err())
		default:
		}
		outcome, err := runOneCase(ctx, kernel, query, caseGraph, query.ID, caseID, opts)
		if err != nil {
			return nil, nil, err
		}
		scores[caseID] = outcome.Score
		outcomes[caseID] = outcome
	}
	return scores, outcomes, nil
}

func (d *Dispatcher) runFACParallel(ctx context.Context, facCases map[string]*argmodel.Graph, query *argmodel.Graph, opts Options) (map[string]float64, map[string]*facOutcome, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = detectWorkerCount()
	}
	if workers > len(facCases) {
		workers = len(facCases)
	}
	if workers <= 0 {
		workers = 1
	}

	type job struct {
		caseID    string
		caseGraph *argmodel.Graph
	}
	type outcomeMsg struct {
		caseID  string
		outcome *facOutcome
		err     error
	}

	jobs := make(chan job, len(facCases))
	results := make(chan outcomeMsg, len(facCases))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kernel := similarity.NewKernel(d.NewProvider(), d.Taxonomy, opts.SchemeHandling, opts.EmbeddingConfig)
			for j := range jobs {
				select {
				case <-ctx.Done():
					results <- outcomeMsg{caseID: j.caseID, err: argerrors.Cancelled(ctx.Err())}
					continue
				default:
				}
				outcome, err := runOneCase(ctx, kernel, query, j.caseGraph, query.ID, j.caseID, opts)
				results <- outcomeMsg{caseID: j.caseID, outcome: outcome, err: err}
			}
		}()
	}

	for caseID, caseGraph := range facCases {
		jobs <- job{caseID: caseID, caseGraph: caseGraph}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	scores := make(map[string]float64, len(facCases))
	outcomes := make(map[string]*facOutcome, len(facCases))
	var firstErr error
	for msg := range results {
		if msg.err != nil {
			if firstErr == nil {
				firstErr = msg.err
			}
			continue
		}
		scores[msg.caseID] = msg.outcome.Score
		outcomes[msg.caseID] = msg.outcome
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return scores, outcomes, nil
}

func runOneCase(ctx context.Context, kernel *similarity.Kernel, query, caseGraph *argmodel.Graph, queryID, caseID string, opts Options) (*facOutcome, error) {
	switch opts.MappingAlgorithm {
	case AlgorithmIsomorphism:
		r, err := isomorphism.Search(ctx, kernel, query, caseGraph, opts.IsomorphismMaxMatches)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", caseID, err)
		}
		return &facOutcome{Score: r.Score, NodePairs: r.NodePairs}, nil

	case AlgorithmAStar:
		m, err := astar.Search(ctx, kernel, query, caseGraph, queryID, caseID, astar.Options{QueueLimit: opts.AstarQueueLimit})
		if err != nil {
			return nil, err
		}
		return &facOutcome{Score: m.Similarity(), NodePairs: m.NodePairs()}, nil

	default:
		return nil, argerrors.InvalidRequest("unknown mapping algorithm %d", opts.MappingAlgorithm)
	}
}

// detectWorkerCount sizes the FAC pool to the machine's available CPUs
// (§4.7 "a pool of size = available CPUs").
func detectWorkerCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
