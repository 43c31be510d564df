// argfac-cli runs one-off retrieval requests from the command line as a
// flag-driven batch tool, rather than the HTTP server's request/response
// cycle.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/casestore"
	"github.com/casegraph/argfac/internal/embedding"
	"github.com/casegraph/argfac/internal/retrieval"
	"github.com/casegraph/argfac/internal/rpcapi"
	"github.com/casegraph/argfac/internal/similarity"
	"github.com/casegraph/argfac/internal/taxonomy"
)

// batchFile is the on-disk shape of the -queries file: a reusable subset
// of rpcapi.Request covering everything a CLI run needs, so the CLI and
// the HTTP server decode requests with the same types.
type batchFile struct {
	Cases   map[string]argmodel.WireGraph `json:"cases,omitempty"`
	Queries []rpcapi.WireQuery            `json:"queries"`
}

func main() {
	casestorePath := flag.String("casestore", "", "Path to a sqlite case store (optional; merges with -queries cases)")
	queriesPath := flag.String("queries", "", "Path to a JSON file with {cases, queries}")
	taxonomyPath := flag.String("taxonomy", "", "Path to a yaml taxonomy file (optional)")
	embeddingURL := flag.String("embedding-url", "http://localhost:8500", "Embedding provider base URL")
	limit := flag.Int("limit", 10, "Max ranked cases per query (0 = unlimited)")
	algorithm := flag.String("algorithm", "astar", "Structural mapping algorithm: astar | isomorphism")
	schemeHandling := flag.String("scheme-handling", "taxonomy", "Scheme comparison policy: unspecified | binary | taxonomy | exact")
	workers := flag.Int("workers", 0, "FAC worker pool size (0 = auto-detect from CPUs)")
	debug := flag.Bool("debug", false, "Run FAC sequentially for reproducible debugging")
	semantic := flag.Bool("semantic", true, "Run the MAC semantic prefilter")
	structural := flag.Bool("structural", true, "Run the FAC structural search")
	flag.Parse()

	if *queriesPath == "" {
		log.Fatal("-queries is required")
	}

	batch, err := loadBatch(*queriesPath)
	if err != nil {
		log.Fatalf("failed to load queries: %v", err)
	}

	cases := make(map[string]*argmodel.Graph)
	if *casestorePath != "" {
		store, err := casestore.Open(*casestorePath)
		if err != nil {
			log.Fatalf("failed to open case store: %v", err)
		}
		defer store.Close()
		loaded, err := store.LoadAll()
		if err != nil {
			log.Fatalf("failed to load case store: %v", err)
		}
		for id, g := range loaded {
			cases[id] = g
		}
	}
	for id, w := range batch.Cases {
		g, err := argmodel.FromWire(w)
		if err != nil {
			log.Fatalf("failed to parse case %q: %v", id, err)
		}
		cases[id] = g
	}

	var tax *taxonomy.Taxonomy
	if *taxonomyPath != "" {
		tax, err = taxonomy.Load(*taxonomyPath)
		if err != nil {
			log.Fatalf("failed to load taxonomy: %v", err)
		}
	}

	newProvider := func() embedding.Provider {
		return embedding.NewHTTPProvider(*embeddingURL)
	}
	dispatcher := retrieval.NewDispatcher(newProvider, tax)

	opts := retrieval.Options{
		Limit:               *limit,
		SemanticRetrieval:   *semantic,
		StructuralRetrieval: *structural,
		Workers:             *workers,
		Debug:               *debug,
	}
	opts.MappingAlgorithm, err = parseAlgorithm(*algorithm)
	if err != nil {
		log.Fatal(err)
	}
	opts.SchemeHandling, err = parseSchemeHandling(*schemeHandling)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("argfac-cli: %s cases loaded, %d queries to run", humanize.Comma(int64(len(cases))), len(batch.Queries))

	start := time.Now()
	results := make(map[string]*retrieval.QueryResult, len(batch.Queries))
	for _, wq := range batch.Queries {
		q, err := queryFromWire(wq)
		if err != nil {
			log.Fatalf("invalid query %q: %v", wq.ID, err)
		}
		r, err := dispatcher.Retrieve(context.Background(), cases, q, opts)
		if err != nil {
			log.Fatalf("query %q failed: %v", wq.ID, err)
		}
		results[wq.ID] = r
	}
	log.Printf("argfac-cli: done in %s", time.Since(start).Round(time.Millisecond))

	if err := printResults(results); err != nil {
		log.Fatalf("failed to print results: %v", err)
	}
}

func loadBatch(path string) (*batchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var b batchFile
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &b, nil
}

func queryFromWire(wq rpcapi.WireQuery) (retrieval.Query, error) {
	q := retrieval.Query{ID: wq.ID, Text: wq.Text}
	if wq.Graph != nil {
		g, err := argmodel.FromWire(*wq.Graph)
		if err != nil {
			return retrieval.Query{}, err
		}
		q.Graph = g
	}
	return q, nil
}

func parseAlgorithm(s string) (retrieval.Algorithm, error) {
	switch s {
	case "astar":
		return retrieval.AlgorithmAStar, nil
	case "isomorphism":
		return retrieval.AlgorithmIsomorphism, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q", s)
	}
}

func parseSchemeHandling(s string) (similarity.SchemeHandling, error) {
	switch s {
	case "unspecified":
		return similarity.SchemeUnspecified, nil
	case "binary":
		return similarity.SchemeBinary, nil
	case "taxonomy":
		return similarity.SchemeTaxonomy, nil
	case "exact":
		return similarity.SchemeExact, nil
	default:
		return 0, fmt.Errorf("unknown scheme handling %q", s)
	}
}

func printResults(results map[string]*retrieval.QueryResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
