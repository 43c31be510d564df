// Package mac implements the "Many Are Called" semantic prefilter of
// §4.4 (component C4): a cheap, text/embedding-only similarity pass over
// every case, used to narrow the case base before the expensive
// structural search.
package mac

import (
	"context"
	"fmt"

	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/similarity"
)

// Query is either a parsed graph or a raw text string, mirroring §4.4's
// `query: Graph | string`.
type Query = any

// Run computes sim(case, query) for every case, batched through the
// Similarity Kernel's vector cache so the whole case base costs at most
// one embedding provider round trip per distinct text.
func Run(ctx context.Context, kernel *similarity.Kernel, cases map[string]*argmodel.Graph, query Query) (map[string]float64, error) {
	ids := make([]string, 0, len(cases))
	pairs := make([][2]any, 0, len(cases))
	for id, c := range cases {
		ids = append(ids, id)
		pairs = append(pairs, [2]any{c, query})
	}

	sims, err := kernel.Sims(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("mac prefilter: %w", err)
	}

	out := make(map[string]float64, len(ids))
	for i, id := range ids {
		out[id] = sims[i]
	}
	return out, nil
}
