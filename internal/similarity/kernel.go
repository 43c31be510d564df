// Package similarity implements the two-element similarity kernel of
// §4.1: the single function every other component composes to compare
// two graph elements, with a per-request vector cache and a pluggable
// embedding provider underneath.
package similarity

import (
	"context"
	"fmt"

	"github.com/casegraph/argfac/internal/argerrors"
	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/embedding"
	"github.com/casegraph/argfac/internal/taxonomy"
)

// SchemeHandling selects how two SchemeNodes are compared (§4.1 "scheme
// handling policies").
type SchemeHandling int

const (
	// SchemeUnspecified treats any two SchemeNodes as fully similar,
	// ignoring their kind and taxonomy value.
	SchemeUnspecified SchemeHandling = iota
	// SchemeBinary compares only scheme kind: 1.0 if equal, else 0.
	SchemeBinary
	// SchemeTaxonomy compares scheme kind (binary) and, when both nodes
	// are Support schemes, refines it with Wu-Palmer similarity of their
	// taxonomy values.
	SchemeTaxonomy
	// SchemeExact requires kind and taxonomy value to match exactly.
	SchemeExact
)

// Kernel computes sim(x, y) for any pair of graph elements per §4.1,
// backed by an embedding Provider and a Taxonomy, with exactly one
// vectorCache per request (reset by constructing a fresh Kernel at the
// start of every Retrieve call — see internal/retrieval).
type Kernel struct {
	cache    *vectorCache
	taxonomy *taxonomy.Taxonomy
	policy   SchemeHandling
}

// NewKernel builds a Kernel with a fresh, empty vector cache. Callers
// (the dispatcher, per request) must not reuse a Kernel across requests.
func NewKernel(provider embedding.Provider, tax *taxonomy.Taxonomy, policy SchemeHandling, cfg embedding.Config) *Kernel {
	return &Kernel{
		cache:    newVectorCache(provider, cfg),
		taxonomy: tax,
		policy:   policy,
	}
}

// Warm primes the vector cache for every distinct text appearing in a
// batch of upcoming comparisons, so Sim/Sims never pays for more than one
// provider round trip per distinct text (§4.1 "Rationale").
func (k *Kernel) Warm(ctx context.Context, texts []string) error {
	return k.cache.warm(ctx, texts)
}

// Sim computes sim(x, y) per the pair-type dispatch table of §4.1. x and
// y may each be an *argmodel.AtomNode, *argmodel.SchemeNode,
// *argmodel.Graph, or string (graph-level text). Edge/Edge comparisons go
// through SimEdgeNodes instead, since an Edge alone can't resolve its
// endpoint nodes. Any other pairing, or a type mismatch not covered by
// the table, returns 0.
func (k *Kernel) Sim(ctx context.Context, x, y any) (float64, error) {
	switch a := x.(type) {
	case *argmodel.AtomNode:
		if b, ok := y.(*argmodel.AtomNode); ok {
			return k.simTexts(ctx, a.Text, b.Text)
		}
		return 0, nil

	case *argmodel.SchemeNode:
		if b, ok := y.(*argmodel.SchemeNode); ok {
			return k.simSchemes(a, b), nil
		}
		return 0, nil

	case *argmodel.Graph:
		switch b := y.(type) {
		case *argmodel.Graph:
			return k.simTexts(ctx, a.Text, b.Text)
		case string:
			return k.simTexts(ctx, a.Text, b)
		}
		return 0, nil

	case string:
		switch b := y.(type) {
		case string:
			return k.simTexts(ctx, a, b)
		case *argmodel.Graph:
			return k.simTexts(ctx, a, b.Text)
		}
		return 0, nil
	}
	return 0, nil
}

// Sims batches many (x, y) comparisons behind a single vector-cache warm,
// the pattern the MAC prefilter and A* heuristic both rely on to amortise
// provider round trips across an entire case base (§4.1, §4.3, §4.6).
func (k *Kernel) Sims(ctx context.Context, pairs [][2]any) ([]float64, error) {
	texts := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		texts = append(texts, textsOf(p[0])...)
		texts = append(texts, textsOf(p[1])...)
	}
	if err := k.Warm(ctx, texts); err != nil {
		return nil, err
	}

	out := make([]float64, len(pairs))
	for i, p := range pairs {
		s, err := k.Sim(ctx, p[0], p[1])
		if err != nil {
			return nil, fmt.Errorf("sim pair %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// textsOf collects every distinct text an element will need embedded.
func textsOf(x any) []string {
	switch v := x.(type) {
	case *argmodel.AtomNode:
		return []string{v.Text}
	case *argmodel.Graph:
		return []string{v.Text}
	case string:
		return []string{v}
	default:
		return nil
	}
}

func (k *Kernel) simTexts(ctx context.Context, a, b string) (float64, error) {
	if a == "" && b == "" {
		return 1, nil
	}
	if err := k.Warm(ctx, []string{a, b}); err != nil {
		return 0, err
	}

	if k.cache.tokenLevel {
		ta, ok1 := k.cache.getTokens(a)
		tb, ok2 := k.cache.getTokens(b)
		if !ok1 || !ok2 || len(ta) == 0 || len(tb) == 0 {
			return 0, nil
		}
		return tokenSimilarity(k.cache.cfg.SimilarityMethod, ta, tb), nil
	}

	va, ok1 := k.cache.get(a)
	vb, ok2 := k.cache.get(b)
	if !ok1 || !ok2 {
		return 0, argerrors.Internal("vector cache miss for warmed text")
	}
	return cosine(va.Document, vb.Document), nil
}

func (k *Kernel) simSchemes(a, b *argmodel.SchemeNode) float64 {
	va, vb := a.Scheme, b.Scheme

	switch k.policy {
	case SchemeBinary:
		return k.binaryKindMatch(va, vb)

	case SchemeTaxonomy:
		kindMatch := k.binaryKindMatch(va, vb)
		if kindMatch == 0 {
			return 0
		}
		ka := argmodel.SchemeUnspecified
		if va != nil {
			ka = va.Kind
		}
		if ka != argmodel.SchemeSupport {
			return 1
		}
		return k.taxonomySimilarity(va, vb)

	case SchemeExact:
		if va == nil && vb == nil {
			return 1
		}
		if va == nil || vb == nil {
			return 0
		}
		if va.Kind != vb.Kind {
			return 0
		}
		if va.Taxonomy != vb.Taxonomy {
			return 0
		}
		return 1

	default: // SchemeUnspecified
		return 1
	}
}

func (k *Kernel) binaryKindMatch(a, b *argmodel.SchemeValue) float64 {
	ka := argmodel.SchemeUnspecified
	if a != nil {
		ka = a.Kind
	}
	kb := argmodel.SchemeUnspecified
	if b != nil {
		kb = b.Kind
	}
	if ka == kb {
		return 1
	}
	return 0
}

func (k *Kernel) taxonomySimilarity(a, b *argmodel.SchemeValue) float64 {
	var ta, tb *string
	if a != nil && a.Taxonomy != "" {
		ta = &a.Taxonomy
	}
	if b != nil && b.Taxonomy != "" {
		tb = &b.Taxonomy
	}
	if k.taxonomy == nil {
		if ta == nil || tb == nil {
			return 1
		}
		return 0
	}
	return k.taxonomy.SchemeSimilarity(ta, tb)
}

// SimEdgeNodes implements the 0.5-weighted endpoint average of §4.1: two
// edges are similar to the extent that their source nodes are similar and
// their target nodes are similar. It takes already-resolved endpoint
// nodes (an Edge only carries NodeIDs, so resolving them against the
// owning Graph is the caller's job — mapping/astar hold that context)
// rather than asking the kernel to dereference a bare *argmodel.Edge.
func (k *Kernel) SimEdgeNodes(ctx context.Context, srcA, tgtA, srcB, tgtB argmodel.Node) (float64, error) {
	simSrc, err := k.Sim(ctx, srcA, srcB)
	if err != nil {
		return 0, err
	}
	simTgt, err := k.Sim(ctx, tgtA, tgtB)
	if err != nil {
		return 0, err
	}
	return 0.5 * (simSrc + simTgt), nil
}
