package similarity

import (
	"context"
	"fmt"

	"github.com/casegraph/argfac/internal/embedding"
)

// vectorCache is the per-request cache of §4.1 ("the vector cache is
// cleared at the start of each Retrieve call; it is never shared across
// requests"). A Kernel owns exactly one, created fresh by NewKernel.
//
// Document-level text is embedded directly. Token-level text is first
// split locally with tokenizeText (prose), and each distinct token is
// embedded as its own document-level vector; this keeps the Provider
// contract uniform (always LevelDocument in practice against the sample
// backend) while still giving the dynamax/maxpool measures a genuine set
// of per-token vectors to pool over.
type vectorCache struct {
	provider   embedding.Provider
	cfg        embedding.Config
	tokenLevel bool

	byText       map[string]embedding.Vector
	byTextTokens map[string][][]float64
}

func newVectorCache(provider embedding.Provider, cfg embedding.Config) *vectorCache {
	return &vectorCache{
		provider:     provider,
		cfg:          cfg,
		tokenLevel:   cfg.SimilarityMethod.UsesTokenLevel(),
		byText:       make(map[string]embedding.Vector),
		byTextTokens: make(map[string][][]float64),
	}
}

// warm ensures every text in texts has a cached vector (and, in
// token-level mode, cached per-token vectors), fetching all misses in a
// single batched Provider.Vectors call — the whole point of the cache:
// "many (element, element) pairs resolve to very few distinct texts".
func (c *vectorCache) warm(ctx context.Context, texts []string) error {
	if c.tokenLevel {
		return c.warmTokens(ctx, texts)
	}
	return c.warmDocuments(ctx, texts)
}

func (c *vectorCache) warmDocuments(ctx context.Context, texts []string) error {
	missing := c.uncachedOf(texts, func(t string) bool { _, ok := c.byText[t]; return ok })
	if len(missing) == 0 {
		return nil
	}
	vectors, err := c.provider.Vectors(ctx, missing, embedding.LevelDocument, c.cfg)
	if err != nil {
		return fmt.Errorf("fetch vectors: %w", err)
	}
	if len(vectors) != len(missing) {
		return fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(missing))
	}
	for i, text := range missing {
		c.byText[text] = vectors[i]
	}
	return nil
}

func (c *vectorCache) warmTokens(ctx context.Context, texts []string) error {
	// First pass: which whole texts still need their token set built.
	pending := c.uncachedOf(texts, func(t string) bool { _, ok := c.byTextTokens[t]; return ok })
	if len(pending) == 0 {
		return nil
	}

	tokensByText := make(map[string][]string, len(pending))
	allTokens := make([]string, 0, len(pending)*4)
	for _, t := range pending {
		toks := tokenizeText(t)
		tokensByText[t] = toks
		allTokens = append(allTokens, toks...)
	}

	missingTokens := c.uncachedOf(allTokens, func(t string) bool { _, ok := c.byText[t]; return ok })
	if len(missingTokens) > 0 {
		vectors, err := c.provider.Vectors(ctx, missingTokens, embedding.LevelDocument, c.cfg)
		if err != nil {
			return fmt.Errorf("fetch token vectors: %w", err)
		}
		if len(vectors) != len(missingTokens) {
			return fmt.Errorf("provider returned %d vectors for %d tokens", len(vectors), len(missingTokens))
		}
		for i, tok := range missingTokens {
			c.byText[tok] = vectors[i]
		}
	}

	for _, t := range pending {
		toks := tokensByText[t]
		vecs := make([][]float64, 0, len(toks))
		for _, tok := range toks {
			if v, ok := c.byText[tok]; ok && len(v.Document) > 0 {
				vecs = append(vecs, v.Document)
			}
		}
		c.byTextTokens[t] = vecs
	}
	return nil
}

func (c *vectorCache) uncachedOf(texts []string, isCached func(string) bool) []string {
	seen := make(map[string]bool, len(texts))
	missing := make([]string, 0, len(texts))
	for _, t := range texts {
		if seen[t] || isCached(t) {
			seen[t] = true
			continue
		}
		seen[t] = true
		missing = append(missing, t)
	}
	return missing
}

func (c *vectorCache) get(text string) (embedding.Vector, bool) {
	v, ok := c.byText[text]
	return v, ok
}

func (c *vectorCache) getTokens(text string) ([][]float64, bool) {
	toks, ok := c.byTextTokens[text]
	return toks, ok
}
