// Package embedding adapts the external embedding service the similarity
// kernel depends on (arg_services' NLP/vector service in the original
// implementation) into a small Go contract the rest of the engine can be
// tested against without a live backend.
package embedding

import "context"

// Level selects whether the provider should return one vector per text
// (Document) or one vector per token (Tokens). Token-level vectors are
// strictly larger and are only requested when the configured similarity
// method needs set-similarity over tokens (dynamax/maxpool variants).
type Level int

const (
	LevelDocument Level = iota
	LevelTokens
)

// SimilarityMethod mirrors the handful of vector-comparison strategies the
// kernel supports. Cosine is the default; the others only make sense at
// LevelTokens.
type SimilarityMethod int

const (
	MethodCosine SimilarityMethod = iota
	MethodDynamaxDice
	MethodDynamaxJaccard
	MethodMaxpoolJaccard
	MethodDynamaxOtsuka
)

// UsesTokenLevel reports whether m requires token-level vectors instead of
// a single document-level vector.
func (m SimilarityMethod) UsesTokenLevel() bool {
	switch m {
	case MethodDynamaxDice, MethodDynamaxJaccard, MethodMaxpoolJaccard, MethodDynamaxOtsuka:
		return true
	default:
		return false
	}
}

// Config carries the per-request embedding configuration (language, model,
// similarity method) that a caller supplies via nlp_config.
type Config struct {
	Language         string
	Model            string
	SimilarityMethod SimilarityMethod
}

// Vector is either a single document-level embedding, or (when Tokens is
// non-empty) the per-token embeddings for one input text.
type Vector struct {
	Document []float64
	Tokens   [][]float64
}

// Provider is the contract the similarity kernel consumes. It is treated as
// synchronous and idempotent: calling Vectors twice with the same inputs
// must return equal results. Implementations must be safe for concurrent
// use by multiple dispatcher workers, each holding its own Provider handle
// (§5 "per-worker client; no shared mutable state").
type Provider interface {
	Vectors(ctx context.Context, texts []string, level Level, cfg Config) ([]Vector, error)
}
