package similarity

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"github.com/casegraph/argfac/internal/embedding"
)

// cosine computes cosine similarity between two document-level vectors,
// clamped to [0,1] (the kernel never returns a negative similarity).
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	dot := floats.Dot(a, b)
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (normA * normB)
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim
}

// maxPool element-wise max-pools a set of token vectors into one vector of
// the same dimensionality, per the DynaMax family of set-similarity
// measures (Zhelezniak et al.): each dimension of the pooled vector is the
// largest value any token took on in that dimension.
func maxPool(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	dims := len(vectors[0])
	pooled := make([]float64, dims)
	copy(pooled, vectors[0])
	for _, v := range vectors[1:] {
		if len(v) != dims {
			continue
		}
		for i, x := range v {
			if x > pooled[i] {
				pooled[i] = x
			}
		}
	}
	return pooled
}

// fuzzyOverlap computes the element-wise min-sum and max-sum of two
// pooled vectors, the building blocks of every fuzzy-set overlap
// coefficient below.
func fuzzyOverlap(u, v []float64) (minSum, maxSum, sumU, sumV float64) {
	n := len(u)
	if len(v) < n {
		n = len(v)
	}
	for i := 0; i < n; i++ {
		if u[i] < v[i] {
			minSum += u[i]
		} else {
			minSum += v[i]
		}
		if u[i] > v[i] {
			maxSum += u[i]
		} else {
			maxSum += v[i]
		}
	}
	sumU = floats.Sum(u)
	sumV = floats.Sum(v)
	return
}

// dynamaxJaccard is the fuzzy Jaccard coefficient over max-pooled token
// vectors: sum(min)/sum(max).
func dynamaxJaccard(tokensA, tokensB [][]float64) float64 {
	u, v := maxPool(tokensA), maxPool(tokensB)
	if u == nil || v == nil {
		return 0
	}
	minSum, maxSum, _, _ := fuzzyOverlap(u, v)
	if maxSum == 0 {
		return 0
	}
	return clamp01(minSum / maxSum)
}

// dynamaxDice is the fuzzy Dice coefficient over max-pooled token vectors:
// 2*sum(min)/(sum(u)+sum(v)).
func dynamaxDice(tokensA, tokensB [][]float64) float64 {
	u, v := maxPool(tokensA), maxPool(tokensB)
	if u == nil || v == nil {
		return 0
	}
	minSum, _, sumU, sumV := fuzzyOverlap(u, v)
	if sumU+sumV == 0 {
		return 0
	}
	return clamp01(2 * minSum / (sumU + sumV))
}

// dynamaxOtsuka is the fuzzy Otsuka-Ochiai coefficient over max-pooled
// token vectors: sum(min)/sqrt(sum(u)*sum(v)).
func dynamaxOtsuka(tokensA, tokensB [][]float64) float64 {
	u, v := maxPool(tokensA), maxPool(tokensB)
	if u == nil || v == nil {
		return 0
	}
	minSum, _, sumU, sumV := fuzzyOverlap(u, v)
	denom := math.Sqrt(sumU * sumV)
	if denom == 0 {
		return 0
	}
	return clamp01(minSum / denom)
}

// maxpoolJaccard is the same pooling strategy, kept as a distinct config
// option (MethodMaxpoolJaccard) because callers may configure it with a
// different pooling granularity than the "dynamax" family upstream; here
// both reduce to the same fuzzy-Jaccard computation over the pooled
// vectors.
func maxpoolJaccard(tokensA, tokensB [][]float64) float64 {
	return dynamaxJaccard(tokensA, tokensB)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// tokenSimilarity dispatches to the configured token-level set-similarity
// measure.
func tokenSimilarity(method embedding.SimilarityMethod, tokensA, tokensB [][]float64) float64 {
	switch method {
	case embedding.MethodDynamaxDice:
		return dynamaxDice(tokensA, tokensB)
	case embedding.MethodDynamaxJaccard:
		return dynamaxJaccard(tokensA, tokensB)
	case embedding.MethodMaxpoolJaccard:
		return maxpoolJaccard(tokensA, tokensB)
	case embedding.MethodDynamaxOtsuka:
		return dynamaxOtsuka(tokensA, tokensB)
	default:
		return 0
	}
}
