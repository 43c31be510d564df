package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// responseCache is a fixed-size FIFO cache for provider responses, so that
// two requests embedding the same text against the same backend within a
// process's lifetime don't both pay for a round trip. It is independent of
// the similarity kernel's per-request vector cache (§4.1): this one is
// long-lived and keyed on (model, level, text); the kernel's is reset at
// every request boundary.
type responseCache struct {
	mu      sync.Mutex
	items   map[string]Vector
	order   []string
	maxSize int
}

func newResponseCache(maxSize int) *responseCache {
	return &responseCache{
		items:   make(map[string]Vector, maxSize),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

func (c *responseCache) get(key string) (Vector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *responseCache) set(key string, v Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; !exists {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.items, oldest)
		}
		c.order = append(c.order, key)
	}
	c.items[key] = v
}

// HTTPProvider is a Provider backed by a JSON-over-HTTP embedding backend
// (an Ollama-compatible `/api/embeddings`-style endpoint, generalised to
// accept a batch of texts and a level per call so the kernel can amortise
// one provider call across many pairs, per §4.1 "Rationale").
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	cache   *responseCache
}

// NewHTTPProvider creates a provider pointed at baseURL. Each dispatcher
// worker should hold its own instance (§5 "per-worker client").
func NewHTTPProvider(baseURL string) *HTTPProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &HTTPProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: newResponseCache(4096),
	}
}

type vectorsRequest struct {
	Texts []string `json:"texts"`
	Level string   `json:"level"`
	Model string   `json:"model"`
}

type vectorsResponseEntry struct {
	Document []float64   `json:"document,omitempty"`
	Tokens   [][]float64 `json:"tokens,omitempty"`
}

type vectorsResponse struct {
	Vectors []vectorsResponseEntry `json:"vectors"`
}

func levelString(l Level) string {
	if l == LevelTokens {
		return "tokens"
	}
	return "document"
}

func (p *HTTPProvider) cacheKey(model, level, text string) string {
	h := blake3.Sum256([]byte(model + "\x00" + level + "\x00" + text))
	return fmt.Sprintf("%x", h[:16])
}

// Vectors implements Provider. Cached texts are served without a round
// trip; the remainder is batched into a single request.
func (p *HTTPProvider) Vectors(ctx context.Context, texts []string, level Level, cfg Config) ([]Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	levelStr := levelString(level)
	out := make([]Vector, len(texts))
	missing := make([]string, 0, len(texts))
	missingIdx := make([]int, 0, len(texts))

	for i, text := range texts {
		key := p.cacheKey(cfg.Model, levelStr, text)
		if v, ok := p.cache.get(key); ok {
			out[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	reqBody := vectorsRequest{Texts: missing, Level: levelStr, Model: cfg.Model}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal vectors request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/vectors", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("build vectors request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vectors request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding provider error (status %d): %s", resp.StatusCode, string(body))
	}

	var result vectorsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode vectors response: %w", err)
	}
	if len(result.Vectors) != len(missing) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(result.Vectors), len(missing))
	}

	for j, entry := range result.Vectors {
		v := Vector{Document: entry.Document, Tokens: entry.Tokens}
		idx := missingIdx[j]
		out[idx] = v
		p.cache.set(p.cacheKey(cfg.Model, levelStr, missing[j]), v)
	}

	return out, nil
}
