// Package config loads server/CLI configuration: an optional .env file
// via godotenv, then plain environment variables with defaults, rather
// than a dedicated config format for what amounts to a dozen scalar
// settings.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/casegraph/argfac/internal/logging"
)

// Config holds every setting the server and CLI entrypoints need.
type Config struct {
	// Port is the HTTP listen port for cmd/argfac-server.
	Port string
	// CaseStorePath is the sqlite file backing internal/casestore.
	CaseStorePath string
	// TaxonomyPath is the yaml taxonomy file loaded by internal/taxonomy.
	TaxonomyPath string
	// EmbeddingProviderURL is the base URL of the HTTP embedding provider.
	EmbeddingProviderURL string
	// DefaultAstarQueueLimit is read by Load; neither entrypoint passes
	// it to request handling, so a request that omits
	// extras.astar_queue_limit gets the internal/astar default instead.
	DefaultAstarQueueLimit int
	// DefaultWorkers is read by Load (0 stands for auto-detect); neither
	// entrypoint passes it to request handling.
	DefaultWorkers int
	// Debug is read by Load; neither entrypoint passes it to request
	// handling, so sequential FAC is selected only by extras.debug.
	Debug bool
}

// Load reads a .env file if present, then environment variables with the
// defaults below.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logging.Info("config", "no .env file found, using environment variables")
	} else {
		logging.Info("config", "loaded .env file")
	}

	return Config{
		Port:                   envOr("ARGFAC_PORT", "8420"),
		CaseStorePath:          envOr("ARGFAC_CASESTORE_PATH", "cases.db"),
		TaxonomyPath:           envOr("ARGFAC_TAXONOMY_PATH", "taxonomy.yaml"),
		EmbeddingProviderURL:   envOr("ARGFAC_EMBEDDING_URL", "http://localhost:8500"),
		DefaultAstarQueueLimit: envIntOr("ARGFAC_ASTAR_QUEUE_LIMIT", 10000),
		DefaultWorkers:         envIntOr("ARGFAC_WORKERS", 0),
		Debug:                  os.Getenv("ARGFAC_DEBUG") == "true",
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
