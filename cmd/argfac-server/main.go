// argfac-server exposes case-based retrieval over HTTP (§6), wiring the
// dispatcher, case store, and taxonomy behind a graceful-shutdown HTTP
// server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casegraph/argfac/internal/casestore"
	"github.com/casegraph/argfac/internal/config"
	"github.com/casegraph/argfac/internal/embedding"
	"github.com/casegraph/argfac/internal/logging"
	"github.com/casegraph/argfac/internal/retrieval"
	"github.com/casegraph/argfac/internal/rpcapi"
	"github.com/casegraph/argfac/internal/taxonomy"
)

func main() {
	cfg := config.Load()

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		log.Printf("[config] no taxonomy file at %s (%v), continuing without one", cfg.TaxonomyPath, err)
		tax = nil
	}

	var store *casestore.Store
	if cfg.CaseStorePath != "" {
		store, err = casestore.Open(cfg.CaseStorePath)
		if err != nil {
			log.Fatalf("failed to open case store: %v", err)
		}
		defer store.Close()
	}

	newProvider := func() embedding.Provider {
		return embedding.NewHTTPProvider(cfg.EmbeddingProviderURL)
	}
	dispatcher := retrieval.NewDispatcher(newProvider, tax)

	server := rpcapi.NewServer(dispatcher, store, tax)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Mux(),
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logging.Info("server", "shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(ctx)
	}()

	logging.Info("server", "argfac-server listening on :%s (cases: %s, taxonomy: %s)", cfg.Port, cfg.CaseStorePath, cfg.TaxonomyPath)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
