package rpcapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/casegraph/argfac/internal/argerrors"
	"github.com/casegraph/argfac/internal/argmodel"
	"github.com/casegraph/argfac/internal/casestore"
	"github.com/casegraph/argfac/internal/logging"
	"github.com/casegraph/argfac/internal/retrieval"
	"github.com/casegraph/argfac/internal/taxonomy"
)

// Server wires a Dispatcher and an optional case store behind an HTTP
// handler: one ServeMux, one handler method per route.
type Server struct {
	Dispatcher *retrieval.Dispatcher
	Store      *casestore.Store // nil if requests must always supply cases inline
	Taxonomy   *taxonomy.Taxonomy
}

// NewServer builds a Server.
func NewServer(d *retrieval.Dispatcher, store *casestore.Store, tax *taxonomy.Taxonomy) *Server {
	return &Server{Dispatcher: d, Store: store, Taxonomy: tax}
}

// Mux builds the HTTP routing table (§6).
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /retrieve", s.handleRetrieve)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, argerrors.InvalidRequest("invalid JSON body: %v", err))
		return
	}

	resp, err := s.retrieve(r.Context(), requestID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// retrieve runs every query in req against the resolved case base,
// merging inline cases with the backing store's when both are present
// (inline cases take precedence on id collision).
func (s *Server) retrieve(ctx context.Context, requestID string, req Request) (*Response, error) {
	cases, err := s.resolveCases(req.Cases)
	if err != nil {
		return nil, err
	}

	opts, err := toOptions(req)
	if err != nil {
		return nil, err
	}

	logging.Info("rpcapi", "request %s: %s cases, %d queries", requestID, humanize.Comma(int64(len(cases))), len(req.Queries))

	results := make(map[string]QueryResponse, len(req.Queries))
	for _, wq := range req.Queries {
		q, err := toQuery(wq)
		if err != nil {
			return nil, err
		}
		r, err := s.Dispatcher.Retrieve(ctx, cases, q, opts)
		if err != nil {
			if argerrors.Is(err, argerrors.KindInternalError) {
				logging.Error("rpcapi", "request %s query %q: %v", requestID, wq.ID, err)
			}
			return nil, err
		}
		results[wq.ID] = fromResult(r)
	}

	return &Response{Results: results}, nil
}

func (s *Server) resolveCases(inline map[string]argmodel.WireGraph) (map[string]*argmodel.Graph, error) {
	stored := make(map[string]*argmodel.Graph)
	if s.Store != nil {
		var err error
		stored, err = s.Store.LoadAll()
		if err != nil {
			return nil, argerrors.Internal("load case store: %v", err)
		}
	}
	parsed, err := toCases(inline)
	if err != nil {
		return nil, err
	}
	for id, g := range parsed {
		stored[id] = g
	}
	return stored, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	writeJSON(w, status, ErrorResponse{Kind: kind, Message: err.Error()})
}

// statusFor maps a §7 error kind onto an HTTP status.
func statusFor(err error) (int, string) {
	for _, kind := range []argerrors.Kind{
		argerrors.KindInvalidRequest,
		argerrors.KindMalformedGraph,
		argerrors.KindEmbeddingProviderError,
		argerrors.KindInternalError,
		argerrors.KindCancelled,
	} {
		if argerrors.Is(err, kind) {
			return httpStatus(kind), kind.String()
		}
	}
	return http.StatusInternalServerError, "Unknown"
}

func httpStatus(kind argerrors.Kind) int {
	switch kind {
	case argerrors.KindInvalidRequest, argerrors.KindMalformedGraph:
		return http.StatusBadRequest
	case argerrors.KindEmbeddingProviderError:
		return http.StatusBadGateway
	case argerrors.KindCancelled:
		return http.StatusRequestTimeout
	case argerrors.KindInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
