// Package server exposes the graph facade and the query translator
// over a JSON HTTP API. Handlers stay thin: they decode, delegate, and
// map the graph error taxonomy onto HTTP status codes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/graphbridge/agegraph/pkg/agtype"
	"github.com/graphbridge/agegraph/pkg/graph"
	"github.com/graphbridge/agegraph/pkg/schema"
	"github.com/graphbridge/agegraph/pkg/translate"
)

// Session is the per-graph operation surface the handlers use.
// *graph.Session satisfies it via the adapter in adapter.go.
type Session interface {
	Graph() string
	Execute(ctx context.Context, query string) ([]graph.Row, error)
	CreateNode(ctx context.Context, label string, props map[string]agtype.Value) (*graph.Node, error)
	Nodes(ctx context.Context, label string, limit int) ([]*graph.Node, error)
	UpdateNode(ctx context.Context, id int64, props map[string]agtype.Value) (*graph.Node, error)
	DeleteNode(ctx context.Context, id int64) error
	CreateEdge(ctx context.Context, fromID, toID int64, label string, props map[string]agtype.Value) (*graph.Edge, error)
	Edges(ctx context.Context, label string) ([]graph.Triple, error)
	UpdateEdge(ctx context.Context, id int64, props map[string]agtype.Value) (*graph.Edge, error)
	DeleteEdge(ctx context.Context, id int64) error
	GraphData(ctx context.Context, nodeCap int) (*graph.GraphData, error)
}

// Store is the graph catalog surface the handlers use.
type Store interface {
	ListGraphs(ctx context.Context) ([]string, error)
	CreateGraph(ctx context.Context, name string) (Session, error)
	DropGraph(ctx context.Context, name string) error
	Session(ctx context.Context, name string) (Session, error)
	CreateIndexes(ctx context.Context, name string) ([]string, error)
}

// Translator answers natural-language questions for one graph.
type Translator interface {
	Translate(ctx context.Context, question, schemaSummary, graphName string) *translate.Result
}

// Config holds HTTP server settings.
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	// GraphDataCap bounds nodes returned by the graph-data endpoint.
	GraphDataCap int
	// NodeSample and EdgeSample bound schema sampling for translation.
	NodeSample int
	EdgeSample int
}

// DefaultConfig returns default server settings.
func DefaultConfig() *Config {
	return &Config{
		Addr:           ":8080",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxRequestSize: 1 << 20,
		GraphDataCap:   graph.DefaultGraphDataCap,
		NodeSample:     schema.DefaultNodeSample,
		EdgeSample:     schema.DefaultEdgeSample,
	}
}

// Server is the HTTP API server.
type Server struct {
	config     *Config
	store      Store
	translator Translator
	log        *zap.Logger

	httpServer *http.Server
}

// New creates a server. translator may be nil, in which case the
// translate endpoint reports the feature as unavailable.
func New(store Store, translator Translator, config *Config, logger *zap.Logger) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:     config,
		store:      store,
		translator: translator,
		log:        logger,
	}
	s.httpServer = &http.Server{
		Addr:         config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s, nil
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/graphs", s.handleListGraphs)
	mux.HandleFunc("POST /api/graphs", s.handleCreateGraph)
	mux.HandleFunc("DELETE /api/graphs/{graph}", s.handleDropGraph)
	mux.HandleFunc("POST /api/graphs/{graph}/indexes", s.handleCreateIndexes)

	mux.HandleFunc("GET /api/graphs/{graph}/nodes", s.handleListNodes)
	mux.HandleFunc("POST /api/graphs/{graph}/nodes", s.handleCreateNode)
	mux.HandleFunc("PATCH /api/graphs/{graph}/nodes/{id}", s.handleUpdateNode)
	mux.HandleFunc("DELETE /api/graphs/{graph}/nodes/{id}", s.handleDeleteNode)

	mux.HandleFunc("GET /api/graphs/{graph}/edges", s.handleListEdges)
	mux.HandleFunc("POST /api/graphs/{graph}/edges", s.handleCreateEdge)
	mux.HandleFunc("PATCH /api/graphs/{graph}/edges/{id}", s.handleUpdateEdge)
	mux.HandleFunc("DELETE /api/graphs/{graph}/edges/{id}", s.handleDeleteEdge)

	mux.HandleFunc("POST /api/graphs/{graph}/query", s.handleQuery)
	mux.HandleFunc("POST /api/graphs/{graph}/translate", s.handleTranslate)
	mux.HandleFunc("GET /api/graphs/{graph}/data", s.handleGraphData)

	return s.logging(s.limitBody(mux))
}

// ListenAndServe runs the server until ctx is canceled, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.config.Addr))
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return <-errCh
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.log.Info("request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encoding response", zap.Error(err))
	}
}

// writeError maps the graph error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, graph.ErrGraphNotFound),
		errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, graph.ErrEdgeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, graph.ErrDuplicateGraph):
		status = http.StatusConflict
	case errors.Is(err, graph.ErrInvalidIdentifier):
		status = http.StatusBadRequest
	case errors.Is(err, graph.ErrExtension):
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, map[string]any{"error": err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	defer io.Copy(io.Discard, r.Body)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
