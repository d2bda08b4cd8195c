// Package server implements the kintree HTTP API.
//
// The API exposes the layout pipeline over HTTP: clients post a person
// collection and receive the computed layout, or store named collections
// for later retrieval. Handlers are thin adapters - all real work happens
// in the pipeline runner and the store.
//
// # Endpoints
//
//	GET    /healthz              liveness probe
//	POST   /v1/layout            compute a layout for a posted collection
//	GET    /v1/trees             list stored trees (summaries)
//	POST   /v1/trees             store a collection and its layout
//	GET    /v1/trees/{id}        fetch a stored tree with its layout
//	PUT    /v1/trees/{id}        replace a stored tree
//	DELETE /v1/trees/{id}        delete a stored tree
//	GET    /v1/trees/{id}/render render a stored tree (dot, svg, png)
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/kintreeapp/kintree/pkg/pipeline"
	"github.com/kintreeapp/kintree/pkg/store"
)

// Server wires the HTTP API to the pipeline runner and the tree store.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	addr   string
}

// New creates a server. A nil store falls back to an in-memory store, so
// the API works without Mongo configured (trees just don't survive
// restarts). A nil logger falls back to the default logger.
func New(addr string, runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		store:  st,
		logger: logger,
		addr:   addr,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)

		r.Route("/trees", func(r chi.Router) {
			r.Get("/", s.handleListTrees)
			r.Post("/", s.handleCreateTree)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTree)
				r.Put("/", s.handlePutTree)
				r.Delete("/", s.handleDeleteTree)
				r.Get("/render", s.handleRenderTree)
			})
		})
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully with a short drain window.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
