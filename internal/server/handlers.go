package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	kerrors "github.com/kintreeapp/kintree/pkg/errors"
	"github.com/kintreeapp/kintree/pkg/layout"
	"github.com/kintreeapp/kintree/pkg/person"
	"github.com/kintreeapp/kintree/pkg/pipeline"
	"github.com/kintreeapp/kintree/pkg/store"
)

// layoutRequest is the body of POST /v1/layout and PUT /v1/trees/{id}.
type layoutRequest struct {
	Name    string           `json:"name,omitempty"`
	Persons []person.Record  `json:"persons"`
	Options pipeline.Options `json:"options"`
}

// layoutResponse is the body returned for layout computations.
type layoutResponse struct {
	Layout         layout.Result `json:"layout"`
	CollectionHash string        `json:"collection_hash"`
	Cached         bool          `json:"cached"`
}

// errorResponse is the JSON error payload. Code carries the machine-
// readable error code so clients can branch without parsing messages.
type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// handleHealth implements GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayout implements POST /v1/layout: compute a layout for the posted
// collection without storing anything.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeLayoutRequest(w, r)
	if !ok {
		return
	}

	res, hit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), req.Persons, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, layoutResponse{
		Layout:         res,
		CollectionHash: pipeline.CollectionHash(req.Persons),
		Cached:         hit,
	})
}

// handleListTrees implements GET /v1/trees.
func (s *Server) handleListTrees(w http.ResponseWriter, r *http.Request) {
	trees, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeStore, err, "list trees"))
		return
	}
	if trees == nil {
		trees = []store.Tree{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"trees": trees})
}

// handleCreateTree implements POST /v1/trees: assign a fresh ID, compute
// the layout, and store collection plus layout together.
func (s *Server) handleCreateTree(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeLayoutRequest(w, r)
	if !ok {
		return
	}
	s.saveTree(w, r, uuid.NewString(), req, http.StatusCreated)
}

// handlePutTree implements PUT /v1/trees/{id}: replace (or create) the tree
// under the client-chosen ID.
func (s *Server) handlePutTree(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeLayoutRequest(w, r)
	if !ok {
		return
	}
	s.saveTree(w, r, chi.URLParam(r, "id"), req, http.StatusOK)
}

// saveTree computes the layout for req and persists the result under id.
func (s *Server) saveTree(w http.ResponseWriter, r *http.Request, id string, req layoutRequest, status int) {
	res, err := s.runner.ComputeLayout(r.Context(), req.Persons, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	t := store.Tree{
		ID:      id,
		Name:    req.Name,
		Persons: req.Persons,
		Options: req.Options.LayoutOptions(),
		Layout:  res,
	}
	if err := s.store.Put(r.Context(), t); err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeStore, err, "store tree %s", id))
		return
	}

	stored, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeStore, err, "load stored tree %s", id))
		return
	}
	s.writeJSON(w, status, stored)
}

// handleGetTree implements GET /v1/trees/{id}.
func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, kerrors.New(kerrors.ErrCodeNotFound, "tree %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeStore, err, "load tree %s", id))
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

// handleDeleteTree implements DELETE /v1/trees/{id}.
func (s *Server) handleDeleteTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, kerrors.New(kerrors.ErrCodeNotFound, "tree %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeStore, err, "delete tree %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderContentTypes maps render formats to response content types.
var renderContentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

// handleRenderTree implements GET /v1/trees/{id}/render?format=svg.
// The stored layout is rendered on demand; the runner's cache makes
// repeated renders of an unchanged tree cheap.
func (s *Server) handleRenderTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	contentType, ok := renderContentTypes[format]
	if !ok {
		s.writeError(w, r, kerrors.New(kerrors.ErrCodeInvalidFormat, "invalid render format: %q (must be dot, svg, or png)", format))
		return
	}

	t, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, kerrors.New(kerrors.ErrCodeNotFound, "tree %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeStore, err, "load tree %s", id))
		return
	}

	opts := pipeline.Options{Formats: []string{format}}
	artifacts, _, err := s.runner.RenderWithCacheInfo(r.Context(), t.Layout, opts)
	if err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeInternal, err, "render tree %s", id))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// =============================================================================
// Request/Response Helpers
// =============================================================================

// decodeLayoutRequest decodes and validates a layout request body.
// On failure it writes the error response itself and returns ok=false.
func (s *Server) decodeLayoutRequest(w http.ResponseWriter, r *http.Request) (layoutRequest, bool) {
	var req layoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeInvalidInputShape, err, "decode request body"))
		return layoutRequest{}, false
	}
	for i, rec := range req.Persons {
		if err := rec.Validate(); err != nil {
			s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeInvalidInputShape, err, "person %d", i))
			return layoutRequest{}, false
		}
	}
	return req, true
}

// writeJSON writes v as a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// statusForCode maps error codes to HTTP status codes. Unknown codes
// default to 500.
func statusForCode(code kerrors.Code) int {
	switch code {
	case kerrors.ErrCodeInvalidInputShape, kerrors.ErrCodeInvalidOptions, kerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case kerrors.ErrCodeNoRoot, kerrors.ErrCodeMultipleRoots, kerrors.ErrCodeCyclicReference:
		return http.StatusUnprocessableEntity
	case kerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case kerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a structured JSON error payload derived from err.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := kerrors.GetCode(err)
	if code == "" {
		code = kerrors.ErrCodeInternal
	}
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"err", err,
			"path", r.URL.Path,
			"request_id", requestIDFromContext(r.Context()))
	}

	var resp errorResponse
	resp.Error.Code = string(code)
	resp.Error.Message = kerrors.UserMessage(err)
	resp.Error.RequestID = requestIDFromContext(r.Context())
	s.writeJSON(w, status, resp)
}

// writeErrorStatus writes a bare error payload without an error value.
// Used by middleware where no structured error exists.
func (s *Server) writeErrorStatus(w http.ResponseWriter, status int, code, message string) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	s.writeJSON(w, status, resp)
}
